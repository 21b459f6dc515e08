package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/davitren/storefront/internal/domain/entity"
)

// FileName returns the deterministic invoice file name for an order.
func FileName(orderID string) string {
	return "invoice-" + orderID + ".pdf"
}

// Render writes the PDF invoice for an order to w in a single pass. Callers
// that need the same bytes in two places (durable file and HTTP response)
// pass an io.MultiWriter; the document is produced exactly once.
//
// Totals come from the order's snapshot items only, never from live
// product data. The creation date is pinned so the bytes are reproducible
// from the order alone.
func Render(o *entity.Order, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(time.Time{})
	pdf.SetCompression(false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "U", 26)
	pdf.CellFormat(0, 12, "Invoice", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "--------------------------------", "", 1, "L", false, 0, "")

	for _, it := range o.Items {
		line := fmt.Sprintf("%s - %d x $%s", it.Title, it.Quantity, it.Price.String())
		pdf.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	pdf.CellFormat(0, 8, "----------------", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Total Price: $%s", o.ComputeTotal().String()), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
