package invoice

import (
	"bytes"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davitren/storefront/internal/domain/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:        "4a1f2c9e-0000-0000-0000-000000000001",
		UserID:    "u1",
		UserEmail: "buyer@example.com",
		Items: []entity.OrderItem{
			{ProductID: "p1", Title: "Blue Notebook", Price: decimal.RequireFromString("12.50"), Quantity: 2},
			{ProductID: "p2", Title: "Fountain Pen", Price: decimal.RequireFromString("7.99"), Quantity: 1},
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "invoice-abc.pdf", FileName("abc"))
}

func TestRenderContainsLinesAndTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(sampleOrder(), &buf))

	out := buf.String()
	assert.Contains(t, out, "Invoice")
	assert.Contains(t, out, "Blue Notebook - 2 x $12.50")
	assert.Contains(t, out, "Fountain Pen - 1 x $7.99")
	// 2*12.50 + 1*7.99
	assert.Contains(t, out, "Total Price: $32.99")
}

func TestRenderSinglePassFeedsBothSinks(t *testing.T) {
	var file, resp bytes.Buffer
	require.NoError(t, Render(sampleOrder(), io.MultiWriter(&file, &resp)))

	assert.NotZero(t, file.Len())
	assert.Equal(t, file.Bytes(), resp.Bytes())
}

func TestRenderDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Render(sampleOrder(), &a))
	require.NoError(t, Render(sampleOrder(), &b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestComputeTotalUsesSnapshotOnly(t *testing.T) {
	o := sampleOrder()
	total := o.ComputeTotal()
	assert.True(t, total.Equal(decimal.RequireFromString("32.99")))
}
