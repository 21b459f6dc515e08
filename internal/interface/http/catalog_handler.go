package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/application"
	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/pkg/pagination"
	"github.com/davitren/storefront/pkg/response"
)

// allowed image content types for product uploads.
var imageContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

type CatalogHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

func productDTO(p *entity.Product) gin.H {
	return gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"price":       p.Price,
		"description": p.Description,
		"image_url":   p.ImageURL,
		"owner_id":    p.OwnerID,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func productDTOs(products []entity.Product) []gin.H {
	out := make([]gin.H, 0, len(products))
	for i := range products {
		out = append(out, productDTO(&products[i]))
	}
	return out
}

// List serves one public catalog page. ?page defaults to 1; garbage and
// out-of-range values are clamped, never an error.
func (h *CatalogHandler) List(c *gin.Context) {
	page := pagination.ParsePage(c.Query("page"))
	products, meta, err := h.Svc.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, productDTOs(products), "products", meta)
}

func (h *CatalogHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, productDTO(p), "product", nil)
}

func (h *CatalogHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, 10)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}

// ListMine serves one page of the products owned by the requester. This is
// the management view behind product edit and delete.
func (h *CatalogHandler) ListMine(c *gin.Context) {
	page := pagination.ParsePage(c.Query("page"))
	products, meta, err := h.Svc.ListByOwner(c.Request.Context(), c.GetString("userID"), page)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, productDTOs(products), "your products", meta)
}

// productForm parses the multipart create/edit form. The image part is
// optional here; Create enforces its presence at the service layer.
func (h *CatalogHandler) productForm(c *gin.Context) (application.ProductInput, *application.ImageUpload, multipart.File, map[string]string) {
	details := map[string]string{}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		details["title"] = "is required"
	}

	price, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("price")))
	if err != nil {
		details["price"] = "must be a number"
	} else if !price.IsPositive() {
		details["price"] = "must be greater than 0"
	}

	description := strings.TrimSpace(c.PostForm("description"))
	if description == "" {
		details["description"] = "is required"
	}

	var img *application.ImageUpload
	var file multipart.File
	fh, err := c.FormFile("image")
	if err == nil && fh != nil {
		ct := fh.Header.Get("Content-Type")
		if !imageContentTypes[ct] {
			details["image"] = "must be a png or jpeg image"
		} else if f, oErr := fh.Open(); oErr != nil {
			details["image"] = "could not read uploaded file"
		} else {
			file = f
			img = &application.ImageUpload{Reader: f, Filename: fh.Filename, ContentType: ct}
		}
	}

	if len(details) > 0 {
		if file != nil {
			_ = file.Close()
		}
		return application.ProductInput{}, nil, nil, details
	}
	return application.ProductInput{Title: title, Price: price, Description: description}, img, file, nil
}

func (h *CatalogHandler) Create(c *gin.Context) {
	in, img, file, details := h.productForm(c)
	if details != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", details)
		return
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	p, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), in, img)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, productDTO(p), "product created", nil)
}

func (h *CatalogHandler) Update(c *gin.Context) {
	in, img, file, details := h.productForm(c)
	if details != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", details)
		return
	}
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	p, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), in, img)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, productDTO(p), "product updated", nil)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "product deleted", nil)
}
