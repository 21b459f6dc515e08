package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/application"
	"github.com/davitren/storefront/internal/domain/entity"
	"github.com/davitren/storefront/internal/invoice"
	"github.com/davitren/storefront/pkg/response"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

func orderDTO(o *entity.Order) gin.H {
	items := make([]gin.H, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, gin.H{
			"product_id":  it.ProductID,
			"title":       it.Title,
			"price":       it.Price,
			"description": it.Description,
			"image_url":   it.ImageURL,
			"quantity":    it.Quantity,
			"item_total":  it.ItemTotal(),
		})
	}
	return gin.H{
		"id":         o.ID,
		"user_email": o.UserEmail,
		"total":      o.Total,
		"items":      items,
		"created_at": o.CreatedAt,
	}
}

// Checkout snapshots the cart into a new order. An empty cart is a
// validation failure; a cart entry whose product has been deleted fails
// the whole checkout and leaves the cart alone.
func (h *OrderHandler) Checkout(c *gin.Context) {
	o, err := h.Svc.Checkout(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, orderDTO(o), "order placed", nil)
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.Svc.ListForUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]gin.H, 0, len(orders))
	for i := range orders {
		out = append(out, orderDTO(&orders[i]))
	}
	response.Success(c, http.StatusOK, out, "orders", nil)
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.Svc.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, orderDTO(o), "order", nil)
}

// Invoice streams the order's PDF inline. Ownership, existence, and the
// durable file sink are all settled before the first byte of the body is
// written; after that any render failure can only abort the stream.
func (h *OrderHandler) Invoice(c *gin.Context) {
	o, err := h.Svc.InvoiceOrder(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	sink, err := h.Svc.PrepareInvoice(o)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+invoice.FileName(o.ID)+`"`)
	c.Status(http.StatusOK)
	if err := h.Svc.WriteInvoice(o, sink, c.Writer); err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("order_id", o.ID).Error("invoice stream failed")
		}
		c.Abort()
	}
}
