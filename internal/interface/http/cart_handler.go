package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/davitren/storefront/internal/application"
	"github.com/davitren/storefront/pkg/response"
	"github.com/davitren/storefront/pkg/validation"
)

type CartHandler struct {
	Svc    *application.CartService
	Logger *logrus.Logger
}

func NewCartHandler(svc *application.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

func cartDTO(v *application.CartView) gin.H {
	lines := make([]gin.H, 0, len(v.Lines))
	for i := range v.Lines {
		l := &v.Lines[i]
		lines = append(lines, gin.H{
			"product":  productDTO(&l.Product),
			"quantity": l.Quantity,
		})
	}
	return gin.H{"items": lines, "total_sum": v.Total}
}

func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.Svc.View(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cartDTO(view), "cart", nil)
}

// Add puts one unit of a product into the cart, incrementing the quantity
// if the product is already there.
func (h *CartHandler) Add(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Add(c.Request.Context(), c.GetString("userID"), req.ProductID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	view, err := h.Svc.View(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cartDTO(view), "added to cart", nil)
}

// DeleteItem drops a product's whole entry regardless of quantity.
func (h *CartHandler) DeleteItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Remove(c.Request.Context(), c.GetString("userID"), req.ProductID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	view, err := h.Svc.View(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cartDTO(view), "removed from cart", nil)
}
