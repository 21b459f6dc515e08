package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davitren/storefront/internal/container"
	handlers "github.com/davitren/storefront/internal/interface/http"
	"github.com/davitren/storefront/internal/interface/middleware"
	"github.com/davitren/storefront/pkg/helpers"
)

// OrderModule wires checkout, order history, and invoice download. Invoice
// rendering is the most expensive route in the app, so it carries its own
// tighter limit.
type OrderModule struct {
	Handler *handlers.OrderHandler
	JWT     *helpers.JWTManager
}

func NewOrderModule(h *handlers.OrderHandler, jwt *helpers.JWTManager) *OrderModule {
	return &OrderModule{Handler: h, JWT: jwt}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/checkout", middleware.RequireCSRF(container.GetRedis()), m.Handler.Checkout)
		auth.GET("/orders", m.Handler.List)
		auth.GET("/orders/:id", m.Handler.Get)

		invoiceLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil)
		auth.GET("/orders/:id/invoice", invoiceLimiter, m.Handler.Invoice)
	}
}
