package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davitren/storefront/internal/container"
	handlers "github.com/davitren/storefront/internal/interface/http"
	"github.com/davitren/storefront/internal/interface/middleware"
	"github.com/davitren/storefront/pkg/helpers"
)

// CartModule wires the cart routes. Everything requires a session; the
// mutating routes also require the anti-forgery token.
type CartModule struct {
	Handler *handlers.CartHandler
	JWT     *helpers.JWTManager
}

func NewCartModule(h *handlers.CartHandler, jwt *helpers.JWTManager) *CartModule {
	return &CartModule{Handler: h, JWT: jwt}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/cart", m.Handler.Get)

		csrf := middleware.RequireCSRF(container.GetRedis())
		auth.POST("/cart", csrf, m.Handler.Add)
		auth.POST("/cart/delete-item", csrf, m.Handler.DeleteItem)
	}
}
