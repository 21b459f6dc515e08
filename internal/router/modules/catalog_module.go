package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davitren/storefront/internal/container"
	handlers "github.com/davitren/storefront/internal/interface/http"
	"github.com/davitren/storefront/internal/interface/middleware"
	"github.com/davitren/storefront/pkg/helpers"
)

// CatalogModule wires the public catalog and the owner-scoped product
// management routes.
// Public: GET /api/products, /api/products/search, /api/products/:id
// Protected: /api/admin/products CRUD
type CatalogModule struct {
	Handler *handlers.CatalogHandler
	JWT     *helpers.JWTManager
}

func NewCatalogModule(h *handlers.CatalogHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Handler: h, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	browseLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	// Static segments before the :id wildcard so /products/search resolves.
	rg.GET("/products", browseLimiter, m.Handler.List)
	rg.GET("/products/search", browseLimiter, m.Handler.Search)
	rg.GET("/products/:id", browseLimiter, m.Handler.Get)

	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(container.GetRedis(), m.JWT))
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		admin.GET("/products", m.Handler.ListMine)

		csrf := middleware.RequireCSRF(container.GetRedis())
		admin.POST("/products", csrf, m.Handler.Create)
		admin.PUT("/products/:id", csrf, m.Handler.Update)
		admin.DELETE("/products/:id", csrf, m.Handler.Delete)
	}
}
