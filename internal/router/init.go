package router

import (
	"github.com/davitren/storefront/internal/application"
	"github.com/davitren/storefront/internal/container"
	pginfra "github.com/davitren/storefront/internal/infrastructure/postgres"
	handlers "github.com/davitren/storefront/internal/interface/http"
	"github.com/davitren/storefront/internal/router/modules"
	"github.com/davitren/storefront/pkg/helpers"
)

// InitModules builds every feature module from the container singletons and
// registers it. Called once during startup, after the container is filled.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	products := pginfra.NewProductRepository(pool)
	carts := pginfra.NewCartRepository(pool)
	orders := pginfra.NewOrderRepository(pool)

	accountSvc := application.NewAccountService(
		users,
		container.GetJWT(),
		container.GetRedis(),
		logger,
		container.GetRabbitPub(),
		cfg.ResetPasswordURL,
		cfg.MailSendEnabled,
	)
	catalogSvc := application.NewCatalogService(
		products,
		&helpers.GCSImageStore{Client: container.GetGCS(), Bucket: cfg.GCSBucket},
		container.GetES(),
		cfg.ESProductsIndex,
		logger,
	)
	cartSvc := application.NewCartService(carts, products, logger)
	orderSvc := application.NewOrderService(orders, carts, products, users, logger, cfg.InvoiceDir)

	jwt := container.GetJWT()
	r.Add(modules.NewAccountModule(handlers.NewAccountHandler(accountSvc, logger, cfg.CookieDomain, cfg.CookieSecure), jwt))
	r.Add(modules.NewCatalogModule(handlers.NewCatalogHandler(catalogSvc, logger), jwt))
	r.Add(modules.NewCartModule(handlers.NewCartHandler(cartSvc, logger), jwt))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(orderSvc, logger), jwt))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
