package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/davitren/storefront/internal/container"
	handlers "github.com/davitren/storefront/internal/interface/http"
	"github.com/davitren/storefront/internal/interface/middleware"
	"github.com/davitren/storefront/pkg/helpers"
)

// AccountModule wires signup, session, and password-reset routes.
// Public: POST /api/signup, /api/login, /api/refresh, /api/reset, /api/reset/:token
// Protected: POST /api/logout, GET /api/profile, GET /api/csrf
type AccountModule struct {
	Handler *handlers.AccountHandler
	JWT     *helpers.JWTManager
}

func NewAccountModule(h *handlers.AccountHandler, jwt *helpers.JWTManager) *AccountModule {
	return &AccountModule{Handler: h, JWT: jwt}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	// Public with per-IP rate limits; reset init is tightest since each
	// hit can send mail.
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	resetInitLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/reset", resetInitLimiter, m.Handler.ResetInit)
	rg.POST("/reset/:token", resetConfirmLimiter, m.Handler.ResetConfirm)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.Profile)
		auth.GET("/csrf", middleware.IssueCSRF(container.GetRedis()))
	}
}
