package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/zots0127/locker/internal/usecase"
	"github.com/zots0127/locker/pkg/metrics"
	"github.com/zots0127/locker/pkg/middleware"
)

// RouterConfig holds the HTTP-level settings of the router
type RouterConfig struct {
	MaxUploadSize int64
	Cookie        CookieOptions
	// CORS is nil when cross-origin requests are not answered
	CORS *middleware.CORSOptions
	// MetricsPath is empty when metrics are disabled
	MetricsPath string
	// LoginLimit throttles login attempts per client IP; nil disables it
	LoginLimit *middleware.RateLimitOptions
}

// UseCases bundles everything the router dispatches to. Health may be nil.
type UseCases struct {
	Auth   *usecase.AuthUseCase
	Groups *usecase.GroupUseCase
	Files  *usecase.FileUseCase
	Health *usecase.HealthUseCase
}

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg RouterConfig, uc UseCases) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	quiet := []string{"/health"}
	if cfg.MetricsPath != "" {
		quiet = append(quiet, cfg.MetricsPath)
	}
	r.Use(middleware.Logging(quiet...))
	r.Use(middleware.SecurityHeaders())
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.MetricsPath != "" {
		r.Use(metrics.Middleware())
		r.GET(cfg.MetricsPath, metrics.Handler())
	}
	r.Use(middleware.BodyLimit(cfg.MaxUploadSize))

	gate := RequireAuth(uc.Auth, cfg.Cookie.Name)
	api := r.Group("/api")

	var loginGuards []gin.HandlerFunc
	if cfg.LoginLimit != nil {
		loginGuards = append(loginGuards, middleware.NewRateLimiter(*cfg.LoginLimit).Middleware(middleware.ClientIPKeyGenerator))
	}
	NewAuthHandler(uc.Auth, cfg.Cookie).RegisterRoutes(api, loginGuards...)
	NewGroupHandler(uc.Groups).RegisterRoutes(api, gate)
	NewFileHandler(uc.Files).RegisterRoutes(r, api, gate)

	if uc.Health != nil {
		NewHealthHandler(uc.Health).RegisterRoutes(r)
	}

	return r
}
