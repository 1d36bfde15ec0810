package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zots0127/locker/internal/adapter/handler"
	"github.com/zots0127/locker/pkg/config"
	"github.com/zots0127/locker/pkg/middleware"
)

const shutdownTimeout = 30 * time.Second

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg := manager.GetConfig()
			if host, _ := cmd.Flags().GetString("host"); host != "" {
				cfg.Server.Host = host
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Server.Port = port
			}
			manager.LogSummary()

			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("host", "", "Override server.host")
	cmd.Flags().String("port", "", "Override server.port")

	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := newContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	go c.purgeSessions(ctx, time.Hour)

	router := handler.NewRouter(routerConfig(cfg), handler.UseCases{
		Auth:   c.auth,
		Groups: c.groups,
		Files:  c.files,
		Health: c.health,
	})

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("version", Version).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func routerConfig(cfg *config.Config) handler.RouterConfig {
	rc := handler.RouterConfig{
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		Cookie: handler.CookieOptions{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
	}
	if cfg.CORS.Enabled {
		rc.CORS = &middleware.CORSOptions{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}
	}
	if cfg.Metrics.Enabled {
		rc.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Auth.LoginRatePerMinute > 0 {
		rc.LoginLimit = &middleware.RateLimitOptions{
			PerMinute: cfg.Auth.LoginRatePerMinute,
			Burst:     cfg.Auth.LoginBurst,
		}
	}
	return rc
}
