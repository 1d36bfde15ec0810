package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/repository"
	"github.com/zots0127/locker/internal/infrastructure/mirror"
	"github.com/zots0127/locker/internal/infrastructure/registry"
	infrarepo "github.com/zots0127/locker/internal/infrastructure/repository"
	"github.com/zots0127/locker/internal/infrastructure/session"
	"github.com/zots0127/locker/internal/infrastructure/storage"
	"github.com/zots0127/locker/internal/usecase"
	"github.com/zots0127/locker/pkg/config"
)

// container wires the configured infrastructure into the use cases
type container struct {
	cfg      *config.Config
	registry *registry.JSONRegistry
	sessions repository.SessionStore
	mirror   repository.Mirror

	auth   *usecase.AuthUseCase
	groups *usecase.GroupUseCase
	files  *usecase.FileUseCase
	health *usecase.HealthUseCase
}

func newContainer(ctx context.Context, cfg *config.Config) (*container, error) {
	reg, err := registry.Open(cfg.Storage.RegistryFile, cfg.Storage.UploadRoot)
	if err != nil {
		return nil, err
	}

	sessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		return nil, err
	}

	var m repository.Mirror
	if cfg.Mirror.Enabled {
		s3m, err := mirror.NewS3Mirror(mirror.Config{
			Bucket:         cfg.Mirror.Bucket,
			Region:         cfg.Mirror.Region,
			Endpoint:       cfg.Mirror.Endpoint,
			AccessKey:      cfg.Mirror.AccessKey,
			SecretKey:      cfg.Mirror.SecretKey,
			ForcePathStyle: cfg.Mirror.ForcePathStyle,
			Prefix:         cfg.Mirror.Prefix,
		})
		if err != nil {
			sessions.Close()
			return nil, fmt.Errorf("failed to set up S3 mirror: %w", err)
		}
		m = s3m
		log.Info().Str("bucket", cfg.Mirror.Bucket).Msg("mirroring uploads to S3")
	}

	groups := usecase.NewGroupUseCase(reg, m)
	// listing once seeds the groups gauge before any create or delete
	if _, err := groups.List(ctx); err != nil {
		sessions.Close()
		return nil, err
	}

	creds := usecase.Credentials{
		Username:     cfg.Auth.Username,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
	}

	return &container{
		cfg:      cfg,
		registry: reg,
		sessions: sessions,
		mirror:   m,
		auth:     usecase.NewAuthUseCase(creds, sessions, cfg.Session.TTL),
		groups:   groups,
		files:    usecase.NewFileUseCase(reg, storage.NewFileStore(), m),
		health:   usecase.NewHealthUseCase(infrarepo.NewHealthRepository(cfg.Storage.UploadRoot, reg, sessions), Version),
	}, nil
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig) (repository.SessionStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return session.NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		return session.NewRedisStore(ctx, session.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisPrefix,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}

// purgeSessions periodically drops expired rows from stores that keep them
func (c *container) purgeSessions(ctx context.Context, every time.Duration) {
	purger, ok := c.sessions.(interface {
		PurgeExpired(ctx context.Context) (int64, error)
	})
	if !ok {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purger.PurgeExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("failed to purge expired sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired sessions purged")
			}
		}
	}
}

func (c *container) Close() error {
	return c.sessions.Close()
}
