package repository

import (
	"context"

	"github.com/zots0127/locker/internal/domain/entities"
)

// SessionStore maps session tokens to logged-in identities
type SessionStore interface {
	Save(ctx context.Context, session *entities.Session) error

	// Get returns entities.ErrSessionNotFound for unknown or expired tokens
	Get(ctx context.Context, token string) (*entities.Session, error)

	Delete(ctx context.Context, token string) error

	Ping(ctx context.Context) error

	Close() error
}
