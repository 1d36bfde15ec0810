package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// Credentials is the single account allowed to log in. When PasswordHash is
// set it takes precedence over Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// AuthUseCase issues and checks login sessions
type AuthUseCase struct {
	creds    Credentials
	sessions repository.SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(creds Credentials, sessions repository.SessionStore, ttl time.Duration) *AuthUseCase {
	return &AuthUseCase{
		creds:    creds,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks the credential pair and opens a session
func (a *AuthUseCase) Login(ctx context.Context, username, password string) (*entities.Session, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if !a.matches(username, password) {
		log.Warn().Str("username", username).Msg("login rejected")
		return nil, entities.ErrInvalidCredentials
	}

	now := a.now()
	session := &entities.Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().Str("username", username).Msg("login")
	return session, nil
}

func (a *AuthUseCase) matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.creds.Username)) == 1

	var passOK bool
	if a.creds.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.creds.PasswordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(a.creds.Password)) == 1
	}

	return userOK && passOK
}

// Logout ends the session; unknown tokens are not an error
func (a *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Status returns the live session for token or ErrAuthRequired
func (a *AuthUseCase) Status(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, entities.ErrAuthRequired
	}

	session, err := a.sessions.Get(ctx, token)
	if errors.Is(err, entities.ErrSessionNotFound) {
		return nil, entities.ErrAuthRequired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(a.now()) {
		return nil, entities.ErrAuthRequired
	}
	return session, nil
}

// HashPassword returns a bcrypt hash suitable for auth.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
