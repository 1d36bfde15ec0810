// Package session holds SessionStore implementations: in-process memory,
// SQLite (modernc.org/sqlite) and Redis.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// MemoryStore keeps sessions in a map; expired entries are dropped on access
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entities.Session
	now      func() time.Time
}

var _ repository.SessionStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entities.Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, entities.ErrSessionNotFound
	}

	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, entities.ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
