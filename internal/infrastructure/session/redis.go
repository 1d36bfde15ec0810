package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// RedisStore keeps sessions as JSON values with a Redis TTL
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

var _ repository.SessionStore = (*RedisStore)(nil)

// RedisOptions configures a RedisStore
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "locker:session:"
	}
	return &RedisStore{client: client, keyPrefix: prefix, now: time.Now}, nil
}

func (s *RedisStore) key(token string) string {
	return s.keyPrefix + token
}

func (s *RedisStore) Save(ctx context.Context, session *entities.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	if err := s.client.Set(ctx, s.key(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, entities.ErrSessionNotFound
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
