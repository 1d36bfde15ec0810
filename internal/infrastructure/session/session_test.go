package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// exerciseStore runs the behaviour every SessionStore must share
func exerciseStore(t *testing.T, store repository.SessionStore) {
	ctx := context.Background()
	now := time.Now()

	t.Run("round trip", func(t *testing.T) {
		s := &entities.Session{
			Token:     uuid.NewString(),
			Username:  "admin",
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, store.Save(ctx, s))

		got, err := store.Get(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", got.Username)
		assert.Equal(t, s.Token, got.Token)
		assert.WithinDuration(t, s.ExpiresAt, got.ExpiresAt, time.Second)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := &entities.Session{Token: uuid.NewString(), Username: "admin", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
		require.NoError(t, store.Save(ctx, s))
		require.NoError(t, store.Delete(ctx, s.Token))

		_, err := store.Get(ctx, s.Token)
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)

		// deleting twice is fine
		assert.NoError(t, store.Delete(ctx, s.Token))
	})

	t.Run("expired", func(t *testing.T) {
		s := &entities.Session{Token: uuid.NewString(), Username: "admin", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
		require.NoError(t, store.Save(ctx, s))

		_, err := store.Get(ctx, s.Token)
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	s := &entities.Session{Token: "tok", Username: "admin", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	require.NoError(t, store.Save(ctx, &entities.Session{Token: "old", Username: "a", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, &entities.Session{Token: "new", Username: "a", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping redis test - set REDIS_ADDR to run")
	}

	store, err := NewRedisStore(context.Background(), RedisOptions{
		Addr:      addr,
		KeyPrefix: "locker:test:" + uuid.NewString() + ":",
	})
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}
