package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// SQLiteStore persists sessions in a SQLite database so logins survive restarts
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.SessionStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session tables: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, session *entities.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (token, username, created_at, expires_at) VALUES (?, ?, ?, ?)",
		session.Token, session.Username, session.CreatedAt.UnixNano(), session.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	var (
		username           string
		createdAt, expires int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT username, created_at, expires_at FROM sessions WHERE token = ?", token,
	).Scan(&username, &createdAt, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	session := &entities.Session{
		Token:     token,
		Username:  username,
		CreatedAt: time.Unix(0, createdAt),
		ExpiresAt: time.Unix(0, expires),
	}
	if session.Expired(s.now()) {
		if err := s.Delete(ctx, token); err != nil {
			return nil, err
		}
		return nil, entities.ErrSessionNotFound
	}
	return session, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session and returns how many were dropped
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", s.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
