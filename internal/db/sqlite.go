package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"moyen/internal/session"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_context (
	session_id  TEXT PRIMARY KEY,
	last_intent TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL
);
`

// SQLiteStore keeps session context in a local SQLite file for single-node
// deployments that must survive restarts.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// single writer keeps modernc from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (session.Context, error) {
	var (
		out     session.Context
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT last_intent, updated_at FROM session_context WHERE session_id = ?`, sessionID,
	).Scan(&out.LastIntent, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Context{}, nil
	}
	if err != nil {
		return session.Context{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	out.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return session.Context{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if expired(out, s.ttl) {
		return session.Context{}, nil
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sessionID string, c session.Context) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_context (session_id, last_intent, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_intent = excluded.last_intent, updated_at = excluded.updated_at`,
		sessionID, c.LastIntent, c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_context WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("reset session %s: %w", sessionID, err)
	}
	return nil
}
