package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moyen/internal/session"
)

// PostgresStore keeps session context in Postgres so several server
// instances share it.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewPostgres(ctx context.Context, dsn string, ttl time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, ttl: ttl}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS session_context (
			session_id TEXT PRIMARY KEY,
			last_intent TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_context_updated ON session_context(updated_at);`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) (session.Context, error) {
	var out session.Context
	err := s.pool.QueryRow(ctx, `
		SELECT last_intent, updated_at
		FROM session_context
		WHERE session_id=$1
	`, sessionID).Scan(&out.LastIntent, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Context{}, nil
	}
	if err != nil {
		return session.Context{}, err
	}
	if expired(out, s.ttl) {
		return session.Context{}, nil
	}
	return out, nil
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, c session.Context) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO session_context(session_id, last_intent, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET last_intent=EXCLUDED.last_intent, updated_at=EXCLUDED.updated_at;
	`, sessionID, c.LastIntent, c.UpdatedAt.UTC())
	return err
}

func (s *PostgresStore) Reset(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM session_context WHERE session_id=$1`, sessionID)
	return err
}

// PurgeExpired deletes rows idle for longer than the TTL.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM session_context WHERE updated_at < $1`, time.Now().Add(-s.ttl).UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func expired(c session.Context, ttl time.Duration) bool {
	return ttl > 0 && time.Since(c.UpdatedAt) > ttl
}
