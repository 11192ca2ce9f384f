// Package session holds the per-session context consulted by the router
// between turns.
package session

import (
	"context"
	"time"
)

// Context is the one-step dialogue memory of a session.
type Context struct {
	LastIntent string
	UpdatedAt  time.Time
}

// Store persists Context by session id. Load on an unknown or expired id
// returns a zero Context and no error. Save stamps a zero UpdatedAt with the
// store's own clock, the same clock expiry is measured against.
type Store interface {
	Load(ctx context.Context, sessionID string) (Context, error)
	Save(ctx context.Context, sessionID string, c Context) error
	Reset(ctx context.Context, sessionID string) error
}
