package db

import (
	"context"
	"os"
	"testing"
	"time"

	"moyen/internal/session"
)

func TestExpired(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		c    session.Context
		ttl  time.Duration
		want bool
	}{
		{name: "no ttl", c: session.Context{UpdatedAt: now.Add(-time.Hour)}, ttl: 0, want: false},
		{name: "fresh", c: session.Context{UpdatedAt: now}, ttl: time.Minute, want: false},
		{name: "stale", c: session.Context{UpdatedAt: now.Add(-2 * time.Minute)}, ttl: time.Minute, want: true},
	}
	for _, tc := range cases {
		if got := expired(tc.c, tc.ttl); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("MOYEN_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("MOYEN_TEST_DB_DSN not set")
	}
	ctx := context.Background()
	store, err := NewPostgres(ctx, dsn, time.Minute)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	id := "test-" + time.Now().Format("150405.000000")
	if err := store.Save(ctx, id, session.Context{LastIntent: "greeting"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.LastIntent != "greeting" {
		t.Fatalf("last intent got=%q want=greeting", got.LastIntent)
	}

	if err := store.Reset(ctx, id); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, err = store.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load after reset: %v", err)
	}
	if got.LastIntent != "" {
		t.Fatalf("expected empty context after reset, got %+v", got)
	}
}
