package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	got, err := s.Load(ctx, "a")
	if err != nil || got.LastIntent != "" {
		t.Fatalf("Load unknown = (%+v, %v), want zero context", got, err)
	}

	if err := s.Save(ctx, "a", Context{LastIntent: "greeting"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = s.Load(ctx, "a")
	if got.LastIntent != "greeting" || got.UpdatedAt.IsZero() {
		t.Fatalf("Load = %+v, want greeting with timestamp", got)
	}

	other, _ := s.Load(ctx, "b")
	if other.LastIntent != "" {
		t.Fatalf("session b sees %q from session a", other.LastIntent)
	}

	if err := s.Reset(ctx, "a"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, _ = s.Load(ctx, "a")
	if got.LastIntent != "" {
		t.Fatalf("after Reset LastIntent=%q, want empty", got.LastIntent)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	_ = s.Save(ctx, "a", Context{LastIntent: "greeting"})
	now = now.Add(2 * time.Minute)

	got, _ := s.Load(ctx, "a")
	if got.LastIntent != "" {
		t.Fatalf("expired context still visible: %+v", got)
	}
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }
	_ = s.Save(context.Background(), "a", Context{LastIntent: "greeting"})
	now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		s.mu.RLock()
		n := len(s.data)
		s.mu.RUnlock()
		if n == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("sweeper never removed the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
