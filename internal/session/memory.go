package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps contexts in process memory. Entries idle for longer than
// the TTL read back as empty.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Context
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Context),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data[sessionID]
	if !ok || s.isExpired(c) {
		return Context{}, nil
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = s.now()
	}
	s.data[sessionID] = c
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.data {
		if s.isExpired(c) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) isExpired(c Context) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(c.UpdatedAt) > s.ttl
}
