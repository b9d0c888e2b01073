package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore is the single-process Store used when no Redis address is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore returns an empty store whose keys live for ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Reserve(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		if e.value == pending {
			return "", false, nil
		}
		return e.value, false, nil
	}

	s.entries[key] = entry{value: pending, expires: now.Add(s.ttl)}
	return "", true, nil
}

func (s *MemoryStore) Bind(_ context.Context, key, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e.expires = s.now().Add(s.ttl)
	}
	e.value = recordID
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
