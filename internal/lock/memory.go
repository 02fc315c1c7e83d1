package lock

import (
	"context"
	"sync"
	"time"
)

// memoryStore implements Store with an in-process map. It backs single-node
// deployments and the test suite; the mutex gives SetIfAbsent the same
// atomicity the SQL upsert has.
type memoryStore struct {
	mu   sync.Mutex
	keys map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory lock store.
func NewMemoryStore() Store {
	return &memoryStore{
		keys: make(map[string]memoryEntry),
	}
}

// SetIfAbsent claims the key unless a live (unexpired) holder exists.
func (s *memoryStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, ok := s.keys[key]; ok && entry.expiresAt.After(now) {
		return false, nil
	}

	s.keys[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}

// Delete removes the key. Absent keys delete as a no-op.
func (s *memoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	return nil
}
