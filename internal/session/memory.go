package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps state in-process. Suitable for a single instance;
// state does not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	state   State
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return State{}, false, nil
	}
	if time.Now().After(entry.expires) {
		delete(s.entries, key)
		return State{}, false, nil
	}
	return entry.state, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, state State, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.entries[key] = memoryEntry{state: state, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// sweepLocked drops expired entries so abandoned conversations do not
// accumulate. Called with the lock held.
func (s *MemoryStore) sweepLocked() {
	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, key)
		}
	}
}
