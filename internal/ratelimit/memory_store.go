package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	window    Window
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Entries expire once their TTL
// elapses according to the store's clock. Only single Get and Set calls
// are serialised.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     Clock
}

func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     clock,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, nil
	}

	w := entry.window
	return &w, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, window Window, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		window:    window,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Len reports the number of stored entries, expired ones included until
// they are next read.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
