package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/japaniel/kondate/pkg/cache"
	"github.com/japaniel/kondate/pkg/dictionary"
)

// StaticSource serves a fixed dictionary.
type StaticSource []dictionary.Entry

func (s StaticSource) ListEntries(context.Context) ([]dictionary.Entry, error) {
	out := make([]dictionary.Entry, len(s))
	copy(out, s)
	return out, nil
}

// MemoryCache is an in-memory cache.Backend.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cache.Entry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (cache.Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *MemoryCache) Put(_ context.Context, key string, e cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) Touch(_ context.Context, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		e.HitCount++
		e.LastAccessedAt = at
		m.entries[key] = e
	}
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
