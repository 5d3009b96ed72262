package dictionary

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a fetched dictionary is served before refetching.
const DefaultTTL = 5 * time.Minute

// Source lists every dictionary entry ordered by ascending priority.
type Source interface {
	ListEntries(ctx context.Context) ([]Entry, error)
}

// EntryCache holds the last fetched dictionary snapshot.
type EntryCache interface {
	Get() ([]Entry, bool)
	Set([]Entry)
	Invalidate()
}

// TTLCache is an EntryCache whose snapshot expires after a fixed duration.
type TTLCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   []Entry
	fetchedAt time.Time
	valid     bool
}

// NewTTLCache returns an empty cache. A non-positive ttl uses DefaultTTL.
func NewTTLCache(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{ttl: ttl, now: time.Now}
}

func (c *TTLCache) Get() ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid || c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return c.entries, true
}

func (c *TTLCache) Set(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.fetchedAt = c.now()
	c.valid = true
}

func (c *TTLCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.valid = false
}

// Store serves the dictionary read-through an EntryCache. Concurrent callers
// that find the cache expired may each refetch; the last write wins.
type Store struct {
	source Source
	cache  EntryCache
	logger *zap.Logger
}

// NewStore wires a store. A nil cache gets a TTLCache with DefaultTTL and a
// nil logger is replaced with a no-op one.
func NewStore(source Source, cache EntryCache, logger *zap.Logger) *Store {
	if cache == nil {
		cache = NewTTLCache(DefaultTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{source: source, cache: cache, logger: logger}
}

// Entries returns all entries sorted ascending by priority. A failing source
// is logged and yields an empty result that is not cached.
func (s *Store) Entries(ctx context.Context) []Entry {
	if entries, ok := s.cache.Get(); ok {
		return entries
	}

	entries, err := s.source.ListEntries(ctx)
	if err != nil {
		s.logger.Error("failed to load dictionary", zap.Error(err))
		return nil
	}
	SortByPriority(entries)
	s.cache.Set(entries)
	s.logger.Debug("dictionary loaded", zap.Int("entries", len(entries)))
	return entries
}

// Invalidate drops the cached snapshot so the next Entries call refetches.
func (s *Store) Invalidate() {
	s.cache.Invalidate()
}
