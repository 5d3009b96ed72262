// Package cache stores finished translations keyed by a hash of the source
// text and target language.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// TTL is how long a stored translation stays valid.
const TTL = 30 * 24 * time.Hour

// SourceLang is the language every cached source text is written in.
const SourceLang = "ja"

// Entry is one stored translation. Only HitCount and LastAccessedAt change
// after it is written.
type Entry struct {
	Key            string    `json:"key" firestore:"-"`
	SourceText     string    `json:"source_text" firestore:"source_text"`
	SourceLang     string    `json:"source_lang" firestore:"source_lang"`
	TargetLang     string    `json:"target_lang" firestore:"target_lang"`
	TranslatedText string    `json:"translated_text" firestore:"translated_text"`
	Method         string    `json:"method" firestore:"translation_method"`
	HitCount       int64     `json:"hit_count" firestore:"hit_count"`
	ExpiresAt      time.Time `json:"expires_at" firestore:"expires_at"`
	CreatedAt      time.Time `json:"created_at" firestore:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at" firestore:"last_accessed_at"`
}

// Backend persists cache entries.
type Backend interface {
	// Get returns the entry stored under key; found is false when none exists.
	Get(ctx context.Context, key string) (e Entry, found bool, err error)
	// Put creates or replaces the entry under key.
	Put(ctx context.Context, key string, e Entry) error
	// Touch increments the hit count and sets the last access time.
	Touch(ctx context.Context, key string, at time.Time) error
}

// Key derives the storage key for a source text and target language.
func Key(sourceText, targetLang string) string {
	sum := sha256.Sum256([]byte(sourceText + "_" + targetLang))
	return hex.EncodeToString(sum[:])
}

// Cache is a translation cache whose storage failures never reach callers.
type Cache struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

// New wraps backend. A nil logger is replaced with a no-op one.
func New(backend Backend, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{backend: backend, logger: logger, now: time.Now}
}

// Get returns the unexpired entry for text and targetLang and records the
// hit. Missing, expired and unreadable entries are all reported as a miss.
func (c *Cache) Get(ctx context.Context, text, targetLang string) (Entry, bool) {
	key := Key(text, targetLang)
	e, found, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	now := c.now()
	if !found || !e.ExpiresAt.After(now) {
		return Entry{}, false
	}

	if err := c.backend.Touch(ctx, key, now); err != nil {
		c.logger.Warn("cache touch failed", zap.String("key", key), zap.Error(err))
	} else {
		e.HitCount++
		e.LastAccessedAt = now
	}
	e.Key = key
	return e, true
}

// Put stores a translation for 30 days with a zero hit count. Write errors
// are logged and dropped.
func (c *Cache) Put(ctx context.Context, text, targetLang, translated, method string) {
	key := Key(text, targetLang)
	now := c.now()
	e := Entry{
		Key:            key,
		SourceText:     text,
		SourceLang:     SourceLang,
		TargetLang:     targetLang,
		TranslatedText: translated,
		Method:         method,
		ExpiresAt:      now.Add(TTL),
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	if err := c.backend.Put(ctx, key, e); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
