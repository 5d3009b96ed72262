package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/japaniel/kondate/pkg/cache"
)

// CacheBackend stores translations in the translation_cache table.
type CacheBackend struct {
	db DBExecutor
}

// NewCacheBackend returns a cache.Backend backed by db.
func NewCacheBackend(db DBExecutor) *CacheBackend {
	return &CacheBackend{db: db}
}

// Get implements cache.Backend.
func (b *CacheBackend) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	e := cache.Entry{Key: key}
	err := b.db.QueryRowContext(ctx, `SELECT source_text, source_lang, target_lang, translated_text, translation_method,
		hit_count, expires_at, created_at, last_accessed_at
		FROM translation_cache WHERE cache_key = ?`, key).
		Scan(&e.SourceText, &e.SourceLang, &e.TargetLang, &e.TranslatedText, &e.Method,
			&e.HitCount, &e.ExpiresAt, &e.CreatedAt, &e.LastAccessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, err
	}
	return e, true, nil
}

// Put implements cache.Backend.
func (b *CacheBackend) Put(ctx context.Context, key string, e cache.Entry) error {
	_, err := b.db.ExecContext(ctx, `INSERT INTO translation_cache
		(cache_key, source_text, source_lang, target_lang, translated_text, translation_method, hit_count, expires_at, created_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
		  source_text = excluded.source_text,
		  source_lang = excluded.source_lang,
		  target_lang = excluded.target_lang,
		  translated_text = excluded.translated_text,
		  translation_method = excluded.translation_method,
		  hit_count = excluded.hit_count,
		  expires_at = excluded.expires_at,
		  created_at = excluded.created_at,
		  last_accessed_at = excluded.last_accessed_at`,
		key, e.SourceText, e.SourceLang, e.TargetLang, e.TranslatedText, e.Method, e.HitCount,
		e.ExpiresAt.UTC(), e.CreatedAt.UTC(), e.LastAccessedAt.UTC())
	return err
}

// Touch implements cache.Backend.
func (b *CacheBackend) Touch(ctx context.Context, key string, at time.Time) error {
	_, err := b.db.ExecContext(ctx,
		`UPDATE translation_cache SET hit_count = hit_count + 1, last_accessed_at = ? WHERE cache_key = ?`,
		at.UTC(), key)
	return err
}

// DeleteExpired removes entries whose expiry is at or before now and
// returns how many were removed.
func (b *CacheBackend) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM translation_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
