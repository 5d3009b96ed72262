package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/kondate/pkg/cache"
)

func TestCacheBackendRoundTrip(t *testing.T) {
	b := NewCacheBackend(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	_, found, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	key := cache.Key("唐揚げ定食", "en")
	require.NoError(t, b.Put(ctx, key, cache.Entry{
		SourceText:     "唐揚げ定食",
		SourceLang:     "ja",
		TargetLang:     "en",
		TranslatedText: "Karaage set meal",
		Method:         "hybrid",
		ExpiresAt:      now.Add(cache.TTL),
		CreatedAt:      now,
		LastAccessedAt: now,
	}))
	require.NoError(t, b.Touch(ctx, key, now.Add(time.Minute)))
	require.NoError(t, b.Touch(ctx, key, now.Add(2*time.Minute)))

	e, found, err := b.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, key, e.Key)
	assert.Equal(t, "Karaage set meal", e.TranslatedText)
	assert.Equal(t, "hybrid", e.Method)
	assert.Equal(t, int64(2), e.HitCount)
	assert.True(t, e.LastAccessedAt.Equal(now.Add(2*time.Minute)))
	assert.True(t, e.ExpiresAt.Equal(now.Add(cache.TTL)))
}

func TestCacheBackendWithCache(t *testing.T) {
	c := cache.New(NewCacheBackend(setupTestDB(t)), nil)
	ctx := context.Background()

	c.Put(ctx, "生ビール", "en", "Draft beer", "deepl_only")
	for want := int64(1); want <= 2; want++ {
		e, ok := c.Get(ctx, "生ビール", "en")
		require.True(t, ok)
		assert.Equal(t, "Draft beer", e.TranslatedText)
		assert.Equal(t, want, e.HitCount)
	}
	_, ok := c.Get(ctx, "生ビール", "zh")
	assert.False(t, ok)
}

func TestDeleteExpired(t *testing.T) {
	b := NewCacheBackend(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	for key, expires := range map[string]time.Time{
		"old":    now.Add(-time.Hour),
		"edge":   now,
		"future": now.Add(time.Hour),
	} {
		require.NoError(t, b.Put(ctx, key, cache.Entry{
			SourceText: key, TargetLang: "en", TranslatedText: key, Method: "hybrid",
			ExpiresAt: expires, CreatedAt: now, LastAccessedAt: now,
		}))
	}

	n, err := b.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, found, err := b.Get(ctx, "future")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDeleteExpiredError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec("DELETE FROM translation_cache").
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(assert.AnError)

	_, err = NewCacheBackend(conn).DeleteExpired(context.Background(), time.Now())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
