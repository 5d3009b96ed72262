package cloudstore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/japaniel/kondate/pkg/cache"
)

// Cache stores translations in the translation_cache collection, one
// document per cache key.
type Cache struct {
	client *firestore.Client
}

// NewCache returns a cache.Backend backed by Firestore.
func NewCache(client *firestore.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) doc(key string) *firestore.DocumentRef {
	return c.client.Collection(CacheCollection).Doc(key)
}

// Get implements cache.Backend.
func (c *Cache) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	snap, err := c.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return cache.Entry{}, false, nil
	}
	if err != nil {
		return cache.Entry{}, false, err
	}
	var e cache.Entry
	if err := snap.DataTo(&e); err != nil {
		return cache.Entry{}, false, err
	}
	e.Key = key
	return e, true, nil
}

// Put implements cache.Backend.
func (c *Cache) Put(ctx context.Context, key string, e cache.Entry) error {
	_, err := c.doc(key).Set(ctx, e)
	return err
}

// Touch implements cache.Backend.
func (c *Cache) Touch(ctx context.Context, key string, at time.Time) error {
	_, err := c.doc(key).Update(ctx, touchUpdates(at))
	return err
}

func touchUpdates(at time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: "hit_count", Value: firestore.Increment(1)},
		{Path: "last_accessed_at", Value: at},
	}
}

// DeleteExpired removes entries whose expiry is at or before now.
func (c *Cache) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	docs, err := c.client.Collection(CacheCollection).
		Where("expires_at", "<=", now).
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := c.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var n int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n++
	}
	return n, firstErr
}
