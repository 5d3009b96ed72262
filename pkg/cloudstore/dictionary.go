package cloudstore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/japaniel/kondate/pkg/dictionary"
)

// Dictionary reads and writes the dictionary collection.
type Dictionary struct {
	client *firestore.Client
}

// NewDictionary returns a dictionary.Source backed by Firestore.
func NewDictionary(client *firestore.Client) *Dictionary {
	return &Dictionary{client: client}
}

// ListEntries returns all entries ordered by ascending priority.
func (d *Dictionary) ListEntries(ctx context.Context) ([]dictionary.Entry, error) {
	docs, err := d.client.Collection(DictionaryCollection).
		OrderBy("priority", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}

	out := make([]dictionary.Entry, 0, len(docs))
	for _, doc := range docs {
		var e dictionary.Entry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		e.ID = doc.Ref.ID
		out = append(out, e)
	}
	return out, nil
}

// ImportEntries writes entries keyed by their Japanese term, replacing
// documents for terms that already exist.
func (d *Dictionary) ImportEntries(ctx context.Context, entries []dictionary.Entry) (int, error) {
	bw := d.client.BulkWriter(ctx)
	col := d.client.Collection(DictionaryCollection)

	var jobs []*firestore.BulkWriterJob
	for _, e := range entries {
		term := strings.TrimSpace(e.TermJA)
		if term == "" {
			continue
		}
		e.TermJA = term
		job, err := bw.Set(col.Doc(docID(term)), e)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("queue %q: %w", term, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	n := 0
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
