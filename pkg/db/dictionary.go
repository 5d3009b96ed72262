package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/japaniel/kondate/pkg/dictionary"
)

const defaultPriority = 5

// DictionarySource reads dictionary entries from SQLite.
type DictionarySource struct {
	db DBExecutor
}

// NewDictionarySource returns a dictionary.Source backed by db.
func NewDictionarySource(db DBExecutor) *DictionarySource {
	return &DictionarySource{db: db}
}

// ListEntries returns every entry ordered by ascending priority.
func (s *DictionarySource) ListEntries(ctx context.Context) ([]dictionary.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, term_ja, reading, term_en, term_zh, category, subcategory, priority, type, notes
		FROM dictionary ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}
	defer rows.Close()

	var out []dictionary.Entry
	for rows.Next() {
		var e dictionary.Entry
		var id int64
		if err := rows.Scan(&id, &e.TermJA, &e.Reading, &e.TermEN, &e.TermZH,
			&e.Category, &e.Subcategory, &e.Priority, &e.Type, &e.Notes); err != nil {
			return nil, err
		}
		e.ID = strconv.FormatInt(id, 10)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertDictionaryEntries inserts entries, replacing existing rows with the
// same Japanese term. A zero priority is stored as the default of 5. It
// returns the number of entries written.
func UpsertDictionaryEntries(ctx context.Context, db *sql.DB, entries []dictionary.Entry) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for _, e := range entries {
		term := strings.TrimSpace(e.TermJA)
		if term == "" {
			continue
		}
		priority := e.Priority
		if priority == 0 {
			priority = defaultPriority
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO dictionary (term_ja, reading, term_en, term_zh, category, subcategory, priority, type, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(term_ja) DO UPDATE SET
			  reading = excluded.reading,
			  term_en = excluded.term_en,
			  term_zh = excluded.term_zh,
			  category = excluded.category,
			  subcategory = excluded.subcategory,
			  priority = excluded.priority,
			  type = excluded.type,
			  notes = excluded.notes,
			  updated_at = CURRENT_TIMESTAMP`,
			term, e.Reading, e.TermEN, e.TermZH, e.Category, e.Subcategory, priority, e.Type, e.Notes)
		if err != nil {
			return 0, fmt.Errorf("upsert %q: %w", term, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
