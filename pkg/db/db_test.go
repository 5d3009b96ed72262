package db

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func columns(t *testing.T, db *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("pragma: %v", err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	return cols
}

func TestInitDBCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	for table, want := range map[string][]string{
		"dictionary":        {"term_ja", "term_en", "term_zh", "priority", "reading"},
		"translation_cache": {"cache_key", "translated_text", "translation_method", "hit_count", "expires_at"},
		"menu_items":        {"restaurant_id", "name_ja", "name_en", "name_zh", "description_en", "description_zh"},
	} {
		cols := columns(t, db, table)
		for _, c := range want {
			if !cols[c] {
				t.Fatalf("expected column %s in %s, got %v", c, table, cols)
			}
		}
	}

	// Migrations are idempotent.
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}
