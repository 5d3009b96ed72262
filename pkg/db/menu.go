package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/japaniel/kondate/pkg/menu"
)

// translationColumns are the menu_items columns that CommitTranslations may
// write.
var translationColumns = map[string]bool{
	"name_en":        true,
	"name_zh":        true,
	"description_en": true,
	"description_zh": true,
}

// MenuStore is a menu.Repository backed by SQLite.
type MenuStore struct {
	db *sql.DB
}

// NewMenuStore returns a MenuStore using db.
func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

// UpsertMenuItem creates or updates the Japanese source fields of an item.
// Existing translations are kept.
func UpsertMenuItem(ctx context.Context, db DBExecutor, item menu.Item) error {
	if strings.TrimSpace(item.RestaurantID) == "" || strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("restaurant id and item id must be non-empty")
	}
	_, err := db.ExecContext(ctx, `INSERT INTO menu_items (restaurant_id, id, name_ja, description_ja)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(restaurant_id, id) DO UPDATE SET
		  name_ja = excluded.name_ja,
		  description_ja = excluded.description_ja,
		  updated_at = CURRENT_TIMESTAMP`,
		item.RestaurantID, item.ID, item.NameJA, item.DescriptionJA)
	return err
}

// ListMenuItems returns the items of a restaurant ordered by id.
func (s *MenuStore) ListMenuItems(ctx context.Context, restaurantID string) ([]menu.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name_ja, description_ja, name_en, name_zh, description_en, description_zh
		FROM menu_items WHERE restaurant_id = ? ORDER BY id`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []menu.Item
	for rows.Next() {
		item := menu.Item{RestaurantID: restaurantID, Translations: map[string]string{}}
		var nameEN, nameZH, descEN, descZH string
		if err := rows.Scan(&item.ID, &item.NameJA, &item.DescriptionJA, &nameEN, &nameZH, &descEN, &descZH); err != nil {
			return nil, err
		}
		for col, v := range map[string]string{
			"name_en": nameEN, "name_zh": nameZH, "description_en": descEN, "description_zh": descZH,
		} {
			if v != "" {
				item.Translations[col] = v
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CommitTranslations writes all updates in one transaction.
func (s *MenuStore) CommitTranslations(ctx context.Context, updates []menu.Update) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range updates {
		fields := u.Fields()
		if len(fields) == 0 {
			continue
		}
		cols := make([]string, 0, len(fields))
		for col := range fields {
			if !translationColumns[col] {
				return fmt.Errorf("item %s: unsupported field %q", u.ItemID, col)
			}
			cols = append(cols, col)
		}
		sort.Strings(cols)

		sets := make([]string, 0, len(cols)+1)
		args := make([]any, 0, len(cols)+2)
		for _, col := range cols {
			sets = append(sets, col+" = ?")
			args = append(args, fields[col])
		}
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, u.RestaurantID, u.ItemID)

		res, err := tx.ExecContext(ctx,
			"UPDATE menu_items SET "+strings.Join(sets, ", ")+" WHERE restaurant_id = ? AND id = ?", args...)
		if err != nil {
			return fmt.Errorf("item %s: %w", u.ItemID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("item %s: %w", u.ItemID, sql.ErrNoRows)
		}
	}
	return tx.Commit()
}
