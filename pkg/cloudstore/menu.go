package cloudstore

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"

	"github.com/japaniel/kondate/pkg/menu"
)

// Menu reads menu items from restaurants/{id}/menu_items and writes their
// translations.
type Menu struct {
	client *firestore.Client
}

// NewMenu returns a menu.Repository backed by Firestore.
func NewMenu(client *firestore.Client) *Menu {
	return &Menu{client: client}
}

func (m *Menu) items(restaurantID string) *firestore.CollectionRef {
	return m.client.Collection(RestaurantsCollection).Doc(restaurantID).Collection(MenuItemsCollection)
}

// ListMenuItems returns every item of a restaurant.
func (m *Menu) ListMenuItems(ctx context.Context, restaurantID string) ([]menu.Item, error) {
	docs, err := m.items(restaurantID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	out := make([]menu.Item, 0, len(docs))
	for _, doc := range docs {
		out = append(out, itemFromData(restaurantID, doc.Ref.ID, doc.Data()))
	}
	return out, nil
}

// CommitTranslations writes all updates in one transaction.
func (m *Menu) CommitTranslations(ctx context.Context, updates []menu.Update) error {
	return m.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, u := range updates {
			fields := menuUpdates(u)
			if len(fields) == 0 {
				continue
			}
			if err := tx.Update(m.items(u.RestaurantID).Doc(u.ItemID), fields); err != nil {
				return fmt.Errorf("item %s: %w", u.ItemID, err)
			}
		}
		return nil
	})
}

// menuUpdates turns an update into Firestore field updates in a stable order.
func menuUpdates(u menu.Update) []firestore.Update {
	fields := u.Fields()
	if len(fields) == 0 {
		return nil
	}
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]firestore.Update, 0, len(paths)+1)
	for _, p := range paths {
		out = append(out, firestore.Update{Path: p, Value: fields[p]})
	}
	return append(out, firestore.Update{Path: "updated_at", Value: firestore.ServerTimestamp})
}

func itemFromData(restaurantID, id string, data map[string]interface{}) menu.Item {
	str := func(k string) string {
		s, _ := data[k].(string)
		return s
	}
	item := menu.Item{
		ID:            id,
		RestaurantID:  restaurantID,
		NameJA:        str("name_ja"),
		DescriptionJA: str("description_ja"),
		Translations:  map[string]string{},
	}
	for _, lang := range []string{"en", "zh"} {
		for _, field := range []string{menu.NameField(lang), menu.DescriptionField(lang)} {
			if v := str(field); v != "" {
				item.Translations[field] = v
			}
		}
	}
	return item
}
