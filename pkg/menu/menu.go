// Package menu translates whole restaurant menus and extracts menu text from
// web pages.
package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/translate"
)

// Item is one dish on a restaurant menu. Translations maps a field name such
// as "name_en" or "description_zh" to its translated text.
type Item struct {
	ID            string            `json:"id"`
	RestaurantID  string            `json:"restaurant_id"`
	NameJA        string            `json:"name_ja"`
	DescriptionJA string            `json:"description_ja,omitempty"`
	Translations  map[string]string `json:"translations,omitempty"`
}

// Update holds the translated fields of one item. Empty fields are left
// unchanged in storage.
type Update struct {
	RestaurantID string `json:"restaurant_id"`
	ItemID       string `json:"id"`
	Lang         string `json:"lang"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Fields returns the update as field-name/value pairs, e.g. "name_en".
func (u Update) Fields() map[string]string {
	out := make(map[string]string, 2)
	if u.Name != "" {
		out[NameField(u.Lang)] = u.Name
	}
	if u.Description != "" {
		out[DescriptionField(u.Lang)] = u.Description
	}
	return out
}

// NameField is the storage field holding a name translated into lang.
func NameField(lang string) string { return "name_" + lang }

// DescriptionField is the storage field holding a description translated
// into lang.
func DescriptionField(lang string) string { return "description_" + lang }

// Repository reads menus and persists their translations.
type Repository interface {
	ListMenuItems(ctx context.Context, restaurantID string) ([]Item, error)
	// CommitTranslations writes all updates atomically.
	CommitTranslations(ctx context.Context, updates []Update) error
}

// Translator is the single-text translation primitive.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string, opts translate.Options) (translate.Response, error)
}

// ErrMissingRestaurant is returned when no restaurant id is given.
var ErrMissingRestaurant = fmt.Errorf("%w: restaurant id is required", translate.ErrInvalidArgument)

// Summary reports a finished batch translation.
type Summary struct {
	Count int      `json:"count"`
	Items []Update `json:"items"`
}

// BatchTranslator translates every item of a menu concurrently and stores
// the results through a BatchWriter.
type BatchTranslator struct {
	repo       Repository
	translator Translator
	logger     *zap.Logger

	Workers   int
	BatchSize int
}

// NewBatchTranslator returns a BatchTranslator with four workers and
// batches of twenty items.
func NewBatchTranslator(repo Repository, translator Translator, logger *zap.Logger) *BatchTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchTranslator{repo: repo, translator: translator, logger: logger, Workers: 4, BatchSize: 20}
}

// TranslateMenu translates the name and description of every item of a
// restaurant into targetLang and persists name_<lang>/description_<lang>.
// Items with nothing to translate are skipped.
func (b *BatchTranslator) TranslateMenu(ctx context.Context, restaurantID, targetLang string) (Summary, error) {
	if restaurantID == "" {
		return Summary{}, ErrMissingRestaurant
	}
	if !translate.SupportedLanguage(targetLang) {
		return Summary{}, fmt.Errorf("%w: unsupported target language %q", translate.ErrInvalidArgument, targetLang)
	}

	items, err := b.repo.ListMenuItems(ctx, restaurantID)
	if err != nil {
		return Summary{}, fmt.Errorf("list menu items: %w", err)
	}
	if len(items) == 0 {
		return Summary{Items: []Update{}}, nil
	}

	writer := NewBatchWriter(b.repo, b.BatchSize, 0)
	pool := NewWorkerPool(b.Workers, len(items))
	pool.Start(ctx)

	var (
		mu      sync.Mutex
		results = make([]*Update, len(items))
		jobErrs []error
	)

	for i, item := range items {
		i, item := i, item // per-iteration copies (go1.22 loopvar semantics)
		if item.RestaurantID == "" {
			item.RestaurantID = restaurantID
		}
		err := pool.Submit(ctx, func(ctx context.Context) error {
			u, ok, err := b.translateItem(ctx, item, targetLang)
			if err != nil {
				mu.Lock()
				jobErrs = append(jobErrs, fmt.Errorf("item %s: %w", item.ID, err))
				mu.Unlock()
				return err
			}
			if !ok {
				return nil
			}
			if err := writer.Submit(u); err != nil {
				return err
			}
			mu.Lock()
			results[i] = &u
			mu.Unlock()
			return nil
		})
		if err != nil {
			mu.Lock()
			jobErrs = append(jobErrs, err)
			mu.Unlock()
			break
		}
	}
	pool.Close()

	if err := writer.Close(); err != nil {
		return Summary{}, fmt.Errorf("save translations: %w", err)
	}
	if err := errors.Join(jobErrs...); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Items: make([]Update, 0, len(items))}
	for _, u := range results {
		if u != nil {
			summary.Items = append(summary.Items, *u)
		}
	}
	summary.Count = len(summary.Items)

	b.logger.Info("menu translated",
		zap.String("restaurant_id", restaurantID),
		zap.String("target_lang", targetLang),
		zap.Int("items", summary.Count),
	)
	return summary, nil
}

func (b *BatchTranslator) translateItem(ctx context.Context, item Item, lang string) (Update, bool, error) {
	u := Update{RestaurantID: item.RestaurantID, ItemID: item.ID, Lang: lang}
	if item.NameJA != "" {
		resp, err := b.translator.Translate(ctx, item.NameJA, lang, translate.DefaultOptions())
		if err != nil {
			return u, false, err
		}
		u.Name = resp.TranslatedText
	}
	if item.DescriptionJA != "" {
		resp, err := b.translator.Translate(ctx, item.DescriptionJA, lang, translate.DefaultOptions())
		if err != nil {
			return u, false, err
		}
		u.Description = resp.TranslatedText
	}
	return u, u.Name != "" || u.Description != "", nil
}
