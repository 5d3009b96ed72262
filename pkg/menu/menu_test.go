package menu

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/translate"
)

type memRepo struct {
	mu      sync.Mutex
	items   map[string][]Item
	listErr error
	commits int
	saved   map[string]map[string]string
}

func newMemRepo(items ...Item) *memRepo {
	r := &memRepo{items: map[string][]Item{}, saved: map[string]map[string]string{}}
	for _, it := range items {
		r.items[it.RestaurantID] = append(r.items[it.RestaurantID], it)
	}
	return r
}

func (r *memRepo) ListMenuItems(_ context.Context, restaurantID string) ([]Item, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.items[restaurantID], nil
}

func (r *memRepo) CommitTranslations(_ context.Context, updates []Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits++
	for _, u := range updates {
		if r.saved[u.ItemID] == nil {
			r.saved[u.ItemID] = map[string]string{}
		}
		for k, v := range u.Fields() {
			r.saved[u.ItemID][k] = v
		}
	}
	return nil
}

// glossary translates from a fixed table and fails for unknown text.
type glossary map[string]string

func (g glossary) Translate(_ context.Context, text, lang string, _ translate.Options) (translate.Response, error) {
	if out, ok := g[lang+":"+text]; ok {
		return translate.Response{TranslatedText: out, Method: translate.MethodHybrid}, nil
	}
	return translate.Response{TranslatedText: text, Method: translate.MethodFallbackOriginal, Error: "translation failed"}, nil
}

func TestTranslateMenu(t *testing.T) {
	repo := newMemRepo(
		Item{ID: "m1", RestaurantID: "r1", NameJA: "唐揚げ定食", DescriptionJA: "ジューシーな唐揚げ"},
		Item{ID: "m2", RestaurantID: "r1", NameJA: "生ビール"},
		Item{ID: "m3", RestaurantID: "r1"},
		Item{ID: "x1", RestaurantID: "r2", NameJA: "寿司"},
	)
	g := glossary{
		"en:唐揚げ定食":     "Karaage set meal",
		"en:ジューシーな唐揚げ": "Juicy karaage",
		"en:生ビール":      "Draft beer",
	}

	bt := NewBatchTranslator(repo, g, zap.NewNop())
	bt.BatchSize = 1
	summary, err := bt.TranslateMenu(context.Background(), "r1", "en")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Count)
	ids := []string{summary.Items[0].ItemID, summary.Items[1].ItemID}
	sort.Strings(ids)
	assert.Equal(t, []string{"m1", "m2"}, ids)

	assert.Equal(t, map[string]string{"name_en": "Karaage set meal", "description_en": "Juicy karaage"}, repo.saved["m1"])
	assert.Equal(t, map[string]string{"name_en": "Draft beer"}, repo.saved["m2"])
	assert.NotContains(t, repo.saved, "m3")
	assert.NotContains(t, repo.saved, "x1")
	assert.Equal(t, 2, repo.commits)
}

func TestTranslateMenuKeepsFallbackText(t *testing.T) {
	repo := newMemRepo(Item{ID: "m1", RestaurantID: "r1", NameJA: "お任せ"})

	summary, err := NewBatchTranslator(repo, glossary{}, nil).TranslateMenu(context.Background(), "r1", "zh")
	require.NoError(t, err)
	require.Equal(t, 1, summary.Count)
	assert.Equal(t, "お任せ", repo.saved["m1"]["name_zh"])
}

func TestTranslateMenuValidation(t *testing.T) {
	bt := NewBatchTranslator(newMemRepo(), glossary{}, nil)

	_, err := bt.TranslateMenu(context.Background(), "", "en")
	assert.ErrorIs(t, err, ErrMissingRestaurant)
	assert.ErrorIs(t, err, translate.ErrInvalidArgument)

	_, err = bt.TranslateMenu(context.Background(), "r1", "ko")
	assert.ErrorIs(t, err, translate.ErrInvalidArgument)
}

func TestTranslateMenuEmptyAndFailingRepo(t *testing.T) {
	summary, err := NewBatchTranslator(newMemRepo(), glossary{}, nil).TranslateMenu(context.Background(), "r9", "en")
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	assert.NotNil(t, summary.Items)

	repo := newMemRepo()
	repo.listErr = errors.New("firestore: permission denied")
	_, err = NewBatchTranslator(repo, glossary{}, nil).TranslateMenu(context.Background(), "r1", "en")
	assert.ErrorIs(t, err, repo.listErr)
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, string, translate.Options) (translate.Response, error) {
	return translate.Response{}, translate.ErrInvalidArgument
}

func TestTranslateMenuPropagatesItemErrors(t *testing.T) {
	repo := newMemRepo(Item{ID: "m1", RestaurantID: "r1", NameJA: "天丼"})
	_, err := NewBatchTranslator(repo, failingTranslator{}, nil).TranslateMenu(context.Background(), "r1", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item m1")
	assert.Empty(t, repo.saved)
}

func TestUpdateFields(t *testing.T) {
	u := Update{Lang: "zh", Name: "拉面"}
	assert.Equal(t, map[string]string{"name_zh": "拉面"}, u.Fields())
	assert.Equal(t, "description_en", DescriptionField("en"))
}
