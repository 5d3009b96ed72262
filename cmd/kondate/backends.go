package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/cache"
	"github.com/japaniel/kondate/pkg/cloudstore"
	"github.com/japaniel/kondate/pkg/config"
	"github.com/japaniel/kondate/pkg/db"
	"github.com/japaniel/kondate/pkg/dictionary"
	"github.com/japaniel/kondate/pkg/menu"
	"github.com/japaniel/kondate/pkg/mt"
)

// backends bundles the storage chosen by configuration.
type backends struct {
	dict   dictionary.Source
	cache  cache.Backend
	menus  menu.Repository
	upsert func(ctx context.Context, entries []dictionary.Entry) (int, error)
	close  func() error
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	switch cfg.Store {
	case config.StoreFirestore:
		client, err := cloudstore.NewClient(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		logger.Info("using firestore", zap.String("project", cfg.FirebaseProjectID))
		dict := cloudstore.NewDictionary(client)
		return &backends{
			dict:   dict,
			cache:  cloudstore.NewCache(client),
			menus:  cloudstore.NewMenu(client),
			upsert: dict.ImportEntries,
			close:  client.Close,
		}, nil
	case config.StoreSQLite:
		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("database initialized", zap.String("path", cfg.DBPath))
		return &backends{
			dict:  db.NewDictionarySource(conn),
			cache: db.NewCacheBackend(conn),
			menus: db.NewMenuStore(conn),
			upsert: func(ctx context.Context, entries []dictionary.Entry) (int, error) {
				return db.UpsertDictionaryEntries(ctx, conn, entries)
			},
			close: conn.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// newProvider returns the configured MT provider, or nil for
// dictionary-only operation.
func newProvider(cfg config.Config) mt.Provider {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	switch cfg.Provider {
	case config.ProviderDeepL:
		return mt.NewDeepL(cfg.DeepLAPIKey, cfg.DeepLEndpoint, httpClient)
	case config.ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
		oc.HTTPClient = httpClient
		return mt.NewOpenAI(openai.NewClientWithConfig(oc), cfg.OpenAIModel)
	}
	return nil
}
