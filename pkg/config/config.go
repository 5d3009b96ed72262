// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Translation providers.
const (
	ProviderDeepL  = "deepl"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds every setting of the service.
type Config struct {
	Store               string
	DBPath              string
	FirebaseProjectID   string
	FirebaseCredentials string

	Provider      string
	DeepLAPIKey   string
	DeepLEndpoint string
	OpenAIAPIKey  string
	OpenAIModel   string

	HTTPAddr           string
	DictionaryTTL      time.Duration
	CacheSweepSchedule string
	DictionaryFile     string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing .env files are ignored; variables already set in the
// environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	ttl, err := time.ParseDuration(getEnv("DICTIONARY_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("DICTIONARY_TTL: %w", err)
	}
	return Config{
		Store:               strings.ToLower(getEnv("KONDATE_STORE", StoreSQLite)),
		DBPath:              getEnv("KONDATE_DB", "kondate.db"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		Provider:            strings.ToLower(getEnv("TRANSLATION_PROVIDER", ProviderDeepL)),
		DeepLAPIKey:         os.Getenv("DEEPL_API_KEY"),
		DeepLEndpoint:       os.Getenv("DEEPL_API_URL"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DictionaryTTL:       ttl,
		CacheSweepSchedule:  getEnv("CACHE_SWEEP_SCHEDULE", "@hourly"),
		DictionaryFile:      os.Getenv("DICTIONARY_FILE"),
	}, nil
}

// Validate checks that the selected store and provider are usable.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("KONDATE_DB must be set for the sqlite store"))
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" && c.FirebaseCredentials == "" && os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS must be set for the firestore store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}

	switch c.Provider {
	case ProviderDeepL:
		if c.DeepLAPIKey == "" {
			errs = append(errs, errors.New("DEEPL_API_KEY must be set for the deepl provider"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY must be set for the openai provider"))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}

	if c.DictionaryTTL <= 0 {
		errs = append(errs, fmt.Errorf("dictionary TTL must be positive, got %s", c.DictionaryTTL))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
