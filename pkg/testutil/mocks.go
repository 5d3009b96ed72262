package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/japaniel/kondate/pkg/cache"
	"github.com/japaniel/kondate/pkg/dictionary"
)

// MockDictionarySource is a mock for dictionary.Source
type MockDictionarySource struct {
	mock.Mock
}

func (m *MockDictionarySource) ListEntries(ctx context.Context) ([]dictionary.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dictionary.Entry), args.Error(1)
}

// MockCacheBackend is a mock for cache.Backend
type MockCacheBackend struct {
	mock.Mock
}

func (m *MockCacheBackend) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.Entry), args.Bool(1), args.Error(2)
}

func (m *MockCacheBackend) Put(ctx context.Context, key string, e cache.Entry) error {
	args := m.Called(ctx, key, e)
	return args.Error(0)
}

func (m *MockCacheBackend) Touch(ctx context.Context, key string, at time.Time) error {
	args := m.Called(ctx, key, at)
	return args.Error(0)
}

// MockProvider is a mock for mt.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	args := m.Called(ctx, text, sourceLang, targetLang)
	return args.String(0), args.Error(1)
}
