package mt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAI(openai.NewClientWithConfig(cfg), "")
}

func TestOpenAITranslate(t *testing.T) {
	var req openai.ChatCompletionRequest
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": " Karaage set meal \n"}, "finish_reason": "stop"}]
		}`))
	})

	out, err := o.Translate(context.Background(), "唐揚げ定食", "ja", "en")
	require.NoError(t, err)
	assert.Equal(t, "Karaage set meal", out)

	assert.Equal(t, openai.GPT4oMini, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "from Japanese to English")
	assert.Equal(t, "唐揚げ定食", req.Messages[1].Content)
}

func TestOpenAIAPIError(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	})

	_, err := o.Translate(context.Background(), "寿司", "ja", "zh")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "openai", pe.Provider)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "choices": []}`))
	})

	_, err := o.Translate(context.Background(), "寿司", "ja", "en")
	assert.ErrorIs(t, err, ErrEmptyTranslation)
}
