package mt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	deepLFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	deepLProEndpoint  = "https://api.deepl.com/v2/translate"
)

// DeepL calls the DeepL v2 translate endpoint.
type DeepL struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewDeepL returns a DeepL provider. An empty endpoint picks the free or pro
// API from the key's ":fx" suffix; a nil client gets a 30 second timeout.
func NewDeepL(apiKey, endpoint string, client *http.Client) *DeepL {
	if endpoint == "" {
		endpoint = deepLProEndpoint
		if strings.HasSuffix(apiKey, ":fx") {
			endpoint = deepLFreeEndpoint
		}
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &DeepL{apiKey: apiKey, endpoint: endpoint, client: client}
}

type deepLRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
	Message string `json:"message"`
}

// deepLLang maps our language codes to DeepL's. English output is American.
func deepLLang(lang string, target bool) string {
	switch lang {
	case "en":
		if target {
			return "EN-US"
		}
		return "EN"
	case "zh":
		return "ZH"
	}
	return strings.ToUpper(lang)
}

func (d *DeepL) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if d.apiKey == "" {
		return "", &ProviderError{Provider: "deepl", Err: errors.New("api key not configured")}
	}

	body, err := json.Marshal(deepLRequest{
		Text:       []string{text},
		SourceLang: deepLLang(sourceLang, false),
		TargetLang: deepLLang(targetLang, true),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Provider: "deepl", Err: err}
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "deepl", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &ProviderError{Provider: "deepl", StatusCode: resp.StatusCode, Err: err}
	}

	var out deepLResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &out) == nil && out.Message != "" {
			msg = out.Message
		}
		return "", &ProviderError{Provider: "deepl", StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &ProviderError{Provider: "deepl", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Translations) == 0 {
		return "", &ProviderError{Provider: "deepl", StatusCode: resp.StatusCode, Err: ErrEmptyTranslation}
	}
	return out.Translations[0].Text, nil
}
