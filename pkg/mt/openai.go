package mt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var languageNames = map[string]string{
	"ja": "Japanese",
	"en": "English",
	"zh": "Simplified Chinese",
}

// OpenAI translates with a chat completion model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI wraps an existing client. An empty model uses GPT-4o mini.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: client, model: model}
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

func (o *OpenAI) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	system := fmt.Sprintf(
		"You translate restaurant menus and orders from %s to %s. Reply with the translation only, keeping dish names natural for diners.",
		languageName(sourceLang), languageName(targetLang),
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		N:           1,
		Temperature: 0.2,
	})
	if err != nil {
		pe := &ProviderError{Provider: "openai", Err: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			pe.StatusCode = apiErr.HTTPStatusCode
		}
		return "", pe
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{Provider: "openai", Err: ErrEmptyTranslation}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
