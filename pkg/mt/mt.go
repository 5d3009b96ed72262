// Package mt calls external machine translation providers.
package mt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// SourceLang is the language of every text sent for translation.
const SourceLang = "ja"

// Provider translates text between two languages.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ErrNoProvider is reported when no provider is configured.
var ErrNoProvider = errors.New("no translation provider configured")

// ErrEmptyTranslation is reported when a provider answers with no text.
var ErrEmptyTranslation = errors.New("provider returned an empty translation")

// ProviderError describes a failed provider call: network, auth or quota.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	if e.Provider == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Result is the outcome of one provider call. Exactly one of Text and Err
// is meaningful.
type Result struct {
	Text string
	Err  *ProviderError
}

// OK reports whether the call produced a translation.
func (r Result) OK() bool { return r.Err == nil }

// Invoke translates text from Japanese into targetLang. Every failure,
// including a missing provider and an empty answer, is returned in the
// Result rather than as a separate error.
func Invoke(ctx context.Context, p Provider, text, targetLang string) Result {
	if p == nil {
		return Result{Err: &ProviderError{Err: ErrNoProvider}}
	}
	out, err := p.Translate(ctx, text, SourceLang, targetLang)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return Result{Err: pe}
		}
		return Result{Err: &ProviderError{Err: err}}
	}
	if strings.TrimSpace(out) == "" {
		return Result{Err: &ProviderError{Err: ErrEmptyTranslation}}
	}
	return Result{Text: out}
}
