// Package translate combines dictionary lookup, the translation cache and a
// machine translation provider into a single translate call.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/japaniel/kondate/pkg/cache"
	"github.com/japaniel/kondate/pkg/dictionary"
	"github.com/japaniel/kondate/pkg/mt"
)

// Methods reported on a Response.
const (
	MethodPassthrough      = "passthrough"
	MethodHybrid           = "hybrid"
	MethodMTOnly           = "deepl_only"
	MethodDictionaryOnly   = "dictionary_only"
	MethodFallbackOriginal = "fallback_original"

	cachedSuffix = "_cached"
)

// ErrTranslationFailed is the soft error reported when neither the provider
// nor the dictionary produced a translation.
var ErrTranslationFailed = errors.New("translation failed")

// ErrInvalidArgument is returned for an empty text or an unsupported target
// language.
var ErrInvalidArgument = errors.New("invalid argument")

// rawPrefix keeps translations made without dictionary assist apart from
// hybrid ones in the cache.
const rawPrefix = "raw:"

// shortTextLimit is the longest text, in characters, returned untranslated.
const shortTextLimit = 2

// SupportedLanguage reports whether lang is a valid target language.
func SupportedLanguage(lang string) bool {
	return lang == "en" || lang == "zh"
}

// Options control a single Translate call.
type Options struct {
	// UseDictionary enables term finding, post-processing and the
	// dictionary-assisted cache namespace.
	UseDictionary bool
}

// DefaultOptions enables dictionary assist.
func DefaultOptions() Options {
	return Options{UseDictionary: true}
}

// Response is the result of Translate.
type Response struct {
	TranslatedText  string `json:"translatedText"`
	FromCache       bool   `json:"fromCache"`
	Method          string `json:"method"`
	FoundTermsCount int    `json:"foundTermsCount,omitempty"`
	Error           string `json:"error,omitempty"`
}

// TermFinder locates dictionary terms in a text.
type TermFinder interface {
	FindTerms(ctx context.Context, text string) []dictionary.FoundTerm
}

// TranslationCache stores finished translations.
type TranslationCache interface {
	Get(ctx context.Context, text, targetLang string) (cache.Entry, bool)
	Put(ctx context.Context, text, targetLang, translated, method string)
}

// Translator runs the translate pipeline. It is safe for concurrent use.
type Translator struct {
	finder   TermFinder
	cache    TranslationCache
	provider mt.Provider
	logger   *zap.Logger
}

// New wires a Translator. provider may be nil, in which case every call
// falls back to the dictionary.
func New(finder TermFinder, c TranslationCache, provider mt.Provider, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{finder: finder, cache: c, provider: provider, logger: logger}
}

// Translate translates Japanese text into targetLang. Only invalid arguments
// produce an error; provider and storage failures degrade the Response.
func (t *Translator) Translate(ctx context.Context, text, targetLang string, opts Options) (Response, error) {
	if text == "" {
		return Response{}, fmt.Errorf("%w: text is required", ErrInvalidArgument)
	}
	if !SupportedLanguage(targetLang) {
		return Response{}, fmt.Errorf("%w: unsupported target language %q", ErrInvalidArgument, targetLang)
	}

	if isTrivial(text) {
		return Response{TranslatedText: text, Method: MethodPassthrough}, nil
	}

	cacheText := text
	if !opts.UseDictionary {
		cacheText = rawPrefix + text
	}

	if e, ok := t.cache.Get(ctx, cacheText, targetLang); ok {
		return Response{TranslatedText: e.TranslatedText, FromCache: true, Method: e.Method + cachedSuffix}, nil
	}

	var terms []dictionary.FoundTerm
	if opts.UseDictionary {
		terms = t.finder.FindTerms(ctx, text)
	}

	res := mt.Invoke(ctx, t.provider, text, targetLang)
	if res.OK() {
		if !opts.UseDictionary {
			t.store(ctx, cacheText, targetLang, res.Text, MethodMTOnly)
			return Response{TranslatedText: res.Text, Method: MethodMTOnly}, nil
		}
		out := PostProcess(res.Text, terms, targetLang)
		t.store(ctx, cacheText, targetLang, out, MethodHybrid)
		return Response{TranslatedText: out, Method: MethodHybrid, FoundTermsCount: len(terms)}, nil
	}

	t.logger.Warn("machine translation failed, falling back to dictionary",
		zap.String("target_lang", targetLang),
		zap.Error(res.Err),
	)

	if !opts.UseDictionary {
		terms = t.finder.FindTerms(ctx, text)
	}
	if out, ok := substitute(text, terms, targetLang); ok {
		t.store(ctx, cacheText, targetLang, out, MethodDictionaryOnly)
		return Response{TranslatedText: out, Method: MethodDictionaryOnly, FoundTermsCount: len(terms)}, nil
	}

	return Response{
		TranslatedText: text,
		Method:         MethodFallbackOriginal,
		Error:          ErrTranslationFailed.Error(),
	}, nil
}

// store writes to the cache even if the caller has already gone away.
func (t *Translator) store(ctx context.Context, text, targetLang, translated, method string) {
	t.cache.Put(context.WithoutCancel(ctx), text, targetLang, translated, method)
}

// isTrivial reports texts that are returned as is: at most two characters,
// or nothing but digits and whitespace.
func isTrivial(text string) bool {
	if utf8.RuneCountInString(text) <= shortTextLimit {
		return true
	}
	for _, r := range text {
		if !unicode.IsSpace(r) && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// substitute replaces each found Japanese term with its translation. It
// reports whether any replacement happened.
func substitute(text string, terms []dictionary.FoundTerm, targetLang string) (string, bool) {
	applied := false
	for _, ft := range terms {
		translation := ft.Entry.Translation(targetLang)
		if translation == "" || ft.Entry.TermJA == "" || !strings.Contains(text, ft.Entry.TermJA) {
			continue
		}
		text = strings.ReplaceAll(text, ft.Entry.TermJA, translation)
		applied = true
	}
	return text, applied
}
