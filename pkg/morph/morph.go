// Package morph wraps the kagome morphological analyzer and derives
// dictionary term candidates from its output.
package morph

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"go.uber.org/zap"
)

// POS is the coarse part-of-speech category of a token.
type POS string

const (
	Noun      POS = "noun"
	Verb      POS = "verb"
	Adjective POS = "adjective"
	Particle  POS = "particle"
	Other     POS = "other"
)

// IPA part-of-speech labels.
const (
	ipaNoun       = "名詞"
	ipaVerb       = "動詞"
	ipaAdjective  = "形容詞"
	ipaParticle   = "助詞"
	ipaProperNoun = "固有名詞"
)

// Token represents a single analyzed unit of text.
type Token struct {
	Surface       string   // The text as it appears (e.g. "揚げ")
	BaseForm      string   // The dictionary form (e.g. "揚げる")
	Reading       string   // Katakana reading, empty when unknown
	PartsOfSpeech []string // Raw kagome IPA features
	// PrimaryPOS is the first IPA label (e.g. "名詞").
	PrimaryPOS string
	// PosDetail is the IPA sub-category (e.g. "固有名詞"), "*" when unset.
	PosDetail string
	POS       POS
	// AfterSpace marks a token that followed whitespace in the input.
	AfterSpace bool
}

// Tokenizer splits Japanese text into part-of-speech tagged tokens.
// It is safe for concurrent use.
type Tokenizer struct {
	analyze func(string) []tokenizer.Token
	logger  *zap.Logger
}

// NewTokenizer creates a tokenizer backed by kagome and the IPA dictionary.
func NewTokenizer(logger *zap.Logger) (*Tokenizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init kagome tokenizer: %w", err)
	}
	return &Tokenizer{analyze: t.Tokenize, logger: logger}, nil
}

// Tokenize breaks text into tokens with readings and base forms.
// Analyzer failures are logged and produce no tokens.
func (t *Tokenizer) Tokenize(text string) (result []Token) {
	if text == "" {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tokenization failed",
				zap.Any("panic", r),
				zap.Int("text_len", len(text)),
			)
			result = nil
		}
	}()

	gap := false
	for _, token := range t.analyze(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			gap = len(result) > 0
			continue
		}
		tok := newToken(token.Surface, token.Features())
		tok.AfterSpace = gap
		gap = false
		result = append(result, tok)
	}
	return result
}

// newToken builds a Token from kagome IPA features:
// 0 POS, 1-3 sub-POS, 4 conjugation type, 5 conjugation form,
// 6 base form, 7 reading, 8 pronunciation.
func newToken(surface string, features []string) Token {
	base := surface
	if len(features) > 6 && features[6] != "*" {
		base = features[6]
	}

	reading := ""
	if len(features) > 7 && features[7] != "*" {
		reading = features[7]
	}

	primary := ""
	if len(features) > 0 {
		primary = features[0]
	}
	detail := "*"
	if len(features) > 1 {
		detail = features[1]
	}

	return Token{
		Surface:       surface,
		BaseForm:      base,
		Reading:       reading,
		PartsOfSpeech: features,
		PrimaryPOS:    primary,
		PosDetail:     detail,
		POS:           classify(primary),
	}
}

func classify(primary string) POS {
	switch primary {
	case ipaNoun:
		return Noun
	case ipaVerb:
		return Verb
	case ipaAdjective:
		return Adjective
	case ipaParticle:
		return Particle
	default:
		return Other
	}
}

// Stats summarizes the token make-up of a text.
type Stats struct {
	TotalTokens int `json:"total_tokens"`
	Nouns       int `json:"nouns"`
	Verbs       int `json:"verbs"`
	Adjectives  int `json:"adjectives"`
	Particles   int `json:"particles"`
	UniqueWords int `json:"unique_word_count"`
}

// TextStats counts tokens per category and distinct lemma-or-surface forms.
func (t *Tokenizer) TextStats(text string) Stats {
	tokens := t.Tokenize(text)
	stats := Stats{TotalTokens: len(tokens)}
	unique := make(map[string]struct{})

	for _, tok := range tokens {
		switch tok.POS {
		case Noun:
			stats.Nouns++
		case Verb:
			stats.Verbs++
		case Adjective:
			stats.Adjectives++
		case Particle:
			stats.Particles++
		}
		unique[lemmaOrSurface(tok)] = struct{}{}
	}
	stats.UniqueWords = len(unique)
	return stats
}

// Lemmatize rebuilds text from the dictionary form of each token.
// The result is lossy and is not a script canonicalization.
func (t *Tokenizer) Lemmatize(text string) string {
	var sb strings.Builder
	for _, tok := range t.Tokenize(text) {
		sb.WriteString(lemmaOrSurface(tok))
	}
	return sb.String()
}

func lemmaOrSurface(tok Token) string {
	if tok.BaseForm != "" && tok.BaseForm != "*" {
		return tok.BaseForm
	}
	return tok.Surface
}
