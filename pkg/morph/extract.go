package morph

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// CandidateType classifies how a term candidate was derived.
type CandidateType string

const (
	CompoundNoun CandidateType = "compound_noun"
	KatakanaNoun CandidateType = "katakana_noun"
	ProperNoun   CandidateType = "proper_noun"
	GeneralNoun  CandidateType = "general_noun"
)

// Candidate is a term that may match a dictionary entry.
// Lower Priority values rank first.
type Candidate struct {
	Term     string        `json:"term"`
	Type     CandidateType `json:"type"`
	Priority int           `json:"priority"`
	Tokens   []string      `json:"tokens,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

// Compound is a run of two or more consecutive nouns.
// Start and End are inclusive token indices.
type Compound struct {
	Surface string
	Tokens  []Token
	Start   int
	End     int
}

var katakanaOnly = regexp.MustCompile(`^[ァ-ヶー]+$`)

const minGeneralNounLen = 3

// Nouns returns the noun tokens in order.
func Nouns(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.POS == Noun {
			out = append(out, t)
		}
	}
	return out
}

// Keywords returns noun, verb and adjective tokens in order.
func Keywords(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		switch t.POS {
		case Noun, Verb, Adjective:
			out = append(out, t)
		}
	}
	return out
}

// CompoundNouns returns every maximal run of at least two consecutive nouns.
// Whitespace in the source text ends a run.
func CompoundNouns(tokens []Token) []Compound {
	var out []Compound
	start := -1

	flush := func(end int) {
		if start >= 0 && end-start+1 >= 2 {
			run := tokens[start : end+1]
			var sb strings.Builder
			for _, t := range run {
				sb.WriteString(t.Surface)
			}
			out = append(out, Compound{
				Surface: sb.String(),
				Tokens:  run,
				Start:   start,
				End:     end,
			})
		}
		start = -1
	}

	for i, t := range tokens {
		if t.POS == Noun {
			if t.AfterSpace {
				flush(i - 1)
			}
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i - 1)
	}
	flush(len(tokens) - 1)
	return out
}

// ExtractCandidates ranks term candidates found in already tokenized text.
func ExtractCandidates(tokens []Token) []Candidate {
	var candidates []Candidate
	inCompound := make(map[int]bool)

	for _, c := range CompoundNouns(tokens) {
		surfaces := make([]string, len(c.Tokens))
		for i, t := range c.Tokens {
			surfaces[i] = t.Surface
			inCompound[c.Start+i] = true
		}
		candidates = append(candidates, Candidate{
			Term:     c.Surface,
			Type:     CompoundNoun,
			Priority: 1,
			Tokens:   surfaces,
		})
	}

	for i, n := range tokens {
		if n.POS != Noun || inCompound[i] {
			continue
		}
		switch {
		case katakanaOnly.MatchString(n.Surface):
			candidates = append(candidates, Candidate{Term: n.Surface, Type: KatakanaNoun, Priority: 2, Detail: n.PosDetail})
		case n.PosDetail == ipaProperNoun:
			candidates = append(candidates, Candidate{Term: n.Surface, Type: ProperNoun, Priority: 3, Detail: n.PosDetail})
		case utf8.RuneCountInString(n.Surface) >= minGeneralNounLen:
			candidates = append(candidates, Candidate{Term: n.Surface, Type: GeneralNoun, Priority: 4, Detail: n.PosDetail})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})
	return candidates
}

// SpecializedTermCandidates tokenizes text and returns its ranked term candidates.
func (t *Tokenizer) SpecializedTermCandidates(text string) []Candidate {
	return ExtractCandidates(t.Tokenize(text))
}
