package dictionary

import (
	"context"
	"sort"
	"strings"

	"github.com/japaniel/kondate/pkg/morph"
	"github.com/japaniel/kondate/pkg/synonym"
)

// Match types recorded on a FoundTerm. Synonym hits are prefixed with
// SynonymPrefix followed by the synonym.MatchType.
const (
	MatchExact    = "exact"
	MatchPartial  = "partial"
	SynonymPrefix = "synonym_"
)

// FoundTerm is a dictionary entry recognized in a text.
type FoundTerm struct {
	Entry      Entry            `json:"entry"`
	MatchType  string           `json:"match_type"`
	Confidence float64          `json:"confidence,omitempty"`
	Candidate  *morph.Candidate `json:"candidate,omitempty"`
}

// CandidateExtractor yields ranked term candidates for a text.
type CandidateExtractor interface {
	SpecializedTermCandidates(text string) []morph.Candidate
}

// EntryLister returns the current dictionary ordered by priority.
type EntryLister interface {
	Entries(ctx context.Context) []Entry
}

// Finder locates dictionary terms in free text.
type Finder struct {
	entries    EntryLister
	extractor  CandidateExtractor
	synonymOpt synonym.FindOptions
}

// NewFinder returns a Finder using the store's entries and the extractor's
// candidates.
func NewFinder(entries EntryLister, extractor CandidateExtractor) *Finder {
	return &Finder{
		entries:   entries,
		extractor: extractor,
		synonymOpt: synonym.FindOptions{
			MaxResults:    5,
			MinConfidence: 0.75,
			Match:         synonym.DefaultOptions(),
		},
	}
}

// found is the accumulated result of the matching phases. Phases never
// mutate their input; they return an extended copy.
type found []FoundTerm

func (f found) has(termJA string) bool {
	for _, ft := range f {
		if ft.Entry.TermJA == termJA {
			return true
		}
	}
	return false
}

func (f found) with(ft FoundTerm) found {
	out := make(found, len(f), len(f)+1)
	copy(out, f)
	return append(out, ft)
}

// FindTerms runs the exact, partial and synonym phases in order. Each
// Japanese term is reported once, by the first phase that finds it, and the
// result is sorted ascending by entry priority.
func (fd *Finder) FindTerms(ctx context.Context, text string) []FoundTerm {
	entries := fd.entries.Entries(ctx)
	if len(entries) == 0 || text == "" {
		return nil
	}

	acc := exactPhase(nil, text, entries)
	candidates := fd.extractor.SpecializedTermCandidates(text)
	acc = partialPhase(acc, candidates, entries)
	acc = synonymPhase(acc, candidates, entries, fd.synonymOpt)

	result := []FoundTerm(acc)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Entry.Priority < result[j].Entry.Priority
	})
	return result
}

func exactPhase(acc found, text string, entries []Entry) found {
	for _, e := range entries {
		if e.TermJA == "" || acc.has(e.TermJA) {
			continue
		}
		if strings.Contains(text, e.TermJA) {
			acc = acc.with(FoundTerm{Entry: e, MatchType: MatchExact})
		}
	}
	return acc
}

func partialPhase(acc found, candidates []morph.Candidate, entries []Entry) found {
	for i := range candidates {
		c := candidates[i]
		if c.Term == "" {
			continue
		}
		for _, e := range entries {
			if e.TermJA == "" || acc.has(e.TermJA) {
				continue
			}
			if strings.Contains(c.Term, e.TermJA) || strings.Contains(e.TermJA, c.Term) {
				acc = acc.with(FoundTerm{Entry: e, MatchType: MatchPartial, Candidate: &c})
			}
		}
	}
	return acc
}

func synonymPhase(acc found, candidates []morph.Candidate, entries []Entry, opts synonym.FindOptions) found {
	for i := range candidates {
		c := candidates[i]
		for _, m := range synonym.FindSynonyms(c.Term, entries, opts) {
			if acc.has(m.MatchedTerm) {
				continue
			}
			acc = acc.with(FoundTerm{
				Entry:      m.Entry,
				MatchType:  SynonymPrefix + string(m.MatchType),
				Confidence: m.Confidence,
				Candidate:  &c,
			})
		}
	}
	return acc
}
