package synonym

import (
	"sort"
	"strconv"
	"strings"

	"github.com/japaniel/kondate/pkg/morph"
)

// MatchType describes how two terms were judged equivalent.
type MatchType string

const (
	Exact       MatchType = "exact"
	KanaVariant MatchType = "kana_variant"
	Partial     MatchType = "partial"
	Similar     MatchType = "similar"
	None        MatchType = "none"
)

const kanaVariantConfidence = 0.95

// Result is the outcome of comparing two terms.
type Result struct {
	IsSynonym  bool      `json:"is_synonym"`
	Confidence float64   `json:"confidence"`
	MatchType  MatchType `json:"match_type"`
}

// Options tune AreSynonyms. Use DefaultOptions as a starting point.
type Options struct {
	// StrictMode accepts only canonical equality.
	StrictMode        bool
	AllowPartialMatch bool
	MinSimilarity     float64
}

// DefaultOptions returns non-strict matching with partial matches enabled
// and a 0.7 similarity threshold.
func DefaultOptions() Options {
	return Options{AllowPartialMatch: true, MinSimilarity: 0.7}
}

// EditDistance returns the Levenshtein distance between a and b, counted in
// code points. Callers canonicalize first when script variants should not count.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity is 1 - EditDistance/maxLen, and 1.0 for two empty strings.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	return float64(longest-EditDistance(a, b)) / float64(longest)
}

// AreSynonyms compares two terms after script canonicalization.
func AreSynonyms(a, b string, opts Options) Result {
	if a == "" || b == "" {
		return Result{MatchType: None}
	}

	normA, normB := CanonicalizeScript(a), CanonicalizeScript(b)
	if normA == normB {
		return Result{IsSynonym: true, Confidence: 1.0, MatchType: Exact}
	}
	if opts.StrictMode {
		return Result{MatchType: None}
	}

	if KatakanaToHiragana(normA) == KatakanaToHiragana(normB) {
		return Result{IsSynonym: true, Confidence: kanaVariantConfidence, MatchType: KanaVariant}
	}

	sim := Similarity(normA, normB)

	// Containment is a partial match whatever its similarity; the similarity is
	// still reported so FindSynonyms can drop weak partials by confidence.
	if opts.AllowPartialMatch && normA != "" && normB != "" &&
		(strings.Contains(normA, normB) || strings.Contains(normB, normA)) {
		return Result{IsSynonym: true, Confidence: sim, MatchType: Partial}
	}

	if sim >= opts.MinSimilarity {
		return Result{IsSynonym: true, Confidence: sim, MatchType: Similar}
	}
	return Result{Confidence: sim, MatchType: None}
}

// Termed is anything carrying a Japanese dictionary term.
type Termed interface {
	JapaneseTerm() string
}

// Match is a dictionary entry judged equivalent to a searched term.
type Match[E Termed] struct {
	Entry        E
	MatchType    MatchType
	Confidence   float64
	OriginalTerm string
	MatchedTerm  string
}

// FindOptions tune FindSynonyms.
type FindOptions struct {
	MaxResults    int
	MinConfidence float64
	Match         Options
}

// DefaultFindOptions returns up to 10 results with confidence of at least 0.7.
func DefaultFindOptions() FindOptions {
	return FindOptions{MaxResults: 10, MinConfidence: 0.7, Match: DefaultOptions()}
}

// FindSynonyms compares term against every entry and returns the matches
// ordered by descending confidence.
func FindSynonyms[E Termed](term string, entries []E, opts FindOptions) []Match[E] {
	var results []Match[E]
	for _, e := range entries {
		termJA := e.JapaneseTerm()
		if termJA == "" {
			continue
		}
		r := AreSynonyms(term, termJA, opts.Match)
		if !r.IsSynonym || r.Confidence < opts.MinConfidence {
			continue
		}
		results = append(results, Match[E]{
			Entry:        e,
			MatchType:    r.MatchType,
			Confidence:   r.Confidence,
			OriginalTerm: term,
			MatchedTerm:  termJA,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results
}

// Detection is a synonym match tied to the candidate that produced it.
type Detection[E Termed] struct {
	Match[E]
	Candidate morph.Candidate
}

// DetectInText runs FindSynonyms for every candidate, drops repeats of the
// same matched term at the same confidence, and orders by confidence.
func DetectInText[E Termed](candidates []morph.Candidate, entries []E, opts FindOptions) []Detection[E] {
	var out []Detection[E]
	seen := make(map[string]bool)

	for _, c := range candidates {
		for _, m := range FindSynonyms(c.Term, entries, opts) {
			key := m.MatchedTerm + ":" + strconv.FormatFloat(m.Confidence, 'g', -1, 64)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Detection[E]{Match: m, Candidate: c})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Group is a cluster of spelling variants. Canonical is its first member.
type Group struct {
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
	Count     int      `json:"count"`
}

// Groups clusters terms greedily in input order: each unclaimed term opens a
// group and absorbs every later unclaimed term it matches at minConfidence.
// Membership is not transitive, so the result depends on input order.
func Groups(terms []string, minConfidence float64) []Group {
	opts := DefaultOptions()
	opts.MinSimilarity = minConfidence

	var groups []Group
	processed := make(map[string]bool)

	for _, term := range terms {
		if processed[term] {
			continue
		}
		processed[term] = true
		group := []string{term}

		for _, other := range terms {
			if processed[other] {
				continue
			}
			if r := AreSynonyms(term, other, opts); r.IsSynonym && r.Confidence >= minConfidence {
				group = append(group, other)
				processed[other] = true
			}
		}
		groups = append(groups, Group{Canonical: group[0], Variants: group, Count: len(group)})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}
