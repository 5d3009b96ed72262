package synonym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/kondate/pkg/morph"
)

type term string

func (t term) JapaneseTerm() string { return string(t) }

func TestCanonicalizeScript(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ラーメン", "ラーメン"},
		{"ラｰメン", "ラーメン"},
		{"ラ━メン", "ラーメン"},
		{"ラ─メン", "ラーメン"},
		{"ＡＢＣ１２３", "abc123"},
		{"Set A", "seta"},
		{"唐揚げ　定食", "唐揚げ定食"},
		{"", ""},
	}
	for _, tt := range tests {
		got := CanonicalizeScript(tt.in)
		assert.Equal(t, tt.want, got, "CanonicalizeScript(%q)", tt.in)
		assert.Equal(t, got, CanonicalizeScript(got), "canonicalization must be idempotent for %q", tt.in)
	}
}

func TestKanaConversion(t *testing.T) {
	assert.Equal(t, "らーめん", KatakanaToHiragana("ラーメン"))
	assert.Equal(t, "ラーメン", HiraganaToKatakana("らーめん"))
	assert.Equal(t, "唐揚げ", KatakanaToHiragana("唐揚げ"))
	assert.Equal(t, "ヴ", HiraganaToKatakana("ゔ"))
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"test", "best", 1},
		{"test", "tests", 1},
		{"test", "tes", 1},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"ラーメン", "ラーメソ", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "EditDistance(%q, %q)", tt.a, tt.b)
		assert.Equal(t, EditDistance(tt.a, tt.b), EditDistance(tt.b, tt.a), "distance must be symmetric")
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("寿司", "寿司"))
	assert.InDelta(t, 0.75, Similarity("test", "best"), 1e-9)
	assert.InDelta(t, 0.6, Similarity("唐揚げ定食", "唐揚げ"), 1e-9)
}

func TestAreSynonyms(t *testing.T) {
	opts := DefaultOptions()

	t.Run("identical terms are exact", func(t *testing.T) {
		r := AreSynonyms("寿司", "寿司", opts)
		assert.True(t, r.IsSynonym)
		assert.Equal(t, Exact, r.MatchType)
		assert.Equal(t, 1.0, r.Confidence)
	})

	t.Run("width variants are exact", func(t *testing.T) {
		r := AreSynonyms("ＢＬＴサンド", "bltサンド", opts)
		assert.Equal(t, Exact, r.MatchType)
	})

	t.Run("katakana and hiragana renderings", func(t *testing.T) {
		r := AreSynonyms("ラーメン", "らーめん", opts)
		assert.True(t, r.IsSynonym)
		assert.Equal(t, KanaVariant, r.MatchType)
		assert.Equal(t, 0.95, r.Confidence)
	})

	t.Run("containment is partial", func(t *testing.T) {
		r := AreSynonyms("唐揚げ定食", "唐揚げ", opts)
		assert.True(t, r.IsSynonym)
		assert.Equal(t, Partial, r.MatchType)
		assert.InDelta(t, 0.6, r.Confidence, 1e-9)
	})

	t.Run("containment without partial matching falls to similarity", func(t *testing.T) {
		noPartial := opts
		noPartial.AllowPartialMatch = false
		r := AreSynonyms("唐揚げ定食", "唐揚げ", noPartial)
		assert.False(t, r.IsSynonym)
		assert.Equal(t, None, r.MatchType)
	})

	t.Run("near miss is similar", func(t *testing.T) {
		r := AreSynonyms("ハンバーグ", "ハンバーガ", opts)
		assert.True(t, r.IsSynonym)
		assert.Equal(t, Similar, r.MatchType)
		assert.InDelta(t, 0.8, r.Confidence, 1e-9)
	})

	t.Run("unrelated terms", func(t *testing.T) {
		r := AreSynonyms("寿司", "天ぷら", opts)
		assert.False(t, r.IsSynonym)
		assert.Equal(t, None, r.MatchType)
	})

	t.Run("empty input", func(t *testing.T) {
		r := AreSynonyms("", "寿司", opts)
		assert.False(t, r.IsSynonym)
		assert.Equal(t, 0.0, r.Confidence)
	})
}

func TestAreSynonymsStrictMode(t *testing.T) {
	strict := Options{StrictMode: true, AllowPartialMatch: true, MinSimilarity: 0.1}
	pairs := [][2]string{
		{"ラーメン", "らーめん"},
		{"唐揚げ定食", "唐揚げ"},
		{"ラーメン", "ラｰメン"},
		{"ＡＢＣ", "abc"},
		{"test", "best"},
	}
	for _, p := range pairs {
		r := AreSynonyms(p[0], p[1], strict)
		want := CanonicalizeScript(p[0]) == CanonicalizeScript(p[1])
		assert.Equal(t, want, r.IsSynonym, "strict %q vs %q", p[0], p[1])
	}
}

func TestFindSynonyms(t *testing.T) {
	entries := []term{"らーめん", "ラーメン", "ラーメンセット", "寿司", "", "ラーメソ"}

	got := FindSynonyms("ラーメン", entries, DefaultFindOptions())
	require.NotEmpty(t, got)
	assert.Equal(t, "ラーメン", got[0].MatchedTerm)
	assert.Equal(t, Exact, got[0].MatchType)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Confidence, got[i].Confidence)
	}
	for _, m := range got {
		assert.GreaterOrEqual(t, m.Confidence, 0.7)
		assert.Equal(t, "ラーメン", m.OriginalTerm)
		assert.NotEqual(t, "寿司", m.MatchedTerm)
	}

	limited := FindSynonyms("ラーメン", entries, FindOptions{MaxResults: 2, MinConfidence: 0.7, Match: DefaultOptions()})
	assert.Len(t, limited, 2)
}

func TestFindSynonymsDropsWeakPartials(t *testing.T) {
	got := FindSynonyms("唐揚げ", []term{"唐揚げ定食"}, DefaultFindOptions())
	assert.Empty(t, got)

	loose := DefaultFindOptions()
	loose.MinConfidence = 0.5
	got = FindSynonyms("唐揚げ", []term{"唐揚げ定食"}, loose)
	require.Len(t, got, 1)
	assert.Equal(t, Partial, got[0].MatchType)
}

func TestDetectInText(t *testing.T) {
	entries := []term{"ラーメン", "餃子"}
	candidates := []morph.Candidate{
		{Term: "らーめん", Type: morph.GeneralNoun, Priority: 4},
		{Term: "ラーメン", Type: morph.KatakanaNoun, Priority: 2},
		{Term: "ラ─メン", Type: morph.KatakanaNoun, Priority: 2},
	}

	got := DetectInText(candidates, entries, DefaultFindOptions())
	require.Len(t, got, 2)
	assert.Equal(t, Exact, got[0].MatchType)
	assert.Equal(t, "ラーメン", got[0].Candidate.Term)
	assert.Equal(t, KanaVariant, got[1].MatchType)
	assert.Equal(t, "らーめん", got[1].Candidate.Term)
}

func TestGroups(t *testing.T) {
	terms := []string{"寿司", "ラーメン", "らーめん", "ラｰメン", "天ぷら"}
	groups := Groups(terms, 0.8)

	require.Len(t, groups, 3)
	assert.Equal(t, "ラーメン", groups[0].Canonical)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, []string{"ラーメン", "らーめん", "ラｰメン"}, groups[0].Variants)
	assert.Equal(t, "寿司", groups[1].Canonical)
	assert.Equal(t, "天ぷら", groups[2].Canonical)

	total := 0
	for _, g := range groups {
		total += g.Count
	}
	assert.Equal(t, len(terms), total)
}

func TestGroupsRequireConfidenceForContainment(t *testing.T) {
	groups := Groups([]string{"ラーメン", "ラ", "味噌ラーメン大盛りセット"}, 0.8)
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Equal(t, 1, g.Count, "unexpected group %v", g.Variants)
	}

	groups = Groups([]string{"唐揚げ定食", "唐揚げ"}, 0.5)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"唐揚げ定食", "唐揚げ"}, groups[0].Variants)
}
