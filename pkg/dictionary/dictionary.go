package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Entry is one curated menu term. Priority orders correction precedence;
// lower values win.
type Entry struct {
	ID          string `json:"id" firestore:"-"`
	TermJA      string `json:"term_ja" firestore:"term_ja"`
	Reading     string `json:"reading,omitempty" firestore:"reading"`
	TermEN      string `json:"term_en" firestore:"term_en"`
	TermZH      string `json:"term_zh" firestore:"term_zh"`
	Category    string `json:"category,omitempty" firestore:"category"`
	Subcategory string `json:"subcategory,omitempty" firestore:"subcategory"`
	Priority    int    `json:"priority" firestore:"priority"`
	Type        string `json:"type,omitempty" firestore:"type"`
	Notes       string `json:"notes,omitempty" firestore:"notes"`
}

// JapaneseTerm returns TermJA.
func (e Entry) JapaneseTerm() string { return e.TermJA }

// Translation returns the entry's rendering for lang ("en" or "zh").
func (e Entry) Translation(lang string) string {
	switch lang {
	case "en":
		return e.TermEN
	case "zh":
		return e.TermZH
	}
	return ""
}

// SortByPriority orders entries ascending by priority, keeping input order
// for ties.
func SortByPriority(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})
}

// LoadJSON reads dictionary entries from a JSON file holding either a bare
// array or an object of the form {"entries": [...]}. Entries without a
// Japanese term are dropped.
func LoadJSON(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapped struct {
		Entries []Entry `json:"entries"`
	}
	dec := json.NewDecoder(f)
	if err := dec.Decode(&wrapped); err == nil {
		return clean(wrapped.Entries), nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []Entry
	dec = json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary as object or array: %w", err)
	}
	return clean(entries), nil
}

func clean(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.TermJA == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
