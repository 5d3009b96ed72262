package translate

import (
	"regexp"

	"github.com/japaniel/kondate/pkg/dictionary"
)

// maxCorrectionPriority is the lowest-precedence priority still force-corrected.
const maxCorrectionPriority = 2

// PostProcess rewrites every case-insensitive literal occurrence of a
// high-priority term's expected translation to its dictionary spelling.
// Paraphrased renderings are left alone.
func PostProcess(translated string, terms []dictionary.FoundTerm, targetLang string) string {
	for _, ft := range terms {
		if ft.Entry.Priority > maxCorrectionPriority {
			continue
		}
		expected := ft.Entry.Translation(targetLang)
		if expected == "" {
			continue
		}
		re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(expected))
		translated = re.ReplaceAllLiteralString(translated, expected)
	}
	return translated
}
