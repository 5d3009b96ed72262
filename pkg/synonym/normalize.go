// Package synonym detects spelling variants of Japanese terms: width and
// long-vowel differences, katakana/hiragana renderings and near misses.
package synonym

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// longVowel is the canonical prolonged sound mark.
const longVowel = 'ー'

// longVowelVariants are glyphs commonly typed in place of ー.
var longVowelVariants = map[rune]bool{
	'━': true, // U+2501 box drawings heavy horizontal
	'ｰ': true, // U+FF70 halfwidth prolonged sound mark
	'─': true, // U+2500 box drawings light horizontal
}

// CanonicalizeScript folds full-width letters and digits to ASCII, unifies
// long-vowel marks, removes whitespace and lowercases ASCII letters.
func CanonicalizeScript(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if longVowelVariants[r] {
			sb.WriteRune(longVowel)
			continue
		}
		if p := width.LookupRune(r); p.Kind() == width.EastAsianFullwidth {
			if n := p.Narrow(); isASCIIAlnum(n) {
				r = n
			}
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// KatakanaToHiragana converts katakana (ァ-ヶ) to hiragana.
// Other characters, including ー, are left unchanged.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// HiraganaToKatakana converts hiragana (ぁ-ゖ) to katakana.
func HiraganaToKatakana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x3041 && r <= 0x3096 {
			runes[i] = r + 0x60
		}
	}
	return string(runes)
}
