// Package similarity computes normalized [0,1] similarity between submitted
// and reference field values, dispatched by declared field type.
package similarity

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)

	// NFD decomposition followed by removal of combining marks strips
	// diacritics; NFC recomposes what remains.
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize lowercases, strips diacritics, replaces punctuation with spaces,
// and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(strings.TrimSpace(text))
	if stripped, _, err := transform.String(deaccent, lowered); err == nil {
		lowered = stripped
	}
	lowered = nonWord.ReplaceAllString(lowered, " ")
	lowered = multiSpace.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(lowered)
}

// TokenSortRatio returns an order-independent similarity ratio in [0,1]:
// both inputs are tokenized, the tokens sorted and rejoined, and the joined
// strings compared by edit-distance ratio.
func TokenSortRatio(a, b string) float64 {
	sa := sortTokens(a)
	sb := sortTokens(b)
	if sa == "" && sb == "" {
		return 1.0
	}
	return levenshtein.RatioForStrings([]rune(sa), []rune(sb), levenshtein.DefaultOptions)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
