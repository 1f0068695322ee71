package compare

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// digitAbstractionScore rewards strings that differ only in embedded
// digit runs — counters and other dynamic numbers with the same
// surrounding structure.
const digitAbstractionScore = 0.9

// NormalizeText collapses whitespace, trims, and lowercases for
// comparison.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TextSimilarity scores how close two normalized strings are, in [0,1].
// Exact match is 1.0. When both contain digit runs and match after
// abstracting digits to a placeholder, the score is 0.9. Otherwise the
// score is a normalized edit-distance similarity.
func TextSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if digitRun.MatchString(a) && digitRun.MatchString(b) {
		if digitRun.ReplaceAllString(a, "#") == digitRun.ReplaceAllString(b, "#") {
			return digitAbstractionScore
		}
	}
	longer, shorter := a, b
	if utf8.RuneCountInString(b) > utf8.RuneCountInString(a) {
		longer, shorter = b, a
	}
	longLen := utf8.RuneCountInString(longer)
	if longLen == 0 {
		return 1.0
	}
	dist := levenshtein.Distance(longer, shorter, levenshtein.NewParams())
	sim := 1.0 - float64(dist)/float64(longLen)
	if sim < 0 {
		return 0
	}
	return sim
}
