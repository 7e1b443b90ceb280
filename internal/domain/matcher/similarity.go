package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SubstringSimilarity is returned when one string contains the other.
const SubstringSimilarity = 0.9

// unitCost counts every insertion, deletion and substitution as one edit.
var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Similarity returns a case-insensitive similarity in [0,1] between two
// strings. Containment scores SubstringSimilarity; otherwise the score is
// 1 - editDistance/maxLen. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = lower(a), lower(b)
	if a == "" && b == "" {
		return 1.0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return SubstringSimilarity
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}

	distance := levenshtein.DistanceForStrings([]rune(a), []rune(b), unitCost)
	return 1 - float64(distance)/float64(maxLen)
}

// lower folds s to lower case. A Caser is stateful, so one is made per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
