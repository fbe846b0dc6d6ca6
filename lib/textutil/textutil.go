package textutil

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var punctuationRegex = regexp.MustCompile(`[.'\-]`)

// NormalizeName lowercases a player name and removes whitespace and the
// punctuation commonly found in names ("N'Golo", "Alexander-Arnold").
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = punctuationRegex.ReplaceAllString(name, "")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// NameSimilarity is the Jaro-Winkler similarity of two normalized names,
// in [0, 1].
func NameSimilarity(a, b string) float64 {
	a = NormalizeName(a)
	b = NormalizeName(b)
	if a == b {
		return 1
	}
	return matchr.JaroWinkler(a, b, false)
}
