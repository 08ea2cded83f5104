package match

import (
	"github.com/agnivade/levenshtein"
)

// Levenshtein computes the Levenshtein distance (edit distance) between two strings:
// the minimum number of single-rune insertions, deletions or substitutions
// required to transform one string into the other.
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Similarity is 1 - distance/maxLen: 1.0 for identical strings, 0.0 for
// strings with nothing in common.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(max(la, lb))
}
