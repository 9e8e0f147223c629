package utils

import "strings"

// NormalizeName lowercases and trims a customer name for comparison
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MaxNameLength is the longest name, in runes, that is scored for similarity
const MaxNameLength = 200

// LevenshteinDistance is the minimum number of single-rune insertions,
// deletions or substitutions needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s2) > len(s1) {
		s1, s2 = s2, s1
	}

	// Two rows of the DP matrix, sized by the shorter string
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			if s1[i-1] == s2[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], curr[j-1], prev[j])
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// NameSimilarity scores two strings in [0,1] as
// (len(longer) - distance) / len(longer). Two empty strings score 1.
func NameSimilarity(a, b string) float64 {
	longer, shorter := a, b
	if len([]rune(b)) > len([]rune(a)) {
		longer, shorter = b, a
	}

	n := len([]rune(longer))
	if n == 0 {
		return 1.0
	}
	return float64(n-LevenshteinDistance(longer, shorter)) / float64(n)
}
