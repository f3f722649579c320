// Package fuzzy provides 0-100 string similarity scoring and best-match extraction.
package fuzzy

// IndelDistance returns the minimum number of single-character insertions and deletions
// needed to turn a into b. Substitutions are not allowed, so a substitution counts as two.
// Computed over runes as lenA + lenB - 2*LCS(a, b).
func IndelDistance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)
	return len(runesA) + len(runesB) - 2*lcsLength(runesA, runesB)
}

// lcsLength returns the length of the longest common subsequence.
// Only two rows of the DP matrix are kept.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curr[0] = 0
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
