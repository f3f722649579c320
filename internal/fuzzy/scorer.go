package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// Scorer returns a similarity between 0 (nothing in common) and 100 (identical).
type Scorer func(a, b string) float64

const (
	unbaseScale      = 0.95
	partialScale     = 0.9
	longPartialScale = 0.6
	longLengthRatio  = 8.0
	closeLengthRatio = 1.5
)

// DefaultProcess lowercases s, replaces every rune that is not a letter or digit with a
// space, and trims the result.
func DefaultProcess(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}

// Ratio is the normalized indel similarity of a and b.
func Ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	return 100 * (1 - float64(IndelDistance(a, b))/float64(total))
}

// PartialRatio scores the best alignment of the shorter string against any substring of
// the longer one, including partial overlaps at either end.
func PartialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	s := string(short)
	best := 0.0
	consider := func(window []rune) bool {
		if r := Ratio(s, string(window)); r > best {
			best = r
		}
		return best == 100
	}
	n := len(short)
	for i := 1; i < n; i++ {
		if consider(long[:i]) {
			return best
		}
	}
	for i := 0; i+n <= len(long); i++ {
		if consider(long[i : i+n]) {
			return best
		}
	}
	for i := len(long) - n + 1; i < len(long); i++ {
		if i <= 0 {
			continue
		}
		if consider(long[i:]) {
			return best
		}
	}
	return best
}

// TokenSortRatio compares a and b after sorting their whitespace-separated tokens.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens of a and b against each side's remainder.
// It is 100 when one token set contains the other.
func TokenSetRatio(a, b string) float64 {
	inter, diffAB, diffBA := tokenSets(a, b)
	if len(inter) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}
	sect := strings.Join(inter, " ")
	combinedAB := strings.TrimSpace(sect + " " + strings.Join(diffAB, " "))
	combinedBA := strings.TrimSpace(sect + " " + strings.Join(diffBA, " "))

	best := Ratio(combinedAB, combinedBA)
	if sect != "" {
		best = max(best, Ratio(sect, combinedAB), Ratio(sect, combinedBA))
	}
	return best
}

// PartialTokenRatio is 100 when a and b share a token, otherwise the partial ratio of
// their sorted tokens.
func PartialTokenRatio(a, b string) float64 {
	inter, _, _ := tokenSets(a, b)
	if len(inter) > 0 {
		return 100
	}
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

// WRatio weighs Ratio, PartialRatio and the token ratios by how different the two
// lengths are. Empty input scores 0.
func WRatio(a, b string) float64 {
	lenA, lenB := len([]rune(a)), len([]rune(b))
	if lenA == 0 || lenB == 0 {
		return 0
	}
	lengthRatio := float64(max(lenA, lenB)) / float64(min(lenA, lenB))
	result := Ratio(a, b)
	if lengthRatio < closeLengthRatio {
		tokens := max(TokenSortRatio(a, b), TokenSetRatio(a, b))
		return max(result, tokens*unbaseScale)
	}
	scale := partialScale
	if lengthRatio > longLengthRatio {
		scale = longPartialScale
	}
	result = max(result, PartialRatio(a, b)*scale)
	return max(result, PartialTokenRatio(a, b)*unbaseScale*scale)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSets returns the sorted intersection and both sorted differences of the token sets.
func tokenSets(a, b string) (inter, diffAB, diffBA []string) {
	setA := toSet(strings.Fields(a))
	setB := toSet(strings.Fields(b))
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter = append(inter, t)
		} else {
			diffAB = append(diffAB, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			diffBA = append(diffBA, t)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffAB)
	sort.Strings(diffBA)
	return inter, diffAB, diffBA
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
