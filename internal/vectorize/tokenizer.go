package vectorize

import (
	"strings"
	"unicode"
)

// minTokenLength drops single-character tokens.
const minTokenLength = 2

// Tokenize lowercases text and splits it into runs of word characters (letters, digits,
// combining marks and underscore), keeping runs of at least two characters.
func Tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	n := 0
	flush := func() {
		if n >= minTokenLength {
			tokens = append(tokens, word.String())
		}
		word.Reset()
		n = 0
	}
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) {
			word.WriteRune(r)
			n++
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
