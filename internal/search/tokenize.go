package search

import "strings"

// punctRunes is the fixed punctuation set replaced with spaces before
// tokenizing: ASCII punctuation plus the bracket characters common in
// Japanese input.
const punctRunes = ".,/#!$%^&*;:{}=-_`~()［］【】「」『』（）"

// Tokenize splits free text into fuzzy-search tokens: punctuation becomes
// whitespace, then the text splits on whitespace runs. Empty or
// whitespace-only input yields an empty slice.
func Tokenize(text string) []string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctRunes, r) {
			return ' '
		}
		return r
	}, text)
	return strings.Fields(mapped)
}
