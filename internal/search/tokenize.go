package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Keeps word characters and Hangul syllables; everything else becomes a
// token separator.
var nonTokenPattern = regexp.MustCompile(`[^\w가-힣]+`)

// Tokenize lowercases text, strips everything outside word characters and the
// Hangul range, splits on whitespace and drops single-character tokens.
func Tokenize(text string) []string {
	normalized := nonTokenPattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(normalized)

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= 1 {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
