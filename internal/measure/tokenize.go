package measure

import (
	"regexp"
	"strings"
	"unicode"
)

// wordRunPattern matches runs of word runes and hyphens. Trimming the
// hyphens at both ends gives the same tokens as a Unicode \b[-\w]+\b.
var wordRunPattern = regexp.MustCompile(`[-\p{L}\p{N}_]+`)

// Fields splits a pre-segmented line on white space. Tokens made only of
// punctuation or symbols are dropped.
func Fields(line string) []string {
	fields := strings.Fields(line)
	out := fields[:0]
	for _, f := range fields {
		if isPunctuation(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Tokens extracts word tokens from raw text.
func Tokens(text string) []string {
	runs := wordRunPattern.FindAllString(text, -1)
	out := runs[:0]
	for _, run := range runs {
		token := strings.Trim(run, "-")
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

func isPunctuation(token string) bool {
	for _, r := range token {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return token != ""
}
