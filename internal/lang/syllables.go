package lang

import (
	"strings"
	"unicode"
)

// VowelGroups returns a counter that treats every maximal run of vowels as
// one syllable. Tokens with letters but no vowels count as one syllable;
// tokens without letters count as zero.
func VowelGroups(vowels string) SyllableCounter {
	set := make(map[rune]struct{}, len(vowels))
	for _, r := range vowels {
		set[r] = struct{}{}
	}
	return func(token string) int {
		groups, letters := countVowelGroups(token, set)
		if letters == 0 {
			return 0
		}
		if groups == 0 {
			return 1
		}
		return groups
	}
}

func countVowelGroups(token string, vowels map[rune]struct{}) (groups, letters int) {
	prevVowel := false
	for _, r := range strings.ToLower(token) {
		if !unicode.IsLetter(r) {
			prevVowel = false
			continue
		}
		letters++
		_, isVowel := vowels[r]
		if isVowel && !prevVowel {
			groups++
		}
		prevVowel = isVowel
	}
	return groups, letters
}

var englishVowels = func() map[rune]struct{} {
	set := map[rune]struct{}{}
	for _, r := range "aeiouy" {
		set[r] = struct{}{}
	}
	return set
}()

// EnglishSyllables counts vowel groups, dropping a silent final "e" unless it
// is the only group or ends in "le" or "ee" ("table", "agree").
func EnglishSyllables(token string) int {
	groups, letters := countVowelGroups(token, englishVowels)
	if letters == 0 {
		return 0
	}
	lower := strings.ToLower(token)
	if groups > 1 && strings.HasSuffix(lower, "e") && !strings.HasSuffix(lower, "le") &&
		!strings.HasSuffix(lower, "ee") {
		groups--
	}
	if groups == 0 {
		return 1
	}
	return groups
}
