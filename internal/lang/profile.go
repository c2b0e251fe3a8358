// Package lang defines per-language measurement profiles.
//
// A Profile bundles a syllable counter with two ordered sets of lexical
// classifiers: word-usage classifiers, counted over every sentence, and
// sentence-beginning classifiers, matched at the start of a sentence.
// Profiles are immutable once built and may be shared by concurrent passes.
package lang

import (
	"fmt"
	"regexp"
)

// SyllableCounter maps a token to its number of syllables.
type SyllableCounter func(token string) int

// Classifier is a named predicate over a sentence or a whole document.
type Classifier interface {
	// Name identifies the classifier in results.
	Name() string
	// Count returns the number of non-overlapping matches in text.
	Count(text string) int
	// MatchStart reports whether the classifier matches at the start of text.
	MatchStart(text string) bool
}

// Pattern is a Classifier backed by a regular expression.
type Pattern struct {
	name string
	re   *regexp.Regexp
}

// NewPattern compiles expr into a named classifier.
func NewPattern(name, expr string) (Pattern, error) {
	if name == "" {
		return Pattern{}, fmt.Errorf("classifier name is empty")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("failed to compile classifier %q: %w", name, err)
	}
	return Pattern{name: name, re: re}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(name, expr string) Pattern {
	p, err := NewPattern(name, expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Name implements Classifier.
func (p Pattern) Name() string {
	return p.name
}

// Count implements Classifier.
func (p Pattern) Count(text string) int {
	return len(p.re.FindAllStringIndex(text, -1))
}

// MatchStart implements Classifier.
func (p Pattern) MatchStart(text string) bool {
	loc := p.re.FindStringIndex(text)
	return loc != nil && loc[0] == 0
}

// String returns the underlying expression.
func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Profile is the measurement data for one language.
type Profile struct {
	code       string
	syllables  SyllableCounter
	words      []Classifier
	beginnings []Classifier
}

// NewProfile validates and builds a profile. Classifier names must be
// non-empty and unique across both classifier sets, so that results can be
// flattened into a single mapping without collisions.
func NewProfile(code string, counter SyllableCounter, words, beginnings []Classifier) (*Profile, error) {
	if code == "" {
		return nil, fmt.Errorf("language code is empty")
	}
	if counter == nil {
		return nil, fmt.Errorf("language %q: syllable counter is nil", code)
	}
	seen := make(map[string]struct{}, len(words)+len(beginnings))
	for _, set := range [][]Classifier{words, beginnings} {
		for _, c := range set {
			if c == nil {
				return nil, fmt.Errorf("language %q: nil classifier", code)
			}
			name := c.Name()
			if name == "" {
				return nil, fmt.Errorf("language %q: classifier name is empty", code)
			}
			if _, ok := seen[name]; ok {
				return nil, fmt.Errorf("language %q: duplicate classifier name %q", code, name)
			}
			seen[name] = struct{}{}
		}
	}
	return &Profile{
		code:       code,
		syllables:  counter,
		words:      append([]Classifier(nil), words...),
		beginnings: append([]Classifier(nil), beginnings...),
	}, nil
}

// Code returns the language code.
func (p *Profile) Code() string {
	return p.code
}

// Syllables counts the syllables of token. Negative counts from a
// misbehaving counter are clamped to zero.
func (p *Profile) Syllables(token string) int {
	n := p.syllables(token)
	if n < 0 {
		return 0
	}
	return n
}

// SyllableCounter returns the profile's counter.
func (p *Profile) SyllableCounter() SyllableCounter {
	return p.syllables
}

// WordClassifiers returns the word-usage classifiers in declaration order.
func (p *Profile) WordClassifiers() []Classifier {
	return append([]Classifier(nil), p.words...)
}

// BeginningClassifiers returns the sentence-beginning classifiers in declaration order.
func (p *Profile) BeginningClassifiers() []Classifier {
	return append([]Classifier(nil), p.beginnings...)
}
