// Package measure turns text into the surface counts readability formulas
// are computed from.
//
// Two aggregation variants exist. Lines and Scan consume pre-segmented text,
// one sentence per line with white-space separated tokens and blank lines
// between paragraphs. Text consumes a raw string and derives sentences and
// paragraphs from line breaks. Each pass builds its own Counts, so passes over
// different documents may run concurrently with a shared profile.
package measure

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a pass finds no words.
	ErrEmptyInput = errors.New("no words in input")
	// ErrMalformedInput is returned when counts have words but no sentence
	// or paragraph to divide them by.
	ErrMalformedInput = errors.New("malformed input")
)

const (
	longWordLength   = 7
	complexSyllables = 3
)

// Tally is one named classifier count.
type Tally struct {
	Name  string
	Count int
}

// Counts holds the surface statistics of one pass.
type Counts struct {
	Characters   int
	Words        int
	Syllables    int
	LongWords    int
	ComplexWords int
	Sentences    int
	Paragraphs   int

	// WordUsage and SentenceBeginnings follow the profile's declaration order.
	WordUsage          []Tally
	SentenceBeginnings []Tally
}

// Ratios are the per-unit averages derived from Counts.
type Ratios struct {
	CharactersPerWord     float64
	SyllablesPerWord      float64
	WordsPerSentence      float64
	SentencesPerParagraph float64
}

// Validate checks the invariants required before any ratio is computed.
func (c Counts) Validate() error {
	if c.Words < 1 {
		return ErrEmptyInput
	}
	if c.Sentences < 1 || c.Paragraphs < 1 {
		return fmt.Errorf("%w: %d words in %d sentences and %d paragraphs",
			ErrMalformedInput, c.Words, c.Sentences, c.Paragraphs)
	}
	return nil
}

// Ratios computes the derived averages.
func (c Counts) Ratios() (Ratios, error) {
	if err := c.Validate(); err != nil {
		return Ratios{}, err
	}
	words := float64(c.Words)
	sentences := float64(c.Sentences)
	return Ratios{
		CharactersPerWord:     float64(c.Characters) / words,
		SyllablesPerWord:      float64(c.Syllables) / words,
		WordsPerSentence:      words / sentences,
		SentencesPerParagraph: sentences / float64(c.Paragraphs),
	}, nil
}

// Usage returns the word-usage count for name.
func (c Counts) Usage(name string) (int, bool) {
	return lookupTally(c.WordUsage, name)
}

// Beginning returns the sentence-beginning count for name.
func (c Counts) Beginning(name string) (int, bool) {
	return lookupTally(c.SentenceBeginnings, name)
}

func lookupTally(tallies []Tally, name string) (int, bool) {
	for _, t := range tallies {
		if t.Name == name {
			return t.Count, true
		}
	}
	return 0, false
}
