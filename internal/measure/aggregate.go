package measure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/readability/internal/lang"
)

var (
	paragraphBreakPattern = regexp.MustCompile(`\n\n+`)
	sentenceLinePattern   = regexp.MustCompile(`[^\n]+(\n|$)`)
)

type pass struct {
	profile    *lang.Profile
	words      []lang.Classifier
	beginnings []lang.Classifier
	counts     Counts
}

func newPass(p *lang.Profile) *pass {
	ps := &pass{
		profile:    p,
		words:      p.WordClassifiers(),
		beginnings: p.BeginningClassifiers(),
	}
	ps.counts.WordUsage = make([]Tally, len(ps.words))
	for i, c := range ps.words {
		ps.counts.WordUsage[i] = Tally{Name: c.Name()}
	}
	ps.counts.SentenceBeginnings = make([]Tally, len(ps.beginnings))
	for i, c := range ps.beginnings {
		ps.counts.SentenceBeginnings[i] = Tally{Name: c.Name()}
	}
	return ps
}

func (ps *pass) addToken(token string) {
	length := utf8.RuneCountInString(token)
	syllables := ps.profile.Syllables(token)
	ps.counts.Words++
	ps.counts.Characters += length
	ps.counts.Syllables += syllables
	if length >= longWordLength {
		ps.counts.LongWords++
	}
	// Capitalized tokens are taken for proper nouns and never count as
	// complex. This undercounts sentence-initial complex words.
	if syllables >= complexSyllables && !startsUpper(token) {
		ps.counts.ComplexWords++
	}
}

func (ps *pass) finish() (Counts, error) {
	if err := ps.counts.Validate(); err != nil {
		return Counts{}, err
	}
	return ps.counts, nil
}

func startsUpper(token string) bool {
	r, _ := utf8.DecodeRuneInString(token)
	return unicode.IsUpper(r)
}

// Lines aggregates pre-segmented text held in memory.
func Lines(p *lang.Profile, lines []string) (Counts, error) {
	return Seq(p, slices.Values(lines))
}

// Scan aggregates pre-segmented text read line by line from r. Lines have no
// length limit.
func Scan(p *lang.Profile, r io.Reader) (Counts, error) {
	reader := bufio.NewReader(r)
	var readErr error
	counts, err := Seq(p, func(yield func(string) bool) {
		for {
			line, rerr := reader.ReadString('\n')
			if line != "" && !yield(strings.TrimSuffix(line, "\n")) {
				return
			}
			if rerr != nil {
				if !errors.Is(rerr, io.EOF) {
					readErr = rerr
				}
				return
			}
		}
	})
	if readErr != nil {
		return Counts{}, fmt.Errorf("failed to read input: %w", readErr)
	}
	return counts, err
}

// Seq aggregates pre-segmented text: one sentence per line, tokens separated
// by white space, an empty line between paragraphs. Word-usage classifiers
// count every match in a sentence; a sentence-beginning classifier adds at
// most one per sentence.
func Seq(p *lang.Profile, lines iter.Seq[string]) (Counts, error) {
	ps := newPass(p)
	prevEmpty := true
	for line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			prevEmpty = true
			continue
		}
		if prevEmpty {
			ps.counts.Paragraphs++
		}
		prevEmpty = false
		ps.counts.Sentences++

		for _, token := range Fields(line) {
			ps.addToken(token)
		}
		for i, c := range ps.words {
			ps.counts.WordUsage[i].Count += c.Count(line)
		}
		for i, c := range ps.beginnings {
			if c.MatchStart(line) {
				ps.counts.SentenceBeginnings[i].Count++
			}
		}
	}
	return ps.finish()
}

// Text aggregates a raw string. Paragraphs are separated by runs of two or
// more line breaks and every non-empty line is a sentence.
//
// Classifiers run once over the whole text, so a sentence-beginning
// classifier counts its matches across the document rather than once per
// sentence. For start-anchored patterns this means at most one match, at the
// start of the text. Lines and Text therefore agree on token statistics but
// not on sentence beginnings.
func Text(p *lang.Profile, text string) (Counts, error) {
	ps := newPass(p)
	ps.counts.Paragraphs = len(paragraphBreakPattern.FindAllStringIndex(text, -1)) + 1
	ps.counts.Sentences = len(sentenceLinePattern.FindAllStringIndex(text, -1))

	for _, token := range Tokens(text) {
		ps.addToken(token)
	}
	for i, c := range ps.words {
		ps.counts.WordUsage[i].Count = c.Count(text)
	}
	for i, c := range ps.beginnings {
		ps.counts.SentenceBeginnings[i].Count = c.Count(text)
	}
	return ps.finish()
}
