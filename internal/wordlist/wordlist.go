// Package wordlist loads word lists from files and turns them into
// classifiers.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// LoadWords reads one word or phrase per line from the provided file path.
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := norm.NFC.String(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// wordChars is the Unicode word class. regexp's \b and \w only know ASCII.
const wordChars = `\p{L}\p{N}_`

// Expr builds a case-insensitive expression matching any of words followed by
// a word boundary. The matched entry is the first submatch. Longer entries are
// tried first so that phrases win over their prefixes. With anchored set the
// match must start the text.
func Expr(words []string, anchored bool) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	prefix := ""
	if anchored {
		prefix = "^"
	}
	return `(?i)` + prefix + `(` + strings.Join(quoted, "|") + `)(?:$|[^` + wordChars + `])`
}

// Matcher is a lang.Classifier counting whole-word occurrences of a word
// list. Word boundaries follow Unicode letters and digits.
type Matcher struct {
	name     string
	anchored bool
	re       *regexp.Regexp
}

// NewMatcher compiles words into a classifier called name.
func NewMatcher(name string, words []string, anchored bool) (*Matcher, error) {
	if name == "" {
		return nil, fmt.Errorf("classifier name is empty")
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("classifier %q: word list is empty", name)
	}
	re, err := regexp.Compile(Expr(words, anchored))
	if err != nil {
		return nil, fmt.Errorf("classifier %q: %w", name, err)
	}
	return &Matcher{name: name, anchored: anchored, re: re}, nil
}

// Name implements lang.Classifier.
func (m *Matcher) Name() string {
	return m.name
}

// Count implements lang.Classifier. An anchored matcher counts at most one
// match, at the start of text.
func (m *Matcher) Count(text string) int {
	if m.anchored {
		if m.MatchStart(text) {
			return 1
		}
		return 0
	}
	count := 0
	for pos := 0; pos < len(text); {
		loc := m.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[2], pos+loc[3]
		if boundaryBefore(text, start) {
			count++
			// The trailing separator stays available as the next leading one.
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return count
}

// MatchStart implements lang.Classifier.
func (m *Matcher) MatchStart(text string) bool {
	loc := m.re.FindStringSubmatchIndex(text)
	return loc != nil && loc[2] == 0
}

func (m *Matcher) String() string {
	return m.re.String()
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Classifier loads path and returns a classifier called name for its words.
func Classifier(name, path string, anchored bool) (*Matcher, error) {
	words, err := LoadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	return NewMatcher(name, words, anchored)
}
