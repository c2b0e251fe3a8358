package lang

import (
	"errors"
	"testing"
)

func TestPatternCountAndMatchStart(t *testing.T) {
	p := MustPattern("article", `(?i)^(the|a|an)\b`)
	if !p.MatchStart("The cat sat .") {
		t.Fatalf("expected match at start")
	}
	if p.MatchStart("A") == false {
		t.Fatalf("expected single-letter article to match")
	}
	if p.MatchStart("Then it left .") {
		t.Fatalf("expected no match for prefix of longer word")
	}
	if got := p.Count("The cat .\nThe dog ."); got != 1 {
		t.Fatalf("expected start anchor to match once in a document, got %d", got)
	}

	conj := MustPattern("conjunction", `(?i)\b(and|but)\b`)
	if got := conj.Count("cats and dogs and birds but not fish"); got != 3 {
		t.Fatalf("expected 3 matches, got %d", got)
	}
	if conj.MatchStart("cats and dogs") {
		t.Fatalf("expected MatchStart to ignore matches past the start")
	}
}

func TestNewPatternRejectsBadInput(t *testing.T) {
	if _, err := NewPattern("", `x`); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := NewPattern("bad", `(`); err == nil {
		t.Fatalf("expected error for invalid expression")
	}
}

func TestNewProfileRejectsDuplicateNames(t *testing.T) {
	words := []Classifier{MustPattern("pronoun", `\bhe\b`)}
	beginnings := []Classifier{MustPattern("pronoun", `^he\b`)}
	if _, err := NewProfile("xx", VowelGroups("aeiou"), words, beginnings); err == nil {
		t.Fatalf("expected collision between word and beginning classifier names")
	}
	if _, err := NewProfile("", VowelGroups("aeiou"), nil, nil); err == nil {
		t.Fatalf("expected error for empty code")
	}
	if _, err := NewProfile("xx", nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestProfileClampsNegativeSyllables(t *testing.T) {
	p, err := NewProfile("xx", func(string) int { return -2 }, nil, nil)
	if err != nil {
		t.Fatalf("new profile: %v", err)
	}
	if got := p.Syllables("word"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := Default()
	for _, code := range []string{"de", "en", "nl"} {
		p, err := reg.Lookup(code)
		if err != nil {
			t.Fatalf("lookup %s: %v", code, err)
		}
		if p.Code() != code {
			t.Fatalf("expected code %s, got %s", code, p.Code())
		}
		if len(p.WordClassifiers()) == 0 || len(p.BeginningClassifiers()) == 0 {
			t.Fatalf("expected classifiers for %s", code)
		}
	}
	_, err := reg.Lookup("xx")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
	codes := reg.Codes()
	if len(codes) != 3 || codes[0] != "de" || codes[2] != "nl" {
		t.Fatalf("unexpected codes: %v", codes)
	}
}

func TestRegistryWithOverrides(t *testing.T) {
	reg := Default()
	custom, err := NewProfile("en", VowelGroups("aeiou"), nil, nil)
	if err != nil {
		t.Fatalf("new profile: %v", err)
	}
	extra, err := NewProfile("xx", VowelGroups("aeiou"), nil, nil)
	if err != nil {
		t.Fatalf("new profile: %v", err)
	}
	next, err := reg.With(custom, extra)
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	p, err := next.Lookup("en")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(p.WordClassifiers()) != 0 {
		t.Fatalf("expected override profile")
	}
	if _, err := next.Lookup("xx"); err != nil {
		t.Fatalf("expected added profile: %v", err)
	}
	if orig, _ := reg.Lookup("en"); len(orig.WordClassifiers()) == 0 {
		t.Fatalf("expected original registry to stay unchanged")
	}
	if _, err := NewRegistry(extra, extra); err == nil {
		t.Fatalf("expected duplicate code error")
	}
}

func TestBuiltinNamesDoNotCollide(t *testing.T) {
	for _, def := range builtinProfiles {
		if _, err := def.build(); err != nil {
			t.Fatalf("build %s: %v", def.code, err)
		}
	}
	if _, err := Builtin("zz"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
}

func TestSyllableCounters(t *testing.T) {
	cases := []struct {
		token string
		want  int
	}{
		{"cat", 1},
		{"make", 1},
		{"table", 2},
		{"agree", 2},
		{"readability", 5},
		{"rhythm", 1},
		{"1984", 0},
		{"Beautiful", 3},
	}
	for _, tc := range cases {
		if got := EnglishSyllables(tc.token); got != tc.want {
			t.Fatalf("EnglishSyllables(%q) = %d, want %d", tc.token, got, tc.want)
		}
	}

	german := VowelGroups("aeiouyäöü")
	if got := german("Häuser"); got != 2 {
		t.Fatalf("expected 2 syllables for Häuser, got %d", got)
	}
	if got := german("--"); got != 0 {
		t.Fatalf("expected 0 syllables for punctuation, got %d", got)
	}
}

func TestGermanPrepositionsWithLeadingUmlaut(t *testing.T) {
	p, err := Builtin("de")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	var prep Classifier
	for _, c := range p.WordClassifiers() {
		if c.Name() == "preposition" {
			prep = c
		}
	}
	if prep == nil {
		t.Fatalf("missing preposition classifier")
	}
	if got := prep.Count("Über den Berg und über das Tal mit dem Hund"); got != 3 {
		t.Fatalf("expected 3 prepositions, got %d", got)
	}
	if got := prep.Count("Überall ist es still"); got != 0 {
		t.Fatalf("expected no match inside longer words, got %d", got)
	}
}

func TestNominalizationsWithNonASCIILetters(t *testing.T) {
	cases := []struct {
		code string
		text string
		want int
	}{
		{"de", "Die Prüfung und die Bewährung", 2},
		{"de", "Zerstörung, Prüfungen.", 2},
		{"de", "Prüfungsamt", 0},
		{"nl", "De verhuizing en de gezondheid", 2},
		{"nl", "Één vóórstelling", 1},
		{"en", "The naïve nation made a statement", 1},
	}
	for _, tc := range cases {
		p, err := Builtin(tc.code)
		if err != nil {
			t.Fatalf("builtin %s: %v", tc.code, err)
		}
		var nominal Classifier
		for _, c := range p.WordClassifiers() {
			if c.Name() == "nominalization" {
				nominal = c
			}
		}
		if nominal == nil {
			t.Fatalf("%s: missing nominalization classifier", tc.code)
		}
		if got := nominal.Count(tc.text); got != tc.want {
			t.Fatalf("%s Count(%q): expected %d, got %d", tc.code, tc.text, tc.want, got)
		}
	}
}
