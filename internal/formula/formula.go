// Package formula implements the published readability indices.
//
// Every function takes only the counts it needs and rejects a zero word or
// sentence count instead of returning Inf or NaN.
package formula

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/readability/internal/measure"
)

var (
	// ErrZeroDenominator is returned when words or sentences is below one.
	ErrZeroDenominator = errors.New("zero denominator")
	// ErrNegativeCount is returned for counts that cannot be negative.
	ErrNegativeCount = errors.New("negative count")
)

// Index names, in output order.
const (
	NameKincaid           = "Kincaid"
	NameARI               = "ARI"
	NameColemanLiau       = "Coleman-Liau"
	NameFleschReadingEase = "FleschReadingEase"
	NameGunningFog        = "GunningFogIndex"
	NameLIX               = "LIX"
	NameSMOG              = "SMOGIndex"
	NameRIX               = "RIX"
)

// Names lists the index names in output order.
var Names = []string{
	NameKincaid,
	NameARI,
	NameColemanLiau,
	NameFleschReadingEase,
	NameGunningFog,
	NameLIX,
	NameSMOG,
	NameRIX,
}

// Grade is one named index value.
type Grade struct {
	Name  string
	Value float64
}

// Kincaid computes the Flesch-Kincaid grade level.
func Kincaid(syllables, words, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return 11.8*(float64(syllables)/float64(words)) + 0.39*(float64(words)/float64(sentences)) - 15.59, nil
}

// ARI computes the Automated Readability Index.
func ARI(characters, words, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return 4.71*(float64(characters)/float64(words)) + 0.5*(float64(words)/float64(sentences)) - 21.43, nil
}

// ColemanLiau computes the Coleman-Liau index.
func ColemanLiau(characters, words, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return 5.879851*float64(characters)/float64(words) - 29.587280*float64(sentences)/float64(words) - 15.800804, nil
}

// FleschReadingEase computes the Flesch reading ease score.
func FleschReadingEase(syllables, words, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return 206.835 - 84.6*(float64(syllables)/float64(words)) - 1.015*(float64(words)/float64(sentences)), nil
}

// GunningFog computes the Gunning fog index.
func GunningFog(words, complexWords, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return 0.4 * ((float64(words) / float64(sentences)) + 100*(float64(complexWords)/float64(words))), nil
}

// LIX computes the Läsbarhetsindex.
func LIX(words, longWords, sentences int) (float64, error) {
	if err := requirePositive(words, sentences); err != nil {
		return 0, err
	}
	return float64(words)/float64(sentences) + 100*float64(longWords)/float64(words), nil
}

// SMOG computes the SMOG index.
func SMOG(complexWords, sentences int) (float64, error) {
	if sentences < 1 {
		return 0, fmt.Errorf("%w: %d sentences", ErrZeroDenominator, sentences)
	}
	if complexWords < 0 {
		return 0, fmt.Errorf("%w: %d complex words", ErrNegativeCount, complexWords)
	}
	return math.Sqrt(float64(complexWords)*(30/float64(sentences))) + 3, nil
}

// RIX computes the Anderson RIX index.
func RIX(longWords, sentences int) (float64, error) {
	if sentences < 1 {
		return 0, fmt.Errorf("%w: %d sentences", ErrZeroDenominator, sentences)
	}
	return float64(longWords) / float64(sentences), nil
}

// All computes every index from c, in the order of Names.
func All(c measure.Counts) ([]Grade, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	type calc func() (float64, error)
	calcs := []calc{
		func() (float64, error) { return Kincaid(c.Syllables, c.Words, c.Sentences) },
		func() (float64, error) { return ARI(c.Characters, c.Words, c.Sentences) },
		func() (float64, error) { return ColemanLiau(c.Characters, c.Words, c.Sentences) },
		func() (float64, error) { return FleschReadingEase(c.Syllables, c.Words, c.Sentences) },
		func() (float64, error) { return GunningFog(c.Words, c.ComplexWords, c.Sentences) },
		func() (float64, error) { return LIX(c.Words, c.LongWords, c.Sentences) },
		func() (float64, error) { return SMOG(c.ComplexWords, c.Sentences) },
		func() (float64, error) { return RIX(c.LongWords, c.Sentences) },
	}
	grades := make([]Grade, 0, len(calcs))
	for i, fn := range calcs {
		v, err := fn()
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", Names[i], err)
		}
		grades = append(grades, Grade{Name: Names[i], Value: v})
	}
	return grades, nil
}

func requirePositive(words, sentences int) error {
	if words < 1 || sentences < 1 {
		return fmt.Errorf("%w: %d words, %d sentences", ErrZeroDenominator, words, sentences)
	}
	return nil
}
