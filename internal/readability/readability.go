// Package readability wires language lookup, aggregation, formulas and
// result assembly into single calls.
//
// The registry is passed in explicitly; measurements never consult global
// state, so concurrent calls with one registry need no synchronization.
package readability

import (
	"io"

	"github.com/verte-zerg/readability/internal/formula"
	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/measure"
	"github.com/verte-zerg/readability/internal/result"
)

// Options select the language profile and output shape.
type Options struct {
	Lang  string
	Merge bool
}

// MeasureLines measures pre-segmented text held in memory.
func MeasureLines(reg *lang.Registry, lines []string, opts Options) (result.Result, error) {
	p, err := reg.Lookup(opts.Lang)
	if err != nil {
		return result.Result{}, err
	}
	counts, err := measure.Lines(p, lines)
	if err != nil {
		return result.Result{}, err
	}
	return Evaluate(counts, opts.Merge)
}

// MeasureReader measures pre-segmented text read from r.
func MeasureReader(reg *lang.Registry, r io.Reader, opts Options) (result.Result, error) {
	p, err := reg.Lookup(opts.Lang)
	if err != nil {
		return result.Result{}, err
	}
	counts, err := measure.Scan(p, r)
	if err != nil {
		return result.Result{}, err
	}
	return Evaluate(counts, opts.Merge)
}

// MeasureText measures a raw string.
func MeasureText(reg *lang.Registry, text string, opts Options) (result.Result, error) {
	p, err := reg.Lookup(opts.Lang)
	if err != nil {
		return result.Result{}, err
	}
	counts, err := measure.Text(p, text)
	if err != nil {
		return result.Result{}, err
	}
	return Evaluate(counts, opts.Merge)
}

// Evaluate computes grades for counts and assembles the result.
func Evaluate(counts measure.Counts, merge bool) (result.Result, error) {
	grades, err := formula.All(counts)
	if err != nil {
		return result.Result{}, err
	}
	return result.Assemble(counts, grades, merge)
}
