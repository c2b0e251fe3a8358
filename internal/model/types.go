// Package model defines shared data structures.
package model

import "time"

// Output formats accepted by the measure command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Input variants recorded with a run.
const (
	VariantLines = "lines"
	VariantText  = "text"
)

// Config defines measurement settings resolved from flags and config.
type Config struct {
	Lang      string
	Merge     bool
	Format    string
	Precision int
	Record    bool
}

// HistoryFilter selects recorded runs.
type HistoryFilter struct {
	Lang string
	Last int
}

// Run describes one recorded measurement.
type Run struct {
	ID        string
	BatchID   string
	StartedAt time.Time
	Lang      string
	Source    string
	Variant   string
}

// RunMetric is one stored metric of a run, in result order.
type RunMetric struct {
	Position int
	Category string
	Name     string
	Value    float64
}

// RunSummary pairs a run with a headline grade for listings.
type RunSummary struct {
	Run
	Kincaid float64
	Words   float64
}
