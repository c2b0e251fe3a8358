// Package result assembles counts and grades into ordered, named metrics.
package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/readability/internal/formula"
	"github.com/verte-zerg/readability/internal/measure"
)

// Category names, in output order.
const (
	CategoryGrades     = "readability grades"
	CategoryInfo       = "sentence info"
	CategoryWordUsage  = "word usage"
	CategoryBeginnings = "sentence beginnings"
)

// ErrKeyCollision is returned when merging would overwrite a metric.
var ErrKeyCollision = errors.New("duplicate result key")

// Metric is one named value.
type Metric struct {
	Name  string
	Value float64
}

// Category is an ordered group of metrics.
type Category struct {
	Name    string
	Metrics []Metric
}

// Entry is a metric together with the category it came from. Merged results
// have an empty category.
type Entry struct {
	Category string
	Name     string
	Value    float64
}

// Result is either four categories, or a single unnamed category when merged.
type Result struct {
	Merged     bool
	Categories []Category
}

// Assemble builds the result for c and grades. In merge mode all metrics are
// flattened into one mapping; a repeated name is an error.
func Assemble(c measure.Counts, grades []formula.Grade, merge bool) (Result, error) {
	ratios, err := c.Ratios()
	if err != nil {
		return Result{}, err
	}

	gradeMetrics := make([]Metric, 0, len(grades))
	for _, g := range grades {
		gradeMetrics = append(gradeMetrics, Metric{Name: g.Name, Value: g.Value})
	}
	info := []Metric{
		{"characters_per_word", ratios.CharactersPerWord},
		{"syll_per_word", ratios.SyllablesPerWord},
		{"words_per_sentence", ratios.WordsPerSentence},
		{"sentences_per_paragraph", ratios.SentencesPerParagraph},
		{"characters", float64(c.Characters)},
		{"syllables", float64(c.Syllables)},
		{"words", float64(c.Words)},
		{"sentences", float64(c.Sentences)},
		{"paragraphs", float64(c.Paragraphs)},
		{"long_words", float64(c.LongWords)},
		{"complex_words", float64(c.ComplexWords)},
	}
	categories := []Category{
		{Name: CategoryGrades, Metrics: gradeMetrics},
		{Name: CategoryInfo, Metrics: info},
		{Name: CategoryWordUsage, Metrics: tallyMetrics(c.WordUsage)},
		{Name: CategoryBeginnings, Metrics: tallyMetrics(c.SentenceBeginnings)},
	}
	if !merge {
		return Result{Categories: categories}, nil
	}

	seen := map[string]string{}
	var flat []Metric
	for _, cat := range categories {
		for _, m := range cat.Metrics {
			if prev, ok := seen[m.Name]; ok {
				return Result{}, fmt.Errorf("%w: %q in %s and %s", ErrKeyCollision, m.Name, prev, cat.Name)
			}
			seen[m.Name] = cat.Name
			flat = append(flat, m)
		}
	}
	return Result{Merged: true, Categories: []Category{{Metrics: flat}}}, nil
}

func tallyMetrics(tallies []measure.Tally) []Metric {
	out := make([]Metric, 0, len(tallies))
	for _, t := range tallies {
		out = append(out, Metric{Name: t.Name, Value: float64(t.Count)})
	}
	return out
}

// Entries lists every metric in output order.
func (r Result) Entries() []Entry {
	var out []Entry
	for _, cat := range r.Categories {
		for _, m := range cat.Metrics {
			out = append(out, Entry{Category: cat.Name, Name: m.Name, Value: m.Value})
		}
	}
	return out
}

// Category returns the named category.
func (r Result) Category(name string) (Category, bool) {
	for _, cat := range r.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// Value returns the first metric called name in any category.
func (r Result) Value(name string) (float64, bool) {
	for _, cat := range r.Categories {
		for _, m := range cat.Metrics {
			if m.Name == name {
				return m.Value, true
			}
		}
	}
	return 0, false
}

// MarshalJSON writes the result as a nested object, or a flat one when
// merged, keeping metric order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if r.Merged {
		var metrics []Metric
		if len(r.Categories) > 0 {
			metrics = r.Categories[0].Metrics
		}
		if err := writeJSONMetrics(&buf, metrics); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	buf.WriteByte('{')
	for i, cat := range r.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeJSONMetrics(&buf, cat.Metrics); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONMetrics(buf *bytes.Buffer, metrics []Metric) error {
	buf.WriteByte('{')
	for i, m := range metrics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Name)
		if err != nil {
			return err
		}
		value, err := json.Marshal(m.Value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", m.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return nil
}

// MarshalYAML implements yaml.Marshaler with ordered mapping nodes.
func (r Result) MarshalYAML() (any, error) {
	if r.Merged {
		var metrics []Metric
		if len(r.Categories) > 0 {
			metrics = r.Categories[0].Metrics
		}
		return yamlMetrics(metrics), nil
	}
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, cat := range r.Categories {
		root.Content = append(root.Content, yamlKey(cat.Name), yamlMetrics(cat.Metrics))
	}
	return root, nil
}

func yamlMetrics(metrics []Metric) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range metrics {
		node.Content = append(node.Content, yamlKey(m.Name), yamlNumber(m.Value))
	}
	return node
}

func yamlKey(name string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
}

func yamlNumber(v float64) *yaml.Node {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v), 10)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}
}
