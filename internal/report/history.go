package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/readability/internal/formula"
	"github.com/verte-zerg/readability/internal/model"
)

const sparkChars = " .:-=+*#%@"

// TrendMetrics are the grades charted across recorded runs.
var TrendMetrics = []string{formula.NameKincaid, formula.NameFleschReadingEase, formula.NameGunningFog, formula.NameLIX, "words_per_sentence"}

// RunRows converts runs into table cells: started, lang, variant, Kincaid,
// words, source, short ID.
func RunRows(runs []model.RunSummary) (headers []string, rows [][]string) {
	headers = []string{"Started", "Lang", "Variant", "Kincaid", "Words", "Source", "ID"}
	rows = make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Lang,
			r.Variant,
			fmt.Sprintf("%.2f", r.Kincaid),
			fmt.Sprintf("%.0f", r.Words),
			r.Source,
			ShortID(r.ID),
		})
	}
	return headers, rows
}

// ShortID returns the first block of a UUID.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// RenderRuns prints recorded runs as an aligned table.
func RenderRuns(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	headers, rows := RunRows(runs)
	rightAlign := map[int]bool{3: true, 4: true}
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderMetrics prints the stored metrics of one run grouped by category.
func RenderMetrics(w io.Writer, metrics []model.RunMetric, precision int) error {
	current := ""
	for i, m := range metrics {
		if i == 0 || m.Category != current {
			current = m.Category
			if current != "" {
				if _, err := fmt.Fprintln(w, current+":"); err != nil {
					return err
				}
			}
		}
		indent := ""
		if current != "" {
			indent = "    "
		}
		if _, err := fmt.Fprintln(w, indent+FormatMetric(m.Name, m.Value, precision)); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrends prints one sparkline per metric over runs, oldest first,
// smoothed with a moving average of window runs.
func RenderTrends(w io.Writer, runs []model.RunSummary, values map[string]map[string]float64, names []string, window int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	headers := []string{"Metric", "Last", "Min", "Max", "Trend"}
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		series := make([]float64, 0, len(runs))
		for _, r := range runs {
			if v, ok := values[r.ID][name]; ok {
				series = append(series, v)
			}
		}
		if len(series) == 0 {
			continue
		}
		lo, hi := minMax(series)
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.2f", series[len(series)-1]),
			fmt.Sprintf("%.2f", lo),
			fmt.Sprintf("%.2f", hi),
			Sparkline(MovingAverage(series, window)),
		})
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No metrics recorded.")
		return err
	}
	for _, line := range FormatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[min(max(idx, 0), len(sparkChars)-1)])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
