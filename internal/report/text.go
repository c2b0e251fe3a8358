package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/readability/internal/result"
)

// DefaultPrecision is the number of decimals printed for metric values.
const DefaultPrecision = 2

var categoryStyle = lipgloss.NewStyle().Bold(true)

// TextOptions control the plain text layout.
type TextOptions struct {
	Precision int
	Color     bool
}

// WriteText prints res as "category:" headers followed by one indented
// "name value" line per metric. Merged results have no headers.
func WriteText(w io.Writer, res result.Result, opts TextOptions) error {
	for _, cat := range res.Categories {
		indent := "    "
		if res.Merged {
			indent = ""
		} else {
			header := cat.Name + ":"
			if opts.Color {
				header = categoryStyle.Render(header)
			}
			if _, err := fmt.Fprintln(w, header); err != nil {
				return err
			}
		}
		for _, m := range cat.Metrics {
			if _, err := fmt.Fprintln(w, indent+FormatMetric(m.Name, m.Value, opts.Precision)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatMetric renders one "name:" metric line. With a positive precision trailing
// zeros and a dangling decimal point are dropped, so counts print as
// integers.
func FormatMetric(name string, value float64, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	line := fmt.Sprintf("%-20s %12.*f", name+":", precision, value)
	if precision > 0 {
		line = strings.TrimRight(line, "0")
		line = strings.TrimSuffix(line, ".")
	}
	return line
}

// ShouldUseColor reports whether w is a terminal that accepts styling.
// NO_COLOR always wins; force enables styling for non-terminals.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the width of stdout, or fallback when unknown.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
