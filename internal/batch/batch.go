// Package batch measures many documents in parallel.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/readability"
	"github.com/verte-zerg/readability/internal/result"
	"github.com/verte-zerg/readability/internal/source"
)

// Row is the merged result of one document.
type Row struct {
	ID     string
	Path   string
	Result result.Result
	Values []float64
}

// Table holds one row per document, in input order. Every row has one value
// per column.
type Table struct {
	Columns []string
	Rows    []Row
}

// DefaultWorkers is the parallelism used when workers <= 0.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Run measures docs with the profile for code in merge mode. The language is
// resolved once up front; each document gets its own aggregation pass. The
// first failure cancels the remaining work and names the document.
func Run(ctx context.Context, reg *lang.Registry, docs []source.Document, code string, workers int) (Table, error) {
	if _, err := reg.Lookup(code); err != nil {
		return Table{}, err
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]result.Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := readability.MeasureText(reg, doc.Text, readability.Options{Lang: code, Merge: true})
			if err != nil {
				return fmt.Errorf("failed to measure %s: %w", doc.Path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Table{}, err
	}
	return buildTable(docs, results)
}

func buildTable(docs []source.Document, results []result.Result) (Table, error) {
	var table Table
	if len(results) == 0 {
		return table, nil
	}
	for _, e := range results[0].Entries() {
		table.Columns = append(table.Columns, e.Name)
	}
	table.Rows = make([]Row, len(results))
	for i, res := range results {
		entries := res.Entries()
		if len(entries) != len(table.Columns) {
			return Table{}, fmt.Errorf("document %s has %d metrics, expected %d", docs[i].Path, len(entries), len(table.Columns))
		}
		values := make([]float64, len(entries))
		for j, e := range entries {
			if e.Name != table.Columns[j] {
				return Table{}, fmt.Errorf("document %s has metric %q at column %q", docs[i].Path, e.Name, table.Columns[j])
			}
			values[j] = e.Value
		}
		table.Rows[i] = Row{ID: docs[i].ID, Path: docs[i].Path, Result: res, Values: values}
	}
	return table, nil
}
