package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/verte-zerg/readability/internal/batch"
)

// WriteCSV writes one header row of metric names, led by an empty cell, and
// one row per document keyed by its ID.
func WriteCSV(w io.Writer, table batch.Table) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, "")
	header = append(header, table.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.ID)
		for _, v := range row.Values {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
