package batch

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/measure"
	"github.com/verte-zerg/readability/internal/readability"
	"github.com/verte-zerg/readability/internal/source"
)

func docs(n int) []source.Document {
	out := make([]source.Document, n)
	for i := range out {
		words := strings.Repeat("word ", i+1)
		out[i] = source.Document{
			ID:   fmt.Sprintf("doc%d", i),
			Path: fmt.Sprintf("doc%d.txt", i),
			Text: "The sentence has " + words + ".\n\nAnother paragraph .",
		}
	}
	return out
}

func TestRunKeepsInputOrder(t *testing.T) {
	reg := lang.Default()
	input := docs(12)
	table, err := Run(context.Background(), reg, input, "en", 3)
	require.NoError(t, err)
	require.Len(t, table.Rows, len(input))

	assert.Equal(t, "Kincaid", table.Columns[0])
	wordsCol := -1
	for i, c := range table.Columns {
		if c == "words" {
			wordsCol = i
		}
	}
	require.GreaterOrEqual(t, wordsCol, 0)

	for i, row := range table.Rows {
		assert.Equal(t, input[i].ID, row.ID)
		require.Len(t, row.Values, len(table.Columns))
		assert.Equal(t, float64(i+1+5), row.Values[wordsCol])
		assert.True(t, row.Result.Merged)

		single, err := readability.MeasureText(reg, input[i].Text, readability.Options{Lang: "en", Merge: true})
		require.NoError(t, err)
		assert.Equal(t, single, row.Result)
	}
}

func TestRunUnknownLanguage(t *testing.T) {
	_, err := Run(context.Background(), lang.Default(), docs(2), "xx", 2)
	assert.ErrorIs(t, err, lang.ErrUnknownLanguage)
}

func TestRunNamesFailingDocument(t *testing.T) {
	input := docs(3)
	input[1].Text = "\n\n"
	_, err := Run(context.Background(), lang.Default(), input, "en", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, measure.ErrEmptyInput)
	assert.Contains(t, err.Error(), "doc1.txt")
}

func TestRunEmpty(t *testing.T) {
	table, err := Run(context.Background(), lang.Default(), nil, "en", 0)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Empty(t, table.Columns)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, lang.Default(), docs(4), "en", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
