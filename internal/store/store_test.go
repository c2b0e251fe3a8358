package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/model"
	"github.com/verte-zerg/readability/internal/readability"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertRunAndReadMetrics(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	res, err := readability.MeasureLines(lang.Default(), []string{"The cat sat .", "It slept ."}, readability.Options{Lang: "en"})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	metrics := MetricsFromResult(res)
	id, err := st.InsertRun(ctx, model.Run{Lang: "en", Source: "<stdin>", Variant: model.VariantLines}, metrics)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid id, got %q: %v", id, err)
	}

	stored, err := st.RunMetrics(ctx, id)
	if err != nil {
		t.Fatalf("run metrics: %v", err)
	}
	if len(stored) != len(metrics) {
		t.Fatalf("expected %d metrics, got %d", len(metrics), len(stored))
	}
	for i, m := range stored {
		if m != metrics[i] {
			t.Fatalf("metric %d: expected %+v, got %+v", i, metrics[i], m)
		}
	}
	if stored[0].Name != "Kincaid" || stored[0].Category != "readability grades" {
		t.Fatalf("unexpected first metric: %+v", stored[0])
	}
}

func TestListRunsFiltersAndLimits(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		runLang := "en"
		if i == 1 {
			runLang = "de"
		}
		run := model.Run{
			StartedAt: time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			Lang:      runLang,
			Source:    "doc.txt",
			Variant:   model.VariantText,
		}
		metrics := []model.RunMetric{
			{Position: 0, Category: "readability grades", Name: "Kincaid", Value: float64(i)},
			{Position: 1, Category: "sentence info", Name: "words", Value: float64(10 * i)},
		}
		id, err := st.InsertRun(ctx, run, metrics)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	all, err := st.ListRuns(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}

	runs, err := st.ListRuns(ctx, model.HistoryFilter{Lang: "en", Last: 2})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[3] {
		t.Fatalf("unexpected run order: %+v", runs)
	}
	if runs[1].Kincaid != 3 || runs[1].Words != 30 {
		t.Fatalf("unexpected headline values: %+v", runs[1])
	}
	if !runs[0].StartedAt.Equal(time.Unix(0, 0).Add(2 * time.Minute)) {
		t.Fatalf("unexpected started_at: %v", runs[0].StartedAt)
	}

	values, err := st.MetricValues(ctx, ids, []string{"words"})
	if err != nil {
		t.Fatalf("metric values: %v", err)
	}
	if len(values) != 4 || values[ids[2]]["words"] != 20 {
		t.Fatalf("unexpected metric values: %v", values)
	}
	if _, ok := values[ids[2]]["Kincaid"]; ok {
		t.Fatalf("expected only requested names")
	}
}

func TestInsertRunKeepsGivenID(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	id, err := st.InsertRun(ctx, model.Run{ID: "fixed", BatchID: "batch", Lang: "nl"}, nil)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if id != "fixed" {
		t.Fatalf("expected fixed id, got %q", id)
	}
	if _, err := st.InsertRun(ctx, model.Run{ID: "fixed", Lang: "nl"}, nil); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	runs, err := st.ListRuns(ctx, model.HistoryFilter{Lang: "nl"})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].BatchID != "batch" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}
