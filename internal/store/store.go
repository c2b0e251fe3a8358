// Package store handles SQLite persistence of measurement runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/readability/internal/model"
	"github.com/verte-zerg/readability/internal/result"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			source TEXT NOT NULL,
			variant TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_metrics (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_metrics_name ON run_metrics(name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MetricsFromResult flattens res into storable metrics, keeping result order.
func MetricsFromResult(res result.Result) []model.RunMetric {
	entries := res.Entries()
	out := make([]model.RunMetric, len(entries))
	for i, e := range entries {
		out[i] = model.RunMetric{Position: i, Category: e.Category, Name: e.Name, Value: e.Value}
	}
	return out
}

// InsertRun stores a run and its metrics. An empty run ID is replaced by a
// fresh UUID; the stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, run model.Run, metrics []model.RunMetric) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, batch_id, started_at, lang, source, variant)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.BatchID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Lang,
		run.Source,
		run.Variant,
	)
	if err != nil {
		return "", err
	}

	if len(metrics) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_metrics (run_id, position, category, name, value)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, m := range metrics {
			if _, err = stmt.ExecContext(ctx, run.ID, m.Position, m.Category, m.Name, m.Value); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns runs matching filter, oldest first. Last limits the
// listing to the most recent runs.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunSummary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Lang != "" {
		clauses = append(clauses, "r.lang = ?")
		args = append(args, filter.Lang)
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT id, batch_id, started_at, lang, source, variant, kincaid, words FROM (
		SELECT r.id, r.batch_id, r.started_at, r.lang, r.source, r.variant,
			COALESCE((SELECT value FROM run_metrics m WHERE m.run_id = r.id AND m.name = 'Kincaid' LIMIT 1), 0) AS kincaid,
			COALESCE((SELECT value FROM run_metrics m WHERE m.run_id = r.id AND m.name = 'words' LIMIT 1), 0) AS words
		FROM runs r
		WHERE %s
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?
	) ORDER BY started_at ASC`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var summary model.RunSummary
		var startedAt string
		if err := rows.Scan(&summary.ID, &summary.BatchID, &startedAt, &summary.Lang, &summary.Source, &summary.Variant, &summary.Kincaid, &summary.Words); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		summary.StartedAt = parsed
		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunMetrics returns the metrics of one run ordered by position.
func (s *Store) RunMetrics(ctx context.Context, runID string) ([]model.RunMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, category, name, value FROM run_metrics WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var metrics []model.RunMetric
	for rows.Next() {
		var m model.RunMetric
		if err := rows.Scan(&m.Position, &m.Category, &m.Name, &m.Value); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return metrics, nil
}

// MetricValues returns the values of the named metrics for each run, keyed by
// run ID and metric name.
func (s *Store) MetricValues(ctx context.Context, runIDs, names []string) (map[string]map[string]float64, error) {
	if len(runIDs) == 0 || len(names) == 0 {
		return map[string]map[string]float64{}, nil
	}
	idPlaceholders := make([]string, len(runIDs))
	args := make([]any, 0, len(runIDs)+len(names))
	for i, id := range runIDs {
		idPlaceholders[i] = "?"
		args = append(args, id)
	}
	namePlaceholders := make([]string, len(names))
	for i, name := range names {
		namePlaceholders[i] = "?"
		args = append(args, name)
	}

	query := fmt.Sprintf(`SELECT run_id, name, value
		FROM run_metrics
		WHERE run_id IN (%s) AND name IN (%s)
		ORDER BY run_id, position`, strings.Join(idPlaceholders, ","), strings.Join(namePlaceholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	values := map[string]map[string]float64{}
	for rows.Next() {
		var runID, name string
		var value float64
		if err := rows.Scan(&runID, &name, &value); err != nil {
			return nil, err
		}
		if _, ok := values[runID]; !ok {
			values[runID] = map[string]float64{}
		}
		// First occurrence wins when a name repeats across categories.
		if _, ok := values[runID][name]; !ok {
			values[runID][name] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
