// Package main provides the CLI entrypoint for readability.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/readability/internal/batch"
	"github.com/verte-zerg/readability/internal/config"
	"github.com/verte-zerg/readability/internal/historyui"
	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/logging"
	"github.com/verte-zerg/readability/internal/model"
	"github.com/verte-zerg/readability/internal/readability"
	"github.com/verte-zerg/readability/internal/report"
	"github.com/verte-zerg/readability/internal/result"
	"github.com/verte-zerg/readability/internal/server"
	"github.com/verte-zerg/readability/internal/source"
	"github.com/verte-zerg/readability/internal/store"
)

const (
	defaultLang      = "en"
	defaultFormat    = model.FormatText
	defaultPrecision = report.DefaultPrecision
	defaultAddr      = ":8080"
	stdinSource      = "<stdin>"
)

var (
	measureLang      string
	measureMerge     bool
	measureFormat    string
	measurePrecision int
	measureRecord    bool

	logLevel string

	csvLang    string
	csvWorkers int
	csvRecord  bool

	historyLang  string
	historyLast  int
	historyPlain bool

	serveAddr    string
	serveOrigins []string
	serveLang    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "readability [FILE]",
		Short: "Measure readability of a text",
		Long: `Measure readability grades and text statistics.

Without FILE, standard input is read as pre-tokenized text: one sentence per
line, tokens separated by spaces, paragraphs separated by an empty line.
With FILE, the document is loaded (.txt, .md, .html, .docx, .pdf) and every
non-empty line counts as a sentence.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMeasureCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&measureLang, "lang", "L", defaultLang, "language code")
	rootCmd.Flags().BoolVar(&measureMerge, "merge", false, "flatten all categories into one mapping")
	rootCmd.Flags().StringVar(&measureFormat, "format", defaultFormat, "output format (text, json, yaml)")
	rootCmd.Flags().IntVar(&measurePrecision, "precision", defaultPrecision, "decimals in text output")
	rootCmd.Flags().BoolVar(&measureRecord, "record", false, "store the run in the history database")

	rootCmd.AddCommand(newCSVCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	return fileCfg, nil
}

func newLogger() (zerolog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	return logging.New(os.Stderr, level), nil
}

func buildRegistry(fileCfg config.FileConfig) (*lang.Registry, error) {
	reg, err := config.ExtendRegistry(lang.Default(), fileCfg.Profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to load language profiles: %w", err)
	}
	return reg, nil
}

func runMeasureCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &measureLang, fileCfg.Measure.Lang)
	applyBoolConfig(cmd, "merge", &measureMerge, fileCfg.Measure.Merge)
	applyStringConfig(cmd, "format", &measureFormat, fileCfg.Measure.Format)
	applyIntConfig(cmd, "precision", &measurePrecision, fileCfg.Measure.Precision)
	applyBoolConfig(cmd, "record", &measureRecord, fileCfg.History.Record)

	cfg := model.Config{
		Lang:      measureLang,
		Merge:     measureMerge,
		Format:    strings.ToLower(strings.TrimSpace(measureFormat)),
		Precision: measurePrecision,
		Record:    measureRecord,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(fileCfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	opts := readability.Options{Lang: cfg.Lang, Merge: cfg.Merge}
	run := model.Run{StartedAt: started, Lang: cfg.Lang}
	var res result.Result
	if len(args) == 0 || args[0] == "-" {
		run.Source, run.Variant = stdinSource, model.VariantLines
		res, err = readability.MeasureReader(reg, cmd.InOrStdin(), opts)
	} else {
		run.Source, run.Variant = args[0], model.VariantText
		var doc source.Document
		doc, err = source.Load(ctx, args[0])
		if err != nil {
			return err
		}
		res, err = readability.MeasureText(reg, doc.Text, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to measure %s: %w", run.Source, err)
	}
	logger.Debug().Str("source", run.Source).Str("lang", cfg.Lang).Dur("elapsed", time.Since(started)).Msg("measured")

	if err := writeResult(cmd.OutOrStdout(), res, cfg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Record {
		return recordRuns(ctx, logger, []model.Run{run}, []result.Result{res})
	}
	return nil
}

func writeResult(w io.Writer, res result.Result, cfg model.Config) error {
	switch cfg.Format {
	case model.FormatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case model.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	default:
		return report.WriteText(w, res, report.TextOptions{
			Precision: cfg.Precision,
			Color:     report.ShouldUseColor(w, false),
		})
	}
}

func recordRuns(ctx context.Context, logger zerolog.Logger, runs []model.Run, results []result.Result) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("failed to close db")
		}
	}()
	for i, run := range runs {
		id, err := st.InsertRun(ctx, run, store.MetricsFromResult(results[i]))
		if err != nil {
			return fmt.Errorf("failed to record run for %s: %w", run.Source, err)
		}
		logger.Debug().Str("run", id).Str("source", run.Source).Msg("recorded run")
	}
	return nil
}

func newCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv FILES...",
		Short: "Measure many documents and print merged results as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCSVCmd,
	}
	cmd.Flags().StringVarP(&csvLang, "lang", "L", defaultLang, "language code")
	cmd.Flags().IntVar(&csvWorkers, "workers", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&csvRecord, "record", false, "store the runs in the history database")
	return cmd
}

func runCSVCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &csvLang, fileCfg.Measure.Lang)
	applyIntConfig(cmd, "workers", &csvWorkers, fileCfg.Batch.Workers)
	applyBoolConfig(cmd, "record", &csvRecord, fileCfg.History.Record)
	if csvWorkers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(fileCfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	docs, err := source.LoadAll(ctx, args)
	if err != nil {
		return err
	}
	table, err := batch.Run(ctx, reg, docs, csvLang, csvWorkers)
	if err != nil {
		return err
	}
	logger.Debug().Int("documents", len(docs)).Dur("elapsed", time.Since(started)).Msg("batch measured")

	if err := report.WriteCSV(cmd.OutOrStdout(), table); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !csvRecord {
		return nil
	}
	batchID := uuid.NewString()
	runs := make([]model.Run, len(table.Rows))
	results := make([]result.Result, len(table.Rows))
	for i, row := range table.Rows {
		runs[i] = model.Run{BatchID: batchID, StartedAt: started, Lang: csvLang, Source: row.Path, Variant: model.VariantText}
		results[i] = row.Result
	}
	return recordRuns(ctx, logger, runs, results)
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List available language profiles",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	reg, err := buildRegistry(fileCfg)
	if err != nil {
		return err
	}
	for _, code := range reg.Codes() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), code); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyLang, "lang", "", "language filter")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print tables instead of the interactive browser")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	precision := defaultPrecision
	if fileCfg.Measure.Precision != nil {
		precision = *fileCfg.Measure.Precision
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Lang: historyLang, Last: historyLast}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyPlain {
		return renderHistoryPlain(cmd.Context(), cmd.OutOrStdout(), st, filter)
	}
	ui := historyui.NewModel(st, filter, precision)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func renderHistoryPlain(ctx context.Context, w io.Writer, st *store.Store, filter model.HistoryFilter) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderRuns(w, runs); err != nil {
		return err
	}
	if len(runs) == 0 {
		return nil
	}
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	values, err := st.MetricValues(ctx, ids, report.TrendMetrics)
	if err != nil {
		return fmt.Errorf("failed to load metrics: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return report.RenderTrends(w, runs, values, report.TrendMetrics, 1)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve measurements over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&serveOrigins, "allowed-origins", []string{"*"}, "CORS allowed origins")
	cmd.Flags().StringVarP(&serveLang, "lang", "L", defaultLang, "default language code")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "lang", &serveLang, fileCfg.Measure.Lang)
	if len(fileCfg.Serve.AllowedOrigins) > 0 && !cmd.Flags().Changed("allowed-origins") {
		serveOrigins = fileCfg.Serve.AllowedOrigins
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(fileCfg)
	if err != nil {
		return err
	}
	if _, err := reg.Lookup(serveLang); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(reg, server.Config{
		Addr:           serveAddr,
		AllowedOrigins: serveOrigins,
		DefaultLang:    serveLang,
	}, logger)
	return srv.ListenAndServe(ctx)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# readability configuration
# Uncomment a value to enable it. CLI flags override config values.

[measure]
# lang = %q               # Language code
# merge = false           # Flatten all categories into one mapping
# format = %q           # Output format: text, json or yaml
# precision = %d           # Decimals in text output

[batch]
# workers = 4             # Parallel workers for the csv command (0 = CPUs)

[history]
# record = false          # Store every run in the history database

[serve]
# addr = %q           # Listen address of the HTTP API
# allowed-origins = ["*"] # CORS allowed origins

[log]
# level = %q            # debug, info, warn or error

# Custom language profiles borrow the syllable counter of a built-in base.
# [[profile]]
# code = "en-simple"
# base = "en"
# inherit = true          # Keep the base classifiers
# [[profile.words]]
# name = "hedges"
# pattern = '(?i)\b(maybe|perhaps|possibly)\b'
# [[profile.words]]
# name = "jargon"
# file = "jargon.txt"     # One word or phrase per line, relative to this file
# [[profile.beginnings]]
# name = "begin_however"
# pattern = '(?i)^however\b'
`,
		defaultLang,
		defaultFormat,
		defaultPrecision,
		defaultAddr,
		logging.DefaultLevel,
	)
}

func validateConfig(cfg model.Config) error {
	switch cfg.Format {
	case model.FormatText, model.FormatJSON, model.FormatYAML:
	default:
		return fmt.Errorf("--format must be one of text, json, yaml")
	}
	if cfg.Precision < 0 {
		return fmt.Errorf("--precision must be >= 0")
	}
	if cfg.Lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
