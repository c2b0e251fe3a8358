package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/readability/internal/config"
	"github.com/verte-zerg/readability/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("NO_COLOR", "1")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMeasureStdinText(t *testing.T) {
	isolate(t)
	out, err := execute(t, "A tokenized sentence .\nAnother sentence .\n")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out, "readability grades:\n    Kincaid") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "\nsentence info:\n") {
		t.Fatalf("expected sentence info in:\n%s", out)
	}
}

func TestMeasureFileJSONMerged(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("First paragraph here.\n\nSecond one."), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	out, err := execute(t, "", "--format", "json", "--merge", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var flat map[string]float64
	if err := json.Unmarshal([]byte(out), &flat); err != nil {
		t.Fatalf("decode json %q: %v", out, err)
	}
	if flat["paragraphs"] != 2 || flat["words"] != 5 {
		t.Fatalf("unexpected values: %v", flat)
	}
}

func TestMeasureUsesConfigLanguage(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "config", "readability", "config.toml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("[measure]\nlang = \"xx\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "Hello .\n"); err == nil || !strings.Contains(err.Error(), "unknown language") {
		t.Fatalf("expected unknown language from config, got %v", err)
	}
	if _, err := execute(t, "Hello .\n", "--lang", "en"); err != nil {
		t.Fatalf("flag should override config: %v", err)
	}
}

func TestMeasureRejectsBadFlags(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "Hello .\n", "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := execute(t, "Hello .\n", "--precision", "-1"); err == nil {
		t.Fatalf("expected precision error")
	}
	if _, err := execute(t, "\n\n"); err == nil {
		t.Fatalf("expected empty input error")
	}
}

func TestCSVAndHistory(t *testing.T) {
	dir := isolate(t)
	var paths []string
	for _, name := range []string{"b.txt", "a.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("The text of "+name+" ."), 0o644); err != nil {
			t.Fatalf("write doc: %v", err)
		}
		paths = append(paths, path)
	}
	out, err := execute(t, "", append([]string{"csv", "--record", "--workers", "2"}, paths...)...)
	if err != nil {
		t.Fatalf("execute csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], ",Kincaid,") || !strings.HasPrefix(lines[1], paths[0]+",") || !strings.HasPrefix(lines[2], paths[1]+",") {
		t.Fatalf("unexpected csv:\n%s", out)
	}

	out, err = execute(t, "", "history", "--plain")
	if err != nil {
		t.Fatalf("execute history: %v", err)
	}
	if !strings.Contains(out, "b.txt") || !strings.Contains(out, "a.txt") || !strings.Contains(out, "Trend") {
		t.Fatalf("unexpected history:\n%s", out)
	}
}

func TestLangsListsBuiltins(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "langs")
	if err != nil {
		t.Fatalf("execute langs: %v", err)
	}
	if out != "de\nen\nnl\n" {
		t.Fatalf("unexpected langs output: %q", out)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	uncommented := uncomment(defaultConfigTemplate())
	if _, err := toml.Decode(uncommented, &cfg); err != nil {
		t.Fatalf("decode uncommented template: %v\n%s", err, uncommented)
	}
	if cfg.Measure.Lang == nil || *cfg.Measure.Lang != defaultLang {
		t.Fatalf("unexpected lang in template: %v", cfg.Measure.Lang)
	}
	if len(cfg.Profiles) != 1 || len(cfg.Profiles[0].Words) != 2 {
		t.Fatalf("unexpected profiles in template: %+v", cfg.Profiles)
	}
}

func uncomment(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "# "); ok && (strings.Contains(rest, "=") || strings.HasPrefix(rest, "[")) {
			line = rest
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{Lang: "en", Format: model.FormatYAML, Precision: 0}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateConfig(model.Config{Lang: "", Format: model.FormatText}); err == nil {
		t.Fatalf("expected error for empty lang")
	}
}
