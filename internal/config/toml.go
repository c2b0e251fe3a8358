// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/readability/internal/lang"
	"github.com/verte-zerg/readability/internal/wordlist"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Measure  MeasureConfig   `toml:"measure"`
	Batch    BatchConfig     `toml:"batch"`
	History  HistoryConfig   `toml:"history"`
	Serve    ServeConfig     `toml:"serve"`
	Log      LogConfig       `toml:"log"`
	Profiles []ProfileConfig `toml:"profile"`
}

// MeasureConfig maps measurement settings.
type MeasureConfig struct {
	Lang      *string `toml:"lang"`
	Merge     *bool   `toml:"merge"`
	Format    *string `toml:"format"`
	Precision *int    `toml:"precision"`
}

// BatchConfig maps batch settings.
type BatchConfig struct {
	Workers *int `toml:"workers"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Record *bool `toml:"record"`
}

// ServeConfig maps HTTP API settings.
type ServeConfig struct {
	Addr           *string  `toml:"addr"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// ProfileConfig declares a custom language profile.
type ProfileConfig struct {
	Code       string          `toml:"code"`
	Base       string          `toml:"base"`
	Inherit    bool            `toml:"inherit"`
	Words      []PatternConfig `toml:"words"`
	Beginnings []PatternConfig `toml:"beginnings"`
}

// PatternConfig is a named classifier given either as a regular expression
// or as a word list file with one entry per line. Relative files are
// resolved against the config directory.
type PatternConfig struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	File    string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	dir := filepath.Dir(path)
	for i := range cfg.Profiles {
		resolveFiles(dir, cfg.Profiles[i].Words)
		resolveFiles(dir, cfg.Profiles[i].Beginnings)
	}
	return cfg, nil
}

// ExtendRegistry returns reg with the declared profiles added. A profile
// borrows the syllable counter of its base and, with inherit set, the base
// classifiers ahead of its own. A code that matches an existing profile
// replaces it.
func ExtendRegistry(reg *lang.Registry, profiles []ProfileConfig) (*lang.Registry, error) {
	if len(profiles) == 0 {
		return reg, nil
	}
	built := make([]*lang.Profile, 0, len(profiles))
	for _, pc := range profiles {
		p, err := buildProfile(reg, pc)
		if err != nil {
			return nil, err
		}
		built = append(built, p)
	}
	return reg.With(built...)
}

func buildProfile(reg *lang.Registry, pc ProfileConfig) (*lang.Profile, error) {
	if pc.Code == "" {
		return nil, fmt.Errorf("profile code is empty")
	}
	baseCode := pc.Base
	if baseCode == "" {
		baseCode = "en"
	}
	base, err := reg.Lookup(baseCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base of profile %q: %w", pc.Code, err)
	}

	var words, beginnings []lang.Classifier
	if pc.Inherit {
		words = base.WordClassifiers()
		beginnings = base.BeginningClassifiers()
	}
	own, err := compilePatterns(pc.Words, false)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", pc.Code, err)
	}
	words = append(words, own...)
	own, err = compilePatterns(pc.Beginnings, true)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", pc.Code, err)
	}
	beginnings = append(beginnings, own...)

	p, err := lang.NewProfile(pc.Code, base.SyllableCounter(), words, beginnings)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile %q: %w", pc.Code, err)
	}
	return p, nil
}

func resolveFiles(dir string, defs []PatternConfig) {
	for i := range defs {
		if defs[i].File != "" && !filepath.IsAbs(defs[i].File) {
			defs[i].File = filepath.Join(dir, defs[i].File)
		}
	}
}

func compilePatterns(defs []PatternConfig, anchored bool) ([]lang.Classifier, error) {
	out := make([]lang.Classifier, 0, len(defs))
	for _, def := range defs {
		var (
			p   lang.Classifier
			err error
		)
		switch {
		case def.File != "" && def.Pattern != "":
			return nil, fmt.Errorf("classifier %q: set either pattern or file", def.Name)
		case def.File != "":
			p, err = wordlist.Classifier(def.Name, def.File, anchored)
		default:
			p, err = lang.NewPattern(def.Name, def.Pattern)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
