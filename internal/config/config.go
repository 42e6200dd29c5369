// Package config provides configuration loading for the dctmd tools.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dctmd/pkg/anatomy"
	"github.com/goliatone/go-dctmd/pkg/draft"
	"github.com/goliatone/go-dctmd/pkg/validation"
)

// Environment variables overriding file configuration.
const (
	EnvPalpationMode     = "DCTMD_PALPATION_MODE"
	EnvIncludeAllRegions = "DCTMD_INCLUDE_ALL_REGIONS"
	EnvAutosaveDelay     = "DCTMD_AUTOSAVE_DELAY"
)

// Config represents the complete dctmd configuration
type Config struct {
	Validation ValidationConfig `yaml:"validation"`
	Autosave   AutosaveConfig   `yaml:"autosave"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationConfig selects the examination variants validators check.
type ValidationConfig struct {
	// IncludeAllRegions extends interview checks to the supplemental regions
	IncludeAllRegions bool `yaml:"includeAllRegions"`
	// PalpationMode is basic, standard or extended (default: standard)
	PalpationMode string `yaml:"palpationMode"`
	// SiteDetailMode is detailed or grouped (default: detailed)
	SiteDetailMode string `yaml:"siteDetailMode"`
}

// AutosaveConfig configures local draft persistence
type AutosaveConfig struct {
	// Delay is the debounce before a draft is written (default: 2s)
	Delay time.Duration `yaml:"delay"`
	// Dir is where drafts are stored (empty = keep drafts in memory)
	Dir string `yaml:"dir"`
}

// LogConfig configures the CLI logger
type LogConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `yaml:"level"`
	// Format is text or json (default: text)
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Validation: ValidationConfig{
			PalpationMode:  string(anatomy.DefaultPalpationMode),
			SiteDetailMode: string(anatomy.SiteDetailDetailed),
		},
		Autosave: AutosaveConfig{
			Delay: draft.DefaultDelay,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := anatomy.ParsePalpationMode(c.Validation.PalpationMode); err != nil {
		return fmt.Errorf("validation.palpationMode: %w", err)
	}
	if _, err := anatomy.ParseSiteDetailMode(c.Validation.SiteDetailMode); err != nil {
		return fmt.Errorf("validation.siteDetailMode: %w", err)
	}
	if c.Autosave.Delay < 0 {
		return fmt.Errorf("autosave.delay must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Validation
	if other.Validation.IncludeAllRegions {
		c.Validation.IncludeAllRegions = true
	}
	if other.Validation.PalpationMode != "" {
		c.Validation.PalpationMode = other.Validation.PalpationMode
	}
	if other.Validation.SiteDetailMode != "" {
		c.Validation.SiteDetailMode = other.Validation.SiteDetailMode
	}

	// Autosave
	if other.Autosave.Delay != 0 {
		c.Autosave.Delay = other.Autosave.Delay
	}
	if other.Autosave.Dir != "" {
		c.Autosave.Dir = other.Autosave.Dir
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
}

// ApplyEnv applies the DCTMD_* overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	if v, ok := lookup(EnvPalpationMode); ok && v != "" {
		c.Validation.PalpationMode = v
	}
	if v, ok := lookup(EnvIncludeAllRegions); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIncludeAllRegions, err)
		}
		c.Validation.IncludeAllRegions = b
	}
	if v, ok := lookup(EnvAutosaveDelay); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAutosaveDelay, err)
		}
		c.Autosave.Delay = d
	}
	return nil
}

// ValidationContext converts the validation section. Call Validate first;
// unknown modes fall back to the defaults.
func (c *Config) ValidationContext() validation.Context {
	mode, err := anatomy.ParsePalpationMode(c.Validation.PalpationMode)
	if err != nil {
		mode = anatomy.DefaultPalpationMode
	}
	detail, err := anatomy.ParseSiteDetailMode(c.Validation.SiteDetailMode)
	if err != nil {
		detail = anatomy.SiteDetailDetailed
	}
	return validation.Context{
		IncludeAllRegions: c.Validation.IncludeAllRegions,
		PalpationMode:     mode,
		SiteDetailMode:    detail,
	}
}

// NewLogger builds a slog logger writing to w per the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", raw)
	}
}
