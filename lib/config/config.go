// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/carchive/lib/carreader"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "CARCHIVE_CONFIG"

// Config is the complete carchive configuration.
type Config struct {
	// Reader bounds what the archive reader accepts.
	Reader ReaderConfig `yaml:"reader"`

	// Log configures the diagnostic logger.
	Log LogConfig `yaml:"log"`

	// Progress configures the terminal progress display.
	Progress ProgressConfig `yaml:"progress"`

	// Decode configures what parse --decode does with reassembled
	// payloads.
	Decode DecodeConfig `yaml:"decode"`
}

// ReaderConfig bounds what the archive reader accepts.
type ReaderConfig struct {
	// MaxHeaderSize is the largest accepted archive header in bytes,
	// at most 1 MiB.
	// Default: 1024
	MaxHeaderSize uint64 `yaml:"max_header_size"`

	// MaxSectionSize is the largest accepted section in bytes,
	// identifier included, at most 1 GiB.
	// Default: 33554432 (32 MiB)
	MaxSectionSize uint64 `yaml:"max_section_size"`

	// BufferSize is the read buffer placed in front of the file.
	// Default: 1048576 (1 MiB)
	BufferSize int `yaml:"buffer_size"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format"`

	// File receives log output instead of stderr when set. Supports
	// ${VAR} and ${VAR:-default} expansion.
	File string `yaml:"file"`
}

// ProgressConfig configures the terminal progress display. Progress
// is only drawn when stderr is a terminal.
type ProgressConfig struct {
	// Enabled turns the display on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Interval is the minimum time between redraws, as a Go duration
	// string.
	// Default: 250ms
	Interval string `yaml:"interval"`
}

// DecodeConfig configures payload handling in parse --decode.
type DecodeConfig struct {
	// Decompress passes reassembled transaction metadata and rewards
	// through zstd/LZ4 decompression.
	// Default: true
	Decompress bool `yaml:"decompress"`
}

// Default returns the configuration used when no file is given, and
// the base that a loaded file is merged into.
func Default() *Config {
	return &Config{
		Reader: ReaderConfig{
			MaxHeaderSize:  carreader.DefaultMaxHeaderSize,
			MaxSectionSize: carreader.DefaultMaxSectionSize,
			BufferSize:     carreader.DefaultBufferSize,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Progress: ProgressConfig{
			Enabled:  true,
			Interval: "250ms",
		},
		Decode: DecodeConfig{
			Decompress: true,
		},
	}
}

// Load loads configuration from the file named by CARCHIVE_CONFIG.
// It fails if the variable is unset; callers wanting defaults use
// [Default] directly.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your carchive.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Fields the file omits keep
// their [Default] values. Only the log file path is expanded; no
// environment variable overrides a value from the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Log.File = expandVars(c.Log.File, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Reader.MaxHeaderSize == 0 {
		errs = append(errs, fmt.Errorf("reader.max_header_size must be positive"))
	} else if c.Reader.MaxHeaderSize > carreader.HeaderSizeCeiling {
		errs = append(errs, fmt.Errorf("reader.max_header_size must not exceed %d", carreader.HeaderSizeCeiling))
	}
	if c.Reader.MaxSectionSize == 0 {
		errs = append(errs, fmt.Errorf("reader.max_section_size must be positive"))
	} else if c.Reader.MaxSectionSize > carreader.SectionSizeCeiling {
		errs = append(errs, fmt.Errorf("reader.max_section_size must not exceed %d", carreader.SectionSizeCeiling))
	}
	if c.Reader.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("reader.buffer_size must be positive"))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	formats := []string{"text", "json"}
	if !contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	if interval, err := time.ParseDuration(c.Progress.Interval); err != nil {
		errs = append(errs, fmt.Errorf("progress.interval: %w", err))
	} else if interval < 0 {
		errs = append(errs, fmt.Errorf("progress.interval must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Limits returns the reader limits for carreader.
func (c *Config) Limits() carreader.Limits {
	return carreader.Limits{
		MaxHeaderSize:  c.Reader.MaxHeaderSize,
		MaxSectionSize: c.Reader.MaxSectionSize,
	}
}

// SlogLevel parses Level. Accepted names are those of slog.Level,
// case-insensitive.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}

// IntervalDuration parses Interval. Call Validate first; an invalid
// interval reads as zero, which redraws on every update.
func (p ProgressConfig) IntervalDuration() time.Duration {
	interval, err := time.ParseDuration(p.Interval)
	if err != nil {
		return 0
	}
	return interval
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
