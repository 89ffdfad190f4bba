// Package config loads the optional tracked.yaml configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/tracked/pkg/core"
	trackerrors "github.com/go-drift/tracked/pkg/errors"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "tracked.yaml"

// Config represents the optional tracked.yaml configuration.
type Config struct {
	State       StateConfig       `yaml:"state"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// StateConfig contains slot defaults.
type StateConfig struct {
	// DefaultMode is one of "shallow", "deep", "pure".
	DefaultMode string `yaml:"default_mode,omitempty"`
}

// DiagnosticsConfig controls how reported errors are logged.
type DiagnosticsConfig struct {
	Verbose bool   `yaml:"verbose,omitempty"`
	Level   string `yaml:"level,omitempty"`
	Debug   *bool  `yaml:"debug,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	DefaultMode core.Mode
	Verbose     bool
	Level       slog.Level
	Debug       bool
}

// LoadOptional reads tracked.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, &trackerrors.TrackError{Op: "config.LoadOptional", Kind: trackerrors.KindInit, Err: fmt.Errorf("failed to read %s: %w", FileName, err)}
	}
	return Parse(data)
}

// Parse decodes configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &trackerrors.TrackError{Op: "config.Parse", Kind: trackerrors.KindInit, Err: fmt.Errorf("failed to parse %s: %w", FileName, err)}
	}
	return &cfg, nil
}

// Resolve loads tracked.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve()
}

// Resolve validates the configuration and fills in defaults.
func (c *Config) Resolve() (*Resolved, error) {
	mode := core.Deep
	if name := strings.TrimSpace(c.State.DefaultMode); name != "" {
		parsed, err := core.ParseMode(name)
		if err != nil {
			return nil, &trackerrors.TrackError{Op: "config.Resolve", Kind: trackerrors.KindConfig, Err: err}
		}
		mode = parsed
	}

	level := slog.LevelWarn
	if name := strings.TrimSpace(c.Diagnostics.Level); name != "" {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return nil, &trackerrors.TrackError{Op: "config.Resolve", Kind: trackerrors.KindConfig, Err: err}
		}
	}

	debug := true
	if c.Diagnostics.Debug != nil {
		debug = *c.Diagnostics.Debug
	}

	return &Resolved{
		DefaultMode: mode,
		Verbose:     c.Diagnostics.Verbose,
		Level:       level,
		Debug:       debug,
	}, nil
}

// Apply installs the resolved configuration process-wide: the default slot
// mode, debug mode and a LogHandler writing to logger at the configured level.
// A nil logger writes text records to stderr.
func (r *Resolved) Apply(logger *slog.Logger) {
	core.SetDefaultMode(r.DefaultMode)
	core.SetDebugMode(r.Debug)
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: r.Level}))
	}
	trackerrors.SetHandler(&trackerrors.LogHandler{Logger: logger, Verbose: r.Verbose})
}
