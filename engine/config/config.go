// Package config loads the optional puzzles.yaml application
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the optional puzzles.yaml configuration.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Debug  DebugConfig  `yaml:"debug"`
}

// WindowConfig contains host window settings.
type WindowConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	VSync  *bool  `yaml:"vsync,omitempty"`
}

// DebugConfig contains development aids.
type DebugConfig struct {
	// Logging enables debug-level drawing traffic logging.
	Logging bool `yaml:"logging,omitempty"`
	// SpriteDumpPath, when set, receives the raw canvas buffer after
	// every canvas rebuild.
	SpriteDumpPath string `yaml:"sprite_dump_path,omitempty"`
}

// Resolved contains resolved configuration values with defaults
// applied.
type Resolved struct {
	Title          string
	Width          int
	Height         int
	VSync          bool
	DebugLogging   bool
	SpriteDumpPath string
}

// LoadOptional reads puzzles.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "puzzles.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read puzzles.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse puzzles.yaml: %w", err)
	}

	return &cfg, nil
}

// Resolve loads puzzles.yaml (if present) and applies defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Title:          cfg.Window.Title,
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		VSync:          true,
		DebugLogging:   cfg.Debug.Logging,
		SpriteDumpPath: cfg.Debug.SpriteDumpPath,
	}
	if r.Title == "" {
		r.Title = "Puzzles"
	}
	if r.Width <= 0 {
		r.Width = 1024
	}
	if r.Height <= 0 {
		r.Height = 768
	}
	if cfg.Window.VSync != nil {
		r.VSync = *cfg.Window.VSync
	}

	return r, nil
}
