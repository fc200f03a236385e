// Package config loads the demo configuration from YAML and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	fourier "github.com/yyyoichi/fourier_zero"
	"github.com/yyyoichi/fourier_zero/internal/dft"
	"github.com/yyyoichi/fourier_zero/internal/resize"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Server struct {
		// Addr is the listen address of the demo server
		Addr string `yaml:"addr"`

		// MaxUploadBytes caps the size of an uploaded image
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`

		// MaxPixels caps width*height declared by an uploaded image
		MaxPixels int `yaml:"maxPixels"`
	} `yaml:"server"`

	Pipeline struct {
		// Size is the initial side length offered by the size slider
		Size int `yaml:"size"`

		// Interpolator names the resize kernel
		Interpolator string `yaml:"interpolator"`

		// Backend names the DFT implementation
		Backend string `yaml:"backend"`
	} `yaml:"pipeline"`

	Render struct {
		// ChartMaxSide bounds the heatmap grid; larger spectra are sampled
		ChartMaxSide int `yaml:"chartMaxSide"`

		// PhaseExcerpt is the number of margin rows and columns kept when
		// the phase text is summarized
		PhaseExcerpt int `yaml:"phaseExcerpt"`
	} `yaml:"render"`

	Fetch struct {
		// CacheDir stores HTTP responses of remote images
		CacheDir string `yaml:"cacheDir"`
	} `yaml:"fetch"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Addr = ":8080"
	cfg.Server.MaxUploadBytes = 32 << 20
	cfg.Server.MaxPixels = fourier.DefaultMaxPixels

	cfg.Pipeline.Size = fourier.DefaultSize
	cfg.Pipeline.Interpolator = resize.BiLinear
	cfg.Pipeline.Backend = dft.DSP

	cfg.Render.ChartMaxSide = 256
	cfg.Render.PhaseExcerpt = 3

	cfg.Fetch.CacheDir = filepath.Join(os.TempDir(), "fourier_zero_http_cache")

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting names something the pipeline supports
func (c *Config) Validate() error {
	if !fourier.ValidSize(c.Pipeline.Size) {
		return fmt.Errorf("pipeline.size %d: %w", c.Pipeline.Size, fourier.ErrInvalidSize)
	}
	if _, err := resize.Lookup(c.Pipeline.Interpolator); err != nil {
		return fmt.Errorf("pipeline.interpolator: %w", err)
	}
	if _, err := dft.Lookup(c.Pipeline.Backend); err != nil {
		return fmt.Errorf("pipeline.backend: %w", err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.maxUploadBytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("server.maxPixels must be positive, got %d", c.Server.MaxPixels)
	}
	if c.Render.ChartMaxSide < 0 || c.Render.PhaseExcerpt < 0 {
		return fmt.Errorf("render settings must not be negative")
	}
	return nil
}

// Options returns the pipeline options for side length n.
func (c *Config) Options(n int) []fourier.Option {
	return []fourier.Option{
		fourier.WithSize(n),
		fourier.WithInterpolator(c.Pipeline.Interpolator),
		fourier.WithBackend(c.Pipeline.Backend),
	}
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
