// Package config holds the polyroots configuration: where root data lives,
// how many workers the batch computer runs, and default batch parameters.
// Config is stored as YAML in <data-dir>/config.yaml; environment variables
// override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"polyroots/internal/heatmap"
	"polyroots/internal/poly"
)

// Output resolution bounds. The core never renders; the parameter is only
// vetted here before being handed to presentation.
const (
	MinResolution = 50
	MaxResolution = 10000
)

// Config holds all polyroots configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// DataDir is where root collections, the run catalog, and logs live.
	DataDir string `yaml:"data_dir"`

	// Compute configuration
	Compute ComputeConfig `yaml:"compute"`

	// Heatmap configuration
	Heatmap HeatmapConfig `yaml:"heatmap"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ComputeConfig configures the parallel root computer.
type ComputeConfig struct {
	// Workers is the worker pool size. 0 means hardware parallelism.
	Workers int `yaml:"workers"`

	// DefaultDegree is used when the CLI is invoked without --degree.
	DefaultDegree int `yaml:"default_degree"`
}

// HeatmapConfig configures histogram aggregation defaults.
type HeatmapConfig struct {
	// DefaultGridSize is the histogram edge length when --size is omitted.
	DefaultGridSize int `yaml:"default_grid_size"`

	// DefaultResolution is the output resolution handed to presentation.
	DefaultResolution int `yaml:"default_resolution"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Name:    "polyroots",
		Version: "1.0.0",
		DataDir: defaultDataDir(),

		Compute: ComputeConfig{
			Workers:       0, // hardware parallelism
			DefaultDegree: 12,
		},

		Heatmap: HeatmapConfig{
			DefaultGridSize:   1000,
			DefaultResolution: 800,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".polyroots"
	}
	return filepath.Join(home, ".polyroots")
}

// Load reads config from path, falling back to defaults if the file does
// not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets the environment win over the config file.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("POLYROOTS_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if w := os.Getenv("POLYROOTS_WORKERS"); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n >= 0 {
			c.Compute.Workers = n
		}
	}
}

// WorkerCount resolves the configured worker count, defaulting to
// hardware parallelism when unset.
func (c *Config) WorkerCount() int {
	if c.Compute.Workers > 0 {
		return c.Compute.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate rejects out-of-bounds parameters before any computation starts.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Compute.Workers < 0 {
		return fmt.Errorf("compute.workers must be >= 0, got %d", c.Compute.Workers)
	}
	if err := poly.ValidateDegree(c.Compute.DefaultDegree); err != nil {
		return fmt.Errorf("compute.default_degree: %w", err)
	}
	if err := heatmap.ValidateGridSize(c.Heatmap.DefaultGridSize); err != nil {
		return fmt.Errorf("heatmap.default_grid_size: %w", err)
	}
	if err := ValidateResolution(c.Heatmap.DefaultResolution); err != nil {
		return fmt.Errorf("heatmap.default_resolution: %w", err)
	}
	return nil
}

// ValidateResolution checks the presentation output resolution bounds.
func ValidateResolution(resolution int) error {
	if resolution < MinResolution || resolution > MaxResolution {
		return fmt.Errorf("resolution must be in [%d,%d], got %d", MinResolution, MaxResolution, resolution)
	}
	return nil
}
