package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds all configuration for the rootfinder server and CLI
type Config struct {
	DBPath      string `mapstructure:"db_path" validate:"required"`
	History     bool   `mapstructure:"history"`
	CacheSize   int    `mapstructure:"cache_size" validate:"gte=1"`
	Workers     int    `mapstructure:"workers" validate:"gte=0"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	Log         LogConfig
	Solver      SolverConfig
	Plot        PlotConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"log_format" validate:"oneof=json console"`
}

// SolverConfig holds the defaults applied to solve requests that omit them
type SolverConfig struct {
	DefaultTolerance     float64 `mapstructure:"default_tolerance" validate:"gt=0"`
	DefaultMaxIterations int     `mapstructure:"default_max_iterations" validate:"gte=1"`
	MaxIterationsLimit   int     `mapstructure:"max_iterations_limit" validate:"gtefield=DefaultMaxIterations"`
}

// PlotConfig holds the default sampling domain
type PlotConfig struct {
	Points int     `mapstructure:"plot_points" validate:"gte=2"`
	Min    float64 `mapstructure:"plot_min"`
	Max    float64 `mapstructure:"plot_max" validate:"gtfield=Min"`
}

// WorkerCount returns the configured worker count, or the number of CPUs when unset
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// ResolvedDBPath expands a leading ~ and creates the parent directory.
// ":memory:" is returned unchanged.
func (c *Config) ResolvedDBPath() (string, error) {
	path := c.DBPath
	if path == ":memory:" {
		return path, nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, nil
}
