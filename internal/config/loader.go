package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. ROOTFINDER_DB_PATH
const EnvPrefix = "ROOTFINDER"

var validate = validator.New()

// Load loads configuration from defaults, an optional config file and environment
// variables. When configFile is empty, rootfinder.yaml is searched for in .,
// $HOME/.rootfinder and /etc/rootfinder; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("rootfinder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rootfinder")
		v.AddConfigPath("/etc/rootfinder")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config

	cfg.DBPath = v.GetString("db_path")
	cfg.History = v.GetBool("history")
	cfg.CacheSize = v.GetInt("cache_size")
	cfg.Workers = v.GetInt("workers")
	cfg.MetricsAddr = v.GetString("metrics_addr")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Solver
	cfg.Solver.DefaultTolerance = v.GetFloat64("default_tolerance")
	cfg.Solver.DefaultMaxIterations = v.GetInt("default_max_iterations")
	cfg.Solver.MaxIterationsLimit = v.GetInt("max_iterations_limit")

	// Plot
	cfg.Plot.Points = v.GetInt("plot_points")
	cfg.Plot.Min = v.GetFloat64("plot_min")
	cfg.Plot.Max = v.GetFloat64("plot_max")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration produced by the defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		DBPath:      v.GetString("db_path"),
		History:     v.GetBool("history"),
		CacheSize:   v.GetInt("cache_size"),
		Workers:     v.GetInt("workers"),
		MetricsAddr: v.GetString("metrics_addr"),
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Solver: SolverConfig{
			DefaultTolerance:     v.GetFloat64("default_tolerance"),
			DefaultMaxIterations: v.GetInt("default_max_iterations"),
			MaxIterationsLimit:   v.GetInt("max_iterations_limit"),
		},
		Plot: PlotConfig{
			Points: v.GetInt("plot_points"),
			Min:    v.GetFloat64("plot_min"),
			Max:    v.GetFloat64("plot_max"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("db_path", "~/.rootfinder/history.db")
	v.SetDefault("history", true)

	// Runtime defaults
	v.SetDefault("cache_size", 1024)
	v.SetDefault("workers", 0)
	v.SetDefault("metrics_addr", "")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Solver defaults
	v.SetDefault("default_tolerance", 0.001)
	v.SetDefault("default_max_iterations", 50)
	v.SetDefault("max_iterations_limit", 10000)

	// Plot defaults
	v.SetDefault("plot_points", 400)
	v.SetDefault("plot_min", -10.0)
	v.SetDefault("plot_max", 10.0)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s %s", e.Namespace(), e.Tag(), e.Param()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
