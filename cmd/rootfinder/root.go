package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/rootfinder-mcp/internal/config"
	"github.com/dshills/rootfinder-mcp/internal/exprcache"
	"github.com/dshills/rootfinder-mcp/internal/logging"
	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/storage"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	logLevel   string
	dbPath     string
	noHistory  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "rootfinder",
		Short: "Root finding for single-variable functions",
		Long: `rootfinder finds roots of f(x) with bisection, Newton-Raphson and the secant
method, and serves the same tools to AI assistants over MCP.

Commands:
  serve    - Start the MCP server on stdio
  solve    - Run one method and print its iteration trace
  eval     - Evaluate an expression at a point
  diff     - Print the symbolic derivative of an expression
  plot     - Sample an expression over an interval
  history  - List recorded runs or show one

Example:
  rootfinder solve bisection --expr "x^3 - x - 2" --a 1 --b 2
  rootfinder solve newton --expr "cos(x) - x" --x0 1 --tol 1e-8
  rootfinder diff --expr "sin(x)^2"`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: rootfinder.yaml in ., ~/.rootfinder or /etc/rootfinder)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Run history database (or set ROOTFINDER_DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&opts.noHistory, "no-history", false, "Do not record runs")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newSolveCmd(opts),
		newEvalCmd(opts),
		newDiffCmd(opts),
		newPlotCmd(opts),
		newHistoryCmd(opts),
	)

	return rootCmd
}

func versionString() string {
	return fmt.Sprintf("rootfinder %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s",
		version, buildTime, storage.BuildMode, storage.DriverName)
}

// loadConfig loads configuration and applies flag overrides
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.noHistory {
		cfg.History = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// environment bundles the dependencies a one-shot command needs
type environment struct {
	cfg    *config.Config
	logger *zap.Logger
	store  storage.Storage // nil when history is disabled
	cache  *exprcache.Cache
}

func (o *globalOptions) setup(withHistory bool) (*environment, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:    cfg,
		logger: logger,
		cache:  exprcache.New(cfg.CacheSize, exprcache.WithObserver(metrics.RecordCacheLookup)),
	}

	if withHistory && cfg.History {
		dbPath, err := cfg.ResolvedDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		env.store = store
	}

	return env, nil
}

func (e *environment) close() {
	_ = e.logger.Sync()
	if e.store != nil {
		_ = e.store.Close()
	}
}
