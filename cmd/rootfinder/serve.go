package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/rootfinder-mcp/internal/logging"
	"github.com/dshills/rootfinder-mcp/internal/mcp"
	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/storage"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server. Requests are read from stdin and
responses written to stdout; logs go to stderr.

With --metrics-addr, Prometheus metrics are served at /metrics and history
health at /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("rootfinder MCP server starting",
				zap.String("version", version),
				zap.String("build_mode", storage.BuildMode),
				zap.String("driver", storage.DriverName))

			server, err := mcp.NewServer(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			if cfg.MetricsAddr != "" {
				metricsServer := metrics.NewServer(historyHealth(server.Storage()), logger)
				if err := metricsServer.Start(cfg.MetricsAddr); err != nil {
					_ = server.Close()
					return fmt.Errorf("failed to start metrics server: %w", err)
				}
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = metricsServer.Shutdown(ctx)
				}()
			}

			// Set up graceful shutdown
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				logger.Info("MCP server ready, listening on stdio")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
				cancel()
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address, e.g. :9090")
	return cmd
}

// historyHealth reports run history statistics for the /health endpoint
func historyHealth(store storage.Storage) metrics.HealthFunc {
	return func(ctx context.Context) (any, error) {
		if store == nil {
			return map[string]any{"history": "disabled"}, nil
		}
		stats, err := store.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"history":          "enabled",
			"runs_count":       stats.RunsCount,
			"iterations_count": stats.IterationsCount,
			"schema_version":   stats.Health.SchemaVersion,
		}, nil
	}
}
