package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/rootfinder-mcp/internal/config"
	"github.com/dshills/rootfinder-mcp/internal/exprcache"
	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/runner"
	"github.com/dshills/rootfinder-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "rootfinder-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	storage storage.Storage // nil when history is disabled
	cache   *exprcache.Cache
	runner  *runner.Runner
	logger  *zap.Logger
}

// NewServer creates a new MCP server instance. Run history is opened from
// cfg.DBPath unless cfg.History is false.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var store storage.Storage
	if cfg.History {
		dbPath, err := cfg.ResolvedDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		sqlStore, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = sqlStore
		logger.Info("run history enabled", zap.String("db_path", dbPath))
	}

	// One cache serves tool calls and solves so derivatives are compiled once
	cache := exprcache.New(cfg.CacheSize, exprcache.WithObserver(metrics.RecordCacheLookup))

	s := &Server{
		mcp:     server.NewMCPServer(ServerName, ServerVersion),
		cfg:     cfg,
		storage: store,
		cache:   cache,
		runner:  runner.New(store, cache, logger),
		logger:  logger,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close releases the run history database
func (s *Server) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// Storage returns the run history, or nil when history is disabled
func (s *Server) Storage() storage.Storage {
	return s.storage
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Expression tools
	s.mcp.AddTool(evaluateTool(), s.handleEvaluate)
	s.mcp.AddTool(derivativeTool(), s.handleDerivative)
	s.mcp.AddTool(plotTool(), s.handlePlot)

	// Solver tools
	s.mcp.AddTool(bisectionTool(), s.handleBisection)
	s.mcp.AddTool(newtonRaphsonTool(), s.handleNewtonRaphson)
	s.mcp.AddTool(secantTool(), s.handleSecant)
	s.mcp.AddTool(solveAllTool(), s.handleSolveAll)

	// History tools
	s.mcp.AddTool(listRunsTool(), s.handleListRuns)
	s.mcp.AddTool(getRunTool(), s.handleGetRun)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
