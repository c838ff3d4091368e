package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/rootfinder-mcp/internal/storage"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// MaxListLimit bounds the limit argument of list_runs
const MaxListLimit = 10000

// historyDisabled is returned by history tools when the server runs without storage
func historyDisabled() error {
	return newMCPError(ErrorCodeInternalError, "run history is disabled", map[string]interface{}{
		"reason": "start the server with history enabled to record runs",
	})
}

// handleListRuns handles the list_runs tool invocation
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, historyDisabled()
	}

	filter := storage.RunFilter{}

	method, err := optionalString(args, "method", "")
	if err != nil {
		return nil, err
	}
	if method != "" {
		if filter.Method, err = types.ParseMethod(method); err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid method", map[string]interface{}{
				"param":   "method",
				"value":   method,
				"allowed": types.AllMethods,
			})
		}
	}

	status, err := optionalString(args, "status", "")
	if err != nil {
		return nil, err
	}
	switch types.Status(status) {
	case "", types.StatusConverged, types.StatusExhausted, types.StatusFailed:
		filter.Status = types.Status(status)
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid status", map[string]interface{}{
			"param":   "status",
			"value":   status,
			"allowed": []types.Status{types.StatusConverged, types.StatusExhausted, types.StatusFailed},
		})
	}

	if filter.Expression, err = optionalString(args, "expression", ""); err != nil {
		return nil, err
	}

	if filter.Limit, err = optionalInt(args, "limit", storage.DefaultListLimit); err != nil {
		return nil, err
	}
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", MaxListLimit), map[string]interface{}{
			"param": "limit",
			"value": filter.Limit,
		})
	}

	runs, err := s.storage.ListRuns(ctx, filter)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	summaries := make([]map[string]interface{}, len(runs))
	for i, run := range runs {
		summaries[i] = runSummary(run)
	}

	response := map[string]interface{}{
		"runs":  summaries,
		"count": len(summaries),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetRun handles the get_run tool invocation
func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, historyDisabled()
	}

	runID, err := requireString(args, "run_id")
	if err != nil {
		return nil, err
	}

	run, err := s.storage.GetRun(ctx, runID)
	if err != nil {
		return nil, toMCPError(err)
	}

	trace, err := s.storage.ListIterations(ctx, runID)
	if err != nil {
		return nil, toMCPError(err)
	}

	lines := make([]string, len(trace))
	for i, rec := range trace {
		lines[i] = rec.String()
	}

	response := runSummary(run)
	response["trace"] = trace
	response["lines"] = lines
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := getArgs(request); err != nil {
		return nil, err
	}

	cacheStats := s.cache.Stats()
	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"defaults": map[string]interface{}{
			"tolerance":            s.cfg.Solver.DefaultTolerance,
			"max_iterations":       s.cfg.Solver.DefaultMaxIterations,
			"max_iterations_limit": s.cfg.Solver.MaxIterationsLimit,
		},
		"cache": map[string]interface{}{
			"size":   cacheStats.Size,
			"hits":   cacheStats.Hits,
			"misses": cacheStats.Misses,
		},
		"storage": map[string]interface{}{
			"build_mode": storage.BuildMode,
			"driver":     storage.DriverName,
		},
	}

	history := map[string]interface{}{"enabled": s.storage != nil}
	if s.storage != nil {
		stats, err := s.storage.GetStats(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
				"error": err.Error(),
			})
		}
		history["statistics"] = map[string]interface{}{
			"runs_count":       stats.RunsCount,
			"iterations_count": stats.IterationsCount,
			"by_status":        stats.ByStatus,
			"by_method":        stats.ByMethod,
			"database_size_mb": fmt.Sprintf("%.2f", stats.DatabaseSizeMB),
		}
		if !stats.LastRunAt.IsZero() {
			history["last_run_at"] = stats.LastRunAt.Format(time.RFC3339)
		}
		history["health"] = map[string]interface{}{
			"database_accessible": stats.Health.DatabaseAccessible,
			"schema_version":      stats.Health.SchemaVersion,
		}
	}
	response["history"] = history

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// runSummary renders a persisted run without its trace
func runSummary(run *storage.Run) map[string]interface{} {
	summary := map[string]interface{}{
		"run_id":         run.ID,
		"method":         string(run.Method),
		"expression":     run.Expression,
		"params":         run.Params,
		"tolerance":      run.Tolerance,
		"max_iterations": run.MaxIterations,
		"status":         string(run.Status),
		"iterations":     run.Iterations,
		"duration_us":    run.Duration.Microseconds(),
		"created_at":     run.CreatedAt.Format(time.RFC3339),
	}
	if run.Root != nil {
		summary["root"] = *run.Root
	}
	if run.Status == types.StatusFailed {
		summary["error_kind"] = run.ErrorKind
		summary["error_message"] = run.ErrorMessage
	}
	return summary
}
