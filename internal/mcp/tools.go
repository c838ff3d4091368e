package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/plot"
	"github.com/dshills/rootfinder-mcp/internal/runner"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// MaxPlotPoints bounds the number of samples a single plot call may request
const MaxPlotPoints = 100000

// handleEvaluate handles the evaluate tool invocation
func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}

	expression, err := requireString(args, "expression")
	if err != nil {
		return nil, err
	}
	x, err := requireFloat(args, "x")
	if err != nil {
		return nil, err
	}

	e, err := s.cache.Compile(expression)
	if err != nil {
		return nil, toMCPError(err)
	}
	value, err := e.Eval(x)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"expression": e.Source(),
		"x":          x,
		"value":      value,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDerivative handles the derivative tool invocation
func (s *Server) handleDerivative(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}

	expression, err := requireString(args, "expression")
	if err != nil {
		return nil, err
	}
	x, hasX, err := optionalFloat(args, "x")
	if err != nil {
		return nil, err
	}

	d, err := s.cache.CompileDerivative(expression)
	if err != nil {
		return nil, toMCPError(err)
	}

	response := map[string]interface{}{
		"expression": strings.TrimSpace(expression),
		"derivative": d.String(),
	}
	if hasX {
		value, err := d.Eval(x)
		if err != nil {
			return nil, toMCPError(err)
		}
		response["x"] = x
		response["value"] = value
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handlePlot handles the plot tool invocation
func (s *Server) handlePlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}

	expression, err := requireString(args, "expression")
	if err != nil {
		return nil, err
	}

	domain := plot.Domain{Min: s.cfg.Plot.Min, Max: s.cfg.Plot.Max, Points: s.cfg.Plot.Points}
	if v, ok, err := optionalFloat(args, "min"); err != nil {
		return nil, err
	} else if ok {
		domain.Min = v
	}
	if v, ok, err := optionalFloat(args, "max"); err != nil {
		return nil, err
	} else if ok {
		domain.Max = v
	}
	if domain.Points, err = optionalInt(args, "points", domain.Points); err != nil {
		return nil, err
	}
	if domain.Points > MaxPlotPoints {
		return nil, invalidParam("points", fmt.Sprintf("must not exceed %d", MaxPlotPoints))
	}

	e, err := s.cache.Compile(expression)
	if err != nil {
		return nil, toMCPError(err)
	}
	series, err := plot.Sample(e, domain)
	if err != nil {
		return nil, toMCPError(err)
	}
	metrics.RecordPlot(len(series.Points)-series.Failures, series.Failures)

	signChanges := series.SignChanges()
	if signChanges == nil {
		signChanges = []plot.Domain{}
	}

	response := map[string]interface{}{
		"expression":   series.Expression,
		"domain":       series.Domain,
		"points":       series.Points,
		"failures":     series.Failures,
		"sign_changes": signChanges,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleBisection handles the bisection tool invocation
func (s *Server) handleBisection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.solve(ctx, request, types.MethodBisection)
}

// handleNewtonRaphson handles the newton_raphson tool invocation
func (s *Server) handleNewtonRaphson(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.solve(ctx, request, types.MethodNewtonRaphson)
}

// handleSecant handles the secant tool invocation
func (s *Server) handleSecant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.solve(ctx, request, types.MethodSecant)
}

func (s *Server) solve(ctx context.Context, request mcp.CallToolRequest, method types.Method) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}

	req, err := s.solveRequest(args, method)
	if err != nil {
		return nil, err
	}

	out, err := s.runner.Run(ctx, req)
	if err != nil {
		return nil, toMCPError(err)
	}

	return mcp.NewToolResultText(formatJSON(resultResponse(out))), nil
}

// handleSolveAll handles the solve_all tool invocation
func (s *Server) handleSolveAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := getArgs(request)
	if err != nil {
		return nil, err
	}

	expression, err := requireString(args, "expression")
	if err != nil {
		return nil, err
	}
	base := types.SolveRequest{Expression: expression}
	if err := s.applyLimits(args, &base); err != nil {
		return nil, err
	}

	points := make(map[string]float64, 4)
	for _, key := range []string{"a", "b", "x0", "x1"} {
		v, ok, err := optionalFloat(args, key)
		if err != nil {
			return nil, err
		}
		if ok {
			points[key] = v
		}
	}
	_, hasA := points["a"]
	_, hasB := points["b"]
	_, hasX0 := points["x0"]
	_, hasX1 := points["x1"]

	if hasA != hasB {
		return nil, invalidParam("b", "a and b must be given together")
	}
	if hasX1 && !hasX0 {
		return nil, invalidParam("x0", "x1 requires x0")
	}

	var reqs []types.SolveRequest
	if hasA {
		req := base
		req.Method, req.A, req.B = types.MethodBisection, points["a"], points["b"]
		reqs = append(reqs, req)
	}
	if hasX0 {
		req := base
		req.Method, req.X0 = types.MethodNewtonRaphson, points["x0"]
		reqs = append(reqs, req)
	}
	if hasX1 {
		req := base
		req.Method, req.X0, req.X1 = types.MethodSecant, points["x0"], points["x1"]
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return nil, invalidParam("a", "provide a and b, x0, or x0 and x1")
	}

	outcomes, stats, err := s.runner.RunAll(ctx, reqs, &runner.Config{Workers: s.cfg.WorkerCount()})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "batch solve failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(outcomes))
	for i, out := range outcomes {
		if out.Err != nil {
			results[i] = map[string]interface{}{
				"method": string(out.Request.Method),
				"error":  errorPayload(toMCPError(out.Err)),
			}
			continue
		}
		results[i] = resultResponse(out)
	}

	response := map[string]interface{}{
		"expression": strings.TrimSpace(expression),
		"results":    results,
		"statistics": map[string]interface{}{
			"requests":    stats.Requests,
			"converged":   stats.Converged,
			"exhausted":   stats.Exhausted,
			"failed":      stats.Failed,
			"persisted":   stats.Persisted,
			"duration_ms": stats.Duration.Milliseconds(),
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// solveRequest builds a request for one method from tool arguments
func (s *Server) solveRequest(args map[string]interface{}, method types.Method) (types.SolveRequest, error) {
	req := types.SolveRequest{Method: method}

	var err error
	if req.Expression, err = requireString(args, "expression"); err != nil {
		return req, err
	}

	switch method {
	case types.MethodBisection:
		if req.A, err = requireFloat(args, "a"); err != nil {
			return req, err
		}
		if req.B, err = requireFloat(args, "b"); err != nil {
			return req, err
		}
	case types.MethodNewtonRaphson:
		if req.X0, err = requireFloat(args, "x0"); err != nil {
			return req, err
		}
	case types.MethodSecant:
		if req.X0, err = requireFloat(args, "x0"); err != nil {
			return req, err
		}
		if req.X1, err = requireFloat(args, "x1"); err != nil {
			return req, err
		}
	}

	return req, s.applyLimits(args, &req)
}

// applyLimits fills tolerance and max_iterations from arguments or configured defaults
func (s *Server) applyLimits(args map[string]interface{}, req *types.SolveRequest) error {
	tol, ok, err := optionalFloat(args, "tolerance")
	if err != nil {
		return err
	}
	if !ok {
		tol = s.cfg.Solver.DefaultTolerance
	}
	req.Tolerance = tol

	maxIter, err := optionalInt(args, "max_iterations", s.cfg.Solver.DefaultMaxIterations)
	if err != nil {
		return err
	}
	if maxIter > s.cfg.Solver.MaxIterationsLimit {
		return invalidParam("max_iterations", fmt.Sprintf("must not exceed %d", s.cfg.Solver.MaxIterationsLimit))
	}
	req.MaxIterations = maxIter
	return nil
}

// resultResponse renders a successful solve
func resultResponse(out *runner.Outcome) map[string]interface{} {
	res := out.Result
	response := map[string]interface{}{
		"method":      string(res.Method),
		"expression":  res.Expression,
		"status":      string(res.Status),
		"root":        res.Root,
		"iterations":  res.Iterations,
		"trace":       res.Trace,
		"lines":       res.Lines(),
		"duration_us": res.Duration.Microseconds(),
	}
	if out.RunID != "" {
		response["run_id"] = out.RunID
	}
	return response
}

// errorPayload flattens an MCPError for embedding in a result
func errorPayload(err error) map[string]interface{} {
	payload := map[string]interface{}{"message": err.Error()}
	if mcpErr, ok := err.(*MCPError); ok {
		payload["code"] = mcpErr.Code
		payload["message"] = mcpErr.Message
		payload["data"] = mcpErr.Data
	}
	return payload
}

// Helper functions

// getArgs returns the argument object of a tool call; absent arguments are empty
func getArgs(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// requireString extracts a non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", invalidParam(key, types.ErrMissingParameter.Error())
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", invalidParam(key, "must be a string")
	}
	if strings.TrimSpace(str) == "" {
		return "", invalidParam(key, "must not be empty")
	}
	return str, nil
}

// requireFloat extracts a numeric parameter that must be present
func requireFloat(args map[string]interface{}, key string) (float64, error) {
	v, ok, err := optionalFloat(args, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, invalidParam(key, types.ErrMissingParameter.Error())
	}
	return v, nil
}

// optionalFloat extracts a numeric parameter, reporting whether it was present.
// Numeric strings are accepted.
func optionalFloat(args map[string]interface{}, key string) (float64, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false, invalidParam(key, "must be a number")
	}
	return f, true, nil
}

// optionalInt extracts an integer parameter with a default value
func optionalInt(args map[string]interface{}, key string, defaultValue int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return defaultValue, nil
	}
	if f, isFloat := v.(float64); isFloat && f != math.Trunc(f) {
		return 0, invalidParam(key, "must be an integer")
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, invalidParam(key, "must be an integer")
	}
	return n, nil
}

// optionalString extracts a string parameter with a default value
func optionalString(args map[string]interface{}, key string, defaultValue string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return defaultValue, nil
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", invalidParam(key, "must be a string")
	}
	return str, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
