package mcp

import (
	"errors"
	"fmt"

	"github.com/dshills/rootfinder-mcp/internal/expr"
	"github.com/dshills/rootfinder-mcp/internal/plot"
	"github.com/dshills/rootfinder-mcp/internal/runner"
	"github.com/dshills/rootfinder-mcp/internal/solver"
	"github.com/dshills/rootfinder-mcp/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams        = -32602 // Invalid method parameters
	ErrorCodeInternalError        = -32603 // Internal JSON-RPC error
	ErrorCodeParse                = -32001 // Expression could not be parsed
	ErrorCodeEvaluation           = -32002 // Expression could not be evaluated or the iteration diverged
	ErrorCodeInvalidBracket       = -32003 // f(a) and f(b) do not have opposite signs
	ErrorCodeStationaryDerivative = -32004 // Newton-Raphson hit a near-zero derivative
	ErrorCodeDegenerateSecant     = -32005 // Secant slope is undefined
	ErrorCodeRunNotFound          = -32006 // No run with the given id
	ErrorCodeInvalidDomain        = -32007 // Plot domain cannot be sampled
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// invalidParam reports a missing or malformed argument
func invalidParam(param, reason string) error {
	return newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("invalid %s: %s", param, reason), map[string]interface{}{
		"param":  param,
		"reason": reason,
	})
}

// toMCPError maps engine, solver, plot and storage errors onto tool error codes
func toMCPError(err error) error {
	data := map[string]interface{}{
		"error": err.Error(),
	}

	var solveErr *solver.SolveError
	if errors.As(err, &solveErr) {
		data["method"] = string(solveErr.Method)
		if solveErr.Iteration > 0 {
			data["iteration"] = solveErr.Iteration
		}
	}

	var parseErr *expr.ParseError
	if errors.As(err, &parseErr) {
		data["position"] = parseErr.Pos
		data["reason"] = parseErr.Msg
		return newMCPError(ErrorCodeParse, "expression could not be parsed", data)
	}

	var evalErr *expr.EvaluationError
	if errors.As(err, &evalErr) {
		data["x"] = evalErr.X
		data["reason"] = evalErr.Msg
		return newMCPError(ErrorCodeEvaluation, "expression could not be evaluated", data)
	}

	switch runner.ErrorKind(err) {
	case runner.KindInvalidRequest:
		return newMCPError(ErrorCodeInvalidParams, err.Error(), data)
	case runner.KindDiverged:
		data["kind"] = runner.KindDiverged
		return newMCPError(ErrorCodeEvaluation, "iteration diverged", data)
	case runner.KindInvalidBracket:
		return newMCPError(ErrorCodeInvalidBracket, "f(a) and f(b) must have opposite signs", data)
	case runner.KindStationaryDerivative:
		return newMCPError(ErrorCodeStationaryDerivative, "derivative is too close to zero", data)
	case runner.KindDegenerateSecant:
		return newMCPError(ErrorCodeDegenerateSecant, "secant slope is undefined", data)
	}

	switch {
	case errors.Is(err, plot.ErrInvalidDomain):
		return newMCPError(ErrorCodeInvalidDomain, "invalid plot domain", data)
	case errors.Is(err, storage.ErrNotFound):
		return newMCPError(ErrorCodeRunNotFound, "run not found", data)
	}

	return newMCPError(ErrorCodeInternalError, "internal error", data)
}
