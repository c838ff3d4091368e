package types

import (
	"fmt"
	"math"
	"strings"
)

// Method identifies a root-finding algorithm
type Method string

const (
	MethodBisection     Method = "bisection"
	MethodNewtonRaphson Method = "newton_raphson"
	MethodSecant        Method = "secant"
)

// AllMethods lists the supported methods in presentation order
var AllMethods = []Method{MethodBisection, MethodNewtonRaphson, MethodSecant}

// ParseMethod accepts the canonical names plus a few common spellings
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bisection", "bisect":
		return MethodBisection, nil
	case "newton_raphson", "newton-raphson", "newton":
		return MethodNewtonRaphson, nil
	case "secant":
		return MethodSecant, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Status describes how a solve terminated
type Status string

const (
	// StatusConverged means the tolerance test stopped the loop
	StatusConverged Status = "converged"
	// StatusExhausted means the loop ran maxIterations times without meeting tolerance
	StatusExhausted Status = "exhausted"
	// StatusFailed is only used for persisted runs that ended in an error
	StatusFailed Status = "failed"
)

// Default solver parameters
const (
	DefaultTolerance     = 0.001
	DefaultMaxIterations = 50
)

// SolveRequest carries the parameters of one solve call.
//
// Bisection reads A and B, Newton-Raphson reads X0, Secant reads X0 and X1.
type SolveRequest struct {
	Method        Method  `json:"method"`
	Expression    string  `json:"expression"`
	A             float64 `json:"a,omitempty"`
	B             float64 `json:"b,omitempty"`
	X0            float64 `json:"x0,omitempty"`
	X1            float64 `json:"x1,omitempty"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
}

// Validate checks the request independently of the expression's content
func (r *SolveRequest) Validate() error {
	switch r.Method {
	case MethodBisection, MethodNewtonRaphson, MethodSecant:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, r.Method)
	}

	if strings.TrimSpace(r.Expression) == "" {
		return ErrEmptyExpression
	}

	if r.Tolerance <= 0 || !isFinite(r.Tolerance) {
		return ErrInvalidTolerance
	}

	if r.MaxIterations < 1 {
		return ErrInvalidMaxIterations
	}

	for name, v := range r.startingPoints() {
		if !isFinite(v) {
			return fmt.Errorf("%w: %s", ErrNonFiniteParameter, name)
		}
	}

	return nil
}

// Params returns the method-specific starting points keyed by parameter name
func (r *SolveRequest) Params() map[string]float64 {
	return r.startingPoints()
}

func (r *SolveRequest) startingPoints() map[string]float64 {
	switch r.Method {
	case MethodBisection:
		return map[string]float64{"a": r.A, "b": r.B}
	case MethodNewtonRaphson:
		return map[string]float64{"x0": r.X0}
	case MethodSecant:
		return map[string]float64{"x0": r.X0, "x1": r.X1}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
