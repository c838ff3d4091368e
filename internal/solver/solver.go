package solver

import (
	"fmt"
	"math"
	"time"

	"github.com/dshills/rootfinder-mcp/internal/expr"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

const (
	// StationaryThreshold is the smallest |f'(x)| Newton-Raphson will divide by
	StationaryThreshold = 1e-12
	// DegenerateThreshold is the smallest |f(x1) - f(x0)| the secant method will divide by
	DegenerateThreshold = 1e-12
)

// Compiler turns expression text into compiled expressions
type Compiler interface {
	Compile(text string) (*expr.Expression, error)
	CompileDerivative(text string) (*expr.Expression, error)
}

// ParseCompiler compiles on every call without caching
type ParseCompiler struct{}

func (ParseCompiler) Compile(text string) (*expr.Expression, error) {
	return expr.Parse(text)
}

func (ParseCompiler) CompileDerivative(text string) (*expr.Expression, error) {
	return expr.Derivative(text)
}

// Solver runs the root-finding methods. It holds no mutable state and is safe
// for concurrent use.
type Solver struct {
	compiler Compiler
}

// New creates a Solver. A nil compiler parses on every call.
func New(compiler Compiler) *Solver {
	if compiler == nil {
		compiler = ParseCompiler{}
	}
	return &Solver{compiler: compiler}
}

var defaultSolver = New(nil)

// Solve validates req, runs the requested method and returns its result.
// A solve either returns a complete trace (converged or exhausted) or an error;
// records produced before a failing iteration are discarded.
func (s *Solver) Solve(req types.SolveRequest) (*types.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var (
		trace     []types.Record
		converged bool
		err       error
	)
	switch req.Method {
	case types.MethodBisection:
		trace, converged, err = s.bisection(req)
	case types.MethodNewtonRaphson:
		trace, converged, err = s.newtonRaphson(req)
	case types.MethodSecant:
		trace, converged, err = s.secant(req)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMethod, req.Method)
	}
	if err != nil {
		return nil, err
	}

	res := types.NewResult(req.Method, req.Expression, trace, converged)
	res.Duration = time.Since(start)
	return res, nil
}

// Bisection runs the bisection method on [a, b]
func (s *Solver) Bisection(a, b float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return s.trace(types.SolveRequest{
		Method: types.MethodBisection, Expression: text, A: a, B: b, Tolerance: tol, MaxIterations: maxIter,
	})
}

// NewtonRaphson runs Newton-Raphson from x0 using the exact derivative
func (s *Solver) NewtonRaphson(x0 float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return s.trace(types.SolveRequest{
		Method: types.MethodNewtonRaphson, Expression: text, X0: x0, Tolerance: tol, MaxIterations: maxIter,
	})
}

// Secant runs the secant method from the pair (x0, x1)
func (s *Solver) Secant(x0, x1 float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return s.trace(types.SolveRequest{
		Method: types.MethodSecant, Expression: text, X0: x0, X1: x1, Tolerance: tol, MaxIterations: maxIter,
	})
}

func (s *Solver) trace(req types.SolveRequest) ([]types.Record, error) {
	res, err := s.Solve(req)
	if err != nil {
		return nil, err
	}
	return res.Trace, nil
}

// Solve runs req with a solver that parses on every call
func Solve(req types.SolveRequest) (*types.Result, error) {
	return defaultSolver.Solve(req)
}

// Bisection runs the bisection method on [a, b] with a solver that parses on every call
func Bisection(a, b float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return defaultSolver.Bisection(a, b, text, tol, maxIter)
}

// NewtonRaphson runs Newton-Raphson from x0 with a solver that parses on every call
func NewtonRaphson(x0 float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return defaultSolver.NewtonRaphson(x0, text, tol, maxIter)
}

// Secant runs the secant method from (x0, x1) with a solver that parses on every call
func Secant(x0, x1 float64, text string, tol float64, maxIter int) ([]types.Record, error) {
	return defaultSolver.Secant(x0, x1, text, tol, maxIter)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
