// Package solver implements the bisection, Newton-Raphson and secant root-finding
// methods over expressions compiled by package expr.
//
// Each method returns a trace with one record per iteration. A solve terminates in
// one of three ways:
//
//   - converged: the tolerance test passed and the trace ends early
//   - exhausted: the trace holds exactly MaxIterations records
//   - failed: an error is returned and no records are
//
// Failures are *SolveError values wrapping ErrInvalidBracket, ErrStationaryDerivative,
// ErrDegenerateSecant, ErrDiverged or an *expr.EvaluationError. Parse failures and
// request validation errors are returned as they are.
//
// The expression is compiled once per call through a Compiler. The default compiler
// parses every time; internal/exprcache provides a caching one.
package solver
