// Package types provides shared type definitions for the rootfinder MCP server.
//
// This package defines the domain types used across the solver, storage, runner and
// MCP components: methods, solve requests, iteration records and results.
//
// # Solve Requests
//
// A SolveRequest names the method, the expression text in x and the method's starting
// points, plus the shared tolerance and iteration cap:
//
//	req := types.SolveRequest{
//	    Method:        types.MethodBisection,
//	    Expression:    "x^2 - 2",
//	    A:             0,
//	    B:             2,
//	    Tolerance:     1e-6,
//	    MaxIterations: 50,
//	}
//	if err := req.Validate(); err != nil {
//	    return err
//	}
//
// # Iteration Records
//
// Every solver produces a trace of Record values, one per iteration, in order. The
// concrete record type depends on the method:
//
//   - BisectionRecord: i, a, b, c, f(c)
//   - NewtonRecord: i, x, f(x), f'(x), x_new
//   - SecantRecord: i, x0, x1, f(x0), f(x1), x_new
//
// Records are values and never change once produced. Record.String renders the
// one-line text form shown by the CLI:
//
//	Iteration 1: a=0.000000, b=2.000000, c=1.000000, f(c)=-1.000000
//
// # Results
//
// Result wraps a completed trace with its status: StatusConverged when the tolerance
// test stopped the loop, StatusExhausted when the iteration cap was reached first.
// Failed solves do not produce a Result; the error is returned instead.
package types
