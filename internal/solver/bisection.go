package solver

import (
	"fmt"
	"math"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// bisection halves [a, b] until |f(c)| < tol or |b-a| < tol.
// f(a) is carried between iterations; it is only recomputed when a moves, and then
// it equals f(c), so the branch taken is the same as evaluating f(a) afresh.
func (s *Solver) bisection(req types.SolveRequest) ([]types.Record, bool, error) {
	f, err := s.compiler.Compile(req.Expression)
	if err != nil {
		return nil, false, err
	}

	a, b, tol := req.A, req.B, req.Tolerance
	fail := func(i int, err error) ([]types.Record, bool, error) {
		return nil, false, &SolveError{Method: types.MethodBisection, Iteration: i, Err: err}
	}

	fa, err := f.Eval(a)
	if err != nil {
		return fail(0, err)
	}
	fb, err := f.Eval(b)
	if err != nil {
		return fail(0, err)
	}
	if sign(fa)*sign(fb) >= 0 {
		return fail(0, fmt.Errorf("%w (f(%g)=%g, f(%g)=%g)", ErrInvalidBracket, a, fa, b, fb))
	}

	trace := make([]types.Record, 0, min(req.MaxIterations, 64))
	for i := 1; i <= req.MaxIterations; i++ {
		c := (a + b) / 2
		fc, err := f.Eval(c)
		if err != nil {
			return fail(i, err)
		}

		trace = append(trace, types.BisectionRecord{Iteration: i, A: a, B: b, C: c, FC: fc})

		if math.Abs(fc) < tol || math.Abs(b-a) < tol {
			return trace, true, nil
		}

		if sign(fa)*sign(fc) < 0 {
			b = c
		} else {
			a, fa = c, fc
		}
	}
	return trace, false, nil
}
