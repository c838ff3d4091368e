package solver

import (
	"math"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

func (s *Solver) secant(req types.SolveRequest) ([]types.Record, bool, error) {
	f, err := s.compiler.Compile(req.Expression)
	if err != nil {
		return nil, false, err
	}

	x0, x1, tol := req.X0, req.X1, req.Tolerance
	fail := func(i int, err error) ([]types.Record, bool, error) {
		return nil, false, &SolveError{Method: types.MethodSecant, Iteration: i, Err: err}
	}

	var fx0, fx1 float64
	trace := make([]types.Record, 0, min(req.MaxIterations, 64))
	for i := 1; i <= req.MaxIterations; i++ {
		// after the first iteration x0 is the previous x1, so its value is reused
		if i == 1 {
			if fx0, err = f.Eval(x0); err != nil {
				return fail(i, err)
			}
		} else {
			fx0 = fx1
		}
		if fx1, err = f.Eval(x1); err != nil {
			return fail(i, err)
		}

		if math.Abs(fx1-fx0) < DegenerateThreshold {
			return fail(i, ErrDegenerateSecant)
		}

		xNew := x1 - fx1*(x1-x0)/(fx1-fx0)
		if !isFinite(xNew) {
			return fail(i, ErrDiverged)
		}

		trace = append(trace, types.SecantRecord{Iteration: i, X0: x0, X1: x1, FX0: fx0, FX1: fx1, XNew: xNew})

		if math.Abs(xNew-x1) < tol || math.Abs(fx1) < tol {
			return trace, true, nil
		}
		x0, x1 = x1, xNew
	}
	return trace, false, nil
}
