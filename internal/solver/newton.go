package solver

import (
	"math"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

func (s *Solver) newtonRaphson(req types.SolveRequest) ([]types.Record, bool, error) {
	f, err := s.compiler.Compile(req.Expression)
	if err != nil {
		return nil, false, err
	}
	df, err := s.compiler.CompileDerivative(req.Expression)
	if err != nil {
		return nil, false, err
	}

	x, tol := req.X0, req.Tolerance
	fail := func(i int, err error) ([]types.Record, bool, error) {
		return nil, false, &SolveError{Method: types.MethodNewtonRaphson, Iteration: i, Err: err}
	}

	trace := make([]types.Record, 0, min(req.MaxIterations, 64))
	for i := 1; i <= req.MaxIterations; i++ {
		fx, err := f.Eval(x)
		if err != nil {
			return fail(i, err)
		}
		dfx, err := df.Eval(x)
		if err != nil {
			return fail(i, err)
		}

		if math.Abs(dfx) < StationaryThreshold {
			return fail(i, ErrStationaryDerivative)
		}

		xNew := x - fx/dfx
		if !isFinite(xNew) {
			return fail(i, ErrDiverged)
		}

		trace = append(trace, types.NewtonRecord{Iteration: i, X: x, FX: fx, DFX: dfx, XNew: xNew})

		if math.Abs(xNew-x) < tol || math.Abs(fx) < tol {
			return trace, true, nil
		}
		x = xNew
	}
	return trace, false, nil
}
