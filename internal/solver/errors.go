package solver

import (
	"errors"
	"fmt"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

var (
	// ErrInvalidBracket means f(a) and f(b) do not have strictly opposite signs
	ErrInvalidBracket = errors.New("invalid bracket: f(a) and f(b) must have opposite signs")
	// ErrStationaryDerivative means |f'(x)| fell below the stationary threshold
	ErrStationaryDerivative = errors.New("derivative is too close to zero")
	// ErrDegenerateSecant means |f(x1) - f(x0)| fell below the degenerate threshold
	ErrDegenerateSecant = errors.New("secant slope is undefined: f(x1) - f(x0) is too close to zero")
	// ErrDiverged means an update step produced a non-finite estimate
	ErrDiverged = errors.New("iteration produced a non-finite estimate")
)

// SolveError reports a solve that failed. Iteration is the 1-based iteration that
// failed, or 0 when the failure happened before the loop started.
type SolveError struct {
	Method    types.Method
	Iteration int
	Err       error
}

func (e *SolveError) Error() string {
	if e.Iteration == 0 {
		return fmt.Sprintf("%s: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("%s failed at iteration %d: %v", e.Method, e.Iteration, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
