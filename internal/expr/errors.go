package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError
	ErrParse = errors.New("parse error")
	// ErrEvaluation is matched by every *EvaluationError
	ErrEvaluation = errors.New("evaluation error")
)

// ParseError reports text that is not a valid formula in x.
// Pos is the byte offset of the offending token in Input.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d in %q: %s", e.Pos, e.Input, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// EvaluationError reports an expression that is undefined at X
type EvaluationError struct {
	Expr string
	X    float64
	Msg  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q at x=%g: %s", e.Expr, e.X, e.Msg)
}

func (e *EvaluationError) Unwrap() error {
	return ErrEvaluation
}
