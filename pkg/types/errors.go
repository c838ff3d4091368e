package types

import "errors"

// Domain errors for request validation
var (
	// Request errors
	ErrUnknownMethod         = errors.New("unknown method")
	ErrEmptyExpression       = errors.New("expression cannot be empty")
	ErrInvalidTolerance      = errors.New("tolerance must be a positive finite number")
	ErrInvalidMaxIterations  = errors.New("max iterations must be >= 1")
	ErrNonFiniteParameter    = errors.New("parameter must be a finite number")
	ErrMissingParameter      = errors.New("required parameter is missing")
	ErrInvalidIterationIndex = errors.New("iteration index must be >= 1")
)
