package expr

import "strings"

// Expression is a compiled formula in x. It is immutable and safe for concurrent use.
type Expression struct {
	source string
	root   Node
}

// Parse compiles text into an Expression
func Parse(text string) (*Expression, error) {
	root, err := parse(text)
	if err != nil {
		return nil, err
	}
	return &Expression{source: strings.TrimSpace(text), root: root}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(text string) *Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval evaluates the expression at x. Undefined points return an *EvaluationError,
// never NaN or Inf.
func (e *Expression) Eval(x float64) (float64, error) {
	v, err := eval(e.root, x)
	if err != nil {
		return 0, &EvaluationError{Expr: e.source, X: x, Msg: err.Error()}
	}
	return v, nil
}

// Derivative returns the simplified symbolic derivative with respect to x
func (e *Expression) Derivative() *Expression {
	root := simplify(deriv(e.root))
	return &Expression{source: format(root), root: root}
}

// String returns the canonical printed form of the tree
func (e *Expression) String() string {
	return format(e.root)
}

// Source returns the text the expression was parsed from
func (e *Expression) Source() string {
	return e.source
}

// Root returns the tree root
func (e *Expression) Root() Node {
	return e.root
}

// DependsOnX reports whether the expression contains the variable x
func (e *Expression) DependsOnX() bool {
	return containsVar(e.root)
}

// Evaluate parses text and evaluates it at x
func Evaluate(text string, x float64) (float64, error) {
	e, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return e.Eval(x)
}

// Derivative parses text and returns its derivative
func Derivative(text string) (*Expression, error) {
	e, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Derivative(), nil
}

// EvaluateDerivative parses text, differentiates it and evaluates the derivative at x
func EvaluateDerivative(text string, x float64) (float64, error) {
	d, err := Derivative(text)
	if err != nil {
		return 0, err
	}
	return d.Eval(x)
}
