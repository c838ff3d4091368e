// Package expr parses, evaluates and symbolically differentiates real-valued
// expressions in a single variable x.
//
// Supported syntax: decimal and exponent literals, the variable x, the constants
// pi, e and E, binary + - * / ^ (** is accepted for ^), unary + and -, parentheses,
// and the one-argument functions
//
//	sin cos tan cot sec csc asin acos atan sinh cosh tanh
//	exp log ln log10 log2 sqrt cbrt abs sign
//
// log and ln are both the natural logarithm. ^ is right associative and binds
// tighter than unary minus, so -x^2 is -(x^2) and 2^-x is 2^(-x).
//
// Usage:
//
//	e, err := expr.Parse("x^2 - 2")
//	if err != nil {
//	    return err // *ParseError, matches ErrParse
//	}
//	y, err := e.Eval(1.5) // *EvaluationError on division by zero or domain errors
//	d := e.Derivative()   // 2 * x
//
// Evaluation never returns NaN or Inf; any non-finite intermediate or final value is
// reported as an *EvaluationError.
package expr
