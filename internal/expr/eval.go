package expr

import (
	"errors"
	"math"
)

// evalFault carries the reason an evaluation failed; the caller attaches expression and x
type evalFault string

func (f evalFault) Error() string { return string(f) }

const (
	faultDivByZero  evalFault = "division by zero"
	faultNonFinite  evalFault = "result is not a finite number"
	faultLogDomain  evalFault = "logarithm of a non-positive value"
	faultSqrtDomain evalFault = "square root of a negative value"
	faultTrigDomain evalFault = "argument outside [-1, 1]"
	faultPowDomain  evalFault = "negative base raised to a non-integer power"
	faultPole       evalFault = "function has a pole at this point"
)

func eval(n Node, x float64) (float64, error) {
	v, err := evalNode(n, x)
	if err != nil {
		return 0, err
	}
	return finite(v)
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, faultNonFinite
	}
	return v, nil
}

func evalNode(n Node, x float64) (float64, error) {
	switch n := n.(type) {
	case Const:
		return n.Value, nil

	case Var:
		return x, nil

	case Neg:
		v, err := evalNode(n.X, x)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case Binary:
		l, err := evalNode(n.Left, x)
		if err != nil {
			return 0, err
		}
		r, err := evalNode(n.Right, x)
		if err != nil {
			return 0, err
		}
		v, err := applyOp(n.Op, l, r)
		if err != nil {
			return 0, err
		}
		return finite(v)

	case Call:
		a, err := evalNode(n.Arg, x)
		if err != nil {
			return 0, err
		}
		v, err := applyFn(n.Fn, a)
		if err != nil {
			return 0, err
		}
		return finite(v)
	}
	return 0, errors.New("unknown node")
}

func applyOp(op Op, l, r float64) (float64, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, faultDivByZero
		}
		return l / r, nil
	case OpPow:
		if l == 0 && r < 0 {
			return 0, faultDivByZero
		}
		if l < 0 && r != math.Trunc(r) {
			return 0, faultPowDomain
		}
		return math.Pow(l, r), nil
	}
	return 0, errors.New("unknown operator")
}

func applyFn(fn Fn, a float64) (float64, error) {
	switch fn {
	case FnSin:
		return math.Sin(a), nil
	case FnCos:
		return math.Cos(a), nil
	case FnTan:
		if math.Cos(a) == 0 {
			return 0, faultPole
		}
		return math.Tan(a), nil
	case FnCot:
		if math.Sin(a) == 0 {
			return 0, faultPole
		}
		return math.Cos(a) / math.Sin(a), nil
	case FnSec:
		if math.Cos(a) == 0 {
			return 0, faultPole
		}
		return 1 / math.Cos(a), nil
	case FnCsc:
		if math.Sin(a) == 0 {
			return 0, faultPole
		}
		return 1 / math.Sin(a), nil
	case FnAsin:
		if a < -1 || a > 1 {
			return 0, faultTrigDomain
		}
		return math.Asin(a), nil
	case FnAcos:
		if a < -1 || a > 1 {
			return 0, faultTrigDomain
		}
		return math.Acos(a), nil
	case FnAtan:
		return math.Atan(a), nil
	case FnSinh:
		return math.Sinh(a), nil
	case FnCosh:
		return math.Cosh(a), nil
	case FnTanh:
		return math.Tanh(a), nil
	case FnExp:
		return math.Exp(a), nil
	case FnLog:
		if a <= 0 {
			return 0, faultLogDomain
		}
		return math.Log(a), nil
	case FnLog10:
		if a <= 0 {
			return 0, faultLogDomain
		}
		return math.Log10(a), nil
	case FnLog2:
		if a <= 0 {
			return 0, faultLogDomain
		}
		return math.Log2(a), nil
	case FnSqrt:
		if a < 0 {
			return 0, faultSqrtDomain
		}
		return math.Sqrt(a), nil
	case FnCbrt:
		return math.Cbrt(a), nil
	case FnAbs:
		return math.Abs(a), nil
	case FnSign:
		switch {
		case a > 0:
			return 1, nil
		case a < 0:
			return -1, nil
		}
		return 0, nil
	}
	return 0, errors.New("unknown function")
}
