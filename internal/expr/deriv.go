package expr

import "math"

// Small constructors keep the rule table below readable
func num(v float64) Node        { return Const{Value: v} }
func add(l, r Node) Node        { return Binary{Op: OpAdd, Left: l, Right: r} }
func sub(l, r Node) Node        { return Binary{Op: OpSub, Left: l, Right: r} }
func mul(l, r Node) Node        { return Binary{Op: OpMul, Left: l, Right: r} }
func div(l, r Node) Node        { return Binary{Op: OpDiv, Left: l, Right: r} }
func pow(l, r Node) Node        { return Binary{Op: OpPow, Left: l, Right: r} }
func call(fn Fn, arg Node) Node { return Call{Fn: fn, Arg: arg} }
func neg(n Node) Node           { return Neg{X: n} }
func square(n Node) Node        { return pow(n, num(2)) }

// deriv differentiates n with respect to x. The result is unsimplified.
func deriv(n Node) Node {
	switch n := n.(type) {
	case Const:
		return num(0)

	case Var:
		return num(1)

	case Neg:
		return neg(deriv(n.X))

	case Binary:
		u, v := n.Left, n.Right
		switch n.Op {
		case OpAdd:
			return add(deriv(u), deriv(v))
		case OpSub:
			return sub(deriv(u), deriv(v))
		case OpMul:
			return add(mul(deriv(u), v), mul(u, deriv(v)))
		case OpDiv:
			return div(sub(mul(deriv(u), v), mul(u, deriv(v))), square(v))
		case OpPow:
			return derivPow(u, v)
		}

	case Call:
		return mul(derivFn(n.Fn, n.Arg), deriv(n.Arg))
	}
	return num(0)
}

func derivPow(u, v Node) Node {
	uVar, vVar := containsVar(u), containsVar(v)
	switch {
	case !uVar && !vVar:
		return num(0)
	case !vVar:
		// d(u^c) = c * u^(c-1) * u'
		return mul(mul(v, pow(u, sub(v, num(1)))), deriv(u))
	case !uVar:
		// d(c^v) = c^v * ln(c) * v'
		return mul(mul(pow(u, v), call(FnLog, u)), deriv(v))
	}
	// d(u^v) = u^v * (v' * ln(u) + v * u' / u)
	return mul(pow(u, v), add(mul(deriv(v), call(FnLog, u)), div(mul(v, deriv(u)), u)))
}

// derivFn returns f'(u) for f applied to u; the caller multiplies by u'
func derivFn(fn Fn, u Node) Node {
	switch fn {
	case FnSin:
		return call(FnCos, u)
	case FnCos:
		return neg(call(FnSin, u))
	case FnTan:
		return div(num(1), square(call(FnCos, u)))
	case FnCot:
		return neg(div(num(1), square(call(FnSin, u))))
	case FnSec:
		return mul(call(FnSec, u), call(FnTan, u))
	case FnCsc:
		return neg(mul(call(FnCsc, u), call(FnCot, u)))
	case FnAsin:
		return div(num(1), call(FnSqrt, sub(num(1), square(u))))
	case FnAcos:
		return neg(div(num(1), call(FnSqrt, sub(num(1), square(u)))))
	case FnAtan:
		return div(num(1), add(num(1), square(u)))
	case FnSinh:
		return call(FnCosh, u)
	case FnCosh:
		return call(FnSinh, u)
	case FnTanh:
		return div(num(1), square(call(FnCosh, u)))
	case FnExp:
		return call(FnExp, u)
	case FnLog:
		return div(num(1), u)
	case FnLog10:
		return div(num(1), mul(u, num(math.Ln10)))
	case FnLog2:
		return div(num(1), mul(u, num(math.Ln2)))
	case FnSqrt:
		return div(num(1), mul(num(2), call(FnSqrt, u)))
	case FnCbrt:
		return div(num(1), mul(num(3), square(call(FnCbrt, u))))
	case FnAbs:
		return call(FnSign, u)
	case FnSign:
		return num(0)
	}
	return num(0)
}
