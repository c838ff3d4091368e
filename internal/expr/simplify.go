package expr

import "math"

// simplify folds constants and removes identity operations bottom-up.
// A constant subtree is only folded when its value is finite.
func simplify(n Node) Node {
	switch n := n.(type) {
	case Const, Var:
		return n

	case Neg:
		x := simplify(n.X)
		if c, ok := constValue(x); ok {
			return foldConst(-c, Neg{X: x})
		}
		if inner, ok := x.(Neg); ok {
			return inner.X
		}
		return Neg{X: x}

	case Binary:
		return simplifyBinary(n.Op, simplify(n.Left), simplify(n.Right))

	case Call:
		arg := simplify(n.Arg)
		if c, ok := constValue(arg); ok && n.Fn == FnSign {
			v, _ := applyFn(FnSign, c)
			return num(v)
		}
		return Call{Fn: n.Fn, Arg: arg}
	}
	return n
}

func simplifyBinary(op Op, l, r Node) Node {
	lc, lok := constValue(l)
	rc, rok := constValue(r)
	orig := Binary{Op: op, Left: l, Right: r}

	if lok && rok {
		if v, err := applyOp(op, lc, rc); err == nil {
			return foldConst(v, orig)
		}
		return orig
	}

	switch op {
	case OpAdd:
		if lok && lc == 0 {
			return r
		}
		if rok && rc == 0 {
			return l
		}
		if rn, ok := r.(Neg); ok {
			return simplifyBinary(OpSub, l, rn.X)
		}

	case OpSub:
		if rok && rc == 0 {
			return l
		}
		if lok && lc == 0 {
			return simplify(Neg{X: r})
		}
		if rn, ok := r.(Neg); ok {
			return simplifyBinary(OpAdd, l, rn.X)
		}

	case OpMul:
		if (lok && lc == 0) || (rok && rc == 0) {
			return num(0)
		}
		if lok && lc == 1 {
			return r
		}
		if rok && rc == 1 {
			return l
		}
		if lok && lc == -1 {
			return simplify(Neg{X: r})
		}
		if rok && rc == -1 {
			return simplify(Neg{X: l})
		}
		// keep constants on the left: x * 2 -> 2 * x
		if rok {
			return Binary{Op: OpMul, Left: r, Right: l}
		}
		if ln, ok := l.(Neg); ok {
			return simplify(Neg{X: Binary{Op: OpMul, Left: ln.X, Right: r}})
		}
		if rn, ok := r.(Neg); ok {
			return simplify(Neg{X: Binary{Op: OpMul, Left: l, Right: rn.X}})
		}

	case OpDiv:
		if rok && rc == 1 {
			return l
		}
		if lok && lc == 0 && rok {
			return num(0)
		}
		if ln, ok := l.(Neg); ok {
			return simplify(Neg{X: Binary{Op: OpDiv, Left: ln.X, Right: r}})
		}

	case OpPow:
		if rok && rc == 1 {
			return l
		}
		if rok && rc == 0 {
			return num(1)
		}
	}
	return orig
}

func constValue(n Node) (float64, bool) {
	if c, ok := n.(Const); ok {
		return c.Value, true
	}
	return 0, false
}

// foldConst keeps the unfolded form when folding would produce NaN or Inf
func foldConst(v float64, unfolded Node) Node {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unfolded
	}
	return num(v)
}
