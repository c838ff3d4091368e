package expr

import (
	"strconv"
	"strings"
)

const (
	precSum = iota + 1
	precProduct
	precUnary
	precPower
	precPrimary
)

func precedence(n Node) int {
	switch n := n.(type) {
	case Const:
		if n.Name == "" && n.Value < 0 {
			return precUnary
		}
		return precPrimary
	case Neg:
		return precUnary
	case Binary:
		switch n.Op {
		case OpAdd, OpSub:
			return precSum
		case OpMul, OpDiv:
			return precProduct
		}
		return precPower
	}
	return precPrimary
}

// format prints n so that parsing the output yields an equivalent tree
func format(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case Const:
		if n.Name != "" {
			sb.WriteString(n.Name)
			return
		}
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))

	case Var:
		sb.WriteByte('x')

	case Neg:
		sb.WriteByte('-')
		writeOperand(sb, n.X, precedence(n.X) <= precUnary)

	case Binary:
		own := precedence(n)
		if n.Op == OpPow {
			writeOperand(sb, n.Left, precedence(n.Left) <= precPower)
			sb.WriteByte('^')
			writeOperand(sb, n.Right, precedence(n.Right) < precUnary)
			return
		}
		writeOperand(sb, n.Left, precedence(n.Left) < own)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeOperand(sb, n.Right, precedence(n.Right) <= own)

	case Call:
		sb.WriteString(n.Fn.String())
		sb.WriteByte('(')
		writeNode(sb, n.Arg)
		sb.WriteByte(')')
	}
}

func writeOperand(sb *strings.Builder, n Node, paren bool) {
	if paren {
		sb.WriteByte('(')
	}
	writeNode(sb, n)
	if paren {
		sb.WriteByte(')')
	}
}
