package expr

import (
	"fmt"
	"math"
	"strings"
)

// constants maps the accepted named constants to their values
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
	"E":  math.E,
}

type parser struct {
	input string
	l     lexer
	cur   token
}

// parse turns text into a tree. Grammar, lowest precedence first:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ "^" exponent ]
//	exponent = ("+" | "-") exponent | power
//	primary = number | "x" | constant | name "(" sum ")" | "(" sum ")"
func parse(input string) (Node, error) {
	p := &parser{input: input, l: lexer{s: input}}
	p.next()

	if p.cur.kind == tokEOF {
		return nil, p.errorf(p.cur, "empty expression")
	}

	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	switch p.cur.kind {
	case tokEOF:
		return n, nil
	case tokIllegal:
		return nil, p.errorf(p.cur, "invalid character %q", p.cur.text)
	}
	return nil, p.errorf(p.cur, "unexpected %q", p.cur.text)
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) errorf(at token, format string, args ...interface{}) error {
	return &ParseError{Input: p.input, Pos: at.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := OpAdd
		if p.cur.kind == tokMinus {
			op = OpSub
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash {
		op := OpMul
		if p.cur.kind == tokSlash {
			op = OpDiv
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	switch p.cur.kind {
	case tokPlus:
		p.next()
		return p.parseUnary()
	case tokMinus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg{X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokCaret {
		return base, nil
	}
	p.next()
	exp, err := p.parseExponent()
	if err != nil {
		return nil, err
	}
	return Binary{Op: OpPow, Left: base, Right: exp}, nil
}

// parseExponent is unary without dropping back to product level, so x^-2*3 is (x^-2)*3
func (p *parser) parseExponent() (Node, error) {
	switch p.cur.kind {
	case tokPlus:
		p.next()
		return p.parseExponent()
	case tokMinus:
		p.next()
		x, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return Neg{X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.cur
	switch tok.kind {
	case tokNumber:
		p.next()
		return Const{Value: tok.num}, nil

	case tokIdent:
		p.next()
		if tok.text == "x" {
			return Var{}, nil
		}
		if v, ok := constants[tok.text]; ok {
			return Const{Value: v, Name: tok.text}, nil
		}
		fn, isFn := functions[tok.text]
		if p.cur.kind != tokLParen {
			if isFn {
				return nil, p.errorf(tok, "function %s requires a parenthesised argument", tok.text)
			}
			return nil, p.errorf(tok, "unknown symbol %q (only x is allowed)", tok.text)
		}
		if !isFn {
			return nil, p.errorf(tok, "unknown function %q", tok.text)
		}
		p.next()
		if p.cur.kind == tokRParen {
			return nil, p.errorf(p.cur, "function %s takes exactly one argument", tok.text)
		}
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.cur.kind == tokComma {
			return nil, p.errorf(p.cur, "function %s takes exactly one argument", tok.text)
		}
		if p.cur.kind != tokRParen {
			return nil, p.errorf(p.cur, "expected ')' after argument of %s", tok.text)
		}
		p.next()
		return Call{Fn: fn, Arg: arg}, nil

	case tokLParen:
		p.next()
		n, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, p.errorf(p.cur, "expected ')'")
		}
		p.next()
		return n, nil

	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of expression")

	case tokIllegal:
		return nil, p.errorf(tok, "invalid character %q", tok.text)
	}
	return nil, p.errorf(tok, "unexpected %q", strings.TrimSpace(tok.text))
}
