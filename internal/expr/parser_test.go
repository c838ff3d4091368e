package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		x     float64
		want  float64
	}{
		{"polynomial", "x^2 - 2", 3, 7},
		{"unary minus binds looser than power", "-x^2", 3, -9},
		{"power is right associative", "2^3^2", 0, 512},
		{"double star power", "2**3", 0, 8},
		{"signed exponent", "2^-1", 0, 0.5},
		{"signed exponent then product", "x^-2*3", 2, 0.75},
		{"left associative subtraction", "10 - 4 - 3", 0, 3},
		{"left associative division", "24 / 4 / 2", 0, 3},
		{"unary plus", "+x", 4, 4},
		{"double negation", "--x", 4, 4},
		{"exponent literal", "1.5e2 + .5", 0, 150.5},
		{"trailing dot literal", "2. * x", 3, 6},
		{"parentheses", "(x + 1) * (x - 1)", 3, 8},
		{"constant pi", "sin(pi / 2)", 0, 1},
		{"constant e", "ln(e)", 0, 1},
		{"constant E", "log(E)", 0, 1},
		{"abs and sign", "abs(-3) + sign(-2)", 0, 2},
		{"sign of zero", "sign(x)", 0, 0},
		{"nested calls", "exp(log(x))", 5, 5},
		{"whitespace", "  x\t*\n2 ", 1.5, 3},
		{"negative base integer power", "(-2)^3", 0, -8},
		{"zero to zero", "x^0", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)

			got, err := e.Eval(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParseUnaryMinusPrecedence(t *testing.T) {
	e := MustParse("-x^2")

	neg, ok := e.Root().(Neg)
	require.True(t, ok, "root should be Neg, got %T", e.Root())

	pow, ok := neg.X.(Binary)
	require.True(t, ok)
	assert.Equal(t, OpPow, pow.Op)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pos     int
		wantMsg string
	}{
		{"empty", "", 0, "empty expression"},
		{"blank", "   ", 3, "empty expression"},
		{"dangling operator", "x +", 3, "unexpected end of expression"},
		{"unknown symbol", "y + 1", 0, "unknown symbol"},
		{"uppercase variable", "X", 0, "unknown symbol"},
		{"unknown function", "foo(x)", 0, "unknown function"},
		{"function without parentheses", "sin x", 0, "requires a parenthesised argument"},
		{"missing close paren", "(x + 1", 6, "expected ')'"},
		{"illegal character", "x $ 2", 2, "invalid character"},
		{"implicit multiplication", "2x", 1, "unexpected"},
		{"too many arguments", "sin(x, 2)", 5, "exactly one argument"},
		{"no arguments", "sin()", 4, "exactly one argument"},
		{"unclosed call", "sin(x", 5, "expected ')' after argument"},
		{"stray close paren", "x)", 1, "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.input, perr.Input)
			assert.Equal(t, tt.pos, perr.Pos)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	inputs := []string{
		"x^2 - 2",
		"-x^2",
		"(-x)^2",
		"x - (x - 1)",
		"x / (2 * x)",
		"2^3^2",
		"(2^3)^2",
		"x^-2 * 3",
		"sin(x) * cos(x) + tan(x / 2)",
		"-(x + 1)",
		"exp(-x^2 / 2)",
		"pi * x",
		"1e-7 * x",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e := MustParse(in)
			printed := e.String()

			again, err := Parse(printed)
			require.NoError(t, err, "printed form %q should parse", printed)
			assert.Equal(t, e.Root(), again.Root(), "printed form %q", printed)
			assert.Equal(t, printed, again.String())
		})
	}
}

func TestStringCanonicalForm(t *testing.T) {
	assert.Equal(t, "x^2 - 2", MustParse("x**2-2").String())
	assert.Equal(t, "-x^2", MustParse("-x^2").String())
	assert.Equal(t, "(-x)^2", MustParse("(-x)^2").String())
	assert.Equal(t, "log(x)", MustParse("ln(x)").String())
	assert.Equal(t, "x**2-2", MustParse("  x**2-2 ").Source())
}

func TestDependsOnX(t *testing.T) {
	assert.True(t, MustParse("sin(x) + 1").DependsOnX())
	assert.False(t, MustParse("sin(pi) + 1").DependsOnX())
}

func TestFunctions(t *testing.T) {
	names := Functions()
	assert.Contains(t, names, "sin")
	assert.Contains(t, names, "ln")
	assert.Contains(t, names, "log")
	assert.Len(t, names, len(fnNames)+1)
}
