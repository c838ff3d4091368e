package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivativeString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5", "0"},
		{"x", "1"},
		{"3*x", "3"},
		{"x^2 - 2", "2 * x"},
		{"sin(x)", "cos(x)"},
		{"cos(x)", "-sin(x)"},
		{"exp(2*x)", "2 * exp(2 * x)"},
		{"ln(x)", "1 / x"},
		{"-x", "-1"},
		{"pi", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := Derivative(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.want, d.Source())
		})
	}
}

func TestDerivativeParseError(t *testing.T) {
	_, err := Derivative("sin(")
	assert.True(t, errors.Is(err, ErrParse))

	_, err = EvaluateDerivative("z^2", 1)
	assert.True(t, errors.Is(err, ErrParse))
}

// The symbolic derivative must agree with a central finite difference wherever
// the function is differentiable.
func TestDerivativeMatchesFiniteDifference(t *testing.T) {
	tests := []struct {
		input string
		x     float64
	}{
		{"x^2 - 2", 1.3},
		{"x^3 - 2*x + 1", -0.7},
		{"sin(x) * cos(x)", 0.4},
		{"exp(x) / x", 1.7},
		{"log(x^2 + 1)", 2},
		{"ln(x)", 4},
		{"sqrt(x)", 2.5},
		{"x^x", 1.5},
		{"2^x", 0.3},
		{"tan(x)", 0.5},
		{"cot(x)", 1},
		{"sec(x)", 0.3},
		{"csc(x)", 1.1},
		{"asin(x)", 0.3},
		{"acos(x)", -0.2},
		{"atan(x^2)", 0.8},
		{"sinh(x) + cosh(x)", 0.5},
		{"tanh(x)", 0.2},
		{"log10(x)", 3},
		{"log2(x)", 5},
		{"cbrt(x)", 2},
		{"abs(x)", -2},
		{"exp(-x^2)", 0.6},
		{"1 / (1 + x^2)", 0.9},
		{"x * sin(1 / x)", 0.7},
		{"(x + 1)^-2", 0.5},
		{"-x^2 + pi*x", 1.2},
		{"sqrt(1 + sin(x)^2) / (2 + cos(x))", 2.2},
	}

	const h = 1e-5
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := MustParse(tt.input)

			hi, err := e.Eval(tt.x + h)
			require.NoError(t, err)
			lo, err := e.Eval(tt.x - h)
			require.NoError(t, err)
			fd := (hi - lo) / (2 * h)

			got, err := EvaluateDerivative(tt.input, tt.x)
			require.NoError(t, err)
			assert.InDelta(t, fd, got, 1e-3*math.Max(1, math.Abs(fd)), "d/dx %s = %s", tt.input, e.Derivative())
		})
	}
}

func TestDerivativeIsDeterministic(t *testing.T) {
	e := MustParse("x^x * sin(x) / (1 + exp(-x))")
	first := e.Derivative().String()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Derivative().String())
	}
}

func TestDerivativeOfDerivative(t *testing.T) {
	d2 := MustParse("x^3").Derivative().Derivative()
	v, err := d2.Eval(2)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, v, 1e-12)
}

func TestSimplifyKeepsNonFiniteConstants(t *testing.T) {
	// 1/0 cannot be folded, so evaluation still reports the division
	e := &Expression{source: "1/0", root: simplify(div(num(1), num(0)))}
	_, err := e.Eval(0)
	assert.True(t, errors.Is(err, ErrEvaluation))
}
