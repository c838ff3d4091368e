package plot

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rootfinder-mcp/internal/expr"
)

func TestSampleDefaultDomain(t *testing.T) {
	s, err := SampleText("x^2 - 2", DefaultDomain())
	require.NoError(t, err)

	require.Len(t, s.Points, 400)
	assert.Equal(t, -10.0, s.Points[0].X)
	assert.Equal(t, 10.0, s.Points[399].X)
	assert.Equal(t, 0, s.Failures)
	assert.Equal(t, "x^2 - 2", s.Expression)

	for i := 1; i < len(s.Points); i++ {
		assert.Greater(t, s.Points[i].X, s.Points[i-1].X)
	}
	assert.InDelta(t, 98.0, s.Points[0].Y, 1e-9)
}

func TestSampleRecordsFailuresWithoutAborting(t *testing.T) {
	s, err := SampleText("sqrt(x)", Domain{Min: -2, Max: 2, Points: 5})
	require.NoError(t, err)

	require.Len(t, s.Points, 5)
	assert.Equal(t, 2, s.Failures)

	assert.False(t, s.Points[0].Valid)
	assert.Contains(t, s.Points[0].Error, "square root")
	assert.False(t, s.Points[1].Valid)
	assert.True(t, s.Points[2].Valid)
	assert.Equal(t, 0.0, s.Points[2].Y)
	assert.InDelta(t, math.Sqrt2, s.Points[4].Y, 1e-12)

	assert.Len(t, s.Valid(), 3)
}

func TestSampleDivisionByZeroPoint(t *testing.T) {
	s, err := SampleText("1/x", Domain{Min: -1, Max: 1, Points: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, "division by zero", s.Points[1].Error)
}

func TestSampleInvalidDomain(t *testing.T) {
	e := expr.MustParse("x")
	tests := []struct {
		name string
		d    Domain
	}{
		{"inverted", Domain{Min: 1, Max: -1, Points: 10}},
		{"empty", Domain{Min: 1, Max: 1, Points: 10}},
		{"one point", Domain{Min: 0, Max: 1, Points: 1}},
		{"nan bound", Domain{Min: math.NaN(), Max: 1, Points: 10}},
		{"infinite bound", Domain{Min: 0, Max: math.Inf(1), Points: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Sample(e, tt.d)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, ErrInvalidDomain))
		})
	}
}

func TestSampleTextParseError(t *testing.T) {
	_, err := SampleText("x +", DefaultDomain())
	assert.True(t, errors.Is(err, expr.ErrParse))
}

func TestSignChanges(t *testing.T) {
	s, err := SampleText("x^2 - 2", Domain{Min: -3, Max: 3, Points: 7})
	require.NoError(t, err)

	brackets := s.SignChanges()
	require.Len(t, brackets, 2)
	assert.Equal(t, Domain{Min: -2, Max: -1, Points: 2}, brackets[0])
	assert.Equal(t, Domain{Min: 1, Max: 2, Points: 2}, brackets[1])
}
