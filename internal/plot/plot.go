package plot

import (
	"errors"
	"fmt"
	"math"

	"github.com/dshills/rootfinder-mcp/internal/expr"
)

// Default sampling domain and resolution
const (
	DefaultMin    = -10.0
	DefaultMax    = 10.0
	DefaultPoints = 400
)

// ErrInvalidDomain is returned for an empty, inverted or non-finite sampling domain
var ErrInvalidDomain = errors.New("invalid plot domain")

// Domain is a closed interval sampled at Points evenly spaced positions
type Domain struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Points int     `json:"points"`
}

// DefaultDomain returns 400 points on [-10, 10]
func DefaultDomain() Domain {
	return Domain{Min: DefaultMin, Max: DefaultMax, Points: DefaultPoints}
}

// Validate checks that the domain can be sampled
func (d Domain) Validate() error {
	if math.IsNaN(d.Min) || math.IsInf(d.Min, 0) || math.IsNaN(d.Max) || math.IsInf(d.Max, 0) {
		return fmt.Errorf("%w: bounds must be finite", ErrInvalidDomain)
	}
	if d.Min >= d.Max {
		return fmt.Errorf("%w: min (%g) must be less than max (%g)", ErrInvalidDomain, d.Min, d.Max)
	}
	if d.Points < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidDomain, d.Points)
	}
	return nil
}

// Point is one sample. Y is only meaningful when Valid is true.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Valid bool    `json:"valid"`
	Error string  `json:"error,omitempty"`
}

// Series is the sampled curve of one expression
type Series struct {
	Expression string  `json:"expression"`
	Domain     Domain  `json:"domain"`
	Points     []Point `json:"points"`
	Failures   int     `json:"failures"`
}

// Sample evaluates e at evenly spaced points across d, both ends included.
// A point where evaluation fails is recorded with Valid=false and never stops sampling.
func Sample(e *expr.Expression, d Domain) (*Series, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s := &Series{
		Expression: e.Source(),
		Domain:     d,
		Points:     make([]Point, d.Points),
	}

	step := (d.Max - d.Min) / float64(d.Points-1)
	for i := range s.Points {
		x := d.Min + float64(i)*step
		if i == d.Points-1 {
			x = d.Max
		}

		y, err := e.Eval(x)
		if err != nil {
			var evalErr *expr.EvaluationError
			msg := err.Error()
			if errors.As(err, &evalErr) {
				msg = evalErr.Msg
			}
			s.Points[i] = Point{X: x, Error: msg}
			s.Failures++
			continue
		}
		s.Points[i] = Point{X: x, Y: y, Valid: true}
	}
	return s, nil
}

// SampleText parses text and samples it; parse failures abort
func SampleText(text string, d Domain) (*Series, error) {
	e, err := expr.Parse(text)
	if err != nil {
		return nil, err
	}
	return Sample(e, d)
}

// Valid returns only the points that evaluated successfully
func (s *Series) Valid() []Point {
	out := make([]Point, 0, len(s.Points)-s.Failures)
	for _, p := range s.Points {
		if p.Valid {
			out = append(out, p)
		}
	}
	return out
}

// SignChanges returns the sub-intervals of consecutive valid points where y changes
// sign. These are candidate brackets for bisection.
func (s *Series) SignChanges() []Domain {
	var out []Domain
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1], s.Points[i]
		if !prev.Valid || !cur.Valid {
			continue
		}
		if (prev.Y < 0 && cur.Y > 0) || (prev.Y > 0 && cur.Y < 0) {
			out = append(out, Domain{Min: prev.X, Max: cur.X, Points: 2})
		}
	}
	return out
}
