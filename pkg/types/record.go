package types

import (
	"encoding/json"
	"fmt"
)

// Record is one iteration of a solver trace. The set of implementations is closed:
// BisectionRecord, NewtonRecord and SecantRecord.
type Record interface {
	// Index is the 1-based iteration number
	Index() int
	// Estimate is the root estimate produced by the iteration (c or x_new)
	Estimate() float64
	// Residual is the function value examined by the stopping test
	Residual() float64
	String() string

	record()
}

// BisectionRecord holds the bracket and midpoint examined by one bisection step
type BisectionRecord struct {
	Iteration int     `json:"i"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	C         float64 `json:"c"`
	FC        float64 `json:"fc"`
}

func (r BisectionRecord) Index() int        { return r.Iteration }
func (r BisectionRecord) Estimate() float64 { return r.C }
func (r BisectionRecord) Residual() float64 { return r.FC }
func (BisectionRecord) record()             {}

func (r BisectionRecord) String() string {
	return fmt.Sprintf("Iteration %d: a=%.6f, b=%.6f, c=%.6f, f(c)=%.6f", r.Iteration, r.A, r.B, r.C, r.FC)
}

// NewtonRecord holds the estimate, function value and exact derivative of one Newton step
type NewtonRecord struct {
	Iteration int     `json:"i"`
	X         float64 `json:"x"`
	FX        float64 `json:"fx"`
	DFX       float64 `json:"dfx"`
	XNew      float64 `json:"x_new"`
}

func (r NewtonRecord) Index() int        { return r.Iteration }
func (r NewtonRecord) Estimate() float64 { return r.XNew }
func (r NewtonRecord) Residual() float64 { return r.FX }
func (NewtonRecord) record()             {}

func (r NewtonRecord) String() string {
	return fmt.Sprintf("Iteration %d: x=%.6f, f(x)=%.6f, f'(x)=%.6f, x_new=%.6f", r.Iteration, r.X, r.FX, r.DFX, r.XNew)
}

// SecantRecord holds the two points and function values of one secant step
type SecantRecord struct {
	Iteration int     `json:"i"`
	X0        float64 `json:"x0"`
	X1        float64 `json:"x1"`
	FX0       float64 `json:"fx0"`
	FX1       float64 `json:"fx1"`
	XNew      float64 `json:"x_new"`
}

func (r SecantRecord) Index() int        { return r.Iteration }
func (r SecantRecord) Estimate() float64 { return r.XNew }
func (r SecantRecord) Residual() float64 { return r.FX1 }
func (SecantRecord) record()             {}

func (r SecantRecord) String() string {
	return fmt.Sprintf("Iteration %d: x0=%.6f, x1=%.6f, f(x0)=%.6f, f(x1)=%.6f, x_new=%.6f", r.Iteration, r.X0, r.X1, r.FX0, r.FX1, r.XNew)
}

// DecodeRecord rebuilds a record of the given method from its JSON payload
func DecodeRecord(method Method, payload []byte) (Record, error) {
	var (
		rec Record
		err error
	)
	switch method {
	case MethodBisection:
		var r BisectionRecord
		err = json.Unmarshal(payload, &r)
		rec = r
	case MethodNewtonRaphson:
		var r NewtonRecord
		err = json.Unmarshal(payload, &r)
		rec = r
	case MethodSecant:
		var r SecantRecord
		err = json.Unmarshal(payload, &r)
		rec = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", method, err)
	}
	if rec.Index() < 1 {
		return nil, ErrInvalidIterationIndex
	}
	return rec, nil
}
