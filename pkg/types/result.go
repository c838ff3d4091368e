package types

import "time"

// Result is the outcome of a solve that did not fail
type Result struct {
	Method     Method        `json:"method"`
	Expression string        `json:"expression"`
	Status     Status        `json:"status"`
	Root       float64       `json:"root"`
	Iterations int           `json:"iterations"`
	Trace      []Record      `json:"trace"`
	Duration   time.Duration `json:"-"`
}

// NewResult derives status, root and iteration count from a trace
func NewResult(method Method, expression string, trace []Record, converged bool) *Result {
	status := StatusExhausted
	if converged {
		status = StatusConverged
	}

	res := &Result{
		Method:     method,
		Expression: expression,
		Status:     status,
		Iterations: len(trace),
		Trace:      trace,
	}
	if n := len(trace); n > 0 {
		res.Root = trace[n-1].Estimate()
	}
	return res
}

// Lines renders the trace one record per line
func (r *Result) Lines() []string {
	lines := make([]string, len(r.Trace))
	for i, rec := range r.Trace {
		lines[i] = rec.String()
	}
	return lines
}

// Converged reports whether the tolerance test ended the solve
func (r *Result) Converged() bool {
	return r.Status == StatusConverged
}
