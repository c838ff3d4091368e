package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/rootfinder-mcp/internal/expr"
	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/solver"
	"github.com/dshills/rootfinder-mcp/internal/storage"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

// Error kinds recorded on failed runs
const (
	KindInvalidRequest       = "invalid_request"
	KindParse                = "parse"
	KindEvaluation           = "evaluation"
	KindInvalidBracket       = "invalid_bracket"
	KindStationaryDerivative = "stationary_derivative"
	KindDegenerateSecant     = "degenerate_secant"
	KindDiverged             = "diverged"
	KindUnknown              = "unknown"
)

// Runner coordinates the solve pipeline: compile -> solve -> persist
type Runner struct {
	solver  *solver.Solver
	storage storage.Storage
	logger  *zap.Logger
}

// Config contains configuration for batch solves
type Config struct {
	Workers int // Number of concurrent solves (default: runtime.NumCPU())
}

// Outcome is the result of one request. Exactly one of Result and Err is set.
type Outcome struct {
	Request types.SolveRequest
	RunID   string // Empty when history is disabled or the request was rejected
	Result  *types.Result
	Err     error
}

// Statistics contains statistics about a batch of solves
type Statistics struct {
	Requests      int
	Converged     int
	Exhausted     int
	Failed        int
	Persisted     int
	Duration      time.Duration
	ErrorMessages []string
}

// New creates a Runner. A nil store disables history, a nil compiler parses on
// every call and a nil logger discards output.
func New(store storage.Storage, compiler solver.Compiler, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		solver:  solver.New(compiler),
		storage: store,
		logger:  logger,
	}
}

// Run solves one request. Solver errors are returned unchanged; storage failures
// are wrapped.
func (r *Runner) Run(ctx context.Context, req types.SolveRequest) (*Outcome, error) {
	out, err := r.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if out.Err != nil {
		return nil, out.Err
	}
	return out, nil
}

// RunAll solves independent requests concurrently and returns outcomes in input
// order. Per-request failures are reported on the outcome; only context
// cancellation and storage failures abort the batch.
func (r *Runner) RunAll(ctx context.Context, reqs []types.SolveRequest, config *Config) ([]*Outcome, *Statistics, error) {
	workers := runtime.NumCPU()
	if config != nil && config.Workers > 0 {
		workers = config.Workers
	}

	startTime := time.Now()
	outcomes := make([]*Outcome, len(reqs))

	// Create worker pool with semaphore
	semaphore := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire semaphore
			}
			defer func() { <-semaphore }()

			out, err := r.execute(gctx, req)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &Statistics{
		Requests:      len(reqs),
		ErrorMessages: make([]string, 0),
	}
	for i, out := range outcomes {
		if out.RunID != "" {
			stats.Persisted++
		}
		if out.Err != nil {
			stats.Failed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("request %d (%s): %v", i, out.Request.Method, out.Err))
			continue
		}
		if out.Result.Converged() {
			stats.Converged++
		} else {
			stats.Exhausted++
		}
	}
	stats.Duration = time.Since(startTime)

	return outcomes, stats, nil
}

// execute runs and records a single solve. The returned error is reserved for
// failures that must abort a batch.
func (r *Runner) execute(ctx context.Context, req types.SolveRequest) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, solveErr := r.solver.Solve(req)
	duration := time.Since(start)

	out := &Outcome{Request: req, Result: res, Err: solveErr}
	kind := ErrorKind(solveErr)
	r.record(req, out, kind, duration)

	// Rejected requests never reach history
	if r.storage == nil || kind == KindInvalidRequest {
		return out, nil
	}

	runID, err := r.persist(ctx, req, out, kind, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}
	out.RunID = runID
	return out, nil
}

func (r *Runner) record(req types.SolveRequest, out *Outcome, kind string, duration time.Duration) {
	method := string(req.Method)
	if _, err := types.ParseMethod(method); err != nil {
		method = "unknown"
	}

	if out.Err != nil {
		metrics.RecordSolve(method, string(types.StatusFailed), 0, duration)
		r.logger.Debug("solve failed",
			zap.String("method", method),
			zap.String("expression", req.Expression),
			zap.String("kind", kind),
			zap.Error(out.Err))
		return
	}

	metrics.RecordSolve(method, string(out.Result.Status), out.Result.Iterations, duration)
	r.logger.Debug("solve finished",
		zap.String("method", method),
		zap.String("expression", req.Expression),
		zap.String("status", string(out.Result.Status)),
		zap.Float64("root", out.Result.Root),
		zap.Int("iterations", out.Result.Iterations),
		zap.Duration("duration", duration))
}

// persist writes the run and its trace in one transaction
func (r *Runner) persist(ctx context.Context, req types.SolveRequest, out *Outcome, kind string, duration time.Duration) (string, error) {
	run := &storage.Run{
		Method:        req.Method,
		Expression:    req.Expression,
		Params:        req.Params(),
		Tolerance:     req.Tolerance,
		MaxIterations: req.MaxIterations,
		Duration:      duration,
	}
	if out.Err != nil {
		run.Status = types.StatusFailed
		run.ErrorKind = kind
		run.ErrorMessage = out.Err.Error()
	} else {
		root := out.Result.Root
		run.Status = out.Result.Status
		run.Root = &root
		run.Iterations = out.Result.Iterations
	}

	tx, err := r.storage.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.CreateRun(ctx, run); err != nil {
		return "", err
	}
	if out.Result != nil && len(out.Result.Trace) > 0 {
		if err := tx.InsertIterations(ctx, run.ID, out.Result.Trace); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.RecordRunPersisted()
	return run.ID, nil
}

// ErrorKind classifies a solve error. It returns "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrUnknownMethod),
		errors.Is(err, types.ErrEmptyExpression),
		errors.Is(err, types.ErrInvalidTolerance),
		errors.Is(err, types.ErrInvalidMaxIterations),
		errors.Is(err, types.ErrNonFiniteParameter),
		errors.Is(err, types.ErrMissingParameter):
		return KindInvalidRequest
	case errors.Is(err, expr.ErrParse):
		return KindParse
	case errors.Is(err, expr.ErrEvaluation):
		return KindEvaluation
	case errors.Is(err, solver.ErrInvalidBracket):
		return KindInvalidBracket
	case errors.Is(err, solver.ErrStationaryDerivative):
		return KindStationaryDerivative
	case errors.Is(err, solver.ErrDegenerateSecant):
		return KindDegenerateSecant
	case errors.Is(err, solver.ErrDiverged):
		return KindDiverged
	default:
		return KindUnknown
	}
}
