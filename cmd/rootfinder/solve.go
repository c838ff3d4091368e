package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/rootfinder-mcp/internal/runner"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

type solveOptions struct {
	expression string
	a, b       float64
	x0, x1     float64
	tolerance  float64
	maxIter    int
	jsonOutput bool
}

func newSolveCmd(opts *globalOptions) *cobra.Command {
	so := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve <method>",
		Short: "Run one method and print its iteration trace",
		Long: `Run bisection, newton_raphson (alias newton) or secant on an expression of x.

Bisection needs --a and --b with f(a) and f(b) of opposite signs, Newton-Raphson
needs --x0 and the secant method needs --x0 and --x1. Tolerance and maximum
iterations default to the configured values (0.001 and 50).

Example:
  rootfinder solve bisection --expr "x^3 - x - 2" --a 1 --b 2
  rootfinder solve secant --expr "cos(x) - x" --x0 0 --x1 1 --json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bisection", "newton_raphson", "newton", "secant"},
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := types.ParseMethod(args[0])
			if err != nil {
				return err
			}

			env, err := opts.setup(true)
			if err != nil {
				return err
			}
			defer env.close()

			req, err := so.request(cmd, method, env)
			if err != nil {
				return err
			}

			out, err := runner.New(env.store, env.cache, env.logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if so.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), struct {
					RunID string `json:"run_id,omitempty"`
					*types.Result
				}{out.RunID, out.Result})
			}
			printResult(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&so.expression, "expr", "", "Function of x, e.g. \"x^3 - x - 2\"")
	cmd.Flags().Float64Var(&so.a, "a", 0, "Left end of the bisection bracket")
	cmd.Flags().Float64Var(&so.b, "b", 0, "Right end of the bisection bracket")
	cmd.Flags().Float64Var(&so.x0, "x0", 0, "Initial guess (Newton-Raphson, secant)")
	cmd.Flags().Float64Var(&so.x1, "x1", 0, "Second initial guess (secant)")
	cmd.Flags().Float64Var(&so.tolerance, "tol", types.DefaultTolerance, "Convergence tolerance")
	cmd.Flags().IntVar(&so.maxIter, "max-iter", types.DefaultMaxIterations, "Maximum number of iterations")
	cmd.Flags().BoolVar(&so.jsonOutput, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("expr")

	return cmd
}

// request builds a solve request, requiring the starting points of method
func (so *solveOptions) request(cmd *cobra.Command, method types.Method, env *environment) (types.SolveRequest, error) {
	required := map[types.Method][]string{
		types.MethodBisection:     {"a", "b"},
		types.MethodNewtonRaphson: {"x0"},
		types.MethodSecant:        {"x0", "x1"},
	}
	for _, name := range required[method] {
		if !cmd.Flags().Changed(name) {
			return types.SolveRequest{}, fmt.Errorf("%w: --%s is required for %s", types.ErrMissingParameter, name, method)
		}
	}

	req := types.SolveRequest{
		Method:        method,
		Expression:    so.expression,
		A:             so.a,
		B:             so.b,
		X0:            so.x0,
		X1:            so.x1,
		Tolerance:     so.tolerance,
		MaxIterations: so.maxIter,
	}
	if !cmd.Flags().Changed("tol") {
		req.Tolerance = env.cfg.Solver.DefaultTolerance
	}
	if !cmd.Flags().Changed("max-iter") {
		req.MaxIterations = env.cfg.Solver.DefaultMaxIterations
	}
	if req.MaxIterations > env.cfg.Solver.MaxIterationsLimit {
		return req, fmt.Errorf("%w: --max-iter must not exceed %d", types.ErrInvalidMaxIterations, env.cfg.Solver.MaxIterationsLimit)
	}
	return req, nil
}

func printResult(w io.Writer, out *runner.Outcome) {
	res := out.Result
	for _, line := range res.Lines() {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "Root: %.6f (%s after %d iterations)\n", res.Root, res.Status, res.Iterations)
	if out.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", out.RunID)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
