package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/rootfinder-mcp/internal/metrics"
	"github.com/dshills/rootfinder-mcp/internal/plot"
)

func newEvalCmd(opts *globalOptions) *cobra.Command {
	var (
		expression string
		x          float64
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate an expression at a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(false)
			if err != nil {
				return err
			}
			defer env.close()

			e, err := env.cache.Compile(expression)
			if err != nil {
				return err
			}
			value, err := e.Eval(x)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVar(&expression, "expr", "", "Function of x")
	cmd.Flags().Float64Var(&x, "x", 0, "Point at which to evaluate")
	_ = cmd.MarkFlagRequired("expr")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var (
		expression string
		x          float64
	)

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print the symbolic derivative of an expression",
		Long: `Print d/dx of an expression. With --x the derivative is also evaluated.

Example:
  rootfinder diff --expr "x^2 * sin(x)" --x 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(false)
			if err != nil {
				return err
			}
			defer env.close()

			d, err := env.cache.CompileDerivative(expression)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.String())

			if cmd.Flags().Changed("x") {
				value, err := d.Eval(x)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "f'(%g) = %g\n", x, value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&expression, "expr", "", "Function of x")
	cmd.Flags().Float64Var(&x, "x", 0, "Optional point at which to evaluate the derivative")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}

func newPlotCmd(opts *globalOptions) *cobra.Command {
	var (
		expression string
		domain     plot.Domain
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Sample an expression over an interval",
		Long: `Print "x y" rows for evenly spaced points, both ends included. Points where
the expression cannot be evaluated are printed as "x error: reason" and do not
stop sampling. Sign changes are listed as candidate brackets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(false)
			if err != nil {
				return err
			}
			defer env.close()

			if !cmd.Flags().Changed("min") {
				domain.Min = env.cfg.Plot.Min
			}
			if !cmd.Flags().Changed("max") {
				domain.Max = env.cfg.Plot.Max
			}
			if !cmd.Flags().Changed("points") {
				domain.Points = env.cfg.Plot.Points
			}

			e, err := env.cache.Compile(expression)
			if err != nil {
				return err
			}
			series, err := plot.Sample(e, domain)
			if err != nil {
				return err
			}
			metrics.RecordPlot(len(series.Points)-series.Failures, series.Failures)

			w := cmd.OutOrStdout()
			for _, p := range series.Points {
				if !p.Valid {
					fmt.Fprintf(w, "%g\terror: %s\n", p.X, p.Error)
					continue
				}
				fmt.Fprintf(w, "%g\t%g\n", p.X, p.Y)
			}
			for _, bracket := range series.SignChanges() {
				fmt.Fprintf(w, "# sign change in [%g, %g]\n", bracket.Min, bracket.Max)
			}
			if series.Failures > 0 {
				fmt.Fprintf(w, "# %d of %d points could not be evaluated\n", series.Failures, len(series.Points))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&expression, "expr", "", "Function of x")
	cmd.Flags().Float64Var(&domain.Min, "min", plot.DefaultMin, "Left end of the interval")
	cmd.Flags().Float64Var(&domain.Max, "max", plot.DefaultMax, "Right end of the interval")
	cmd.Flags().IntVar(&domain.Points, "points", plot.DefaultPoints, "Number of samples")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}
