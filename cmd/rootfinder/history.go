package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/rootfinder-mcp/internal/storage"
	"github.com/dshills/rootfinder-mcp/pkg/types"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		method string
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one",
		Long: `Without arguments, list recorded runs newest first. With a run id, print the
run and its full iteration trace.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.setup(true)
			if err != nil {
				return err
			}
			defer env.close()

			if env.store == nil {
				return errors.New("run history is disabled")
			}

			if len(args) == 1 {
				return showRun(cmd, env.store, args[0])
			}

			filter := storage.RunFilter{Status: types.Status(status), Limit: limit}
			if method != "" {
				if filter.Method, err = types.ParseMethod(method); err != nil {
					return err
				}
			}

			runs, err := env.store.ListRuns(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMETHOD\tSTATUS\tROOT\tITER\tEXPRESSION\tCREATED")
			for _, run := range runs {
				root := "-"
				if run.Root != nil {
					root = fmt.Sprintf("%.6f", *run.Root)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					run.ID, run.Method, run.Status, root, run.Iterations, run.Expression,
					humanize.Time(run.CreatedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Only runs of this method")
	cmd.Flags().StringVar(&status, "status", "", "Only runs with this status (converged, exhausted, failed)")
	cmd.Flags().IntVar(&limit, "limit", storage.DefaultListLimit, "Maximum number of runs")
	return cmd
}

func showRun(cmd *cobra.Command, store storage.Storage, id string) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	trace, err := store.ListIterations(cmd.Context(), id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Method:     %s\n", run.Method)
	fmt.Fprintf(w, "Expression: %s\n", run.Expression)
	fmt.Fprintf(w, "Tolerance:  %g\n", run.Tolerance)
	fmt.Fprintf(w, "Created:    %s (%s)\n", run.CreatedAt.Local().Format(time.DateTime), humanize.Time(run.CreatedAt))
	fmt.Fprintf(w, "Status:     %s\n", run.Status)
	if run.Root != nil {
		fmt.Fprintf(w, "Root:       %.6f\n", *run.Root)
	}
	if run.Status == types.StatusFailed {
		fmt.Fprintf(w, "Error:      %s (%s)\n", run.ErrorMessage, run.ErrorKind)
	}
	for _, rec := range trace {
		fmt.Fprintln(w, rec.String())
	}
	return nil
}
