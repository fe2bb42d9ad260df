package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/ledger"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunToken string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs from the ledger",
		Long: `List past orchestrator runs recorded in the run ledger, newest first.
With --run, show the step records of one run instead.

Example:
  daofactory history --db ./runs.db
  daofactory history --db ./runs.db --run 0190a1b2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run ledger database (required)")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "show step records for one run token")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func showHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	led, err := ledger.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run ledger", err)
	}
	defer led.Close()

	ctx := cmd.Context()

	if opts.RunToken != "" {
		steps, err := led.ReadSteps(ctx, opts.RunToken)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read step records", err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Run %s (%d steps)\n", opts.RunToken, len(steps))
		for _, s := range steps {
			fmt.Fprintf(&b, "  [%d] %-12s %s\n", s.Seq, s.Unit, s.Status)
			if s.Reason != "" {
				fmt.Fprintf(&b, "      reason: %s\n", s.Reason)
			}
			for _, c := range s.Components {
				fmt.Fprintf(&b, "      created  %-20s %s\n", c.Name, c.Address)
			}
		}
		return out.Success(b.String(), steps)
	}

	runs, err := led.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d):\n", len(runs))
	for _, r := range runs {
		finished := "-"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(&b, "  %s  %-9s step=%s chain=%d mode=%s started=%s finished=%s\n",
			r.Token, r.State, r.UpstreamStep, r.ChainID, r.Mode,
			r.StartedAt.Format(time.RFC3339), finished)
	}
	return out.Success(b.String(), runs)
}
