package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/invoke"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/ledger"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/orchestrator"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/plan"
	"github.com/Hats-Protocol/dao-factory-sub001/internal/resolve"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Broadcast string
	Database  string
	RPCURL    string
	ForgeBin  string
	CastBin   string

	// Invoker and Reader allow overriding the unit invoker and factory
	// reader (for testing). Nil means the forge/cast defaults.
	Invoker orchestrator.UnitInvoker
	Reader  resolve.FactoryReader
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

// newRunCommand builds the command over pre-populated options, letting
// tests inject a fake invoker and reader.
func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan-dir>",
		Short: "Execute a deployment plan",
		Long: `Execute a deployment plan against the broadcast tree.

The plan directory holds CUE files naming the upstream step, the target
chain, and the units to invoke in order. The run resolves the upstream
record (refusing ambiguous or missing records), derives dependency
addresses from the deployed factory, then invokes each unit's script
sequentially. The first failure halts the run; completed units stay
deployed. Deployments are not rollback-able.

Example:
  daofactory run ./plan --broadcast ./broadcast --db ./runs.db --rpc-url $RPC`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Broadcast, "broadcast", "", "path to the broadcast tree (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the run ledger database (optional)")
	cmd.Flags().StringVar(&opts.RPCURL, "rpc-url", "", "RPC endpoint for factory reads")
	cmd.Flags().StringVar(&opts.ForgeBin, "forge-bin", "forge", "forge executable for unit scripts")
	cmd.Flags().StringVar(&opts.CastBin, "cast-bin", "cast", "cast executable for factory reads")
	_ = cmd.MarkFlagRequired("broadcast")

	return cmd
}

func runPlan(cmd *cobra.Command, opts *RunOptions, planDir string) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	p, err := plan.Load(planDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}
	slog.Info("plan loaded", "step", p.UpstreamStep, "chain", p.ChainID, "units", len(p.Units))

	store := artifact.NewStore(opts.Broadcast)

	reader := opts.Reader
	if reader == nil {
		reader = &invoke.CastReader{Bin: opts.CastBin, RPCURL: opts.RPCURL}
	}

	invoker := opts.Invoker
	if invoker == nil {
		invoker = &invoke.ScriptInvoker{
			Command: []string{opts.ForgeBin, "script"},
			Store:   store,
			ChainID: p.ChainID,
		}
	}

	orcOpts := []orchestrator.Option{}
	if opts.Database != "" {
		led, err := ledger.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open run ledger", err)
		}
		defer func() {
			if closeErr := led.Close(); closeErr != nil {
				slog.Error("error closing run ledger", "error", closeErr)
			}
		}()
		orcOpts = append(orcOpts, orchestrator.WithRecorder(led))
	}

	orc := orchestrator.New(store, reader, invoker, p, orcOpts...)

	summary, err := orc.Run(cmd.Context())
	if err != nil {
		// The summary still covers everything up to the halt; show it
		// under the error envelope, then fail with the raw reason.
		if summary != nil {
			_ = out.FailureWith(summary.RenderText(), summary, err)
		}
		return WrapExitError(ExitFailure, "run failed", err)
	}

	return out.Success(summary.RenderText(), summary)
}

// configureLogging sets the process-wide slog handler per the verbose flag.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
