package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hats-Protocol/dao-factory-sub001/internal/artifact"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Broadcast string
	ChainID   uint64
	Component string
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <step-id>",
		Short: "Resolve a deployment record without invoking anything",
		Long: `Resolve the deployment record for a step and print its creation events.

This is the read-only half of a run: locate candidates, apply the mode
guard, parse. Useful before an irreversible run to confirm exactly which
record the orchestrator would trust; an ambiguous key fails here the same
way it would fail a run.

Example:
  daofactory resolve DeployDaoFactory --broadcast ./broadcast --chain 11155111
  daofactory resolve DeployDaoFactory --broadcast ./broadcast --chain 11155111 --component DaoFactory`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolveStep(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Broadcast, "broadcast", "", "path to the broadcast tree (required)")
	cmd.Flags().Uint64Var(&opts.ChainID, "chain", 0, "target chain ID (required)")
	cmd.Flags().StringVar(&opts.Component, "component", "", "print only this component's address")
	_ = cmd.MarkFlagRequired("broadcast")
	_ = cmd.MarkFlagRequired("chain")

	return cmd
}

// resolvedView is the machine-readable shape of a resolved record.
type resolvedView struct {
	StepID  string          `json:"stepId"`
	ChainID uint64          `json:"chainId"`
	Mode    artifact.Mode   `json:"mode"`
	Events  []resolvedEvent `json:"events"`
}

type resolvedEvent struct {
	Name          string           `json:"name"`
	Address       artifact.Address `json:"address"`
	SequenceIndex int              `json:"sequenceIndex"`
}

func resolveStep(cmd *cobra.Command, opts *ResolveOptions, stepID string) error {
	configureLogging(opts.Verbose)
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	store := artifact.NewStore(opts.Broadcast)
	a, err := artifact.Resolve(store, stepID, opts.ChainID)
	if err != nil {
		_ = out.Failure(err)
		return WrapExitError(ExitFailure, "resolution failed", err)
	}

	if opts.Component != "" {
		addr, err := artifact.ExtractAddress(a, opts.Component)
		if err != nil {
			_ = out.Failure(err)
			return WrapExitError(ExitFailure, "extraction failed", err)
		}
		return out.Success(string(addr)+"\n", map[string]string{
			"component": opts.Component,
			"address":   string(addr),
		})
	}

	view := resolvedView{StepID: a.StepID, ChainID: a.ChainID, Mode: a.Mode}
	var b strings.Builder
	fmt.Fprintf(&b, "Record for %s on chain %d (%s mode)\n", a.StepID, a.ChainID, a.Mode)
	for _, ev := range a.CreationEvents {
		view.Events = append(view.Events, resolvedEvent{Name: ev.Name, Address: ev.Address, SequenceIndex: ev.SequenceIndex})
		fmt.Fprintf(&b, "  [%d] %-20s %s\n", ev.SequenceIndex, ev.Name, ev.Address)
	}
	if len(a.CreationEvents) == 0 {
		fmt.Fprintln(&b, "  (no creation events)")
	}
	return out.Success(b.String(), view)
}
