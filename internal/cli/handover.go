package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewHandoverCmd creates the handover command with subcommands
func NewHandoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handover",
		Short: "Drive the two-phase ownership transfer",
		Long: `Drive the timelocked two-phase transfer of the authority component's
administrative control.

Commit proposes the new owner on the ledger and starts the delay.
Accept completes the transfer once the delay has elapsed, signed by
the incoming owner. Both halves may run as separate invocations days
apart; the pending state lives in the registry.

Committing again while a transfer is pending replaces the proposed
owner and restarts the delay.`,
	}

	cmd.AddCommand(newHandoverCommitCmd())
	cmd.AddCommand(newHandoverAcceptCmd())
	cmd.AddCommand(newHandoverStatusCmd())

	return cmd
}

// newHandoverCommitCmd creates the commit subcommand
func newHandoverCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit [plan]",
		Short: "Propose the new owner and start the delay",
		Long: `Propose the plan's new owner on the authority component and record the
proposal. The transfer becomes acceptable once the plan's minimum
delay has elapsed on the ledger clock.

Examples:
  gantry handover commit plans/launch.yaml --network mainnet`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandover(cmd, args, usecase.HandoverCommit, false)
		},
	}
}

// newHandoverAcceptCmd creates the accept subcommand
func newHandoverAcceptCmd() *cobra.Command {
	var fastForward bool

	cmd := &cobra.Command{
		Use:   "accept [plan]",
		Short: "Complete the transfer after the delay",
		Long: `Accept the pending transfer as the incoming owner. Fails without
touching anything while the delay is still running.

On dev ledgers --fast-forward advances the clock past the delay first,
the way a rehearsal wants it. Live ledgers reject time travel and the
flag reports that.

Examples:
  gantry handover accept plans/launch.yaml --network mainnet
  gantry handover accept plans/launch.yaml --network memory --fast-forward`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandover(cmd, args, usecase.HandoverAccept, fastForward)
		},
	}

	cmd.Flags().BoolVar(&fastForward, "fast-forward", false, "Advance the ledger clock past the delay before accepting")

	return cmd
}

// newHandoverStatusCmd creates the status subcommand
func newHandoverStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [plan]",
		Short: "Show where the transfer stands",
		Long: `Show the transfer's recorded state, the owners involved and, while the
delay is running, when accept becomes possible.

Examples:
  gantry handover status plans/launch.yaml --network mainnet`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandover(cmd, args, usecase.HandoverStatus, false)
		},
	}
}

// runHandover executes one handover action and renders the outcome
func runHandover(cmd *cobra.Command, args []string, action usecase.HandoverAction, fastForward bool) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	if err := requireNetwork(app); err != nil {
		return err
	}

	var planPath string
	if len(args) > 0 {
		planPath = args[0]
	}

	result, err := app.HandoverOwnership.Run(cmd.Context(), usecase.HandoverParams{
		PlanPath:    planPath,
		Action:      action,
		FastForward: fastForward,
	})
	if err != nil {
		return err
	}

	renderer := render.NewHandoverRenderer(cmd.OutOrStdout())
	return renderer.Render(result)
}
