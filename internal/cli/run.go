package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [plan]",
		Short: "Execute a deployment plan end to end",
		Long: `Execute a deployment plan against the selected network.

A run walks the plan through its phases in order:
- align the ledger clock when the plan asks for it
- deploy and warm up the price feeds
- predict the address of every component from the deployer nonce
- create the components in plan order, verifying each landing address
- submit the wiring calls
- create the auxiliary entries
- commit (and optionally accept) the ownership handover

The prediction table only holds while the deployer account submits
nothing else, so the whole run is serialized against one identity. Any
failure stops the run where it is; completed steps are recorded in the
registry and a re-run picks up the wiring calls that never confirmed.

Examples:
  # Rehearse against the in-process ledger
  gantry run plans/launch.yaml --network memory

  # Run for real
  gantry run plans/launch.yaml --network mainnet

  # Show what would happen without submitting anything
  gantry run plans/launch.yaml --network mainnet --dry-run`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := app.RunDeployment.Run(cmd.Context(), usecase.RunDeploymentParams{
				PlanPath: planPath,
			})
			renderer := render.NewRunRenderer(cmd.OutOrStdout())
			if result != nil {
				if rerr := renderer.Render(result); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}

	cmd.Flags().Bool("dry-run", false, "Resolve, predict and report without submitting transactions")

	return cmd
}
