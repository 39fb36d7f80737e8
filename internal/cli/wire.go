package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewWireCmd creates the wire command
func NewWireCmd() *cobra.Command {
	var (
		only       []string
		selectMode bool
	)

	cmd := &cobra.Command{
		Use:   "wire [plan]",
		Short: "Submit the plan's post-deploy wiring calls",
		Long: `Submit the plan's wiring calls against components that already exist.

Every call runs at most once per chain: calls already confirmed in the
transaction registry are skipped, so re-running after a partial failure
submits only what never confirmed.

Examples:
  # Submit every pending wiring call
  gantry wire plans/launch.yaml --network mainnet

  # Pick the calls interactively
  gantry wire plans/launch.yaml --network mainnet --select

  # Submit a specific call
  gantry wire plans/launch.yaml --network mainnet --only vault.setKeeper`,
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

			// Load through validation so the selector has the full wiring
			// table to offer.
			validated, err := app.ValidatePlan.Run(cmd.Context(), usecase.ValidatePlanParams{
				PlanPath: planPath,
			})
			if err != nil {
				return err
			}
			if !validated.Valid() {
				return fmt.Errorf("plan %s failed validation:\n  %s",
					validated.Plan.Graph, strings.Join(validated.Problems, "\n  "))
			}
			plan := validated.Plan
			if len(plan.Wiring) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Plan %s has no wiring calls\n", plan.Graph)
				return nil
			}

			if selectMode && len(only) == 0 {
				if app.Config.NonInteractive {
					return fmt.Errorf("--select is not available in non-interactive mode; use --only")
				}
				only, err = selectWiringCalls(plan.Wiring)
				if err != nil {
					return err
				}
			}

			result, err := app.WireComponents.Run(cmd.Context(), usecase.WireComponentsParams{
				Plan: plan,
				Only: only,
			})
			renderer := render.NewWiringRenderer(cmd.OutOrStdout())
			if result != nil {
				if rerr := renderer.Render(result); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "Submit only these wiring calls (target.method, repeatable)")
	cmd.Flags().BoolVar(&selectMode, "select", false, "Pick the wiring calls interactively")

	return cmd
}
