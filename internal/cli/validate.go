package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan]",
		Short: "Check a plan without touching the ledger",
		Long: `Check a deployment plan for structural problems: duplicate names,
references to entries that exist nowhere in the plan, wiring targets
that are never created, handover authorities that are not components.

Forward references (a component naming a later one in its constructor)
are legal and reported, since address prediction resolves them.

Examples:
  gantry validate plans/launch.yaml`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var planPath string
			if len(args) > 0 {
				planPath = args[0]
			}

			result, err := app.ValidatePlan.Run(cmd.Context(), usecase.ValidatePlanParams{
				PlanPath: planPath,
			})
			if err != nil {
				return err
			}

			renderer := render.NewPlanRenderer(cmd.OutOrStdout())
			if err := renderer.RenderValidation(result); err != nil {
				return err
			}
			if !result.Valid() {
				return fmt.Errorf("plan %s failed validation with %d problem(s)", result.Plan.Graph, len(result.Problems))
			}
			return nil
		},
	}
}
