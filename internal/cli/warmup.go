package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewWarmupCmd creates the warmup command
func NewWarmupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warmup [plan]",
		Short: "Seed the plan's price feeds with observation history",
		Long: `Deploy the plan's mock feeds and publish enough rounds on every feed
that staleness and round-advance checks pass before the components
that read them exist.

Feeds declared with an artifact get a fresh mock deployed; feeds
declared with an address are adopted as they are. Rounds publish with
a time gap in between on ledgers that support time travel, and without
separation (plus a warning) on ledgers that do not.

Examples:
  gantry warmup plans/launch.yaml --network memory`,
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

			result, err := app.WarmupOracles.Run(cmd.Context(), usecase.WarmupOraclesParams{
				PlanPath: planPath,
			})
			renderer := render.NewWarmupRenderer(cmd.OutOrStdout())
			if result != nil {
				if rerr := renderer.Render(result); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
}
