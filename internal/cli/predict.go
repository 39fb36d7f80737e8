package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewPredictCmd creates the predict command
func NewPredictCmd() *cobra.Command {
	var startNonce uint64

	cmd := &cobra.Command{
		Use:   "predict [plan]",
		Short: "Print the address table a run of the plan would produce",
		Long: `Print the address every component of the plan would land on, computed
from the deployer's current nonce and the plan's creation order.

The table holds only while the deployer submits nothing else. Plans
with mock feeds shift by one nonce per feed on a live run, because the
feeds deploy before the components.

Examples:
  gantry predict plans/launch.yaml --network mainnet

  # Pin the starting nonce instead of reading it from the chain
  gantry predict plans/launch.yaml --network mainnet --start-nonce 42`,
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

			params := usecase.PredictAddressesParams{PlanPath: planPath}
			if cmd.Flags().Changed("start-nonce") {
				params.StartNonce = &startNonce
			}

			result, err := app.PredictAddresses.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Predictions)
			}

			renderer := render.NewPlanRenderer(cmd.OutOrStdout())
			return renderer.RenderPredictions(result)
		},
	}

	cmd.Flags().Uint64Var(&startNonce, "start-nonce", 0, "Predict from this nonce instead of the chain's")

	return cmd
}
