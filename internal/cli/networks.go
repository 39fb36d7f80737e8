package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List networks configured in gantry.toml",
		Long: `List the networks declared in gantry.toml and probe each one's chain
id over RPC. The built-in memory network is always available and needs
no RPC endpoint.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{})
			if err != nil {
				return err
			}

			renderer := render.NewNetworksRenderer(cmd.OutOrStdout())
			return renderer.RenderNetworksList(result)
		},
	}
}
