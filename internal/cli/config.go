package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewConfigCmd bundles the sticky-context subcommands. Bare
// "gantry config" shows the stored values.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change sticky defaults",
		Long: `Read and write .gantry/config.local.json, the per-checkout defaults for
--namespace, --network and the plan path. Flags always win over stored
values for a single invocation.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.ShowConfig.Run(cmd.Context())
			if err != nil {
				return err
			}
			result.ConfigSource = app.Config.ConfigSource
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderConfig(result)
		},
	}

	cmd.AddCommand(configSetCmd(), configRemoveCmd())
	return cmd
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a default (namespace, network or plan)",
		Example: `  gantry config set ns staging
  gantry config set network sepolia
  gantry config set plan plans/lending.yaml`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{
				Key:   args[0],
				Value: args[1],
			})
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
		},
	}
}

func configRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Reset a stored default",
		Long: `Reset a stored default. The namespace goes back to 'default'; network
and plan become unset again.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			result, err := app.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{Key: args[0]})
			if err != nil {
				return err
			}
			return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
		},
	}
}
