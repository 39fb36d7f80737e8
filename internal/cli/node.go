package cli

import (
	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewNodeCmd creates the node command with its lifecycle subcommands.
func NewNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage a local dev node",
		Long: `Manage a local anvil node for rehearsing deployments.

A local node is the environment where time travel works: clock
alignment, warm-up gaps and handover fast-forward all need it.`,
	}

	for _, sub := range []struct {
		op    string
		short string
		long  string
	}{
		{"start", "Start the local dev node", "Start a local anvil node. Fails if the instance is already running."},
		{"stop", "Stop the local dev node", "Stop the local anvil node if it is running."},
		{"restart", "Restart the local dev node", "Stop the local anvil node if needed, then start it again."},
		{"status", "Show node status", "Report whether the node runs and whether its RPC endpoint answers."},
		{"logs", "Follow node logs", "Print the node log file and follow new output until interrupted."},
	} {
		cmd.AddCommand(newNodeOpCmd(sub.op, sub.short, sub.long))
	}

	return cmd
}

// newNodeOpCmd builds one lifecycle subcommand. All five share the same
// flags and dispatch through ManageNode.
func newNodeOpCmd(op, short, long string) *cobra.Command {
	var (
		name    string
		port    string
		chainID string
	)

	cmd := &cobra.Command{
		Use:          op,
		Short:        short,
		Long:         long,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ManageNode.Execute(cmd.Context(), usecase.ManageNodeParams{
				Operation: op,
				Name:      name,
				Port:      port,
				ChainID:   chainID,
			})
			if err != nil {
				return err
			}

			renderer := render.NewNodeRenderer(cmd.OutOrStdout())
			if op == "logs" {
				if err := renderer.RenderLogsHeader(result); err != nil {
					return err
				}
				return app.NodeManager.StreamLogs(cmd.Context(), result.Instance, cmd.OutOrStdout())
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "node0", "Instance name (e.g. node0, node1)")
	cmd.Flags().StringVar(&port, "port", "8545", "RPC port to bind")
	cmd.Flags().StringVar(&chainID, "chain-id", "", "Chain ID to use for the instance (optional)")

	return cmd
}
