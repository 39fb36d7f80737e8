package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <record>",
		Short: "Show detailed record information from the registry",
		Long: `Show detailed information about a specific record.

You can specify records using:
- Name: "vault"
- Full record ID: "default/31337/vault"
- Address: "0x1234..."

A bare name that matches several records opens an interactive picker.

Examples:
  gantry show vault
  gantry show default/31337/vault
  gantry show 0x5FbDB2315678afecb367f032d93F642f64180aa3`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowRecord.Run(cmd.Context(), usecase.ShowRecordParams{
				Identifier: args[0],
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				output := map[string]any{
					"record": result.Record,
				}
				if result.Transaction != nil {
					output["transaction"] = result.Transaction
				}
				if result.Handover != nil {
					output["handover"] = result.Handover
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(output)
			}

			renderer := render.NewRecordRenderer(cmd.OutOrStdout())
			return renderer.Render(result)
		},
	}
}
