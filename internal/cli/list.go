package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/cli/render"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		graph      string
		recordKind string
		name       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records from the registry",
		Long: `List all records from the registry.

The list can be filtered by namespace, network, graph, record kind or
name.

Examples:
  # List all records
  gantry list

  # List everything the launch graph created
  gantry list --graph launch

  # List only the warmed-up feeds
  gantry list --kind oracle`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var kind models.RecordKind
			if recordKind != "" {
				switch recordKind {
				case "component":
					kind = models.KindComponent
				case "oracle":
					kind = models.KindOracle
				case "auxiliary":
					kind = models.KindAuxiliary
				default:
					return fmt.Errorf("invalid record kind: %s (valid: component, oracle, auxiliary)", recordKind)
				}
			}

			params := usecase.ListRecordsParams{
				Graph: graph,
				Kind:  kind,
				Name:  name,
			}

			result, err := app.ListRecords.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Records)
			}

			renderer := render.NewRecordsRenderer(cmd.OutOrStdout())
			return renderer.RenderRecordList(result)
		},
	}

	cmd.Flags().StringVar(&graph, "graph", "", "Filter by deployment graph")
	cmd.Flags().StringVar(&recordKind, "kind", "", "Filter by record kind (component, oracle, auxiliary)")
	cmd.Flags().StringVar(&name, "name", "", "Filter by record name (substring match)")

	return cmd
}
