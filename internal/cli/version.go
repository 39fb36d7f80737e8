package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/config"
)

// NewVersionCmd reports the build stamped into the binary.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the gantry build",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "gantry %s\n", config.Version)
			if config.Commit != "unknown" {
				fmt.Fprintf(out, "  commit: %s\n", config.Commit)
			}
			if config.Date != "unknown" {
				fmt.Fprintf(out, "  built:  %s\n", config.Date)
			}
		},
	}
}
