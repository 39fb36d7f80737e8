package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gantry-org/gantry-cli/internal/app"
	"github.com/gantry-org/gantry-cli/internal/config"
)

// appKey carries the initialized app through the command context.
type appKeyType struct{}

var appKey appKeyType

// NewRootCmd assembles the gantry command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gantry",
		Short: "Deployment-graph bootstrap orchestrator",
		Long: `Gantry bootstraps a graph of mutually-referential components in one
pass: it predicts every creation address from the deployer's nonce
sequence, injects forward references into constructors, creates each
component in order with per-step verification, wires the survivors
together and hands ownership over through a timelocked two-phase
transfer.`,
		PersistentPreRunE: setupApp,
	}

	pf := rootCmd.PersistentFlags()
	pf.Bool("debug", false, "Enable debug output")
	pf.Bool("non-interactive", false, "Disable interactive prompts")
	pf.Bool("json", false, "Output machine-readable JSON where supported")
	pf.StringP("namespace", "s", "", "Deployment namespace (defaults to 'default')")
	pf.StringP("network", "n", "", "Network to use (e.g., mainnet, memory)")

	addGroup(rootCmd, "deployment", "Running deployments:",
		NewRunCmd(),
		NewValidateCmd(),
		NewPredictCmd(),
		NewWarmupCmd(),
		NewWireCmd(),
		NewHandoverCmd(),
	)
	addGroup(rootCmd, "registry", "Inspecting the registry:",
		NewListCmd(),
		NewShowCmd(),
	)
	addGroup(rootCmd, "management", "Housekeeping:",
		NewNetworksCmd(),
		NewConfigCmd(),
		NewNodeCmd(),
	)
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// addGroup registers a help group and the commands that belong to it.
func addGroup(root *cobra.Command, id, title string, cmds ...*cobra.Command) {
	root.AddGroup(&cobra.Group{ID: id, Title: title})
	for _, c := range cmds {
		c.GroupID = id
		root.AddCommand(c)
	}
}

// setupApp resolves configuration and wires the app for every command
// except the ones that never need one.
func setupApp(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "help", "version", "completion":
		return nil
	}

	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}
	application, err := app.InitApp(config.SetupViper(projectRoot, cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), appKey, application)
	if t := application.Config.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		cmd.PostRun = func(*cobra.Command, []string) { cancel() }
	}
	cmd.SetContext(ctx)
	return nil
}

// getApp returns the app stored by setupApp.
func getApp(cmd *cobra.Command) (*app.App, error) {
	a, _ := cmd.Context().Value(appKey).(*app.App)
	if a == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return a, nil
}

// requireNetwork guards commands that submit transactions or read chain
// state. The memory network always qualifies; everything else must have
// been resolved from gantry.toml.
func requireNetwork(a *app.App) error {
	if a.Config.Network == nil {
		return fmt.Errorf("no network selected: pass --network or set one with 'gantry config set network <name>'")
	}
	return nil
}
