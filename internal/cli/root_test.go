package cli

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/app"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

func TestNewRootCmd_CommandTree(t *testing.T) {
	root := NewRootCmd()

	byName := map[string]*cobra.Command{}
	for _, c := range root.Commands() {
		byName[c.Name()] = c
	}

	groups := map[string]string{
		"run":      "deployment",
		"validate": "deployment",
		"predict":  "deployment",
		"warmup":   "deployment",
		"wire":     "deployment",
		"handover": "deployment",
		"list":     "registry",
		"show":     "registry",
		"networks": "management",
		"config":   "management",
		"node":     "management",
	}
	for name, group := range groups {
		c, ok := byName[name]
		require.True(t, ok, "command %q must be registered", name)
		assert.Equal(t, group, c.GroupID, "command %q group", name)
	}

	version, ok := byName["version"]
	require.True(t, ok)
	assert.Empty(t, version.GroupID)
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	root := NewRootCmd()

	ns := root.PersistentFlags().Lookup("namespace")
	require.NotNil(t, ns)
	assert.Equal(t, "s", ns.Shorthand)

	network := root.PersistentFlags().Lookup("network")
	require.NotNil(t, network)
	assert.Equal(t, "n", network.Shorthand)

	for _, name := range []string{"debug", "non-interactive", "json"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "flag %q", name)
	}
}

func TestGetApp_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := getApp(cmd)
	assert.ErrorContains(t, err, "app not initialized")
}

func TestRequireNetwork(t *testing.T) {
	withNetwork := &app.App{Config: &config.RuntimeConfig{Network: &config.Network{Name: "memory"}}}
	assert.NoError(t, requireNetwork(withNetwork))

	withoutNetwork := &app.App{Config: &config.RuntimeConfig{}}
	err := requireNetwork(withoutNetwork)
	assert.ErrorContains(t, err, "no network selected")
}
