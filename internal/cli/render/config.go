package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// ConfigRenderer writes the output of the config subcommands.
type ConfigRenderer struct {
	out io.Writer
}

func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{out: out}
}

// RenderConfig shows the effective sticky defaults. When no file exists
// yet the built-in defaults are shown with a note.
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "No local config yet, showing built-in defaults (%s stores one)\n\n",
			color.CyanString("gantry config set"))
	}

	fmt.Fprintf(r.out, "Namespace: %s\n", result.Config.Namespace)
	fmt.Fprintf(r.out, "Network:   %s\n", orUnset(result.Config.Network))
	fmt.Fprintf(r.out, "Plan:      %s\n", orUnset(result.Config.Plan))

	fmt.Fprintln(r.out)
	if result.ConfigSource != "" && result.ConfigSource != "default" {
		fmt.Fprintf(r.out, "Settings from %s\n", result.ConfigSource)
	}
	fmt.Fprintf(r.out, "Stored in %s\n", relPath(result.ConfigPath))
	return nil
}

// RenderSet confirms the stored value.
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintf(r.out, "%s %s = %s\n", color.GreenString("✓"), result.Key, result.Value)
	fmt.Fprintf(r.out, "Stored in %s\n", relPath(result.ConfigPath))
	return nil
}

// RenderRemove confirms the reset, naming what the key fell back to.
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	switch result.Key {
	case config.ConfigKeyNamespace:
		fmt.Fprintf(r.out, "%s namespace reset to default\n", color.GreenString("✓"))
	case config.ConfigKeyNetwork:
		fmt.Fprintf(r.out, "%s network unset, pass --network when a command needs one\n", color.GreenString("✓"))
	default:
		fmt.Fprintf(r.out, "%s %s unset\n", color.GreenString("✓"), result.Key)
	}
	fmt.Fprintf(r.out, "Stored in %s\n", relPath(result.ConfigPath))
	return nil
}

// relPath shortens a path relative to the working directory when it can.
func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}

func orUnset(v string) string {
	if v == "" {
		return color.New(color.Faint).Sprint("(not set)")
	}
	return v
}
