package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// manifestName marks the root of a gantry project.
const manifestName = "gantry.toml"

// Provider builds the RuntimeConfig consumed by the rest of the app from
// the resolved viper state. Wire calls it once per invocation.
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot, err := resolveProjectRoot(v)
	if err != nil {
		return nil, err
	}

	gantryCfg, err := LoadGantryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load gantry config: %w", err)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".gantry"),
		Gantry:         gantryCfg,
		Namespace:      v.GetString("namespace"),
		Plan:           v.GetString("plan"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		DryRun:         v.GetBool("dry_run"),
		ConfigSource:   configSource(v),
	}

	if name := v.GetString("network"); name != "" {
		network, err := NewNetworkResolver(projectRoot, gantryCfg).Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", name, err)
		}
		cfg.Network = network
	}

	return cfg, nil
}

func resolveProjectRoot(v *viper.Viper) (string, error) {
	if root := v.GetString("project_root"); root != "" {
		return root, nil
	}
	root, err := FindProjectRoot()
	if err != nil {
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	return root, nil
}

// configSource reports where the effective configuration came from, for
// the config show output.
func configSource(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		return filepath.Base(used)
	}
	return "default"
}

// FindProjectRoot walks up from the working directory until it sees a
// gantry.toml manifest.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, manifestName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a gantry project (%s not found)", manifestName)
		}
		dir = parent
	}
}

// SetupViper layers the configuration sources for one command run:
// defaults, then .gantry/config.local.json, then GANTRY_* environment
// variables, then command line flags.
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetDefault("project_root", projectRoot)
	v.SetDefault("namespace", "default")
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".gantry"))
	_ = v.ReadInConfig()

	v.SetEnvPrefix("GANTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Flag names use dashes, viper keys use underscores.
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

// ProvideNetworkResolver exposes the resolver to Wire.
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.ProjectRoot, cfg.Gantry)
}
