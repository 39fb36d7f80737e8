package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// LoadGantryConfig loads and parses gantry.toml. A missing file yields
// the defaults; a malformed one is an error.
func LoadGantryConfig(projectRoot string) (*config.GantryConfig, error) {
	// Load .env files first for variable expansion
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}

	cfg := &config.GantryConfig{}
	if _, err := toml.DecodeFile(filepath.Join(projectRoot, manifestName), cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
		}
	}

	// RPC URLs may reference env vars like ${SEPOLIA_RPC_URL}
	for name, url := range cfg.RPCEndpoints {
		cfg.RPCEndpoints[name] = os.ExpandEnv(url)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
