package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

const localConfigFile = "config.local.json"

// LocalConfigStoreAdapter persists per-checkout command defaults under
// the data directory. Plain JSON so operators can edit it by hand.
type LocalConfigStoreAdapter struct {
	path string
}

func NewLocalConfigStoreAdapter(cfg *config.RuntimeConfig) *LocalConfigStoreAdapter {
	return &LocalConfigStoreAdapter{path: filepath.Join(cfg.DataDir, localConfigFile)}
}

func (s *LocalConfigStoreAdapter) Exists(ctx context.Context) (bool, error) {
	switch _, err := os.Stat(s.path); {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, err
	}
}

// Load reads the stored defaults. A missing file is not an error, the
// built-in defaults apply.
func (s *LocalConfigStoreAdapter) Load(ctx context.Context) (*config.LocalConfig, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return config.DefaultLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := config.DefaultLocalConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	// An explicit empty namespace in the file still means default.
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultLocalConfig().Namespace
	}
	return cfg, nil
}

// Save writes the defaults back, creating the data directory on first use.
func (s *LocalConfigStoreAdapter) Save(ctx context.Context, cfg *config.LocalConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetPath reports where the defaults live, for config show output.
func (s *LocalConfigStoreAdapter) GetPath(ctx context.Context) string {
	return s.path
}

var _ usecase.LocalConfigStore = (*LocalConfigStoreAdapter)(nil)
