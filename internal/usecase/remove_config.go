package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// RemoveConfigParams names the key to reset.
type RemoveConfigParams struct {
	Key string
}

// RemoveConfigResult reports the value that was dropped.
type RemoveConfigResult struct {
	UpdatedConfig *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	RemovedValue  string
}

// RemoveConfig resets one sticky default back to its built-in value.
type RemoveConfig struct {
	store LocalConfigStore
}

// NewRemoveConfig creates the use case behind config remove.
func NewRemoveConfig(store LocalConfigStore) *RemoveConfig {
	return &RemoveConfig{store: store}
}

// Run clears the key and saves, failing when no config file exists yet.
func (uc *RemoveConfig) Run(ctx context.Context, params RemoveConfigParams) (*RemoveConfigResult, error) {
	exists, err := uc.store.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no config file found at %s", displayPath(uc.store.GetPath(ctx)))
	}

	key, ok := config.ParseConfigKey(params.Key)
	if !ok {
		return nil, unknownConfigKeyError(params.Key)
	}

	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	removed := cfg.Clear(key)
	if err := uc.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &RemoveConfigResult{
		UpdatedConfig: cfg,
		ConfigPath:    uc.store.GetPath(ctx),
		Key:           key,
		RemovedValue:  removed,
	}, nil
}

// displayPath shortens a path relative to the working directory when it
// can, for error messages.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}
