package usecase

import (
	"context"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// ShowConfigResult reports the sticky context and where it lives.
type ShowConfigResult struct {
	Config     *config.LocalConfig
	ConfigPath string
	Exists     bool

	// ConfigSource names where project settings came from, filled in by
	// the caller from the runtime config.
	ConfigSource string
}

// ShowConfig reads the local config file without touching it.
type ShowConfig struct {
	store LocalConfigStore
}

// NewShowConfig creates the use case behind config show.
func NewShowConfig(store LocalConfigStore) *ShowConfig {
	return &ShowConfig{store: store}
}

// Run reports defaults when no file has been written yet, with Exists
// telling the two apart.
func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	exists, err := uc.store.Exists(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ShowConfigResult{
		Config:     cfg,
		ConfigPath: uc.store.GetPath(ctx),
		Exists:     exists,
	}, nil
}
