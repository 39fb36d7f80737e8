package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// SetConfigParams names the key to change and its new value.
type SetConfigParams struct {
	Key   string
	Value string
}

// SetConfigResult echoes the applied change for rendering.
type SetConfigResult struct {
	UpdatedConfig *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	Value         string
}

// SetConfig stores one sticky default in the local config file.
type SetConfig struct {
	store LocalConfigStore
}

// NewSetConfig creates the use case behind config set.
func NewSetConfig(store LocalConfigStore) *SetConfig {
	return &SetConfig{store: store}
}

// Run parses the key, applies the value and writes the file back.
func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key, ok := config.ParseConfigKey(params.Key)
	if !ok {
		return nil, unknownConfigKeyError(params.Key)
	}

	cfg, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Set(key, params.Value)
	if err := uc.store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	return &SetConfigResult{
		UpdatedConfig: cfg,
		ConfigPath:    uc.store.GetPath(ctx),
		Key:           key,
		Value:         params.Value,
	}, nil
}

// unknownConfigKeyError names the valid keys, with the namespace alias
// shown.
func unknownConfigKeyError(key string) error {
	names := lo.Map(config.ValidConfigKeys(), func(k config.ConfigKey, _ int) string {
		if k == config.ConfigKeyNamespace {
			return string(k) + " (ns)"
		}
		return string(k)
	})
	return fmt.Errorf("unknown config key: %s\nAvailable keys: %s", key, strings.Join(names, ", "))
}
