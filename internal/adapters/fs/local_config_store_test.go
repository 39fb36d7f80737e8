package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/adapters/fs"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

func TestLocalConfigStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load before save returns defaults", func(t *testing.T) {
		store := fs.NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: t.TempDir()})

		exists, err := store.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "default", cfg.Namespace)
		assert.Empty(t, cfg.Network)
	})

	t.Run("save then load round trips", func(t *testing.T) {
		dataDir := t.TempDir()
		store := fs.NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: dataDir})

		require.NoError(t, store.Save(ctx, &config.LocalConfig{
			Namespace: "staging",
			Network:   "memory",
			Plan:      "plans/lending.yaml",
		}))

		exists, err := store.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)

		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "staging", cfg.Namespace)
		assert.Equal(t, "memory", cfg.Network)
		assert.Equal(t, "plans/lending.yaml", cfg.Plan)

		assert.Equal(t, filepath.Join(dataDir, "config.local.json"), store.GetPath(ctx))
	})

	t.Run("save creates the data directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "nested", ".gantry")
		store := fs.NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: dataDir})

		require.NoError(t, store.Save(ctx, config.DefaultLocalConfig()))

		_, err := os.Stat(filepath.Join(dataDir, "config.local.json"))
		assert.NoError(t, err)
	})

	t.Run("a blank namespace falls back to default on load", func(t *testing.T) {
		dataDir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dataDir, "config.local.json"),
			[]byte(`{"namespace":"","network":"memory"}`), 0644,
		))
		store := fs.NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: dataDir})

		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "default", cfg.Namespace)
		assert.Equal(t, "memory", cfg.Network)
	})

	t.Run("unparseable files error instead of resetting", func(t *testing.T) {
		dataDir := t.TempDir()
		require.NoError(t, os.WriteFile(
			filepath.Join(dataDir, "config.local.json"),
			[]byte("not json"), 0644,
		))
		store := fs.NewLocalConfigStoreAdapter(&config.RuntimeConfig{DataDir: dataDir})

		_, err := store.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}
