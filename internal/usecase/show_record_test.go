package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/adapters/ledger"
	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

type showFixture struct {
	cfg      *config.RuntimeConfig
	registry *fakeRegistry
	selector *fakeSelector
	show     *usecase.ShowRecord
}

func newShowFixture(t *testing.T) *showFixture {
	t.Helper()

	f := &showFixture{
		cfg:      testConfig(),
		registry: newFakeRegistry(),
		selector: &fakeSelector{},
	}
	f.show = usecase.NewShowRecord(f.cfg, f.registry, f.selector, &progressRecorder{})

	ctx := context.Background()
	for i, name := range []string{"Vault", "Controller", "Router"} {
		require.NoError(t, f.registry.SaveRecord(ctx, &models.Record{
			Namespace: "default",
			Graph:     "lending-core",
			Network:   "memory",
			ChainID:   config.MemoryChainID,
			Name:      name,
			Kind:      models.KindComponent,
			Address:   domain.PredictCreation(ledger.MemoryDeployer, uint64(i)).Hex(),
			Nonce:     uint64(i),
			Deployer:  ledger.MemoryDeployer.Hex(),
			TxHash:    "0xtx-" + name,
			CreatedAt: time.Unix(1700000000, 0).UTC(),
		}))
	}

	// A same-named record in another namespace must stay invisible.
	require.NoError(t, f.registry.SaveRecord(ctx, &models.Record{
		Namespace: "staging",
		Graph:     "lending-core",
		ChainID:   config.MemoryChainID,
		Name:      "Vault",
		Kind:      models.KindComponent,
		Address:   "0x00000000000000000000000000000000000000AA",
	}))

	return f
}

func TestShowRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves a full id directly", func(t *testing.T) {
		f := newShowFixture(t)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "default/31337/Controller"})

		require.NoError(t, err)
		assert.Equal(t, "Controller", result.Record.Name)
		assert.Equal(t, uint64(1), result.Record.Nonce)
	})

	t.Run("resolves an exact name within the namespace", func(t *testing.T) {
		f := newShowFixture(t)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "Vault"})

		require.NoError(t, err)
		assert.Equal(t, "Vault", result.Record.Name)
		assert.Equal(t, "default", result.Record.Namespace)
	})

	t.Run("resolves an address case-insensitively", func(t *testing.T) {
		f := newShowFixture(t)
		address := domain.PredictCreation(ledger.MemoryDeployer, 2)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{
			Identifier: strings.ToLower(address.Hex()),
		})

		require.NoError(t, err)
		assert.Equal(t, "Router", result.Record.Name)
	})

	t.Run("a substring with one match resolves without prompting", func(t *testing.T) {
		f := newShowFixture(t)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "Rout"})

		require.NoError(t, err)
		assert.Equal(t, "Router", result.Record.Name)
		assert.Empty(t, f.selector.prompt)
	})

	t.Run("ambiguity errors in non-interactive mode", func(t *testing.T) {
		f := newShowFixture(t)
		f.cfg.NonInteractive = true

		_, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "r"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
		assert.Contains(t, err.Error(), "default/31337/Controller")
		assert.Contains(t, err.Error(), "default/31337/Router")
	})

	t.Run("the selector settles ambiguity interactively", func(t *testing.T) {
		f := newShowFixture(t)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "r"})

		require.NoError(t, err)
		assert.Equal(t, "Controller", result.Record.Name)
		assert.Contains(t, f.selector.prompt, `Select record for "r"`)
	})

	t.Run("attaches the creation transaction and handover", func(t *testing.T) {
		f := newShowFixture(t)
		require.NoError(t, f.registry.SaveTransaction(ctx, &models.Transaction{
			Hash:      "0xtx-Controller",
			Namespace: "default",
			Graph:     "lending-core",
			ChainID:   config.MemoryChainID,
			Kind:      models.TxCreation,
			Status:    models.TxConfirmed,
		}))
		transfer := domain.NewOwnershipTransfer(
			"default", "lending-core", config.MemoryChainID,
			"Controller", domain.PredictCreation(ledger.MemoryDeployer, 1).Hex(),
			ledger.MemoryDeployer.Hex(), time.Hour,
		)
		require.NoError(t, f.registry.SaveHandover(ctx, transfer))

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "Controller"})

		require.NoError(t, err)
		require.NotNil(t, result.Transaction)
		assert.Equal(t, "0xtx-Controller", result.Transaction.Hash)
		require.NotNil(t, result.Handover)
		assert.Equal(t, domain.HandoverUncommitted, result.Handover.State)
	})

	t.Run("records without a transfer show none", func(t *testing.T) {
		f := newShowFixture(t)

		result, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "Vault"})

		require.NoError(t, err)
		assert.Nil(t, result.Handover)
	})

	t.Run("unknown identifier is not found", func(t *testing.T) {
		f := newShowFixture(t)

		_, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: "Ghost"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("an identifier is required", func(t *testing.T) {
		f := newShowFixture(t)

		_, err := f.show.Run(ctx, usecase.ShowRecordParams{Identifier: ""})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})
}
