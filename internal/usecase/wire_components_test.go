package usecase_test

import (
	"context"
	"errors"
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

type wiringFixture struct {
	cfg      *config.RuntimeConfig
	ledger   *ledger.Memory
	registry *fakeRegistry
	progress *progressRecorder
	plan     *domain.Plan
	uc       *usecase.WireComponents
}

// newWiringFixture seeds the registry with the plan's components already
// deployed, as the creation phase would leave them.
func newWiringFixture(t *testing.T) *wiringFixture {
	t.Helper()

	f := &wiringFixture{
		cfg:      testConfig(),
		ledger:   ledger.NewMemory(),
		registry: newFakeRegistry(),
		progress: &progressRecorder{},
		plan:     lendingPlan(),
	}

	deployer, _ := f.ledger.Deployer(context.Background())
	for i, c := range f.plan.Components {
		err := f.registry.SaveRecord(context.Background(), &models.Record{
			Namespace: "default",
			Graph:     "lending-core",
			ChainID:   config.MemoryChainID,
			Name:      c.Name,
			Kind:      models.KindComponent,
			Nonce:     uint64(i),
			Address:   domain.PredictCreation(deployer, uint64(i)).Hex(),
			CreatedAt: time.Now().UTC(),
		})
		require.NoError(t, err)
	}
	err := f.registry.SaveRecord(context.Background(), &models.Record{
		Namespace: "default",
		Graph:     "lending-core",
		ChainID:   config.MemoryChainID,
		Name:      "eth-usd",
		Kind:      models.KindOracle,
		Address:   "0x3333333333333333333333333333333333333333",
	})
	require.NoError(t, err)

	f.uc = usecase.NewWireComponents(f.cfg, f.ledger, &fakePlans{plan: f.plan}, fakeCodec{}, f.registry, f.progress)
	return f
}

func (f *wiringFixture) addressOf(t *testing.T, name string) string {
	t.Helper()
	record, err := f.registry.FindRecord(context.Background(), "default", config.MemoryChainID, name)
	require.NoError(t, err)
	return record.Address
}

func TestWireComponents(t *testing.T) {
	ctx := context.Background()

	t.Run("submits every pending call in plan order", func(t *testing.T) {
		f := newWiringFixture(t)

		result, err := f.uc.Run(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		require.Len(t, result.Submitted, 2)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, "Vault.setController(address)", result.Submitted[0].Key())
		assert.Equal(t, "Controller.setFeed(address)", result.Submitted[1].Key())

		log := f.ledger.Submissions()
		require.Len(t, log, 2)
		assert.Equal(t, f.addressOf(t, "Vault"), log[0].To.Hex())
		assert.Equal(t, f.addressOf(t, "Controller"), log[1].To.Hex())

		// Each call went into the transaction registry as confirmed.
		txs, err := f.registry.ListTransactions(ctx, domain.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		for _, tx := range txs {
			assert.Equal(t, models.TxCall, tx.Kind)
			assert.Equal(t, models.TxConfirmed, tx.Status)
		}
	})

	t.Run("already confirmed calls are skipped", func(t *testing.T) {
		f := newWiringFixture(t)

		// A previous invocation already wired the vault.
		err := f.registry.SaveTransaction(ctx, &models.Transaction{
			Hash:      "0xabc",
			Namespace: "default",
			Graph:     "lending-core",
			ChainID:   config.MemoryChainID,
			Kind:      models.TxCall,
			To:        f.addressOf(t, "Vault"),
			Method:    "setController(address)",
			Status:    models.TxConfirmed,
		})
		require.NoError(t, err)

		result, err := f.uc.Run(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		require.Len(t, result.Submitted, 1)
		assert.Equal(t, "Controller.setFeed(address)", result.Submitted[0].Key())
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "Vault.setController(address)", result.Skipped[0].Key())
		assert.Len(t, f.ledger.Submissions(), 1)
	})

	t.Run("only filter narrows the queue", func(t *testing.T) {
		f := newWiringFixture(t)

		result, err := f.uc.Run(ctx, usecase.WireComponentsParams{
			PlanPath: "lending.yaml",
			Only:     []string{"Controller.setFeed(address)"},
		})
		require.NoError(t, err)

		require.Len(t, result.Submitted, 1)
		assert.Equal(t, "Controller.setFeed(address)", result.Submitted[0].Key())
		assert.Len(t, f.ledger.Submissions(), 1)
	})

	t.Run("only filter rejects unknown keys", func(t *testing.T) {
		f := newWiringFixture(t)

		_, err := f.uc.Run(ctx, usecase.WireComponentsParams{
			PlanPath: "lending.yaml",
			Only:     []string{"Vault.selfDestruct()"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pending wiring call")
		assert.Empty(t, f.ledger.Submissions())
	})

	t.Run("rejected call stops the remaining queue", func(t *testing.T) {
		f := newWiringFixture(t)
		f.ledger.FailCall("setController(address)", errors.New("revert: not owner"))

		result, err := f.uc.Run(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.Error(t, err)

		var rejected *domain.WiringRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Vault", rejected.Target)
		assert.Equal(t, 1, rejected.Remaining)

		assert.Empty(t, result.Submitted)
		assert.Empty(t, f.ledger.Submissions())
	})

	t.Run("target without a recorded address fails", func(t *testing.T) {
		f := newWiringFixture(t)
		f.registry = newFakeRegistry()
		f.uc = usecase.NewWireComponents(f.cfg, f.ledger, &fakePlans{plan: f.plan}, fakeCodec{}, f.registry, f.progress)

		_, err := f.uc.Run(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run the plan first")
	})

	t.Run("dry run submits nothing", func(t *testing.T) {
		f := newWiringFixture(t)
		f.cfg.DryRun = true

		result, err := f.uc.Run(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		assert.Empty(t, result.Submitted)
		assert.Empty(t, f.ledger.Submissions())
		assert.Contains(t, f.progress.infos[len(f.progress.infos)-1], "Dry run")
	})

	t.Run("pending lists without submitting", func(t *testing.T) {
		f := newWiringFixture(t)

		plan, pending, err := f.uc.Pending(ctx, usecase.WireComponentsParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		assert.Equal(t, "lending-core", plan.Graph)
		assert.Len(t, pending, 2)
		assert.Empty(t, f.ledger.Submissions())
	})
}
