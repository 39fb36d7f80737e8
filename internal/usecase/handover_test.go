package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/adapters/ledger"
	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

const authorityAddr = "0x1111111111111111111111111111111111111111"

// handoverFixture wires a HandoverOwnership use case over a registry that
// already holds the deployed authority, as if a run had just finished.
type handoverFixture struct {
	cfg      *config.RuntimeConfig
	ledger   *ledger.Memory
	registry *fakeRegistry
	plan     *domain.Plan
	uc       *usecase.HandoverOwnership
}

func newHandoverFixture(t *testing.T) *handoverFixture {
	t.Helper()

	f := &handoverFixture{
		cfg:      testConfig(),
		ledger:   ledger.NewMemory(),
		registry: newFakeRegistry(),
		plan:     lendingPlan(),
	}
	err := f.registry.SaveRecord(context.Background(), &models.Record{
		Namespace: "default",
		Graph:     "lending-core",
		ChainID:   config.MemoryChainID,
		Name:      "Controller",
		Kind:      models.KindComponent,
		Address:   authorityAddr,
	})
	require.NoError(t, err)

	f.uc = usecase.NewHandoverOwnership(f.cfg, f.ledger, &fakePlans{plan: f.plan}, fakeCodec{}, f.registry, &progressRecorder{})
	return f
}

func (f *handoverFixture) commit(t *testing.T) *usecase.HandoverResult {
	t.Helper()
	result, err := f.uc.Run(context.Background(), usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverCommit})
	require.NoError(t, err)
	return result
}

func TestHandoverOwnership(t *testing.T) {
	ctx := context.Background()
	newOwner := common.HexToAddress(newOwnerAddr).Hex()

	t.Run("commit proposes the new owner and starts the delay", func(t *testing.T) {
		f := newHandoverFixture(t)

		result := f.commit(t)

		transfer := result.Transfer
		require.NotNil(t, transfer)
		assert.Equal(t, domain.HandoverCommitted, transfer.State)
		assert.Equal(t, newOwner, transfer.PendingOwner)
		assert.Equal(t, time.Hour, transfer.MinDelay)
		assert.Equal(t, result.Now.Add(time.Hour), transfer.ReadyAt())
		assert.NotEmpty(t, result.TxHash)

		// The proposal went on the ledger and into the registry.
		log := f.ledger.Submissions()
		require.Len(t, log, 1)
		assert.Equal(t, domain.MethodCommitOwnership, log[0].Method)
		assert.Equal(t, authorityAddr, log[0].To.Hex())

		saved, err := f.registry.GetHandover(ctx, transfer.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.HandoverCommitted, saved.State)

		require.Len(t, f.registry.txs, 1)
		assert.Equal(t, models.TxCall, f.registry.txs[0].Kind)
		assert.Equal(t, domain.MethodCommitOwnership, f.registry.txs[0].Method)
	})

	t.Run("plan without a delay falls back to the configured default", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.plan.Handover.MinDelay = 0

		result := f.commit(t)
		assert.Equal(t, config.DefaultHandoverDelay, result.Transfer.MinDelay)
	})

	t.Run("accept before the delay fails", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.commit(t)

		require.NoError(t, f.ledger.AdvanceTime(ctx, time.Hour-time.Second))

		result, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept})
		require.Error(t, err)

		var early *domain.HandoverTooEarlyError
		require.ErrorAs(t, err, &early)
		assert.Equal(t, domain.HandoverCommitted, result.Transfer.State)

		// Only the commit ever reached the ledger.
		assert.Len(t, f.ledger.Submissions(), 1)
	})

	t.Run("accept at the boundary succeeds exactly once", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.commit(t)

		require.NoError(t, f.ledger.AdvanceTime(ctx, time.Hour))

		result, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept})
		require.NoError(t, err)

		transfer := result.Transfer
		assert.Equal(t, domain.HandoverAccepted, transfer.State)
		assert.Equal(t, newOwner, transfer.CurrentOwner)
		assert.Empty(t, transfer.PendingOwner)

		// The accept was signed by the incoming owner.
		log := f.ledger.Submissions()
		require.Len(t, log, 2)
		assert.Equal(t, domain.MethodAcceptOwnership, log[1].Method)
		assert.Equal(t, common.HexToAddress(newOwnerAddr), log[1].Sender)

		// The transfer is terminal in both directions.
		_, err = f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept})
		assert.ErrorIs(t, err, domain.ErrHandoverAccepted)

		_, err = f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverCommit})
		assert.ErrorIs(t, err, domain.ErrHandoverAccepted)
		assert.Len(t, f.ledger.Submissions(), 2)
	})

	t.Run("fast forward jumps the clock past the delay", func(t *testing.T) {
		f := newHandoverFixture(t)
		committed := f.commit(t)

		result, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept, FastForward: true})
		require.NoError(t, err)

		assert.Equal(t, domain.HandoverAccepted, result.Transfer.State)
		// One second past ready, so the boundary cannot race.
		assert.Equal(t, committed.Now.Add(time.Hour+time.Second), result.Transfer.AcceptedAt)
	})

	t.Run("fast forward without time travel returns the original error", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.commit(t)
		f.ledger.DisableTimeTravel()

		_, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept, FastForward: true})
		require.Error(t, err)

		var early *domain.HandoverTooEarlyError
		assert.ErrorAs(t, err, &early)
	})

	t.Run("accept without a prior commit fails", func(t *testing.T) {
		f := newHandoverFixture(t)

		_, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept})
		assert.ErrorIs(t, err, domain.ErrHandoverNotCommitted)
	})

	t.Run("re-commit replaces the pending owner and restarts the delay", func(t *testing.T) {
		f := newHandoverFixture(t)
		first := f.commit(t)

		require.NoError(t, f.ledger.AdvanceTime(ctx, 30*time.Minute))

		f.plan.Handover.NewOwner = "0x2222222222222222222222222222222222222222"
		second := f.commit(t)

		assert.Equal(t, newOwner, second.Replaced)
		assert.Equal(t, common.HexToAddress(f.plan.Handover.NewOwner).Hex(), second.Transfer.PendingOwner)
		assert.Equal(t, first.Now.Add(30*time.Minute), second.Transfer.CommittedAt)
		assert.Equal(t, second.Transfer.CommittedAt.Add(time.Hour), second.Transfer.ReadyAt())
	})

	t.Run("status walks the lifecycle", func(t *testing.T) {
		f := newHandoverFixture(t)

		status, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverStatus})
		require.NoError(t, err)
		assert.Nil(t, status.Transfer)

		f.commit(t)
		status, err = f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverStatus})
		require.NoError(t, err)
		require.NotNil(t, status.Transfer)
		assert.Equal(t, domain.HandoverCommitted, status.Transfer.State)

		require.NoError(t, f.ledger.AdvanceTime(ctx, 2*time.Hour))
		_, err = f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverAccept})
		require.NoError(t, err)

		status, err = f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverStatus})
		require.NoError(t, err)
		assert.Equal(t, domain.HandoverAccepted, status.Transfer.State)

		// Status submits nothing, ever.
		assert.Len(t, f.ledger.Submissions(), 2)
	})

	t.Run("commit without a deployed authority fails", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.registry = newFakeRegistry()
		f.uc = usecase.NewHandoverOwnership(f.cfg, f.ledger, &fakePlans{plan: f.plan}, fakeCodec{}, f.registry, &progressRecorder{})

		_, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverCommit})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run the plan first")
	})

	t.Run("plan without a handover section fails", func(t *testing.T) {
		f := newHandoverFixture(t)
		f.plan.Handover = nil

		_, err := f.uc.Run(ctx, usecase.HandoverParams{PlanPath: "lending.yaml", Action: usecase.HandoverCommit})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no handover section")
	})
}
