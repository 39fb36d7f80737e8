package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gantry-org/gantry-cli/internal/adapters/ledger"
	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/adapters/oracle"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

type warmupFixture struct {
	cfg      *config.RuntimeConfig
	ledger   *ledger.Memory
	hub      *oracle.Hub
	registry *fakeRegistry
	uc       *usecase.WarmupOracles
}

func newWarmupFixture(plan *domain.Plan) *warmupFixture {
	f := &warmupFixture{
		cfg:      testConfig(),
		ledger:   ledger.NewMemory(),
		hub:      oracle.NewHub(),
		registry: newFakeRegistry(),
	}
	f.uc = usecase.NewWarmupOracles(f.cfg, f.ledger, &fakePlans{plan: plan}, lendingArtifacts(), fakeCodec{}, f.hub, f.registry, &progressRecorder{})
	return f
}

func oraclePlan(spec *domain.OracleSpec) *domain.Plan {
	return &domain.Plan{
		Graph:   "lending-core",
		Oracles: []*domain.OracleSpec{spec},
		Components: []*domain.ComponentSpec{
			{Name: "Vault", Artifact: "Vault"},
		},
	}
}

func TestWarmupOracles(t *testing.T) {
	ctx := context.Background()

	t.Run("deploys a mock feed and writes three advancing rounds", func(t *testing.T) {
		f := newWarmupFixture(oraclePlan(&domain.OracleSpec{Name: "eth-usd", Artifact: "MockFeed", Price: "1800"}))

		result, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		deployer, _ := f.ledger.Deployer(ctx)
		feedAddr := domain.PredictCreation(deployer, 0)

		require.Len(t, result.Feeds, 1)
		feed := result.Feeds[0]
		assert.Equal(t, "eth-usd", feed.Name)
		assert.Equal(t, feedAddr, feed.Address)
		assert.True(t, feed.Deployed)
		assert.Equal(t, 3, feed.Rounds)
		assert.Equal(t, uint64(3), feed.Last.RoundID)
		assert.Empty(t, feed.Warning)

		price, _ := domain.ParsePrice("1800")
		assert.Equal(t, price, feed.Last.Price)

		// Round ids advance by one per round, timestamps by the gap.
		history := f.hub.History(feedAddr)
		require.Len(t, history, 3)
		for i, round := range history {
			assert.Equal(t, uint64(i+1), round.RoundID)
		}
		assert.Equal(t, 10*time.Second, history[1].UpdatedAt.Sub(history[0].UpdatedAt))
		assert.Equal(t, 10*time.Second, history[2].UpdatedAt.Sub(history[1].UpdatedAt))

		// The mock landed in the registry like any other creation.
		require.Len(t, result.Records, 1)
		record := result.Records[0]
		assert.Equal(t, models.KindOracle, record.Kind)
		assert.Equal(t, feedAddr.Hex(), record.Address)
		assert.Equal(t, record.Predicted, record.Address)
	})

	t.Run("adopts an existing feed without deploying", func(t *testing.T) {
		adopted := "0x3333333333333333333333333333333333333333"
		f := newWarmupFixture(oraclePlan(&domain.OracleSpec{Name: "eth-usd", Address: adopted, Price: "0.9987"}))

		result, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		assert.Empty(t, f.ledger.Submissions())

		require.Len(t, result.Feeds, 1)
		assert.False(t, result.Feeds[0].Deployed)
		assert.Equal(t, 3, result.Feeds[0].Rounds)

		price, _ := domain.ParsePrice("0.9987")
		assert.Equal(t, price, result.Feeds[0].Last.Price)

		require.Len(t, result.Records, 1)
		assert.Equal(t, adopted, result.Records[0].Address)
		assert.Empty(t, result.Records[0].TxHash)
	})

	t.Run("per-feed rounds and gap override the defaults", func(t *testing.T) {
		f := newWarmupFixture(oraclePlan(&domain.OracleSpec{
			Name:    "eth-usd",
			Address: "0x3333333333333333333333333333333333333333",
			Price:   "1800",
			Rounds:  5,
			Gap:     domain.Duration(time.Minute),
		}))

		result, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		assert.Equal(t, 5, result.Feeds[0].Rounds)
		assert.Equal(t, uint64(5), result.Feeds[0].Last.RoundID)

		history := f.hub.History(result.Feeds[0].Address)
		require.Len(t, history, 5)
		assert.Equal(t, time.Minute, history[1].UpdatedAt.Sub(history[0].UpdatedAt))
	})

	t.Run("warms without separation when the clock cannot move", func(t *testing.T) {
		f := newWarmupFixture(oraclePlan(&domain.OracleSpec{Name: "eth-usd", Address: "0x3333333333333333333333333333333333333333", Price: "1800"}))
		f.ledger.DisableTimeTravel()

		result, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)

		// All three rounds landed, but on the same timestamp; the run
		// carries a warning instead of failing.
		feed := result.Feeds[0]
		assert.Equal(t, 3, feed.Rounds)
		assert.NotEmpty(t, feed.Warning)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "no time separation")

		history := f.hub.History(feed.Address)
		require.Len(t, history, 3)
		assert.Equal(t, history[0].UpdatedAt, history[2].UpdatedAt)
	})

	t.Run("rejects a feed address that is not hex", func(t *testing.T) {
		f := newWarmupFixture(oraclePlan(&domain.OracleSpec{Name: "eth-usd", Address: "not-an-address", Price: "1800"}))

		_, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})

	t.Run("plan without oracles warms nothing", func(t *testing.T) {
		f := newWarmupFixture(&domain.Plan{
			Graph: "lending-core",
			Components: []*domain.ComponentSpec{
				{Name: "Vault", Artifact: "Vault"},
			},
		})

		result, err := f.uc.Run(ctx, usecase.WarmupOraclesParams{PlanPath: "lending.yaml"})
		require.NoError(t, err)
		assert.Empty(t, result.Feeds)
		assert.Empty(t, f.ledger.Submissions())
	})
}
