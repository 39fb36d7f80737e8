package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// WarmupOraclesParams contains parameters for warming up the plan's price
// feeds
type WarmupOraclesParams struct {
	PlanPath string

	// Plan short-circuits loading when the caller already holds one.
	Plan *domain.Plan
}

// FeedWarmup is the outcome for one feed.
type FeedWarmup struct {
	Name     string
	Address  common.Address
	Deployed bool
	Rounds   int
	Last     domain.OracleRound

	// Warning is set when the feed was warmed without time separation.
	Warning string
}

// WarmupOraclesResult contains the result of the warm-up phase
type WarmupOraclesResult struct {
	Plan     *domain.Plan
	ChainID  uint64
	Feeds    []FeedWarmup
	Records  []*models.Record
	Warnings []string
}

// WarmupOracles seeds every price feed a plan depends on with enough
// observation history that staleness and round-advance checks pass. Feeds
// with an artifact get a fresh mock deployed first; feeds with an address
// are adopted as-is.
type WarmupOracles struct {
	config    *config.RuntimeConfig
	ledger    Ledger
	plans     PlanRepository
	artifacts ArtifactRepository
	codec     ArgumentCodec
	feeds     OracleFeedConnector
	registry  RecordRepository
	sink      ProgressSink
}

// NewWarmupOracles creates a new WarmupOracles use case
func NewWarmupOracles(
	cfg *config.RuntimeConfig,
	ledger Ledger,
	plans PlanRepository,
	artifacts ArtifactRepository,
	codec ArgumentCodec,
	feeds OracleFeedConnector,
	registry RecordRepository,
	sink ProgressSink,
) *WarmupOracles {
	return &WarmupOracles{
		config:    cfg,
		ledger:    ledger,
		plans:     plans,
		artifacts: artifacts,
		codec:     codec,
		feeds:     feeds,
		registry:  registry,
		sink:      sink,
	}
}

// Run executes the warm-up use case
func (uc *WarmupOracles) Run(ctx context.Context, params WarmupOraclesParams) (*WarmupOraclesResult, error) {
	plan, err := loadValidatedPlan(ctx, uc.plans, params.Plan, params.PlanPath)
	if err != nil {
		return nil, err
	}

	chainID, err := uc.ledger.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	result := &WarmupOraclesResult{Plan: plan, ChainID: chainID}

	for _, spec := range plan.Oracles {
		addr, record, deployed, err := uc.ensureFeed(ctx, plan, spec, chainID)
		if err != nil {
			return result, err
		}
		if record != nil {
			result.Records = append(result.Records, record)
		}

		warmed, err := uc.warmFeed(ctx, spec, addr)
		warmed.Deployed = deployed
		result.Feeds = append(result.Feeds, warmed)
		if err != nil {
			return result, err
		}
		if warmed.Warning != "" {
			result.Warnings = append(result.Warnings, warmed.Warning)
		}
	}

	return result, nil
}

// ensureFeed makes the feed exist on the ledger: deploys a mock from the
// spec's artifact, or adopts the configured address. Either way the feed
// lands in the registry so later phases can resolve @name against it.
func (uc *WarmupOracles) ensureFeed(ctx context.Context, plan *domain.Plan, spec *domain.OracleSpec, chainID uint64) (common.Address, *models.Record, bool, error) {
	if spec.Address != "" {
		if !common.IsHexAddress(spec.Address) {
			return common.Address{}, nil, false, fmt.Errorf("oracle %s address %q: %w", spec.Name, spec.Address, domain.ErrInvalidAddress)
		}
		addr := common.HexToAddress(spec.Address)
		record := &models.Record{
			Namespace: uc.config.Namespace,
			Graph:     plan.Graph,
			Network:   networkName(uc.config),
			ChainID:   chainID,
			Name:      spec.Name,
			Kind:      models.KindOracle,
			Address:   addr.Hex(),
			CreatedAt: time.Now().UTC(),
		}
		if err := uc.registry.SaveRecord(ctx, record); err != nil {
			return common.Address{}, nil, false, err
		}
		return addr, record, false, nil
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageWarmup),
		Message: fmt.Sprintf("Deploying %s (%s)", spec.Name, spec.Artifact),
		Spinner: true,
	})

	artifact, err := uc.artifacts.Get(ctx, spec.Artifact)
	if err != nil {
		return common.Address{}, nil, false, err
	}
	payload, err := uc.codec.BuildCreation(ctx, artifact, nil)
	if err != nil {
		return common.Address{}, nil, false, fmt.Errorf("failed to build creation for oracle %s: %w", spec.Name, err)
	}

	deployer, err := uc.ledger.Deployer(ctx)
	if err != nil {
		return common.Address{}, nil, false, fmt.Errorf("failed to resolve deployer: %w", err)
	}
	nonce, err := uc.ledger.Nonce(ctx, deployer)
	if err != nil {
		return common.Address{}, nil, false, fmt.Errorf("failed to read deployer nonce: %w", err)
	}
	predicted := domain.PredictCreation(deployer, nonce)

	rcpt, err := uc.ledger.SubmitCreation(ctx, &domain.Creation{
		Name:     spec.Name,
		Nonce:    nonce,
		Bytecode: payload,
	})
	if err != nil {
		return common.Address{}, nil, false, &domain.CreationRejectedError{Component: spec.Name, Err: err}
	}
	if rcpt.Address != predicted {
		return common.Address{}, nil, false, &domain.AddressMismatchError{
			Component: spec.Name,
			Predicted: predicted.Hex(),
			Actual:    rcpt.Address.Hex(),
			Nonce:     nonce,
		}
	}

	record := &models.Record{
		Namespace:   uc.config.Namespace,
		Graph:       plan.Graph,
		Network:     networkName(uc.config),
		ChainID:     chainID,
		Name:        spec.Name,
		Kind:        models.KindOracle,
		Artifact:    spec.Artifact,
		Address:     rcpt.Address.Hex(),
		Predicted:   predicted.Hex(),
		Nonce:       nonce,
		Deployer:    deployer.Hex(),
		TxHash:      rcpt.TxHash.Hex(),
		BlockNumber: rcpt.BlockNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.registry.SaveRecord(ctx, record); err != nil {
		return common.Address{}, nil, false, err
	}
	tx := transactionRecord(uc.config, plan.Graph, chainID, models.TxCreation, rcpt, "", "")
	if err := uc.registry.SaveTransaction(ctx, tx); err != nil {
		return common.Address{}, nil, false, err
	}

	return rcpt.Address, record, true, nil
}

// warmFeed publishes the configured number of rounds, each superseding the
// last and separated by the configured gap of ledger time. Ledgers that
// cannot advance their clock get the rounds back-to-back and a warning.
func (uc *WarmupOracles) warmFeed(ctx context.Context, spec *domain.OracleSpec, addr common.Address) (FeedWarmup, error) {
	warmed := FeedWarmup{Name: spec.Name, Address: addr}

	price, err := domain.ParsePrice(spec.Price)
	if err != nil {
		return warmed, fmt.Errorf("oracle %s: %w", spec.Name, err)
	}

	rounds := spec.Rounds
	if rounds == 0 {
		rounds = uc.config.Gantry.Warmup.Rounds
	}
	gap := spec.Gap.Std()
	if gap == 0 {
		gap = uc.config.Gantry.Warmup.Gap.Std()
	}

	feed := uc.feeds.Connect(addr)
	noGap := false

	for i := 0; i < rounds; i++ {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageWarmup),
			Current: i + 1,
			Total:   rounds,
			Message: fmt.Sprintf("Warming %s @ %s", spec.Name, spec.Price),
			Spinner: true,
		})

		cur, err := feed.LatestRound(ctx)
		if err != nil {
			return warmed, &domain.WarmupIncompleteError{Feed: spec.Name, Rounds: i, Want: rounds, Err: err}
		}
		now, err := uc.ledger.CurrentTime(ctx)
		if err != nil {
			return warmed, &domain.WarmupIncompleteError{Feed: spec.Name, Rounds: i, Want: rounds, Err: err}
		}

		next := cur.NextRound(price, now)
		if err := feed.PublishRound(ctx, cur, next); err != nil {
			return warmed, &domain.WarmupIncompleteError{Feed: spec.Name, Rounds: i, Want: rounds, Err: err}
		}
		warmed.Rounds = i + 1
		warmed.Last = next

		if gap > 0 && !noGap {
			if err := uc.ledger.AdvanceTime(ctx, gap); err != nil {
				if !errors.Is(err, domain.ErrTimeTravelUnsupported) {
					return warmed, &domain.WarmupIncompleteError{Feed: spec.Name, Rounds: i + 1, Want: rounds, Err: err}
				}
				noGap = true
			}
		}
	}

	if noGap {
		werr := &domain.WarmupIncompleteError{Feed: spec.Name, Rounds: warmed.Rounds, Want: rounds, NoTimeGap: true}
		warmed.Warning = werr.Error()
		uc.sink.Info(fmt.Sprintf("⚠️  %s", warmed.Warning))
	}

	return warmed, nil
}
