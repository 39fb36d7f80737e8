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

// RunDeploymentParams contains parameters for a full deployment run
type RunDeploymentParams struct {
	PlanPath string
}

// RunDeploymentResult contains the result of a full deployment run
type RunDeploymentResult struct {
	Plan        *domain.Plan
	ChainID     uint64
	Deployer    common.Address
	StartNonce  uint64
	Predictions []domain.Prediction

	Oracles []FeedWarmup

	// Records are the registry entries created this run, in creation order.
	Records []*models.Record

	Wired    []*domain.WiringSpec
	Handover *domain.OwnershipTransfer

	Warnings []string
	DryRun   bool
}

// RunDeployment executes a whole plan against one ledger: warm the feeds,
// predict the address table, create every component in order with per-step
// verification, wire, deploy the auxiliary entries, hand over ownership.
// Everything runs strictly serialized against the one deployer identity,
// because every prediction depends on an uninterrupted nonce sequence. Any
// fatal error stops the run where it is; nothing is retried or rolled back.
type RunDeployment struct {
	config    *config.RuntimeConfig
	ledger    Ledger
	plans     PlanRepository
	artifacts ArtifactRepository
	codec     ArgumentCodec
	registry  RecordRepository
	warmup    *WarmupOracles
	wiring    *WireComponents
	handover  *HandoverOwnership
	sink      ProgressSink
}

// NewRunDeployment creates a new RunDeployment use case
func NewRunDeployment(
	cfg *config.RuntimeConfig,
	ledger Ledger,
	plans PlanRepository,
	artifacts ArtifactRepository,
	codec ArgumentCodec,
	registry RecordRepository,
	warmup *WarmupOracles,
	wiring *WireComponents,
	handover *HandoverOwnership,
	sink ProgressSink,
) *RunDeployment {
	return &RunDeployment{
		config:    cfg,
		ledger:    ledger,
		plans:     plans,
		artifacts: artifacts,
		codec:     codec,
		registry:  registry,
		warmup:    warmup,
		wiring:    wiring,
		handover:  handover,
		sink:      sink,
	}
}

// Run executes the full deployment run use case
func (uc *RunDeployment) Run(ctx context.Context, params RunDeploymentParams) (*RunDeploymentResult, error) {
	plan, err := loadValidatedPlan(ctx, uc.plans, nil, params.PlanPath)
	if err != nil {
		return nil, err
	}
	chainID, err := uc.ledger.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	deployer, err := uc.ledger.Deployer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deployer: %w", err)
	}

	result := &RunDeploymentResult{
		Plan:     plan,
		ChainID:  chainID,
		Deployer: deployer,
		DryRun:   uc.config.DryRun,
	}

	if plan.AlignTime > 0 && !uc.config.DryRun {
		if err := uc.alignClock(ctx, plan, result); err != nil {
			return result, err
		}
	}

	// Warm-up precedes prediction: deploying mock feeds consumes deployer
	// nonces, and the address table must start after them.
	if len(plan.Oracles) > 0 && !uc.config.DryRun {
		warmed, err := uc.warmup.Run(ctx, WarmupOraclesParams{Plan: plan})
		if warmed != nil {
			result.Oracles = warmed.Feeds
			result.Records = append(result.Records, warmed.Records...)
			result.Warnings = append(result.Warnings, warmed.Warnings...)
		}
		if err != nil {
			return result, err
		}
	}

	startNonce, err := uc.ledger.Nonce(ctx, deployer)
	if err != nil {
		return result, fmt.Errorf("failed to read deployer nonce: %w", err)
	}
	result.StartNonce = startNonce
	result.Predictions = domain.PredictSequence(plan, deployer, startNonce)
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StagePredicting),
		Message: fmt.Sprintf("Predicted %d addresses from nonce %d", len(result.Predictions), startNonce),
	})

	if uc.config.DryRun {
		for _, o := range plan.Oracles {
			if o.Artifact != "" {
				result.Warnings = append(result.Warnings,
					"dry run skips mock feed deployment; a live run shifts the start nonce by one per deployed feed")
				break
			}
		}
		uc.sink.Info("Dry run: no transactions submitted")
		return result, nil
	}

	// Recorded addresses (the feeds just warmed, anything adopted) overlaid
	// with this run's predictions.
	bindings, err := recordedBindings(ctx, uc.registry, uc.config.Namespace, chainID, deployer, plan)
	if err != nil {
		return result, err
	}
	for _, pred := range result.Predictions {
		bindings.Bind(pred.Name, pred.Address)
	}

	if err := uc.createComponents(ctx, plan, bindings, result); err != nil {
		return result, err
	}

	if len(plan.Wiring) > 0 {
		wired, err := uc.wiring.Run(ctx, WireComponentsParams{Plan: plan})
		if wired != nil {
			result.Wired = wired.Submitted
		}
		if err != nil {
			return result, err
		}
	}

	if err := uc.createAuxiliary(ctx, plan, bindings, result); err != nil {
		return result, err
	}

	if plan.Handover != nil {
		if err := uc.runHandover(ctx, plan, result); err != nil {
			return result, err
		}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: string(StageCompleted)})
	return result, nil
}

// alignClock advances the ledger clock to the next AlignTime boundary, as
// counted in unix time. Ledgers without time travel skip with a warning.
func (uc *RunDeployment) alignClock(ctx context.Context, plan *domain.Plan, result *RunDeploymentResult) error {
	align := plan.AlignTime.Std()
	secs := int64(align / time.Second)
	if secs <= 0 {
		return nil
	}
	now, err := uc.ledger.CurrentTime(ctx)
	if err != nil {
		return err
	}
	delta := time.Duration(secs-now.Unix()%secs) * time.Second

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageAligning),
		Message: fmt.Sprintf("Aligning ledger clock to the next %s boundary (+%s)", align, delta),
		Spinner: true,
	})
	if err := uc.ledger.AdvanceTime(ctx, delta); err != nil {
		if errors.Is(err, domain.ErrTimeTravelUnsupported) {
			msg := fmt.Sprintf("align_time %s skipped: %v", align, err)
			result.Warnings = append(result.Warnings, msg)
			uc.sink.Info("⚠️  " + msg)
			return nil
		}
		return err
	}
	return nil
}

// createComponents runs the predicted creation sequence, checking every
// landing address against its prediction before moving on.
func (uc *RunDeployment) createComponents(ctx context.Context, plan *domain.Plan, bindings *domain.Bindings, result *RunDeploymentResult) error {
	seq := domain.NewNonceSequence(result.Deployer, result.StartNonce)
	for i, c := range plan.Components {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageCreating),
			Current: i + 1,
			Total:   len(plan.Components),
			Message: fmt.Sprintf("Creating %s (%s)", c.Name, c.Artifact),
			Spinner: true,
		})

		record, err := uc.create(ctx, plan, c, bindings, result.ChainID, seq.Take(), result.Predictions[i].Address, models.KindComponent, plan.ForwardRefs(i))
		if err != nil {
			return err
		}
		result.Records = append(result.Records, record)
	}
	return nil
}

// createAuxiliary deploys the post-wiring entries. They sit outside the
// predicted window, so each takes a fresh ledger nonce, but the landing
// address is still checked against the CREATE rule.
func (uc *RunDeployment) createAuxiliary(ctx context.Context, plan *domain.Plan, bindings *domain.Bindings, result *RunDeploymentResult) error {
	if len(plan.Auxiliary) == 0 {
		return nil
	}
	start, err := uc.ledger.Nonce(ctx, result.Deployer)
	if err != nil {
		return fmt.Errorf("failed to read deployer nonce: %w", err)
	}
	seq := domain.NewNonceSequence(result.Deployer, start)

	for i, c := range plan.Auxiliary {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageAuxiliary),
			Current: i + 1,
			Total:   len(plan.Auxiliary),
			Message: fmt.Sprintf("Creating %s (%s)", c.Name, c.Artifact),
			Spinner: true,
		})

		nonce := seq.Take()
		record, err := uc.create(ctx, plan, c, bindings, result.ChainID, nonce, domain.PredictCreation(result.Deployer, nonce), models.KindAuxiliary, nil)
		if err != nil {
			return err
		}
		bindings.Bind(c.Name, common.HexToAddress(record.Address))
		result.Records = append(result.Records, record)
	}
	return nil
}

// create submits one creation at an owned nonce and persists the outcome.
// A rejected submission or a landing address off the prediction ends the
// run; both invalidate every later prediction.
func (uc *RunDeployment) create(ctx context.Context, plan *domain.Plan, spec *domain.ComponentSpec, bindings *domain.Bindings, chainID, nonce uint64, predicted common.Address, kind models.RecordKind, forwardRefs []string) (*models.Record, error) {
	args, err := bindings.ResolveAll(spec.Args)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", spec.Name, err)
	}
	artifact, err := uc.artifacts.Get(ctx, spec.Artifact)
	if err != nil {
		return nil, err
	}
	payload, err := uc.codec.BuildCreation(ctx, artifact, args)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", spec.Name, err)
	}

	rcpt, err := uc.ledger.SubmitCreation(ctx, &domain.Creation{
		Name:     spec.Name,
		Nonce:    nonce,
		Bytecode: payload,
	})
	if err != nil {
		return nil, &domain.CreationRejectedError{Component: spec.Name, Err: err}
	}
	if rcpt.Address != predicted {
		return nil, &domain.AddressMismatchError{
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
		Kind:        kind,
		Artifact:    spec.Artifact,
		Address:     rcpt.Address.Hex(),
		Predicted:   predicted.Hex(),
		Nonce:       nonce,
		Deployer:    bindings.Deployer.Hex(),
		ForwardRefs: forwardRefs,
		TxHash:      rcpt.TxHash.Hex(),
		BlockNumber: rcpt.BlockNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.registry.SaveRecord(ctx, record); err != nil {
		return nil, err
	}
	tx := transactionRecord(uc.config, plan.Graph, chainID, models.TxCreation, rcpt, "", "")
	if err := uc.registry.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return record, nil
}

// runHandover commits the transfer and, when the plan auto-accepts,
// fast-forwards the clock past the delay and accepts in the same run. On
// ledgers without time travel the transfer stays committed and the run
// finishes with a warning; the delay then passes in real time.
func (uc *RunDeployment) runHandover(ctx context.Context, plan *domain.Plan, result *RunDeploymentResult) error {
	committed, err := uc.handover.Run(ctx, HandoverParams{Plan: plan, Action: HandoverCommit})
	if committed != nil {
		result.Handover = committed.Transfer
	}
	if err != nil {
		return err
	}
	if !plan.Handover.AutoAccept {
		return nil
	}

	accepted, err := uc.handover.Run(ctx, HandoverParams{Plan: plan, Action: HandoverAccept, FastForward: true})
	if accepted != nil && accepted.Transfer != nil {
		result.Handover = accepted.Transfer
	}
	if err != nil {
		var early *domain.HandoverTooEarlyError
		if errors.As(err, &early) {
			msg := fmt.Sprintf("auto_accept deferred: %v", early)
			result.Warnings = append(result.Warnings, msg)
			uc.sink.Info("⚠️  " + msg)
			return nil
		}
		return err
	}
	return nil
}
