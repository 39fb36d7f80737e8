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

// HandoverAction selects which half of the two-phase transfer to perform.
type HandoverAction string

const (
	HandoverCommit HandoverAction = "commit"
	HandoverAccept HandoverAction = "accept"
	HandoverStatus HandoverAction = "status"
)

// HandoverParams contains parameters for the handover use case
type HandoverParams struct {
	PlanPath string

	// Plan short-circuits loading when the caller already holds one.
	Plan *domain.Plan

	Action HandoverAction

	// FastForward advances the ledger clock past the delay before
	// accepting. Only honored on ledgers that support time travel.
	FastForward bool
}

// HandoverResult contains the result of a handover action
type HandoverResult struct {
	Action    HandoverAction
	Plan      *domain.Plan
	ChainID   uint64
	Authority string
	Address   string

	Transfer *domain.OwnershipTransfer

	// Replaced is the pending owner a re-commit overwrote, if any.
	Replaced string
	TxHash   string
	Now      time.Time
}

// HandoverOwnership drives the two-phase, delayed transfer of the authority
// component's administrative control. Commit proposes the new owner on the
// ledger and records the proposal; accept completes it once the mandatory
// delay has elapsed, signed by the incoming owner.
type HandoverOwnership struct {
	config   *config.RuntimeConfig
	ledger   Ledger
	plans    PlanRepository
	codec    ArgumentCodec
	registry RecordRepository
	sink     ProgressSink
}

// NewHandoverOwnership creates a new HandoverOwnership use case
func NewHandoverOwnership(
	cfg *config.RuntimeConfig,
	ledger Ledger,
	plans PlanRepository,
	codec ArgumentCodec,
	registry RecordRepository,
	sink ProgressSink,
) *HandoverOwnership {
	return &HandoverOwnership{
		config:   cfg,
		ledger:   ledger,
		plans:    plans,
		codec:    codec,
		registry: registry,
		sink:     sink,
	}
}

// Run executes the handover use case
func (uc *HandoverOwnership) Run(ctx context.Context, params HandoverParams) (*HandoverResult, error) {
	plan, err := loadValidatedPlan(ctx, uc.plans, params.Plan, params.PlanPath)
	if err != nil {
		return nil, err
	}
	if plan.Handover == nil {
		return nil, fmt.Errorf("plan %s has no handover section", plan.Graph)
	}
	chainID, err := uc.ledger.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	switch params.Action {
	case HandoverCommit:
		return uc.commit(ctx, plan, chainID)
	case HandoverAccept:
		return uc.accept(ctx, plan, chainID, params.FastForward)
	case HandoverStatus:
		return uc.status(ctx, plan, chainID)
	default:
		return nil, fmt.Errorf("unknown handover action: %s", params.Action)
	}
}

func (uc *HandoverOwnership) commit(ctx context.Context, plan *domain.Plan, chainID uint64) (*HandoverResult, error) {
	h := plan.Handover
	deployer, err := uc.ledger.Deployer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve deployer: %w", err)
	}

	bindings, err := recordedBindings(ctx, uc.registry, uc.config.Namespace, chainID, deployer, plan)
	if err != nil {
		return nil, err
	}
	authority, ok := bindings.Lookup(h.Authority)
	if !ok {
		return nil, fmt.Errorf("authority %q has no recorded address on chain %d; run the plan first", h.Authority, chainID)
	}
	newOwner, err := resolveAddress(bindings, h.NewOwner)
	if err != nil {
		return nil, fmt.Errorf("handover new_owner: %w", err)
	}
	minDelay := h.MinDelay.Std()
	if minDelay == 0 {
		minDelay = uc.config.Gantry.Handover.MinDelay.Std()
	}

	result := &HandoverResult{
		Action:    HandoverCommit,
		Plan:      plan,
		ChainID:   chainID,
		Authority: h.Authority,
		Address:   authority.Hex(),
	}

	transfer, err := uc.registry.GetHandover(ctx, domain.HandoverID(uc.config.Namespace, chainID, h.Authority))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		transfer = domain.NewOwnershipTransfer(uc.config.Namespace, plan.Graph, chainID, h.Authority, authority.Hex(), deployer.Hex(), minDelay)
	case err != nil:
		return nil, err
	default:
		if transfer.State == domain.HandoverAccepted {
			result.Transfer = transfer
			return result, domain.ErrHandoverAccepted
		}
		transfer.Address = authority.Hex()
		transfer.MinDelay = minDelay
	}
	result.Transfer = transfer

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageHandover),
		Message: fmt.Sprintf("Committing ownership of %s to %s (delay %s)", h.Authority, newOwner.Hex(), minDelay),
		Spinner: true,
	})

	data, err := uc.codec.EncodeCall(ctx, domain.MethodCommitOwnership, []domain.ArgValue{domain.Arg(newOwner.Hex())})
	if err != nil {
		return result, err
	}
	rcpt, err := uc.ledger.SubmitCall(ctx, &domain.Call{To: authority, Method: domain.MethodCommitOwnership, Data: data})
	if err != nil {
		return result, fmt.Errorf("commit rejected by ledger: %w", err)
	}
	now, err := uc.ledger.CurrentTime(ctx)
	if err != nil {
		return result, err
	}

	replaced, err := transfer.Commit(newOwner.Hex(), now)
	if err != nil {
		return result, err
	}
	if replaced != "" {
		uc.sink.Info(fmt.Sprintf("⚠️  Replacing pending owner %s; the delay restarts", replaced))
	}

	if err := uc.registry.SaveHandover(ctx, transfer); err != nil {
		return result, err
	}
	tx := transactionRecord(uc.config, plan.Graph, chainID, models.TxCall, rcpt, authority.Hex(), domain.MethodCommitOwnership)
	if err := uc.registry.SaveTransaction(ctx, tx); err != nil {
		return result, err
	}

	result.Replaced = replaced
	result.TxHash = rcpt.TxHash.Hex()
	result.Now = now
	return result, nil
}

func (uc *HandoverOwnership) accept(ctx context.Context, plan *domain.Plan, chainID uint64, fastForward bool) (*HandoverResult, error) {
	h := plan.Handover
	result := &HandoverResult{
		Action:    HandoverAccept,
		Plan:      plan,
		ChainID:   chainID,
		Authority: h.Authority,
	}

	transfer, err := uc.registry.GetHandover(ctx, domain.HandoverID(uc.config.Namespace, chainID, h.Authority))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return result, domain.ErrHandoverNotCommitted
		}
		return result, err
	}
	result.Transfer = transfer
	result.Address = transfer.Address

	now, err := uc.ledger.CurrentTime(ctx)
	if err != nil {
		return result, err
	}
	result.Now = now

	if err := transfer.CanAccept(now); err != nil {
		var early *domain.HandoverTooEarlyError
		if !errors.As(err, &early) || !fastForward {
			return result, err
		}
		// One second past ready, so the ledger-side check cannot race the
		// boundary.
		wait := early.ReadyAt.Sub(now) + time.Second
		uc.sink.Info(fmt.Sprintf("⏩ Advancing ledger clock by %s to pass the handover delay", wait))
		if ffErr := uc.ledger.AdvanceTime(ctx, wait); ffErr != nil {
			if errors.Is(ffErr, domain.ErrTimeTravelUnsupported) {
				return result, err
			}
			return result, ffErr
		}
		if now, err = uc.ledger.CurrentTime(ctx); err != nil {
			return result, err
		}
		result.Now = now
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StageHandover),
		Message: fmt.Sprintf("Accepting ownership of %s as %s", h.Authority, transfer.PendingOwner),
		Spinner: true,
	})

	data, err := uc.codec.EncodeCall(ctx, domain.MethodAcceptOwnership, nil)
	if err != nil {
		return result, err
	}
	// The accept is signed by the incoming owner, not the deployer.
	call := &domain.Call{
		To:     common.HexToAddress(transfer.Address),
		Method: domain.MethodAcceptOwnership,
		Data:   data,
		Sender: common.HexToAddress(transfer.PendingOwner),
	}
	rcpt, err := uc.ledger.SubmitCall(ctx, call)
	if err != nil {
		return result, fmt.Errorf("accept rejected by ledger: %w", err)
	}

	if err := transfer.Accept(now); err != nil {
		return result, err
	}
	if err := uc.registry.SaveHandover(ctx, transfer); err != nil {
		return result, err
	}
	tx := transactionRecord(uc.config, plan.Graph, chainID, models.TxCall, rcpt, transfer.Address, domain.MethodAcceptOwnership)
	if err := uc.registry.SaveTransaction(ctx, tx); err != nil {
		return result, err
	}

	result.TxHash = rcpt.TxHash.Hex()
	uc.sink.Info(fmt.Sprintf("✅ Ownership of %s transferred to %s", h.Authority, transfer.CurrentOwner))
	return result, nil
}

func (uc *HandoverOwnership) status(ctx context.Context, plan *domain.Plan, chainID uint64) (*HandoverResult, error) {
	h := plan.Handover
	result := &HandoverResult{
		Action:    HandoverStatus,
		Plan:      plan,
		ChainID:   chainID,
		Authority: h.Authority,
	}

	now, err := uc.ledger.CurrentTime(ctx)
	if err != nil {
		return nil, err
	}
	result.Now = now

	transfer, err := uc.registry.GetHandover(ctx, domain.HandoverID(uc.config.Namespace, chainID, h.Authority))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Nothing committed yet; the renderer shows the uncommitted state.
			return result, nil
		}
		return nil, err
	}
	result.Transfer = transfer
	result.Address = transfer.Address
	return result, nil
}
