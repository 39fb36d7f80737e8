package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// PredictAddressesParams contains parameters for predicting addresses
type PredictAddressesParams struct {
	PlanPath string

	// StartNonce overrides the nonce read from the ledger when set.
	StartNonce *uint64
}

// PredictAddressesResult is the full address table a run of the plan would
// produce, given the deployer submits nothing else in between.
type PredictAddressesResult struct {
	Plan        *domain.Plan
	ChainID     uint64
	Deployer    common.Address
	StartNonce  uint64
	Predictions []domain.Prediction
}

// PredictAddresses is the use case for computing the address table of a
// plan without submitting anything
type PredictAddresses struct {
	ledger Ledger
	plans  PlanRepository
	sink   ProgressSink
}

// NewPredictAddresses creates a new PredictAddresses use case
func NewPredictAddresses(ledger Ledger, plans PlanRepository, sink ProgressSink) *PredictAddresses {
	return &PredictAddresses{
		ledger: ledger,
		plans:  plans,
		sink:   sink,
	}
}

// Run executes the predict addresses use case
func (uc *PredictAddresses) Run(ctx context.Context, params PredictAddressesParams) (*PredictAddressesResult, error) {
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

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   string(StagePredicting),
		Message: fmt.Sprintf("Predicting %d addresses for %s", len(plan.Components), deployer.Hex()),
		Spinner: true,
	})

	var start uint64
	if params.StartNonce != nil {
		start = *params.StartNonce
	} else {
		start, err = uc.ledger.Nonce(ctx, deployer)
		if err != nil {
			return nil, fmt.Errorf("failed to read deployer nonce: %w", err)
		}
	}

	return &PredictAddressesResult{
		Plan:        plan,
		ChainID:     chainID,
		Deployer:    deployer,
		StartNonce:  start,
		Predictions: domain.PredictSequence(plan, deployer, start),
	}, nil
}
