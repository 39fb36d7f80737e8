package usecase

import (
	"context"
	"errors"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// ValidatePlanParams contains parameters for validating a plan
type ValidatePlanParams struct {
	PlanPath string
}

// ValidatePlanResult contains the outcome of a validation pass. Problems is
// empty for a valid plan.
type ValidatePlanResult struct {
	Plan     *domain.Plan
	Problems []string

	// ForwardRefs maps each component to the same-or-later entries its
	// constructor references, the ones only address prediction can satisfy.
	ForwardRefs map[string][]string
}

// Valid reports whether the plan passed.
func (r *ValidatePlanResult) Valid() bool { return len(r.Problems) == 0 }

// ValidatePlan is the use case for checking a plan before any transaction
// is submitted
type ValidatePlan struct {
	plans PlanRepository
}

// NewValidatePlan creates a new ValidatePlan use case
func NewValidatePlan(plans PlanRepository) *ValidatePlan {
	return &ValidatePlan{plans: plans}
}

// Run executes the validate plan use case
func (uc *ValidatePlan) Run(ctx context.Context, params ValidatePlanParams) (*ValidatePlanResult, error) {
	plan, err := uc.plans.Load(ctx, params.PlanPath)
	if err != nil {
		return nil, err
	}

	result := &ValidatePlanResult{Plan: plan}

	if err := plan.Validate(); err != nil {
		var verr *domain.PlanValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		result.Problems = verr.Problems
		return result, nil
	}

	result.ForwardRefs = make(map[string][]string)
	for i, c := range plan.Components {
		if refs := plan.ForwardRefs(i); len(refs) > 0 {
			result.ForwardRefs[c.Name] = refs
		}
	}
	return result, nil
}
