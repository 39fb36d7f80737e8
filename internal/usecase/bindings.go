package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// loadValidatedPlan returns the given plan, or loads it from path, and
// refuses to hand out one that fails validation. Every submitting use case
// goes through here so nothing runs off an unchecked plan.
func loadValidatedPlan(ctx context.Context, plans PlanRepository, plan *domain.Plan, path string) (*domain.Plan, error) {
	if plan == nil {
		var err error
		plan, err = plans.Load(ctx, path)
		if err != nil {
			return nil, err
		}
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// recordedBindings builds the resolution context for a plan from the
// registry: the deployer, the plan params, and every plan entry that
// already has a live address on this chain.
func recordedBindings(ctx context.Context, repo RecordRepository, namespace string, chainID uint64, deployer common.Address, plan *domain.Plan) (*domain.Bindings, error) {
	b := domain.NewBindings(deployer, plan.Params)
	records, err := repo.ListRecords(ctx, domain.RecordFilter{
		Namespace: namespace,
		Graph:     plan.Graph,
		ChainID:   chainID,
	})
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if common.IsHexAddress(r.Address) {
			b.Bind(r.Name, common.HexToAddress(r.Address))
		}
	}
	return b, nil
}

// resolveAddress resolves a plan value that must come out as an address:
// an @name reference, a builtin like $deployer, or a hex literal.
func resolveAddress(b *domain.Bindings, s string) (common.Address, error) {
	v, err := b.Resolve(domain.Arg(s))
	if err != nil {
		return common.Address{}, err
	}
	if v.IsList() {
		return common.Address{}, fmt.Errorf("%q resolves to a list, expected an address", s)
	}
	if !common.IsHexAddress(v.Scalar) {
		return common.Address{}, fmt.Errorf("%q resolves to %q: %w", s, v.Scalar, domain.ErrInvalidAddress)
	}
	return common.HexToAddress(v.Scalar), nil
}
