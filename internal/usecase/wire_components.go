package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// WireComponentsParams contains parameters for the wiring phase
type WireComponentsParams struct {
	PlanPath string

	// Plan short-circuits loading when the caller already holds one.
	Plan *domain.Plan

	// Only restricts submission to these wiring keys (target.method).
	// Empty means every pending call.
	Only []string
}

// WireComponentsResult contains the result of the wiring phase
type WireComponentsResult struct {
	Plan    *domain.Plan
	ChainID uint64

	// Submitted are the calls confirmed by this invocation, Skipped the
	// ones a previous invocation already confirmed.
	Submitted []*domain.WiringSpec
	Skipped   []*domain.WiringSpec
}

// WireComponents submits the plan's post-deploy configuration calls. Each
// call runs at most once per chain: calls already confirmed in the
// transaction registry are skipped, so an operator can resume a partially
// wired graph without double-submitting.
type WireComponents struct {
	config   *config.RuntimeConfig
	ledger   Ledger
	plans    PlanRepository
	codec    ArgumentCodec
	registry RecordRepository
	sink     ProgressSink
}

// NewWireComponents creates a new WireComponents use case
func NewWireComponents(
	cfg *config.RuntimeConfig,
	ledger Ledger,
	plans PlanRepository,
	codec ArgumentCodec,
	registry RecordRepository,
	sink ProgressSink,
) *WireComponents {
	return &WireComponents{
		config:   cfg,
		ledger:   ledger,
		plans:    plans,
		codec:    codec,
		registry: registry,
		sink:     sink,
	}
}

// Pending loads the plan and returns the wiring calls that have no
// confirmed submission yet.
func (uc *WireComponents) Pending(ctx context.Context, params WireComponentsParams) (*domain.Plan, []*domain.WiringSpec, error) {
	plan, err := loadValidatedPlan(ctx, uc.plans, params.Plan, params.PlanPath)
	if err != nil {
		return nil, nil, err
	}
	chainID, err := uc.ledger.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	pending, _, err := uc.split(ctx, plan, chainID)
	return plan, pending, err
}

// Run executes the wire components use case
func (uc *WireComponents) Run(ctx context.Context, params WireComponentsParams) (*WireComponentsResult, error) {
	plan, err := loadValidatedPlan(ctx, uc.plans, params.Plan, params.PlanPath)
	if err != nil {
		return nil, err
	}
	chainID, err := uc.ledger.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	pending, done, err := uc.split(ctx, plan, chainID)
	if err != nil {
		return nil, err
	}
	result := &WireComponentsResult{Plan: plan, ChainID: chainID, Skipped: done}

	queue, err := filterWiring(pending, done, params.Only)
	if err != nil {
		return result, err
	}
	if len(queue) == 0 {
		uc.sink.Info("No pending wiring calls")
		return result, nil
	}
	if uc.config.DryRun {
		uc.sink.Info(fmt.Sprintf("Dry run: %d wiring call(s) pending, none submitted", len(queue)))
		return result, nil
	}

	deployer, err := uc.ledger.Deployer(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to resolve deployer: %w", err)
	}
	bindings, err := recordedBindings(ctx, uc.registry, uc.config.Namespace, chainID, deployer, plan)
	if err != nil {
		return result, err
	}

	for i, w := range queue {
		uc.sink.OnProgress(ctx, ProgressEvent{
			Stage:   string(StageWiring),
			Current: i + 1,
			Total:   len(queue),
			Message: fmt.Sprintf("Wiring %s.%s", w.Target, w.Method),
			Spinner: true,
		})

		to, ok := bindings.Lookup(w.Target)
		if !ok {
			return result, fmt.Errorf("component %q has no recorded address on chain %d; run the plan first", w.Target, chainID)
		}
		args, err := bindings.ResolveAll(w.Args)
		if err != nil {
			return result, fmt.Errorf("wiring call %s: %w", w.Key(), err)
		}
		data, err := uc.codec.EncodeCall(ctx, w.Method, args)
		if err != nil {
			return result, fmt.Errorf("wiring call %s: %w", w.Key(), err)
		}

		rcpt, err := uc.ledger.SubmitCall(ctx, &domain.Call{To: to, Method: w.Method, Data: data})
		if err != nil {
			return result, &domain.WiringRejectedError{
				Target:    w.Target,
				Method:    w.Method,
				Remaining: len(queue) - i - 1,
				Err:       err,
			}
		}

		tx := transactionRecord(uc.config, plan.Graph, chainID, models.TxCall, rcpt, to.Hex(), w.Method)
		if err := uc.registry.SaveTransaction(ctx, tx); err != nil {
			return result, err
		}
		result.Submitted = append(result.Submitted, w)
	}

	return result, nil
}

// split partitions the plan's wiring into calls still pending and calls the
// transaction registry already shows confirmed against the target's
// recorded address.
func (uc *WireComponents) split(ctx context.Context, plan *domain.Plan, chainID uint64) (pending, done []*domain.WiringSpec, err error) {
	records, err := uc.registry.ListRecords(ctx, domain.RecordFilter{
		Namespace: uc.config.Namespace,
		Graph:     plan.Graph,
		ChainID:   chainID,
	})
	if err != nil {
		return nil, nil, err
	}
	addrOf := make(map[string]string, len(records))
	for _, r := range records {
		addrOf[r.Name] = r.Address
	}

	txs, err := uc.registry.ListTransactions(ctx, domain.TransactionFilter{
		Namespace: uc.config.Namespace,
		Graph:     plan.Graph,
		ChainID:   chainID,
	})
	if err != nil {
		return nil, nil, err
	}

	confirmed := make(map[string]bool)
	for _, tx := range txs {
		if tx.Kind != models.TxCall || tx.Status != models.TxConfirmed {
			continue
		}
		for _, w := range plan.Wiring {
			if tx.Method == w.Method && strings.EqualFold(tx.To, addrOf[w.Target]) {
				confirmed[w.Key()] = true
			}
		}
	}

	for _, w := range plan.Wiring {
		if confirmed[w.Key()] {
			done = append(done, w)
		} else {
			pending = append(pending, w)
		}
	}
	return pending, done, nil
}

// filterWiring applies the Only selection to the pending queue.
func filterWiring(pending, done []*domain.WiringSpec, only []string) ([]*domain.WiringSpec, error) {
	if len(only) == 0 {
		return pending, nil
	}
	byKey := make(map[string]*domain.WiringSpec, len(pending))
	for _, w := range pending {
		byKey[w.Key()] = w
	}
	doneKeys := make(map[string]bool, len(done))
	for _, w := range done {
		doneKeys[w.Key()] = true
	}

	var queue []*domain.WiringSpec
	for _, key := range only {
		w, ok := byKey[key]
		if !ok {
			if doneKeys[key] {
				continue
			}
			return nil, fmt.Errorf("no pending wiring call %q in the plan", key)
		}
		queue = append(queue, w)
	}
	return queue, nil
}
