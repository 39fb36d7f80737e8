package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Shared hand-rolled fakes for the orchestration tests. The submitting use
// cases are exercised against the real memory ledger and feed hub; these
// fakes stand in for the filesystem-backed ports around them.

// fakePlans hands out one fixed plan for any path.
type fakePlans struct {
	plan *domain.Plan
	err  error
}

func (f *fakePlans) Load(ctx context.Context, path string) (*domain.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

// fakeArtifacts serves artifacts from a map keyed by reference.
type fakeArtifacts struct {
	artifacts map[string]*models.Artifact
}

func (f *fakeArtifacts) Get(ctx context.Context, ref string) (*models.Artifact, error) {
	a, ok := f.artifacts[ref]
	if !ok {
		return nil, fmt.Errorf("artifact %q: %w", ref, domain.ErrNotFound)
	}
	return a, nil
}

// fakeCodec produces deterministic payloads without touching real ABI
// encoding; the memory ledger never executes them anyway.
type fakeCodec struct{}

func (fakeCodec) BuildCreation(ctx context.Context, artifact *models.Artifact, args []domain.ArgValue) ([]byte, error) {
	code, err := artifact.CreationCode()
	if err != nil {
		return nil, err
	}
	return append(code, byte(len(args))), nil
}

func (fakeCodec) EncodeCall(ctx context.Context, method string, args []domain.ArgValue) ([]byte, error) {
	return []byte(method), nil
}

// fakeRegistry is an in-memory RecordRepository with the real filter
// semantics, so tests can assert on what a run persisted.
type fakeRegistry struct {
	records   map[string]*models.Record
	order     []string
	txs       []*models.Transaction
	handovers map[string]*domain.OwnershipTransfer
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		records:   make(map[string]*models.Record),
		handovers: make(map[string]*domain.OwnershipTransfer),
	}
}

func (f *fakeRegistry) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (f *fakeRegistry) FindRecord(ctx context.Context, namespace string, chainID uint64, name string) (*models.Record, error) {
	return f.GetRecord(ctx, fmt.Sprintf("%s/%d/%s", namespace, chainID, name))
}

func (f *fakeRegistry) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*models.Record, error) {
	var out []*models.Record
	for _, id := range f.order {
		if r := f.records[id]; filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistry) SaveRecord(ctx context.Context, record *models.Record) error {
	id := record.ID()
	if _, exists := f.records[id]; !exists {
		f.order = append(f.order, id)
	}
	f.records[id] = record
	return nil
}

func (f *fakeRegistry) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range f.txs {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeRegistry) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeRegistry) GetHandover(ctx context.Context, id string) (*domain.OwnershipTransfer, error) {
	t, ok := f.handovers[id]
	if !ok {
		return nil, fmt.Errorf("handover %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

func (f *fakeRegistry) SaveHandover(ctx context.Context, transfer *domain.OwnershipTransfer) error {
	f.handovers[transfer.ID()] = transfer
	return nil
}

// progressRecorder captures everything the use cases report.
type progressRecorder struct {
	events []usecase.ProgressEvent
	infos  []string
	errs   []string
}

func (p *progressRecorder) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	p.events = append(p.events, event)
}

func (p *progressRecorder) Info(message string)  { p.infos = append(p.infos, message) }
func (p *progressRecorder) Error(message string) { p.errs = append(p.errs, message) }

// fakeSelector resolves every ambiguity to the first candidate.
type fakeSelector struct {
	prompt string
}

func (f *fakeSelector) SelectRecord(ctx context.Context, records []*models.Record, prompt string) (*models.Record, error) {
	f.prompt = prompt
	return records[0], nil
}

// newOwnerAddr receives ownership in the handover fixtures.
const newOwnerAddr = "0x000000000000000000000000000000000000bEEF"

// testConfig is the runtime configuration the orchestration tests run
// under: default namespace, no network selected, stock gantry.toml
// defaults.
func testConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		ProjectRoot: "/tmp/gantry-test",
		Namespace:   "default",
		Gantry:      config.DefaultGantryConfig(),
	}
}

// lendingPlan is the canonical fixture: a mock feed to warm, a broken
// two-cycle between Vault and Controller that only prediction can
// satisfy, a post-sequence lens, two wiring calls and a delayed handover.
func lendingPlan() *domain.Plan {
	return &domain.Plan{
		Graph: "lending-core",
		Params: map[string]string{
			"fee_bps": "25",
		},
		Oracles: []*domain.OracleSpec{
			{Name: "eth-usd", Artifact: "MockFeed", Price: "1800"},
		},
		Components: []*domain.ComponentSpec{
			{Name: "Vault", Artifact: "Vault", Args: []domain.ArgValue{domain.Arg("@Controller"), domain.Arg("@eth-usd")}},
			{Name: "Controller", Artifact: "Controller", Args: []domain.ArgValue{domain.Arg("@Vault"), domain.Arg("${fee_bps}")}},
			{Name: "Router", Artifact: "Router", Args: []domain.ArgValue{domain.Arg("@Controller"), domain.Arg(domain.RefDeployer)}},
		},
		Auxiliary: []*domain.ComponentSpec{
			{Name: "Lens", Artifact: "Lens", Args: []domain.ArgValue{domain.Arg("@Router")}},
		},
		Wiring: []*domain.WiringSpec{
			{Target: "Vault", Method: "setController(address)", Args: []domain.ArgValue{domain.Arg("@Controller")}},
			{Target: "Controller", Method: "setFeed(address)", Args: []domain.ArgValue{domain.Arg("@eth-usd")}},
		},
		Handover: &domain.HandoverSpec{
			Authority: "Controller",
			NewOwner:  newOwnerAddr,
			MinDelay:  domain.Duration(time.Hour),
		},
	}
}

// lendingArtifacts compiles nothing: just enough bytecode per artifact
// that creation payloads are non-empty and distinct.
func lendingArtifacts() *fakeArtifacts {
	build := func(name, object string) *models.Artifact {
		return &models.Artifact{
			Name:     name,
			ABI:      []byte(`[]`),
			Bytecode: models.BytecodeObject{Object: object},
		}
	}
	return &fakeArtifacts{artifacts: map[string]*models.Artifact{
		"MockFeed":   build("MockFeed", "0x6080aa"),
		"Vault":      build("Vault", "0x6080bb"),
		"Controller": build("Controller", "0x6080cc"),
		"Router":     build("Router", "0x6080dd"),
		"Lens":       build("Lens", "0x6080ee"),
	}}
}
