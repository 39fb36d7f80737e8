package usecase

import (
	"context"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
)

// RecordRepository handles persistence of deployment records, submitted
// transactions and handover state
type RecordRepository interface {
	GetRecord(ctx context.Context, id string) (*models.Record, error)
	FindRecord(ctx context.Context, namespace string, chainID uint64, name string) (*models.Record, error)
	ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*models.Record, error)
	SaveRecord(ctx context.Context, record *models.Record) error
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	GetHandover(ctx context.Context, id string) (*domain.OwnershipTransfer, error)
	SaveHandover(ctx context.Context, transfer *domain.OwnershipTransfer) error
}

// PlanRepository loads deployment plans
type PlanRepository interface {
	Load(ctx context.Context, path string) (*domain.Plan, error)
}

// ArtifactRepository provides access to compiled artifacts by reference,
// either a bare name or path/File.sol:Name
type ArtifactRepository interface {
	Get(ctx context.Context, ref string) (*models.Artifact, error)
}

// Ledger is the execution environment submissions go to: a chain behind
// JSON-RPC or the in-process fake. Creations carry their nonce; the ledger
// must reject a creation whose nonce it does not expect rather than
// renumber it, because every downstream address prediction depends on it.
type Ledger interface {
	ChainID(ctx context.Context) (uint64, error)
	Deployer(ctx context.Context) (common.Address, error)
	Nonce(ctx context.Context, account common.Address) (uint64, error)
	SubmitCreation(ctx context.Context, creation *domain.Creation) (*domain.Receipt, error)
	SubmitCall(ctx context.Context, call *domain.Call) (*domain.Receipt, error)
	CallView(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	CurrentTime(ctx context.Context) (time.Time, error)
	// AdvanceTime moves the ledger clock forward. Returns
	// domain.ErrTimeTravelUnsupported on ledgers whose clock is real.
	AdvanceTime(ctx context.Context, d time.Duration) error
}

// ArgumentCodec turns resolved plan arguments into transaction payloads
type ArgumentCodec interface {
	// BuildCreation returns creation bytecode with packed constructor args
	// appended, coercing each argument against the artifact's ABI.
	BuildCreation(ctx context.Context, artifact *models.Artifact, args []domain.ArgValue) ([]byte, error)
	// EncodeCall encodes a human-readable signature like
	// setPriceFeed(address) plus arguments into calldata.
	EncodeCall(ctx context.Context, method string, args []domain.ArgValue) ([]byte, error)
}

// OracleFeed is one price feed the warm-up reads and writes
type OracleFeed interface {
	LatestRound(ctx context.Context) (domain.OracleRound, error)
	// PublishRound shifts prev into the feed's previous-round slots and
	// publishes next as the latest observation.
	PublishRound(ctx context.Context, prev, next domain.OracleRound) error
}

// OracleFeedConnector binds a feed address on the ledger
type OracleFeedConnector interface {
	Connect(address common.Address) OracleFeed
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ExecutionStage represents a phase of a deployment run
type ExecutionStage string

const (
	StageValidating ExecutionStage = "Validating"
	StageAligning   ExecutionStage = "Aligning"
	StageWarmup     ExecutionStage = "Warmup"
	StagePredicting ExecutionStage = "Predicting"
	StageCreating   ExecutionStage = "Creating"
	StageWiring     ExecutionStage = "Wiring"
	StageAuxiliary  ExecutionStage = "Auxiliary"
	StageHandover   ExecutionStage = "Handover"
	StageCompleted  ExecutionStage = "Completed"
)

// RecordSelector handles interactive selection of records
type RecordSelector interface {
	SelectRecord(ctx context.Context, records []*models.Record, prompt string) (*models.Record, error)
}

// NodeManager manages local dev node instances
type NodeManager interface {
	Start(ctx context.Context, instance *domain.NodeInstance) error
	Stop(ctx context.Context, instance *domain.NodeInstance) error
	GetStatus(ctx context.Context, instance *domain.NodeInstance) (*domain.NodeStatus, error)
	StreamLogs(ctx context.Context, instance *domain.NodeInstance, writer io.Writer) error
}

// NetworkResolver resolves network names against gantry.toml
type NetworkResolver interface {
	Names() []string
	Resolve(name string) (*config.Network, error)
}

// LocalConfigStore persists the sticky local context
type LocalConfigStore interface {
	Exists(ctx context.Context) (bool, error)
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, cfg *config.LocalConfig) error
	GetPath(ctx context.Context) string
}
