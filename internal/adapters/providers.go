package adapters

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/gantry-org/gantry-cli/internal/adapters/abi"
	"github.com/gantry-org/gantry-cli/internal/adapters/artifacts"
	"github.com/gantry-org/gantry-cli/internal/adapters/fs"
	"github.com/gantry-org/gantry-cli/internal/adapters/interactive"
	"github.com/gantry-org/gantry-cli/internal/adapters/ledger"
	"github.com/gantry-org/gantry-cli/internal/adapters/node"
	"github.com/gantry-org/gantry-cli/internal/adapters/oracle"
	"github.com/gantry-org/gantry-cli/internal/adapters/planfile"
	"github.com/gantry-org/gantry-cli/internal/adapters/progress"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// ProvideLedger selects the ledger implementation for the run: the
// in-process ledger for the memory network and the RPC adapter for
// everything else. No selected network also maps to memory, so commands
// that never submit stay constructible; commands that do submit require
// a network up front in the CLI layer.
func ProvideLedger(cfg *config.RuntimeConfig, log *slog.Logger) usecase.Ledger {
	if cfg.Network == nil || cfg.Network.IsMemory() {
		return ledger.NewMemory()
	}
	return ledger.NewEVM(cfg, log)
}

// ProvideOracleConnector pairs the feed connector with the ledger: the
// in-memory hub when submissions are only logged, the on-chain reader
// and writer otherwise.
func ProvideOracleConnector(cfg *config.RuntimeConfig, l usecase.Ledger) usecase.OracleFeedConnector {
	if cfg.Network == nil || cfg.Network.IsMemory() {
		return oracle.NewHub()
	}
	return oracle.NewConnector(l)
}

// ProvideProgressSink keeps live terminal output away from JSON and
// non-interactive runs.
func ProvideProgressSink(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return usecase.NopProgress{}
	}
	return progress.NewReporter()
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewRegistryStore,
	wire.Bind(new(usecase.RecordRepository), new(*fs.RegistryStore)),

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),
)

// PlanSet provides plan and artifact loading
var PlanSet = wire.NewSet(
	planfile.NewRepository,
	wire.Bind(new(usecase.PlanRepository), new(*planfile.Repository)),

	artifacts.NewRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.Repository)),

	abi.NewCodec,
	wire.Bind(new(usecase.ArgumentCodec), new(*abi.Codec)),
)

// LedgerSet provides the execution environment
var LedgerSet = wire.NewSet(
	ProvideLedger,
	ProvideOracleConnector,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelector,
	wire.Bind(new(usecase.RecordSelector), new(*interactive.Selector)),
)

// NodeSet provides local dev node management
var NodeSet = wire.NewSet(
	node.NewAnvilManager,
	wire.Bind(new(usecase.NodeManager), new(*node.AnvilManager)),
)

// ProgressSet provides progress reporting
var ProgressSet = wire.NewSet(
	ProvideProgressSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	PlanSet,
	LedgerSet,
	InteractiveSet,
	NodeSet,
	ProgressSet,
)
