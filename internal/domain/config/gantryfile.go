package config

import (
	"time"

	"github.com/gantry-org/gantry-cli/internal/domain"
)

// GantryConfig represents gantry.toml, the per-project file that marks
// the project root and declares networks, artifact location and the
// deployer account.
type GantryConfig struct {
	// Artifacts is the compiler output directory holding one
	// <Contract>.sol/<Contract>.json per artifact.
	Artifacts string `toml:"artifacts,omitempty"`

	// Plans is where relative plan paths are resolved from.
	Plans string `toml:"plans,omitempty"`

	// RPCEndpoints maps network names to RPC URLs. Values may be
	// ${ENV_VAR} references resolved at load time.
	RPCEndpoints map[string]string `toml:"rpc_endpoints,omitempty"`

	Deployer DeployerConfig `toml:"deployer,omitempty"`
	Warmup   WarmupConfig   `toml:"warmup,omitempty"`
	Handover HandoverConfig `toml:"handover,omitempty"`
}

// DeployerConfig names the signing account for submissions.
type DeployerConfig struct {
	// KeyEnv is the environment variable holding the hex private key.
	KeyEnv string `toml:"key_env,omitempty"` //nolint:gosec // names an env var, not a literal secret

	// GasLimit caps each transaction; 0 means estimate per call.
	GasLimit uint64 `toml:"gas_limit,omitempty"`
}

// WarmupConfig sets project-wide oracle warm-up defaults. Plan entries
// override per feed.
type WarmupConfig struct {
	Rounds int             `toml:"rounds,omitempty"`
	Gap    domain.Duration `toml:"gap,omitempty"`
}

// HandoverConfig sets the project-wide handover delay default.
type HandoverConfig struct {
	MinDelay domain.Duration `toml:"min_delay,omitempty"`
}

const (
	// DefaultDeployerKeyEnv is used when gantry.toml names no key env.
	DefaultDeployerKeyEnv = "GANTRY_DEPLOYER_KEY" //nolint:gosec // env var name

	DefaultWarmupRounds = 3
	DefaultWarmupGap    = 10 * time.Second

	DefaultHandoverDelay = 72 * time.Hour
)

// DefaultGantryConfig returns the zero-file configuration.
func DefaultGantryConfig() *GantryConfig {
	cfg := &GantryConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields after a TOML decode.
func (c *GantryConfig) ApplyDefaults() {
	if c.Artifacts == "" {
		c.Artifacts = "out"
	}
	if c.Plans == "" {
		c.Plans = "plans"
	}
	if c.RPCEndpoints == nil {
		c.RPCEndpoints = map[string]string{}
	}
	if c.Deployer.KeyEnv == "" {
		c.Deployer.KeyEnv = DefaultDeployerKeyEnv
	}
	if c.Warmup.Rounds == 0 {
		c.Warmup.Rounds = DefaultWarmupRounds
	}
	if c.Warmup.Gap.Std() == 0 {
		c.Warmup.Gap = domain.Duration(DefaultWarmupGap)
	}
	if c.Handover.MinDelay.Std() == 0 {
		c.Handover.MinDelay = domain.Duration(DefaultHandoverDelay)
	}
}
