package config

import "time"

// RuntimeConfig is the fully resolved configuration for one command
// invocation: flags, environment, the local config file and gantry.toml
// merged in that order.
type RuntimeConfig struct {
	ProjectRoot string
	DataDir     string

	// Namespace scopes registry records. Network stays nil until a
	// command selects one. Plan is the sticky default plan path.
	Namespace string
	Network   *Network
	Plan      string

	Debug          bool
	NonInteractive bool
	JSON           bool
	DryRun         bool
	Timeout        time.Duration

	// ConfigSource names where the merged settings came from, shown by
	// config show.
	ConfigSource string

	// Gantry is the parsed manifest with defaults applied.
	Gantry *GantryConfig
}

// Network is a resolved deployment target.
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// IsMemory reports whether the network is the in-process ledger rather
// than an RPC endpoint.
func (n *Network) IsMemory() bool {
	return n != nil && n.Name == MemoryNetworkName
}

// MemoryNetworkName selects the in-process ledger. It needs no RPC URL
// and supports time travel unconditionally.
const MemoryNetworkName = "memory"

// MemoryChainID is the chain id the in-process ledger reports. Same id
// anvil uses, so plan files work against either.
const MemoryChainID uint64 = 31337
