package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gantry-org/gantry-cli/internal/domain/config"
)

// NetworkResolver turns network names from gantry.toml into resolved
// configurations. Chain ids are fetched over RPC once and remembered in
// a cache file under the data directory.
type NetworkResolver struct {
	projectRoot string
	gantry      *config.GantryConfig
	httpClient  *http.Client

	mu    sync.RWMutex
	cache *chainCache
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(projectRoot string, gantry *config.GantryConfig) *NetworkResolver {
	r := &NetworkResolver{
		projectRoot: projectRoot,
		gantry:      gantry,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
	r.cache = readCache(r.cachePath())
	return r
}

// Names lists every network a plan can target: the configured endpoints
// plus the built-in in-process ledger.
func (r *NetworkResolver) Names() []string {
	names := make([]string, 0, len(r.gantry.RPCEndpoints)+1)
	for name := range r.gantry.RPCEndpoints {
		names = append(names, name)
	}
	names = append(names, config.MemoryNetworkName)
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(networkName string) (*config.Network, error) {
	// The in-process ledger needs no RPC endpoint
	if networkName == config.MemoryNetworkName {
		return &config.Network{
			Name:    config.MemoryNetworkName,
			ChainID: config.MemoryChainID,
		}, nil
	}

	rpcURL, exists := r.gantry.RPCEndpoints[networkName]
	if !exists {
		return nil, fmt.Errorf("network '%s' not found in gantry.toml [rpc_endpoints], add %s = \"${%s}\" to configure it",
			networkName, networkName, GenerateEnvVarName(networkName))
	}
	if rpcURL == "" {
		return nil, r.emptyEndpointError(networkName)
	}

	chainID, ok := r.cachedChainID(networkName, rpcURL)
	if !ok {
		fetched, err := fetchChainID(r.httpClient, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chain ID for network %s: %w", networkName, err)
		}
		chainID = fetched
		r.remember(networkName, rpcURL, chainID)
	}

	return &config.Network{
		Name:        networkName,
		RPCURL:      rpcURL,
		ChainID:     chainID,
		ExplorerURL: explorers[chainID],
	}, nil
}

// emptyEndpointError distinguishes an unset environment variable from a
// blank entry by re-reading the raw manifest value.
func (r *NetworkResolver) emptyEndpointError(name string) error {
	if raw, err := LoadRawRPCEndpoints(r.projectRoot); err == nil {
		if envVar, ok := DetectEnvVar(raw[name]); ok {
			return fmt.Errorf("rpc url for network '%s' is empty: %s is not set", name, envVar)
		}
	}
	return fmt.Errorf("rpc url for network '%s' is empty in gantry.toml", name)
}

func (r *NetworkResolver) cachedChainID(name, rpcURL string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.cache.Networks[name]; ok {
		return id, true
	}
	id, ok := r.cache.RPCs[rpcURL]
	return id, ok
}

func (r *NetworkResolver) remember(name, rpcURL string, chainID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Networks[name] = chainID
	r.cache.RPCs[rpcURL] = chainID
	r.cache.UpdatedAt = time.Now()
	// Persisting is best effort, the cache only saves round trips.
	_ = r.cache.save(r.cachePath())
}

func (r *NetworkResolver) cachePath() string {
	return filepath.Join(r.projectRoot, ".gantry", "cache", "chainIds.json")
}

// fetchChainID asks the endpoint for eth_chainId.
func fetchChainID(client *http.Client, rpcURL string) (uint64, error) {
	const payload = `{"jsonrpc":"2.0","method":"eth_chainId","params":[],"id":1}`

	resp, err := client.Post(rpcURL, "application/json", strings.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	var reply struct {
		Result string `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return 0, fmt.Errorf("malformed rpc response: %w", err)
	}
	if reply.Error != nil {
		return 0, fmt.Errorf("rpc error: %s", reply.Error.Message)
	}
	if reply.Result == "" {
		return 0, fmt.Errorf("empty chain ID response")
	}

	id, err := strconv.ParseUint(strings.TrimPrefix(reply.Result, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse chain ID %q: %w", reply.Result, err)
	}
	return id, nil
}

// explorers maps well-known chain ids to their block explorers.
var explorers = map[uint64]string{
	1:        "https://etherscan.io",
	10:       "https://optimistic.etherscan.io",
	56:       "https://bscscan.com",
	137:      "https://polygonscan.com",
	8453:     "https://basescan.org",
	42161:    "https://arbiscan.io",
	11155111: "https://sepolia.etherscan.io",
}

// chainCache is the persisted name and URL to chain id index.
type chainCache struct {
	Networks  map[string]uint64 `json:"networks"`
	RPCs      map[string]uint64 `json:"rpcs"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func newChainCache() *chainCache {
	return &chainCache{
		Networks: make(map[string]uint64),
		RPCs:     make(map[string]uint64),
	}
}

// readCache loads the cache file, starting fresh when it is missing or
// unreadable.
func readCache(path string) *chainCache {
	data, err := os.ReadFile(path)
	if err != nil {
		return newChainCache()
	}
	c := newChainCache()
	if err := json.Unmarshal(data, c); err != nil {
		return newChainCache()
	}
	return c
}

func (c *chainCache) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
