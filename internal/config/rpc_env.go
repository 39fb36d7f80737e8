package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// envRefPattern matches values that are exactly one ${VAR} reference.
var envRefPattern = regexp.MustCompile(`^\$\{([A-Za-z_]\w*)\}$`)

// DetectEnvVar reports whether a raw endpoint value is a pure ${VAR}
// reference and returns the variable name.
func DetectEnvVar(raw string) (string, bool) {
	if m := envRefPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

// GenerateEnvVarName derives the conventional variable name for a
// network's RPC URL: celo-sepolia becomes CELO_SEPOLIA_RPC_URL.
func GenerateEnvVarName(network string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(network)) + "_RPC_URL"
}

// LoadRawRPCEndpoints reads the [rpc_endpoints] table without expanding
// environment variables, so callers can tell an unset variable apart
// from a hardcoded URL.
func LoadRawRPCEndpoints(projectRoot string) (map[string]string, error) {
	var raw struct {
		RPCEndpoints map[string]string `toml:"rpc_endpoints"`
	}
	if _, err := toml.DecodeFile(filepath.Join(projectRoot, manifestName), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestName, err)
	}
	return raw.RPCEndpoints, nil
}
