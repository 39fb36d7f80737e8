package config

import "strings"

// LocalConfig is the sticky per-checkout context stored under the data
// directory. Values set here become the defaults for every command until
// changed or removed.
type LocalConfig struct {
	Namespace string `json:"namespace"`
	Network   string `json:"network"`
	Plan      string `json:"plan,omitempty"`
}

// ConfigKey identifies one settable field of LocalConfig.
type ConfigKey string

const (
	ConfigKeyNamespace ConfigKey = "namespace"
	ConfigKeyNetwork   ConfigKey = "network"
	ConfigKeyPlan      ConfigKey = "plan"
)

// DefaultLocalConfig returns the defaults that apply before any config set.
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{Namespace: "default"}
}

// ValidConfigKeys lists the settable keys in display order.
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{ConfigKeyNamespace, ConfigKeyNetwork, ConfigKeyPlan}
}

// ParseConfigKey resolves a user-supplied key name, case insensitively,
// accepting ns as an alias for namespace.
func ParseConfigKey(s string) (ConfigKey, bool) {
	switch strings.ToLower(s) {
	case "namespace", "ns":
		return ConfigKeyNamespace, true
	case "network":
		return ConfigKeyNetwork, true
	case "plan":
		return ConfigKeyPlan, true
	}
	return "", false
}

// Set stores value under key.
func (c *LocalConfig) Set(key ConfigKey, value string) {
	switch key {
	case ConfigKeyNamespace:
		c.Namespace = value
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyPlan:
		c.Plan = value
	}
}

// Clear resets key to its default and returns the value it had.
func (c *LocalConfig) Clear(key ConfigKey) string {
	var old string
	switch key {
	case ConfigKeyNamespace:
		old, c.Namespace = c.Namespace, DefaultLocalConfig().Namespace
	case ConfigKeyNetwork:
		old, c.Network = c.Network, ""
	case ConfigKeyPlan:
		old, c.Plan = c.Plan, ""
	}
	return old
}
