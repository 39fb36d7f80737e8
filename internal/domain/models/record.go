package models

import (
	"fmt"
	"time"
)

// RecordKind distinguishes why an address exists in the registry.
type RecordKind string

const (
	// KindComponent is a member of the main creation sequence, with a
	// predicted address.
	KindComponent RecordKind = "component"
	// KindOracle is a price feed deployed (or adopted) during warm-up.
	KindOracle RecordKind = "oracle"
	// KindAuxiliary is a post-sequence creation outside the predicted
	// window.
	KindAuxiliary RecordKind = "auxiliary"
)

// Record is one registry entry: a component that exists on some ledger,
// where it lives, and how it got there.
type Record struct {
	Namespace string     `json:"namespace"`
	Graph     string     `json:"graph"`
	Network   string     `json:"network"`
	ChainID   uint64     `json:"chainId"`
	Name      string     `json:"name"`
	Kind      RecordKind `json:"kind"`
	Artifact  string     `json:"artifact,omitempty"`

	Address   string `json:"address"`
	Predicted string `json:"predicted,omitempty"`
	Nonce     uint64 `json:"nonce"`
	Deployer  string `json:"deployer"`

	// ForwardRefs names the later components this one was constructed
	// with, resolved by prediction before they existed.
	ForwardRefs []string `json:"forwardRefs,omitempty"`

	TxHash      string    `json:"txHash,omitempty"`
	BlockNumber uint64    `json:"blockNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ID is the registry key: namespace/chain/name.
func (r *Record) ID() string {
	return fmt.Sprintf("%s/%d/%s", r.Namespace, r.ChainID, r.Name)
}

// DisplayName is what list and show print for the record.
func (r *Record) DisplayName() string {
	return r.Name
}
