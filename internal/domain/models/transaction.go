package models

import "time"

// TransactionKind tells creation submissions apart from plain calls.
type TransactionKind string

const (
	TxCreation TransactionKind = "creation"
	TxCall     TransactionKind = "call"
)

// TransactionStatus is the terminal result of a submission.
type TransactionStatus string

const (
	TxConfirmed TransactionStatus = "confirmed"
	TxRejected  TransactionStatus = "rejected"
)

// Transaction is the registry's record of one submission: enough to audit
// the nonce sequence and to answer "what did the run actually send".
type Transaction struct {
	Hash      string          `json:"hash"`
	Namespace string          `json:"namespace"`
	Graph     string          `json:"graph"`
	ChainID   uint64          `json:"chainId"`
	Kind      TransactionKind `json:"kind"`

	Sender string `json:"sender"`
	Nonce  uint64 `json:"nonce"`

	// To is empty for creations; Method is the signature for calls.
	To     string `json:"to,omitempty"`
	Method string `json:"method,omitempty"`

	Status      TransactionStatus `json:"status"`
	BlockNumber uint64            `json:"blockNumber,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
