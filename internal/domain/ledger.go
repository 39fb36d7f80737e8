package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Creation is one pending creation transaction. The nonce is explicit:
// the sequencer owns the account's nonce for the length of a run and
// threads it through every submission, so a ledger that disagrees about
// the next nonce must fail the submission rather than renumber it.
type Creation struct {
	// Name is the plan entry being created, for diagnostics only.
	Name string

	Nonce uint64

	// Bytecode is the full creation code, constructor arguments included.
	Bytecode []byte

	// Value is attached wei; nil means zero.
	Value *big.Int
}

// Call is one configuration call against a live component. Calls sit
// outside the predicted window, so the ledger assigns their nonces.
type Call struct {
	To common.Address

	// Method is the human-readable signature, for diagnostics and the
	// transaction registry.
	Method string

	Data []byte

	// Sender overrides the ledger's deployer account when set. Accepting
	// an ownership handover is sent by the incoming owner, not the
	// deployer.
	Sender common.Address
}

// Receipt is the ledger's confirmation of a submission.
type Receipt struct {
	TxHash common.Hash

	// Address is the created component's address; zero for plain calls.
	Address common.Address

	Sender      common.Address
	Nonce       uint64
	BlockNumber uint64
	GasUsed     uint64
}

// NonceSequence hands out consecutive nonces for one account. A run
// reads the account nonce once, then owns the counter: every creation
// takes the next value and nothing else may consume one in between.
type NonceSequence struct {
	account common.Address
	next    uint64
}

// NewNonceSequence starts a sequence at the account's observed nonce.
func NewNonceSequence(account common.Address, start uint64) *NonceSequence {
	return &NonceSequence{account: account, next: start}
}

// Account is the account the sequence numbers.
func (s *NonceSequence) Account() common.Address {
	return s.account
}

// Peek returns the nonce the next Take will hand out.
func (s *NonceSequence) Peek() uint64 {
	return s.next
}

// Take consumes and returns the next nonce.
func (s *NonceSequence) Take() uint64 {
	n := s.next
	s.next++
	return n
}
