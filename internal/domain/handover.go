package domain

import (
	"fmt"
	"time"
)

// Governance boundary exposed by an authority component. Commit is sent by
// the current owner, accept by the proposed one.
const (
	MethodCommitOwnership = "commitTransferOwnership(address)"
	MethodAcceptOwnership = "acceptTransferOwnership()"
)

// HandoverState is where an ownership transfer sits in its lifecycle.
type HandoverState string

const (
	// HandoverUncommitted means no transfer has been proposed.
	HandoverUncommitted HandoverState = "uncommitted"
	// HandoverCommitted means a transfer is pending its delay.
	HandoverCommitted HandoverState = "committed"
	// HandoverAccepted is terminal; the transfer completed.
	HandoverAccepted HandoverState = "accepted"
)

// OwnershipTransfer tracks administrative control of a graph's authority
// component through the two-step, delayed transfer. Committing while a
// transfer is already pending replaces the pending owner and restarts the
// delay; once accepted the transfer never moves again.
type OwnershipTransfer struct {
	Namespace string `json:"namespace"`
	Graph     string `json:"graph"`
	ChainID   uint64 `json:"chainId"`
	Authority string `json:"authority"`
	Address   string `json:"address"`

	State        HandoverState `json:"state"`
	CurrentOwner string        `json:"currentOwner"`
	PendingOwner string        `json:"pendingOwner,omitempty"`

	MinDelay    time.Duration `json:"minDelay"`
	CommittedAt time.Time     `json:"committedAt"`
	AcceptedAt  time.Time     `json:"acceptedAt"`
}

// NewOwnershipTransfer starts the lifecycle in the uncommitted state.
func NewOwnershipTransfer(namespace, graph string, chainID uint64, authority, address, owner string, minDelay time.Duration) *OwnershipTransfer {
	return &OwnershipTransfer{
		Namespace:    namespace,
		Graph:        graph,
		ChainID:      chainID,
		Authority:    authority,
		Address:      address,
		State:        HandoverUncommitted,
		CurrentOwner: owner,
		MinDelay:     minDelay,
	}
}

// HandoverID is the registry key for a transfer: namespace/chain/authority.
func HandoverID(namespace string, chainID uint64, authority string) string {
	return fmt.Sprintf("%s/%d/%s", namespace, chainID, authority)
}

// ID is the registry key for the transfer.
func (t *OwnershipTransfer) ID() string {
	return HandoverID(t.Namespace, t.ChainID, t.Authority)
}

// ReadyAt is the earliest instant an accept can succeed. Zero when nothing
// is committed.
func (t *OwnershipTransfer) ReadyAt() time.Time {
	if t.State != HandoverCommitted {
		return time.Time{}
	}
	return t.CommittedAt.Add(t.MinDelay)
}

// Commit proposes newOwner and starts (or restarts) the delay clock. It
// returns the previously pending owner when an earlier commit is being
// replaced, so callers can surface the overwrite.
func (t *OwnershipTransfer) Commit(newOwner string, now time.Time) (replaced string, err error) {
	if t.State == HandoverAccepted {
		return "", ErrHandoverAccepted
	}
	if t.State == HandoverCommitted {
		replaced = t.PendingOwner
	}
	t.State = HandoverCommitted
	t.PendingOwner = newOwner
	t.CommittedAt = now
	return replaced, nil
}

// CanAccept reports whether an accept at now would succeed, and why not
// otherwise.
func (t *OwnershipTransfer) CanAccept(now time.Time) error {
	switch t.State {
	case HandoverUncommitted:
		return ErrHandoverNotCommitted
	case HandoverAccepted:
		return ErrHandoverAccepted
	}
	if ready := t.ReadyAt(); now.Before(ready) {
		return &HandoverTooEarlyError{Now: now, ReadyAt: ready}
	}
	return nil
}

// Accept completes the transfer. The pending owner becomes current and the
// state becomes terminal.
func (t *OwnershipTransfer) Accept(now time.Time) error {
	if err := t.CanAccept(now); err != nil {
		return err
	}
	t.CurrentOwner = t.PendingOwner
	t.PendingOwner = ""
	t.AcceptedAt = now
	t.State = HandoverAccepted
	return nil
}
