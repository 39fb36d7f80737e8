package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidAddress is returned when an address literal cannot be parsed
	ErrInvalidAddress = errors.New("invalid address")

	// ErrPlanInvalid is returned when a deployment plan fails validation
	ErrPlanInvalid = errors.New("invalid deployment plan")

	// ErrTimeTravelUnsupported is returned by ledgers whose clock cannot be advanced
	ErrTimeTravelUnsupported = errors.New("ledger does not support time travel")

	// ErrNonceGap is returned when a transaction carries a nonce the ledger
	// does not expect; every later prediction is invalid once this happens
	ErrNonceGap = errors.New("nonce gap")

	// ErrHandoverNotCommitted is returned when accept is attempted with no pending proposal
	ErrHandoverNotCommitted = errors.New("no ownership transfer committed")

	// ErrHandoverAccepted is returned when acting on a transfer that already completed
	ErrHandoverAccepted = errors.New("ownership transfer already accepted")
)

// AddressMismatchError signals that a creation landed at an address other than
// the predicted one. The nonce table is no longer trustworthy, so the run is
// over the moment this is returned.
type AddressMismatchError struct {
	Component string
	Predicted string
	Actual    string
	Nonce     uint64
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("component %s deployed at %s, predicted %s (nonce %d): nonce drift, plan abandoned",
		e.Component, e.Actual, e.Predicted, e.Nonce)
}

// CreationRejectedError signals that the ledger refused a creation transaction.
// Constructor arguments are deterministic, so retrying would fail identically.
type CreationRejectedError struct {
	Component string
	Err       error
}

func (e *CreationRejectedError) Error() string {
	return fmt.Sprintf("creation of component %s rejected: %v", e.Component, e.Err)
}

func (e *CreationRejectedError) Unwrap() error { return e.Err }

// WiringRejectedError signals a failed post-deploy configuration call. The run
// stops with the system partially wired; remaining calls are reported so the
// operator can resume them.
type WiringRejectedError struct {
	Target    string
	Method    string
	Remaining int
	Err       error
}

func (e *WiringRejectedError) Error() string {
	return fmt.Sprintf("wiring call %s.%s rejected (%d calls not submitted): %v",
		e.Target, e.Method, e.Remaining, e.Err)
}

func (e *WiringRejectedError) Unwrap() error { return e.Err }

// WarmupIncompleteError reports a warm-up that wrote fewer rounds than
// requested or wrote them without time separation. Surfaced as a warning:
// downstream staleness checks may reject the feed, but the run continues.
type WarmupIncompleteError struct {
	Feed      string
	Rounds    int
	Want      int
	NoTimeGap bool
	Err       error
}

func (e *WarmupIncompleteError) Error() string {
	if e.NoTimeGap {
		return fmt.Sprintf("feed %s warmed with %d/%d rounds but no time separation; staleness checks keyed on time delta will reject it",
			e.Feed, e.Rounds, e.Want)
	}
	return fmt.Sprintf("feed %s warm-up incomplete: %d/%d rounds written: %v", e.Feed, e.Rounds, e.Want, e.Err)
}

func (e *WarmupIncompleteError) Unwrap() error { return e.Err }

// HandoverTooEarlyError is returned when accept is attempted before the
// mandatory delay has elapsed. Non-fatal; the caller may retry once ReadyAt
// has passed.
type HandoverTooEarlyError struct {
	Now     time.Time
	ReadyAt time.Time
}

func (e *HandoverTooEarlyError) Error() string {
	return fmt.Sprintf("ownership transfer not acceptable until %s (now %s, %s remaining)",
		e.ReadyAt.UTC().Format(time.RFC3339), e.Now.UTC().Format(time.RFC3339), e.ReadyAt.Sub(e.Now))
}

// PlanValidationError aggregates everything wrong with a plan so the author
// can fix it in one pass instead of replaying transactions to find the next
// problem.
type PlanValidationError struct {
	Graph    string
	Problems []string
}

func (e *PlanValidationError) Error() string {
	return fmt.Sprintf("plan %q failed validation with %d problem(s): first is %q",
		e.Graph, len(e.Problems), e.Problems[0])
}

func (e *PlanValidationError) Unwrap() error { return ErrPlanInvalid }
