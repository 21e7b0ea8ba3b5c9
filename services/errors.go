package services

import (
	"errors"
	"fmt"

	"github.com/bellapacxx/crash-backend/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientBalance rejects a bet larger than the user's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ValidationError marks malformed or out-of-bounds bet input. The message is
// safe to surface verbatim to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExposureLimitExceededError rejects a bet that would push the user's
// aggregate stake or potential winnings over a per-round ceiling.
type ExposureLimitExceededError struct {
	Limit     string // "bet" or "profit"
	Ceiling   int64
	Attempted int64
}

func (e *ExposureLimitExceededError) Error() string {
	return fmt.Sprintf("per-round %s limit exceeded: %d > %d", e.Limit, e.Attempted, e.Ceiling)
}

// InvalidStateError marks an operation attempted against a round not in the
// required state. Usually a race with the scheduler; safe to retry.
type InvalidStateError struct {
	Op    string
	State models.RoundState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: round is %s", e.Op, e.State)
}

// RoundCreationError wraps a persistence failure while creating a round and
// consuming its seed. Fatal to the triggering request; retry belongs to the
// scheduler.
type RoundCreationError struct {
	Err error
}

func (e *RoundCreationError) Error() string {
	return "round creation failed: " + e.Err.Error()
}

func (e *RoundCreationError) Unwrap() error {
	return e.Err
}
