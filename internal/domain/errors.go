package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidationError is a client-fixable rejection. It always carries enough
// context (what was requested against what was available) for the caller to
// self-correct without re-querying.
type ValidationError struct {
	Reason    string
	Requested decimal.Decimal
	Available decimal.Decimal // free balance, surplus or envelope balance, depending on the operation
	Shortfall decimal.Decimal
}

// NewValidationError builds a plain rejection with no amounts attached.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// NewAmountValidationError builds a rejection for a request that exceeded an
// available amount, recording the shortfall.
func NewAmountValidationError(reason string, requested, available decimal.Decimal) *ValidationError {
	return &ValidationError{
		Reason:    reason,
		Requested: requested,
		Available: available,
		Shortfall: requested.Sub(available),
	}
}

func (e *ValidationError) Error() string {
	if e.Shortfall.IsPositive() {
		return fmt.Sprintf("%s: requested %s, available %s (shortfall %s)",
			e.Reason, e.Requested.StringFixed(0), e.Available.StringFixed(0), e.Shortfall.StringFixed(0))
	}
	return e.Reason
}

// NotFoundError reports a referenced entity that does not exist or does not
// belong to the user.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvariantViolationError reports a state the system must never reach under
// correct serialization, e.g. an allocation exceeding net balance. It is a
// hard failure, never clamped away.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "invariant violation: " + e.Reason
}

// UpstreamError wraps a store read or write failure. Step records which part
// of a multi-write operation failed so the operator can reconcile; the
// operation is never retried automatically.
type UpstreamError struct {
	Step string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
