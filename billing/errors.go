/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages should wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors - Malformed recurrence descriptors and sequence configs
  2. Caller errors     - Inputs outside the documented domain (negative money)
  3. Store errors      - Persistence-level failures and conflicts

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, billing.ErrInvalidAnchor) {
        return http 400 ...
    }

SEE ALSO:
  - recurrence.go: Produces validation errors
  - money.go: Produces caller errors
  - store.go: Store interfaces using the store errors
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidCadence is returned when a cadence is not one of the six
	// enumerated values.
	ErrInvalidCadence = errors.New("invalid cadence")

	// ErrInvalidSelector is returned when a period selector is not
	// previous_period, current_period or next_period.
	ErrInvalidSelector = errors.New("invalid period selector")

	// ErrInvalidAnchor is returned when an anchor is outside the valid
	// domain for its cadence (e.g. monthly anchor 32, quarter month 13).
	ErrInvalidAnchor = errors.New("anchor out of range for cadence")

	// ErrInvalidDescriptor is returned by the period resolver when it is
	// handed a descriptor that does not pass validation.
	ErrInvalidDescriptor = errors.New("invalid recurrence descriptor")

	// ErrNegativeInput is returned by the arithmetic engine for negative
	// quantity, rate, tax or discount. These were never intended inputs;
	// silently computing a negative line total would hide a caller bug.
	ErrNegativeInput = errors.New("negative input out of domain")

	// ErrInvalidSequenceConfig is returned for width or next-number
	// outside the allowed bounds.
	ErrInvalidSequenceConfig = errors.New("invalid sequence config")

	// ErrSequenceNotFound is returned when a sequence key has no config.
	ErrSequenceNotFound = errors.New("sequence not found")

	// ErrInvoiceNotFound is returned when a referenced invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrWorkNotFound is returned when a referenced work definition doesn't exist.
	ErrWorkNotFound = errors.New("work definition not found")

	// ErrInvoiceNotDraft is returned when a mutation requires a draft
	// invoice (issuing twice, editing issued lines).
	ErrInvoiceNotDraft = errors.New("invoice is not a draft")

	// ErrInvalidTransition is returned for any other disallowed invoice
	// status change (paying a draft, voiding a paid invoice).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidDate is returned when a date string is not "2006-01-02".
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRange is returned when a date range is malformed (end
	// before start).
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrConflict is returned when a concurrent writer won a
	// read-increment-write race. Safe to retry.
	ErrConflict = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a malformed recurrence descriptor or sequence
// config field.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
	Err    error // sentinel this wraps (ErrInvalidCadence, ErrInvalidAnchor, ...)
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// CallerError reports an arithmetic-engine input outside the documented
// domain. A validation failure here is a caller bug, not a recoverable
// condition.
type CallerError struct {
	Field string
	Value string
}

func (e *CallerError) Error() string {
	return fmt.Sprintf("%s must be non-negative, got %s", e.Field, e.Value)
}

func (e *CallerError) Unwrap() error { return ErrNegativeInput }

// InvalidDescriptorError reports a resolver invocation on a descriptor
// that never passed validation.
type InvalidDescriptorError struct {
	Cause error
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("descriptor failed validation: %v", e.Cause)
}

func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCadence) ||
		errors.Is(err, ErrInvalidSelector) ||
		errors.Is(err, ErrInvalidAnchor) ||
		errors.Is(err, ErrInvalidDescriptor) ||
		errors.Is(err, ErrNegativeInput) ||
		errors.Is(err, ErrInvalidSequenceConfig) ||
		errors.Is(err, ErrInvoiceNotDraft) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidRange)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSequenceNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrWorkNotFound)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
