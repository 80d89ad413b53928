/*
errors.go - Centralized error types for the leave domain

PURPOSE:
  All leave errors in one place. Admission failures are user-facing
  validation outcomes, returned as distinguishable values and rendered as
  inline form text by the caller; none are process-fatal.

ERROR CATEGORIES:
  1. Admission errors - Draft rejected before any state change
  2. Lifecycle errors - Invalid status transition
  3. Lookup errors    - Missing employee/request

USAGE:
  Callers branch with errors.Is / errors.As:

    var insufficient *leave.InsufficientBalanceError
    if errors.As(err, &insufficient) {
        msg := fmt.Sprintf("You have %d days of %s remaining.",
            insufficient.Remaining, insufficient.LeaveType)
    }

SEE ALSO:
  - evaluate.go: Produces admission errors
  - service.go:  Produces lifecycle and lookup errors
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrIncompleteRequest is returned when one or more draft fields are
	// missing or empty.
	ErrIncompleteRequest = errors.New("incomplete request")

	// ErrInvertedDateRange is returned when the end date precedes the start.
	ErrInvertedDateRange = errors.New("end date precedes start date")

	// ErrInsufficientBalance is returned when the requested days exceed the
	// remaining balance for a non-unpaid leave type.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrRequestNotFound is returned when a referenced request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrNotPending is returned when approving/rejecting/cancelling a request
	// that has already been decided.
	ErrNotPending = errors.New("request is not pending")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError carries the figures the caller needs to render a
// precise message ("Insufficient leave balance. You have N days of TYPE
// remaining.").
type InsufficientBalanceError struct {
	LeaveType Type
	Remaining int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: requested %d days, %d remaining",
		e.LeaveType, e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrIncompleteRequest) ||
		errors.Is(err, ErrInvertedDateRange) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrNotPending)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrEmployeeNotFound)
}
