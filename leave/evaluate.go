/*
evaluate.go - Leave request admission

PURPOSE:
  Decides whether a draft leave request is admissible against the employee's
  current balances and computes its inclusive day count.

VALIDATION SEQUENCE (short-circuits at the first failure, in this order):
  1. All four draft fields present and non-empty -> ErrIncompleteRequest
  2. start <= end (calendar comparison)          -> ErrInvertedDateRange
  3. requestedDays = inclusive day count (same-day request = 1)
  4. Balance lookup by type; a missing entry behaves as remaining = 0
  5. Unpaid leave skips the balance check; every other type fails with
     InsufficientBalanceError when requestedDays > remaining
  6. Success: validated draft + requestedDays

  The order matters: the day count is only meaningful once the range is
  known to be well-formed, and the balance check depends on the day count.

PURITY:
  Evaluate never mutates balances and holds no state. Incrementing the
  pending counter after acceptance is the Service's job, never folded in
  here.

SEE ALSO:
  - service.go: Calls Evaluate on submission with a fresh balance read
  - errors.go:  The admission error taxonomy
*/
package leave

import (
	"strings"
	"time"
)

// =============================================================================
// DATE HELPERS
// =============================================================================

// DateOnly truncates a timestamp to its calendar date. All admission
// comparisons and day counts ignore time-of-day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RequestedDays returns the inclusive day count between two dates.
// A single-day range yields 1. Callers must pass start <= end.
func RequestedDays(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours()/24) + 1
}

// =============================================================================
// ADMISSION
// =============================================================================

// Evaluate validates a draft against the given balances and computes its day
// count. It is pure: identical inputs always yield identical results.
func Evaluate(draft Draft, balances []BalanceItem) (Evaluation, error) {
	if draft.LeaveType == "" || draft.StartDate.IsZero() || draft.EndDate.IsZero() ||
		strings.TrimSpace(draft.Reason) == "" {
		return Evaluation{}, ErrIncompleteRequest
	}

	start := DateOnly(draft.StartDate)
	end := DateOnly(draft.EndDate)
	if end.Before(start) {
		return Evaluation{}, ErrInvertedDateRange
	}

	days := RequestedDays(start, end)

	// Unpaid leave is always admissible, whatever the counters say.
	if draft.LeaveType != TypeUnpaid {
		remaining := 0
		for _, b := range balances {
			if b.Type == draft.LeaveType {
				remaining = b.Remaining()
				break
			}
		}
		if days > remaining {
			return Evaluation{}, &InsufficientBalanceError{
				LeaveType: draft.LeaveType,
				Remaining: remaining,
				Requested: days,
			}
		}
	}

	return Evaluation{Draft: draft, RequestedDays: days}, nil
}
