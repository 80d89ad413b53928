/*
Package leave implements leave-balance tracking and the request lifecycle.

PURPOSE:
  This package contains the admission logic for leave requests and the
  counter-based balance model behind it. A balance is three counters per
  leave type (total, used, pending); admission re-derives remaining from
  those counters on every decision rather than trusting any cached figure.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type:        A category of absence with its own balance tracking
  - BalanceItem: total/used/pending counters for one leave type
  - Draft:       Unvalidated user input for a new request
  - Request:     A submitted request with identity and status

LIFECYCLE:
  Draft --Evaluate--> Evaluation --Submit--> Request(pending)
                                                  |
                                      Approve: pending days -> used
                                      Reject/Cancel: pending days released

SEE ALSO:
  - evaluate.go: Admission decision
  - service.go:  Submission and approval workflow
  - errors.go:   Validation error taxonomy
*/
package leave

import "time"

// =============================================================================
// LEAVE TYPE
// =============================================================================

type Type string

const (
	TypeAnnual Type = "annual"
	TypeSick   Type = "sick"
	TypeCasual Type = "casual"
	TypeUnpaid Type = "unpaid"
)

// Types lists every leave type known to the system, in display order.
func Types() []Type {
	return []Type{TypeAnnual, TypeSick, TypeCasual, TypeUnpaid}
}

// =============================================================================
// BALANCE - counters per leave type
// =============================================================================

// BalanceItem holds the balance counters for one leave type.
// used + pending <= total is the intended invariant, but it is only enforced
// at admission time: stores may hand back counters that violate it, so
// Remaining can be negative and Evaluate must cope.
type BalanceItem struct {
	Type    Type
	Total   int
	Used    int
	Pending int
}

// Remaining returns the days still available for new requests.
func (b BalanceItem) Remaining() int {
	return b.Total - b.Used - b.Pending
}

// DefaultBalances returns the entitlements granted to a new employee.
// Unpaid carries a zero total: it is never balance-checked.
func DefaultBalances() []BalanceItem {
	return []BalanceItem{
		{Type: TypeAnnual, Total: 20},
		{Type: TypeSick, Total: 10},
		{Type: TypeCasual, Total: 5},
		{Type: TypeUnpaid, Total: 0},
	}
}

// =============================================================================
// DRAFT AND EVALUATION
// =============================================================================

// Draft is the raw form input for a new leave request.
type Draft struct {
	LeaveType Type
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Evaluation is the successful outcome of admission: the validated draft
// plus the inclusive day count it will consume.
type Evaluation struct {
	Draft         Draft
	RequestedDays int
}

// =============================================================================
// REQUEST
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Request is a submitted leave request. Identity, status and day count are
// assigned by the Service on submission, never by the evaluator.
type Request struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	LeaveType    Type
	StartDate    time.Time
	EndDate      time.Time
	Days         int
	Reason       string
	Status       Status

	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// HISTORY - append-only audit trail
// =============================================================================

type HistoryAction string

const (
	ActionSubmitted HistoryAction = "submitted"
	ActionApproved  HistoryAction = "approved"
	ActionRejected  HistoryAction = "rejected"
	ActionCancelled HistoryAction = "cancelled"
)

// HistoryEntry records one balance-affecting action. Entries are append-only;
// corrections happen through follow-up actions, never edits.
type HistoryEntry struct {
	ID         string
	EmployeeID string
	RequestID  string
	Action     HistoryAction
	LeaveType  Type
	Days       int
	Actor      string
	At         time.Time
}
