/*
service.go - Leave request submission and approval workflow

PURPOSE:
  Orchestrates the request lifecycle around the pure evaluator:

  1. Submission: fresh balance read -> Evaluate -> persist request ->
     increment pending counter -> history row
  2. Approval:   pending days move to used
  3. Rejection:  pending days released
  4. Cancellation: requester withdraws, pending days released

PENDING vs USED:
  Submission immediately holds the requested days in the pending counter so
  later requests cannot overdraw. Approval converts the hold to used;
  rejection and cancellation release it. The hold is an explicit step after
  Evaluate succeeds - admission itself never writes.

FAILURE ATOMICITY:
  On any admission failure nothing is written: no request row, no counter
  change, no history. The caller keeps the user's input for correction.

SEE ALSO:
  - evaluate.go: The admission decision
  - store.go:    Persistence interfaces
*/
package leave

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// EmployeeDirectory resolves employee identity for request denormalization.
// Implemented by the employee package's stores.
type EmployeeDirectory interface {
	EmployeeName(ctx context.Context, employeeID string) (string, error)
}

// Notifier receives user-facing notifications on request decisions.
// Optional; a nil Notifier disables notifications.
type Notifier interface {
	Notify(ctx context.Context, employeeID, title, message string) error
}

// Service owns the leave request lifecycle.
type Service struct {
	Store     Store
	Directory EmployeeDirectory
	Notifier  Notifier
	Now       func() time.Time // defaults to time.Now
}

func NewService(store Store, directory EmployeeDirectory, notifier Notifier) *Service {
	return &Service{Store: store, Directory: directory, Notifier: notifier, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit evaluates the draft against a fresh balance read and, on success,
// persists the pending request and holds its days in the pending counter.
func (s *Service) Submit(ctx context.Context, employeeID string, draft Draft) (*Request, error) {
	name, err := s.Directory.EmployeeName(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	balances, err := s.Store.Balances(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	eval, err := Evaluate(draft, balances)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &Request{
		ID:           uuid.NewString(),
		EmployeeID:   employeeID,
		EmployeeName: name,
		LeaveType:    draft.LeaveType,
		StartDate:    DateOnly(draft.StartDate),
		EndDate:      DateOnly(draft.EndDate),
		Days:         eval.RequestedDays,
		Reason:       draft.Reason,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	// Hold the days. Explicitly separate from admission: Evaluate has no
	// side effects, the pending increment happens here and only here.
	if err := s.adjustBalance(ctx, employeeID, req.LeaveType, 0, req.Days); err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, req, ActionSubmitted, employeeID); err != nil {
		return nil, err
	}

	return req, nil
}

// =============================================================================
// DECISIONS
// =============================================================================

// Approve converts a pending request's hold into used days.
func (s *Service) Approve(ctx context.Context, requestID, approverID string) (*Request, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.Status = StatusApproved
	req.ApprovedBy = &approverID
	req.ApprovedAt = &now
	req.UpdatedAt = now

	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save approval: %w", err)
	}
	if err := s.adjustBalance(ctx, req.EmployeeID, req.LeaveType, req.Days, -req.Days); err != nil {
		return nil, err
	}
	if err := s.appendHistory(ctx, req, ActionApproved, approverID); err != nil {
		return nil, err
	}

	s.notify(ctx, req.EmployeeID, "Leave approved",
		fmt.Sprintf("Your %s leave request for %d day(s) was approved.", req.LeaveType, req.Days))
	return req, nil
}

// Reject releases a pending request's hold.
func (s *Service) Reject(ctx context.Context, requestID, rejecterID, reason string) (*Request, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req.Status = StatusRejected
	req.RejectionReason = &reason
	req.UpdatedAt = now

	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save rejection: %w", err)
	}
	if err := s.adjustBalance(ctx, req.EmployeeID, req.LeaveType, 0, -req.Days); err != nil {
		return nil, err
	}
	if err := s.appendHistory(ctx, req, ActionRejected, rejecterID); err != nil {
		return nil, err
	}

	s.notify(ctx, req.EmployeeID, "Leave rejected",
		fmt.Sprintf("Your %s leave request was rejected: %s", req.LeaveType, reason))
	return req, nil
}

// Cancel withdraws a pending request and releases its hold.
func (s *Service) Cancel(ctx context.Context, requestID string) (*Request, error) {
	req, err := s.pendingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	req.Status = StatusCancelled
	req.UpdatedAt = s.now()

	if err := s.Store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save cancellation: %w", err)
	}
	if err := s.adjustBalance(ctx, req.EmployeeID, req.LeaveType, 0, -req.Days); err != nil {
		return nil, err
	}
	if err := s.appendHistory(ctx, req, ActionCancelled, req.EmployeeID); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Balances returns the employee's current balances. Always a fresh read.
func (s *Service) Balances(ctx context.Context, employeeID string) ([]BalanceItem, error) {
	return s.Store.Balances(ctx, employeeID)
}

func (s *Service) Requests(ctx context.Context, employeeID string) ([]Request, error) {
	return s.Store.ListRequests(ctx, employeeID)
}

func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.Store.ListPending(ctx)
}

func (s *Service) History(ctx context.Context, employeeID string) ([]HistoryEntry, error) {
	return s.Store.History(ctx, employeeID)
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Service) pendingRequest(ctx context.Context, requestID string) (*Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotPending, requestID, req.Status)
	}
	return req, nil
}

// adjustBalance applies counter deltas for one leave type. Unpaid has no
// balance row to begin with in some datasets; a missing row is created so
// the audit trail still lines up.
func (s *Service) adjustBalance(ctx context.Context, employeeID string, leaveType Type, usedDelta, pendingDelta int) error {
	balances, err := s.Store.Balances(ctx, employeeID)
	if err != nil {
		return err
	}

	item := BalanceItem{Type: leaveType}
	for _, b := range balances {
		if b.Type == leaveType {
			item = b
			break
		}
	}
	item.Used += usedDelta
	item.Pending += pendingDelta

	if err := s.Store.SaveBalance(ctx, employeeID, item); err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (s *Service) appendHistory(ctx context.Context, req *Request, action HistoryAction, actor string) error {
	entry := HistoryEntry{
		ID:         uuid.NewString(),
		EmployeeID: req.EmployeeID,
		RequestID:  req.ID,
		Action:     action,
		LeaveType:  req.LeaveType,
		Days:       req.Days,
		Actor:      actor,
		At:         s.now(),
	}
	if err := s.Store.AppendHistory(ctx, entry); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, employeeID, title, message string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, employeeID, title, message); err != nil {
		log.Printf("[Leave] Failed to notify %s: %v", employeeID, err)
	}
}
