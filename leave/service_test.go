package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/employee"
	"github.com/warp/workforce-engine/leave"
	"github.com/warp/workforce-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) (*leave.Service, *memory.Store) {
	store := memory.New()
	ctx := context.Background()

	err := store.SaveEmployee(ctx, &employee.Employee{
		ID:         "emp-1",
		Name:       "Alice Johnson",
		Email:      "alice@example.com",
		BaseSalary: decimal.NewFromInt(5000),
		HireDate:   day(2024, time.January, 15),
	})
	require.NoError(t, err)

	for _, item := range leave.DefaultBalances() {
		require.NoError(t, store.SaveBalance(ctx, "emp-1", item))
	}

	return leave.NewService(store, store, nil), store
}

func balanceFor(t *testing.T, store *memory.Store, lt leave.Type) leave.BalanceItem {
	t.Helper()
	balances, err := store.Balances(context.Background(), "emp-1")
	require.NoError(t, err)
	for _, b := range balances {
		if b.Type == lt {
			return b
		}
	}
	t.Fatalf("no %s balance row", lt)
	return leave.BalanceItem{}
}

func submitAnnual(t *testing.T, svc *leave.Service, days int) *leave.Request {
	t.Helper()
	req, err := svc.Submit(context.Background(), "emp-1", leave.Draft{
		LeaveType: leave.TypeAnnual,
		StartDate: day(2026, time.March, 2),
		EndDate:   day(2026, time.March, 2+days-1),
		Reason:    "trip",
	})
	require.NoError(t, err)
	return req
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_HoldsPendingDays(t *testing.T) {
	// GIVEN: Fresh 20-day annual balance
	// WHEN: Submitting a 5-day request
	// THEN: Request is pending and 5 days are held, not used

	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 5)

	assert.Equal(t, leave.StatusPending, req.Status)
	assert.Equal(t, 5, req.Days)
	assert.Equal(t, "Alice Johnson", req.EmployeeName)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 0, item.Used)
	assert.Equal(t, 5, item.Pending)
	assert.Equal(t, 15, item.Remaining())
}

func TestSubmit_PendingHoldBlocksOverdraw(t *testing.T) {
	// GIVEN: 18 of 20 annual days already held
	// WHEN: Submitting 3 more days
	// THEN: Rejected; the hold counts against remaining

	svc, _ := newTestService(t)
	submitAnnual(t, svc, 18)

	_, err := svc.Submit(context.Background(), "emp-1", leave.Draft{
		LeaveType: leave.TypeAnnual,
		StartDate: day(2026, time.April, 1),
		EndDate:   day(2026, time.April, 3),
		Reason:    "more",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestSubmit_FailedAdmission_WritesNothing(t *testing.T) {
	// GIVEN: A draft that fails admission
	// WHEN: Submitting
	// THEN: No request, no balance change, no history

	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "emp-1", leave.Draft{
		LeaveType: leave.TypeAnnual,
		StartDate: day(2026, time.March, 10),
		EndDate:   day(2026, time.March, 5),
		Reason:    "backwards",
	})
	require.ErrorIs(t, err, leave.ErrInvertedDateRange)

	reqs, err := store.ListRequests(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, reqs)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 0, item.Pending)

	history, err := store.History(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSubmit_UnknownEmployee_Rejected(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), "ghost", leave.Draft{
		LeaveType: leave.TypeAnnual,
		StartDate: day(2026, time.March, 2),
		EndDate:   day(2026, time.March, 3),
		Reason:    "trip",
	})
	assert.ErrorIs(t, err, employee.ErrNotFound)
}

func TestSubmit_AppendsHistory(t *testing.T) {
	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 2)

	history, err := store.History(context.Background(), "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, leave.ActionSubmitted, history[0].Action)
	assert.Equal(t, req.ID, history[0].RequestID)
	assert.Equal(t, 2, history[0].Days)
}

// =============================================================================
// DECISIONS
// =============================================================================

func TestApprove_MovesPendingToUsed(t *testing.T) {
	// GIVEN: A pending 5-day request
	// WHEN: Approving it
	// THEN: 5 days move from pending to used; remaining is unchanged

	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 5)

	approved, err := svc.Approve(context.Background(), req.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "manager", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 5, item.Used)
	assert.Equal(t, 0, item.Pending)
	assert.Equal(t, 15, item.Remaining())
}

func TestReject_ReleasesHold(t *testing.T) {
	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 5)

	rejected, err := svc.Reject(context.Background(), req.ID, "manager", "coverage gap")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "coverage gap", *rejected.RejectionReason)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 0, item.Used)
	assert.Equal(t, 0, item.Pending)
	assert.Equal(t, 20, item.Remaining())
}

func TestCancel_ReleasesHold(t *testing.T) {
	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 3)

	cancelled, err := svc.Cancel(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, cancelled.Status)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 0, item.Pending)
	assert.Equal(t, 20, item.Remaining())
}

func TestDecide_NonPendingRequest_Rejected(t *testing.T) {
	// GIVEN: An already-approved request
	// WHEN: Approving, rejecting, or cancelling again
	// THEN: ErrNotPending; counters stay where approval left them

	svc, store := newTestService(t)
	req := submitAnnual(t, svc, 5)
	ctx := context.Background()

	_, err := svc.Approve(ctx, req.ID, "manager")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, req.ID, "manager")
	assert.ErrorIs(t, err, leave.ErrNotPending)
	_, err = svc.Reject(ctx, req.ID, "manager", "late")
	assert.ErrorIs(t, err, leave.ErrNotPending)
	_, err = svc.Cancel(ctx, req.ID)
	assert.ErrorIs(t, err, leave.ErrNotPending)

	item := balanceFor(t, store, leave.TypeAnnual)
	assert.Equal(t, 5, item.Used)
	assert.Equal(t, 0, item.Pending)
}

func TestDecide_UnknownRequest_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Approve(context.Background(), "nope", "manager")
	assert.True(t, leave.IsNotFound(err))
}

func TestRejectThenResubmit_Succeeds(t *testing.T) {
	// The released hold makes the same days requestable again.
	svc, _ := newTestService(t)
	req := submitAnnual(t, svc, 20)

	_, err := svc.Reject(context.Background(), req.ID, "manager", "timing")
	require.NoError(t, err)

	again := submitAnnual(t, svc, 20)
	assert.Equal(t, leave.StatusPending, again.Status)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_RecordsFullLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first := submitAnnual(t, svc, 2)
	_, err := svc.Approve(ctx, first.ID, "manager")
	require.NoError(t, err)

	second, err := svc.Submit(ctx, "emp-1", leave.Draft{
		LeaveType: leave.TypeSick,
		StartDate: day(2026, time.May, 4),
		EndDate:   day(2026, time.May, 4),
		Reason:    "fever",
	})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, second.ID, "manager", "certificate missing")
	require.NoError(t, err)

	history, err := store.History(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, leave.ActionSubmitted, history[0].Action)
	assert.Equal(t, leave.ActionApproved, history[1].Action)
	assert.Equal(t, leave.ActionSubmitted, history[2].Action)
	assert.Equal(t, leave.ActionRejected, history[3].Action)
}
