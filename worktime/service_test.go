package worktime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/store/memory"
	"github.com/warp/workforce-engine/worktime"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService() *worktime.Service {
	return worktime.NewService(memory.New(), worktime.DefaultWeeklyCap)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func TestClockIn_OpensSession(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	now := at(9, 0)

	rec, err := svc.ClockIn(ctx, "emp-1", now)
	require.NoError(t, err)

	assert.Equal(t, worktime.StateOpen, worktime.StateOf(*rec))
	require.NotNil(t, rec.ClockIn)
	assert.Equal(t, "09:00 AM", *rec.ClockIn)
	assert.Equal(t, worktime.StatusPresent, rec.Status)

	today, err := svc.Today(ctx, "emp-1", now)
	require.NoError(t, err)
	assert.Equal(t, worktime.StateOpen, worktime.StateOf(today))
}

func TestClockIn_Twice_Rejected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "emp-1", at(9, 0))
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "emp-1", at(10, 0))
	assert.ErrorIs(t, err, worktime.ErrAlreadyClockedIn)
}

func TestClockIn_AfterClockOut_SameDay_Rejected(t *testing.T) {
	// A closed session is terminal for the day.
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "emp-1", at(9, 0))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", at(12, 0))
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "emp-1", at(13, 0))
	assert.ErrorIs(t, err, worktime.ErrAlreadyClockedIn)
}

func TestClockOut_WithoutClockIn_Rejected(t *testing.T) {
	svc := newTestService()
	_, err := svc.ClockOut(context.Background(), "emp-1", at(17, 0))
	assert.ErrorIs(t, err, worktime.ErrNotClockedIn)
}

func TestClockOut_BanksSessionIntoWeek(t *testing.T) {
	// GIVEN: A 09:00-17:00 session
	// WHEN: Clocking out
	// THEN: 8h are banked on the week's Monday key

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "emp-1", at(9, 0))
	require.NoError(t, err)
	rec, err := svc.ClockOut(ctx, "emp-1", at(17, 0))
	require.NoError(t, err)
	assert.Equal(t, worktime.StateClosed, worktime.StateOf(*rec))

	snap, err := svc.Weekly(ctx, "emp-1", at(17, 0))
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, snap.Accumulated)
	assert.False(t, snap.CapReached)
}

func TestClockOut_AccumulatesAcrossDays(t *testing.T) {
	// Two closed sessions in the same week sum in the bank.
	svc := newTestService()
	ctx := context.Background()

	day1 := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC) // Monday
	day2 := day1.AddDate(0, 0, 1)

	_, err := svc.ClockIn(ctx, "emp-1", day1.Add(9*time.Hour))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", day1.Add(17*time.Hour))
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, "emp-1", day2.Add(10*time.Hour))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", day2.Add(16*time.Hour))
	require.NoError(t, err)

	snap, err := svc.Weekly(ctx, "emp-1", day2)
	require.NoError(t, err)
	assert.Equal(t, 14*time.Hour, snap.Accumulated)
}

func TestWeekly_NewWeekStartsEmpty(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	sunday := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)
	monday := sunday.AddDate(0, 0, 1)

	_, err := svc.ClockIn(ctx, "emp-1", sunday.Add(9*time.Hour))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", sunday.Add(13*time.Hour))
	require.NoError(t, err)

	prev, err := svc.Weekly(ctx, "emp-1", sunday)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, prev.Accumulated)

	next, err := svc.Weekly(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), next.Accumulated)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestToday_NoRecord_ReportsAbsent(t *testing.T) {
	svc := newTestService()
	rec, err := svc.Today(context.Background(), "emp-1", at(12, 0))
	require.NoError(t, err)

	assert.Equal(t, worktime.StatusAbsent, rec.Status)
	assert.Equal(t, worktime.StateNoSession, worktime.StateOf(rec))
}

func TestElapsed_OpenSessionPlusBank(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	day1 := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(ctx, "emp-1", day1.Add(9*time.Hour))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", day1.Add(17*time.Hour))
	require.NoError(t, err)

	day2 := day1.AddDate(0, 0, 1)
	_, err = svc.ClockIn(ctx, "emp-1", day2.Add(9*time.Hour))
	require.NoError(t, err)

	got, err := svc.Elapsed(ctx, "emp-1", day2.Add(11*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour, got)
}

func TestWeekly_CapReached_FreezesElapsed(t *testing.T) {
	// GIVEN: A 1-hour weekly cap already banked
	// WHEN: A new session is open
	// THEN: CapReached flips and Elapsed stays at the banked figure

	svc := worktime.NewService(memory.New(), time.Hour)
	ctx := context.Background()

	day1 := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.ClockIn(ctx, "emp-1", day1.Add(9*time.Hour))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, "emp-1", day1.Add(11*time.Hour))
	require.NoError(t, err)

	snap, err := svc.Weekly(ctx, "emp-1", day1)
	require.NoError(t, err)
	assert.True(t, snap.CapReached)

	day2 := day1.AddDate(0, 0, 1)
	_, err = svc.ClockIn(ctx, "emp-1", day2.Add(9*time.Hour))
	require.NoError(t, err)

	got, err := svc.Elapsed(ctx, "emp-1", day2.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, got, "open session adds nothing past the cap")
}

func TestNewService_NonPositiveCap_UsesDefault(t *testing.T) {
	svc := worktime.NewService(memory.New(), 0)
	assert.Equal(t, worktime.DefaultWeeklyCap, svc.WeeklyCap)
}
