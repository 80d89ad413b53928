/*
service.go - Clock-in/clock-out workflow and weekly banking

PURPOSE:
  Drives the session state machine the accumulator observes:

  NoSession --ClockIn--> Open --ClockOut--> Closed (terminal for the day)

  Clock-out folds the closed session's duration into the Monday-anchored
  WeeklyProgress row, so the banked figure always excludes any open session.

WEEKLY CAP:
  The cap bounds accruable display time per week. Once the banked duration
  reaches it, WeeklySnapshot.CapReached flips and the live display freezes;
  sessions are still recorded in full.
*/
package worktime

import (
	"context"
	"fmt"
	"time"
)

// DefaultWeeklyCap bounds accruable display time per week.
const DefaultWeeklyCap = 40 * time.Hour

// Store is the persistence surface the worktime Service depends on.
// Implementations live in store/sqlite and store/memory.
type Store interface {
	// GetRecord returns the record for the employee-day, or nil when the
	// day has no record yet.
	GetRecord(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	SaveRecord(ctx context.Context, rec *Record) error

	// GetWeekly returns the banked progress row for the Monday key, or nil.
	GetWeekly(ctx context.Context, employeeID string, weekOf time.Time) (*WeeklyProgress, error)
	SaveWeekly(ctx context.Context, wp *WeeklyProgress) error

	// ListWeekly returns progress rows whose Monday key falls in [from, to].
	ListWeekly(ctx context.Context, employeeID string, from, to time.Time) ([]WeeklyProgress, error)
}

// Service owns attendance transitions and weekly banking.
type Service struct {
	Store     Store
	WeeklyCap time.Duration
}

func NewService(store Store, weeklyCap time.Duration) *Service {
	if weeklyCap <= 0 {
		weeklyCap = DefaultWeeklyCap
	}
	return &Service{Store: store, WeeklyCap: weeklyCap}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// ClockIn opens today's session. Rejects a second clock-in for the same day.
func (s *Service) ClockIn(ctx context.Context, employeeID string, now time.Time) (*Record, error) {
	day := dateOf(now)
	existing, err := s.Store.GetRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ClockIn != nil {
		return nil, ErrAlreadyClockedIn
	}

	in := FormatClock(now)
	rec := &Record{
		EmployeeID: employeeID,
		Date:       day,
		ClockIn:    &in,
		Status:     StatusPresent,
	}
	if err := s.Store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save clock-in: %w", err)
	}
	return rec, nil
}

// ClockOut closes today's open session and banks its duration into the
// week's progress row.
func (s *Service) ClockOut(ctx context.Context, employeeID string, now time.Time) (*Record, error) {
	day := dateOf(now)
	rec, err := s.Store.GetRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if rec == nil || StateOf(*rec) != StateOpen {
		return nil, ErrNotClockedIn
	}

	out := FormatClock(now)
	rec.ClockOut = &out
	if err := s.Store.SaveRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save clock-out: %w", err)
	}

	if err := s.bankSession(ctx, employeeID, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Today returns the day's record; a missing row comes back as the
// no-session shape rather than an error.
func (s *Service) Today(ctx context.Context, employeeID string, now time.Time) (Record, error) {
	rec, err := s.Store.GetRecord(ctx, employeeID, dateOf(now))
	if err != nil {
		return Record{}, err
	}
	if rec == nil {
		return Record{EmployeeID: employeeID, Date: dateOf(now), Status: StatusAbsent}, nil
	}
	return *rec, nil
}

// Weekly returns the banked duration for the current week, excluding any
// open session, plus the cap flag.
func (s *Service) Weekly(ctx context.Context, employeeID string, now time.Time) (WeeklySnapshot, error) {
	wp, err := s.Store.GetWeekly(ctx, employeeID, WeekAnchor(now))
	if err != nil {
		return WeeklySnapshot{}, err
	}
	var banked time.Duration
	if wp != nil {
		banked = wp.Accumulated
	}
	return WeeklySnapshot{
		Accumulated: banked,
		CapReached:  banked >= s.WeeklyCap,
	}, nil
}

// Elapsed computes the live display duration for the employee right now.
func (s *Service) Elapsed(ctx context.Context, employeeID string, now time.Time) (time.Duration, error) {
	rec, err := s.Today(ctx, employeeID, now)
	if err != nil {
		return 0, err
	}
	snap, err := s.Weekly(ctx, employeeID, now)
	if err != nil {
		return 0, err
	}
	return ComputeElapsed(rec, snap.Accumulated, !snap.CapReached, now), nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (s *Service) bankSession(ctx context.Context, employeeID string, rec Record) error {
	session := SessionDuration(rec)
	weekOf := WeekAnchor(rec.Date)

	wp, err := s.Store.GetWeekly(ctx, employeeID, weekOf)
	if err != nil {
		return err
	}
	if wp == nil {
		wp = &WeeklyProgress{EmployeeID: employeeID, WeekOf: weekOf}
	}
	wp.Accumulated += session

	if err := s.Store.SaveWeekly(ctx, wp); err != nil {
		return fmt.Errorf("failed to save weekly progress: %w", err)
	}
	return nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
