/*
Package worktime implements daily clock-in/clock-out sessions and the weekly
work-time accumulator.

PURPOSE:
  One Record per employee-day carries wall-clock clock-in/clock-out strings.
  The accumulator derives a live elapsed display from the record's shape and
  the week's already-banked duration; it never transitions the record itself.

SESSION STATES (derived, per record, per day):
  NoSession: no clock-in          -> no timer shown
  Open:      clock-in only        -> display ticks while the weekly timer
                                     is active
  Closed:    clock-out present    -> display frozen at the weekly figure

  Transitions are driven externally by clock-in/clock-out actions
  (service.go); ComputeElapsed only observes.

SEE ALSO:
  - accumulate.go: Elapsed computation and formatting
  - clock.go:      Wall-clock parsing, week anchoring
  - refresher.go:  The 1-second display refresher
  - service.go:    Clock-in/clock-out workflow
*/
package worktime

import (
	"errors"
	"time"
)

// =============================================================================
// ATTENDANCE RECORD
// =============================================================================

// Record is one employee-day of attendance. Clock times are 12-hour
// wall-clock strings ("09:00 AM"); nil means the event hasn't happened.
type Record struct {
	EmployeeID string
	Date       time.Time
	ClockIn    *string
	ClockOut   *string
	Status     string
}

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// State is the derived session state of a record.
type State int

const (
	StateNoSession State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "none"
	}
}

// StateOf derives the session state from the record's shape alone. Clock-out
// wins: a record carrying one is closed whatever else it holds.
func StateOf(r Record) State {
	switch {
	case r.ClockOut != nil:
		return StateClosed
	case r.ClockIn == nil:
		return StateNoSession
	default:
		return StateOpen
	}
}

// =============================================================================
// WEEKLY PROGRESS
// =============================================================================

// WeeklyProgress banks the durations of closed sessions for one employee and
// week. The currently open session is never included; ComputeElapsed adds it
// on the fly while ticking is active.
type WeeklyProgress struct {
	EmployeeID  string
	WeekOf      time.Time // Monday-anchored date key
	Accumulated time.Duration
}

// WeeklySnapshot is what the display layer consumes: the banked duration and
// whether the weekly cap still permits accrual.
type WeeklySnapshot struct {
	Accumulated time.Duration
	CapReached  bool
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAlreadyClockedIn is returned when today already has an open or
	// closed session.
	ErrAlreadyClockedIn = errors.New("already clocked in today")

	// ErrNotClockedIn is returned when clocking out without an open session.
	ErrNotClockedIn = errors.New("no open session to clock out of")
)
