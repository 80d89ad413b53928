/*
accumulate.go - Elapsed work-time computation and display formatting

PURPOSE:
  Pure computation behind the live work timer. Given the day's record, the
  week's banked duration and the cap flag, derives what the display shows.

CONTRACT (per session state):
  Closed:    return the banked weekly duration; repeated calls with
             different now values are constant
  NoSession: return zero
  Open:      session = max(0, now - clockIn); banked + session while the
             weekly timer is active, banked alone once the cap is hit

  The current instant is an explicit parameter. Nothing in this file reads
  the ambient clock, so every path is deterministic under test.

DEGRADATION:
  A malformed clock-in string contributes a zero session instead of an
  error; a missing clock-in is the legitimate no-session state.
*/
package worktime

import (
	"fmt"
	"time"
)

// ComputeElapsed derives the displayed duration for a record.
//
// weeklyAccumulated is the week's banked duration excluding the open
// session. weeklyActive is false once the weekly cap has been reached, at
// which point the open session no longer accrues and the display freezes at
// the banked figure.
func ComputeElapsed(r Record, weeklyAccumulated time.Duration, weeklyActive bool, now time.Time) time.Duration {
	switch StateOf(r) {
	case StateClosed:
		return weeklyAccumulated
	case StateNoSession:
		return 0
	}

	if !weeklyActive {
		return weeklyAccumulated
	}

	clockIn, err := ParseClock(*r.ClockIn, r.Date)
	if err != nil {
		// Unparseable clock-in: the session contributes nothing.
		return weeklyAccumulated
	}

	session := now.Sub(clockIn)
	if session < 0 {
		session = 0
	}
	return weeklyAccumulated + session
}

// SessionDuration returns the length of a closed session, zero for anything
// else (open sessions are measured against now by ComputeElapsed).
func SessionDuration(r Record) time.Duration {
	if StateOf(r) != StateClosed || r.ClockIn == nil {
		return 0
	}
	in, err := ParseClock(*r.ClockIn, r.Date)
	if err != nil {
		return 0
	}
	out, err := ParseClock(*r.ClockOut, r.Date)
	if err != nil {
		return 0
	}
	d := out.Sub(in)
	if d < 0 {
		return 0
	}
	return d
}

// FormatElapsed renders a duration as HH:MM:SS, zero-padded. Hours are not
// wrapped modulo 24; negative durations clamp to zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
