/*
clock.go - Wall-clock parsing and week anchoring

PURPOSE:
  Converts between the 12-hour wall-clock strings stored on attendance
  records and absolute instants, and anchors dates to their Monday week key.

CLOCK STRINGS:
  Records store "03:04 PM" style strings (what the clock-in UI shows).
  Combining one with the record's date yields the absolute instant in the
  date's location, so elapsed arithmetic stays DST-correct.
*/
package worktime

import (
	"time"
)

// ClockLayout is the wall-clock format stored on attendance records.
const ClockLayout = "03:04 PM"

// FormatClock renders an instant as a record clock string.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// ParseClock combines a wall-clock string with a record date into an
// absolute instant in the date's location.
func ParseClock(s string, date time.Time) (time.Time, error) {
	c, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}

// WeekAnchor returns the Monday-anchored date key for the week containing t.
func WeekAnchor(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// time.Weekday puts Sunday at 0; shift so Monday is the week start.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// SameWeek reports whether two instants fall in the same Monday-anchored week.
func SameWeek(a, b time.Time) bool {
	return WeekAnchor(a).Equal(WeekAnchor(b))
}
