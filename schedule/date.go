/*
date.go - Day-granularity dates and clock times

PURPOSE:
  The whole engine reasons about calendar days, not instants. Date wraps a
  UTC-midnight time.Time so that equality, weekday checks and range
  iteration never depend on a time-of-day component that master data may
  or may not carry. ClockTime covers the one place wall-clock time matters:
  trip start times for the real-time conflict check.

KEY CONCEPTS IN THIS FILE:
  - Date:      one calendar day (parsed from/printed as YYYY-MM-DD)
  - ClockTime: minutes since midnight (parsed from/printed as HH:MM)
  - Calendar rules: IsWeekend, IsCompanyDayOff (pure, no I/O)

SEE ALSO:
  - availability.go: consumes the calendar rules in its rule chain
  - overtime.go: uses ClockTime for interval overlap
*/
package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - One calendar day
// =============================================================================

// DateLayout is the wire format for dates everywhere in this system.
const DateLayout = "2006-01-02"

// Date is a calendar day. The zero value is "no date".
type Date struct {
	t time.Time
}

// NewDate builds a Date for the given year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses YYYY-MM-DD. Invalid input is a hard error, never a
// silent default.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }

// WeekBounds returns the Monday and Sunday of the ISO week containing d.
func (d Date) WeekBounds() (Date, Date) {
	offset := int(d.Weekday())
	if offset == 0 { // Sunday
		offset = 7
	}
	monday := d.AddDays(1 - offset)
	return monday, monday.AddDays(6)
}

// DatesBetween returns every day in [from, to] inclusive.
// Returns ErrInvalidDate when the range is inverted.
func DatesBetween(from, to Date) ([]Date, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidDate, to, from)
	}
	var days []Date
	for cur := from; cur.BeforeOrEqual(to); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days, nil
}

// =============================================================================
// CALENDAR RULES - Pure, deterministic, no I/O
// =============================================================================

// IsWeekend reports whether d falls on Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsCompanyDayOff reports whether any registered day-off falls on d.
// Time-of-day and country are ignored here: callers that need a
// country-scoped view filter the slice first.
func IsCompanyDayOff(d Date, dayOffs []CompanyDayOff) bool {
	for _, off := range dayOffs {
		if off.Date.Equal(d) {
			return true
		}
	}
	return false
}

// =============================================================================
// CLOCK TIME - Minutes since midnight
// =============================================================================

// ClockTime is a time of day expressed as minutes since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses HH:MM (24-hour).
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// AddHours shifts the clock time by a fractional number of hours,
// rounded to the nearest minute.
func (c ClockTime) AddHours(hours float64) ClockTime {
	return c + ClockTime(int(hours*60+0.5))
}
