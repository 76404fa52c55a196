/*
errors.go - Centralized error taxonomy for the scheduling engine

PURPOSE:
  All engine errors in one place. Callers branch on category, not on
  message text.

ERROR CATEGORIES:
  1. Invalid argument - malformed dates/times, non-positive durations
  2. Not found        - unknown single resource, driver or trip id
  3. Invalid operation - writing an override on a day-off date
  4. Unavailable      - collaborator I/O failure (store unreachable)

USAGE:
  Single-resource operations propagate these to the caller as terminal
  failures. Batch operations never fail the whole batch for one bad
  resource; they log and skip.

    if schedule.IsNotFound(err) { ... 404 ... }

SEE ALSO:
  - api/handlers.go: maps categories to HTTP status codes
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for input that does not parse as
	// YYYY-MM-DD, or for an inverted date range.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidClockTime is returned for input that does not parse as HH:MM.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrInvalidDuration is returned for a non-positive candidate duration.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrResourceNotFound is returned when a single-resource lookup names
	// an unknown or disabled resource.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrTripNotFound is returned when an exclude-trip id names no trip.
	ErrTripNotFound = errors.New("trip not found")

	// ErrDayOffLocked is returned when a caller tries to write an override
	// for a weekend or company holiday.
	ErrDayOffLocked = errors.New("cannot modify availability on a day off")

	// ErrStoreUnavailable wraps collaborator I/O failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which resource a lookup missed.
type NotFoundError struct {
	Kind ResourceKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrResourceNotFound }

// DayOffLockedError reports why an override write was refused.
type DayOffLockedError struct {
	Date   Date
	Reason string // "Weekend" or "Company holiday"
}

func (e *DayOffLockedError) Error() string {
	return fmt.Sprintf("cannot modify availability on %s: %s", e.Date, e.Reason)
}

func (e *DayOffLockedError) Unwrap() error { return ErrDayOffLocked }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidArgument reports malformed caller input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrInvalidDuration)
}

// IsNotFound reports a missing single resource or trip.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrTripNotFound)
}

// IsInvalidOperation reports a request that is well-formed but not
// permitted in the current state.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrDayOffLocked)
}

// IsUnavailable reports a collaborator failure the caller may retry.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
