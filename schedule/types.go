/*
Package schedule decides whether a driver or truck may be assigned to a
trip on a given date, and how a candidate assignment classifies against a
driver's daily hour budget.

PURPOSE:
  The transport back office is mostly CRUD over master data. The part that
  carries real invariants lives here: the availability rule chain
  (calendar defaults vs. persisted overrides vs. trip conflicts vs. the
  edit-mode exception) and the overtime budget classification.

KEY CONCEPTS IN THIS FILE (types.go):
  - Resource:             a driver or a truck, as the engine sees it
  - Trip:                 the subset of trip fields the engine reads
  - AvailabilityOverride: a persisted per-resource-per-date exception
  - OvertimeSetting:      per-driver hour caps and overtime terms
  - CompanyDayOff:        an administrator-registered holiday
  - Decision:             the resolved status for one (resource, date)

DESIGN PRINCIPLES:
  1. The engine is stateless per call; durable state lives behind the
     narrow interfaces in stores.go.
  2. Hour arithmetic uses decimal.Decimal, never float accumulation.
  3. Decisions are deterministic given identical inputs; "today" is an
     input, never read from the system clock inside a resolver.

SEE ALSO:
  - availability.go: the rule chain producing Decisions
  - overtime.go: the hour-budget classification
  - stores.go: collaborator interfaces
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOURCES - Drivers and trucks
// =============================================================================

// ResourceKind distinguishes the two schedulable resource variants.
type ResourceKind string

const (
	KindDriver ResourceKind = "driver"
	KindTruck  ResourceKind = "truck"
)

// Valid reports whether k names a known resource kind.
func (k ResourceKind) Valid() bool {
	return k == KindDriver || k == KindTruck
}

// Resource is a driver or truck as seen by the scheduling engine.
// Master-data management owns the lifecycle; the engine only reads
// enabled resources.
type Resource struct {
	ID      string
	Kind    ResourceKind
	Name    string
	Enabled bool
	Zone    string

	// Permit holds the driver's licence number or the truck's
	// registration plate, whichever applies.
	Permit string
}

// =============================================================================
// TRIPS
// =============================================================================

type TripStatus string

const (
	TripPlanned    TripStatus = "planned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// Trip carries the trip fields relevant to availability and hour
// aggregation. Only non-cancelled trips participate in either.
type Trip struct {
	ID            int64
	Reference     string
	DriverID      string
	TruckID       string
	Date          Date
	Start         ClockTime
	DurationHours decimal.Decimal
	Status        TripStatus
}

// ResourceID returns the driver or truck id of this trip for the given kind.
func (t Trip) ResourceID(kind ResourceKind) string {
	if kind == KindTruck {
		return t.TruckID
	}
	return t.DriverID
}

// Interval returns the trip's [start, end) wall-clock window in minutes
// since midnight.
func (t Trip) Interval() (start, end ClockTime) {
	dur, _ := t.DurationHours.Float64()
	return t.Start, t.Start.AddHours(dur)
}

// =============================================================================
// AVAILABILITY OVERRIDES
// =============================================================================

// AvailabilityOverride is an explicit exception to the calendar default
// for one resource on one date. At most one row exists per
// (kind, resource, date); writes are upserts, never duplicate inserts.
type AvailabilityOverride struct {
	ID          string
	Kind        ResourceKind
	ResourceID  string
	Date        Date
	IsAvailable bool
	IsDayOff    bool
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// COMPANY DAY-OFFS
// =============================================================================

// CompanyDayOff is a holiday shared by all resources in a country.
// The engine reasons about it by date equality only.
type CompanyDayOff struct {
	ID          string
	Country     string
	Date        Date
	Name        string
	Description string
}

// =============================================================================
// OVERTIME SETTINGS
// =============================================================================

// OvertimeSetting holds a driver's hour caps and overtime terms.
// Zero-or-one per driver; absent or inactive settings fall back to the
// policy default daily cap.
type OvertimeSetting struct {
	DriverID              string
	IsActive              bool
	MaxDailyHours         decimal.Decimal
	MaxWeeklyHours        decimal.Decimal
	OvertimeRatePerHour   decimal.Decimal
	AllowWeekendOvertime  bool
	AllowHolidayOvertime  bool
	WeekendRateMultiplier decimal.Decimal
	HolidayRateMultiplier decimal.Decimal
	Notes                 string
	UpdatedAt             time.Time
}

// =============================================================================
// DECISIONS
// =============================================================================

// Decision is the resolved availability status for one (resource, date).
type Decision struct {
	ResourceID string
	Date       Date
	Available  bool
	IsDayOff   bool
	Reason     string
}

// ResourceDecision pairs a decision with the resource it concerns, for
// partitioned day listings.
type ResourceDecision struct {
	Resource Resource
	Decision Decision
}
