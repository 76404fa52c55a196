/*
stores.go - Collaborator interfaces required from outside the engine

PURPOSE:
  The engine owns no durable state. Master data, trips, overrides,
  holidays and overtime settings live behind these narrow interfaces so
  the resolvers never depend on a storage technology.

IMPLEMENTATIONS:
  - store/sqlite: production store, one SQLite database behind all five
  - schedule/store: in-memory store for tests and development

CONTRACTS:
  - Lookups return (nil, nil) for "absent", reserving errors for I/O
    failures (which implementations wrap with ErrStoreUnavailable).
  - TripLedger never returns cancelled trips.
  - UpsertOverride is atomic per (kind, resource, date): two concurrent
    writers produce one row, last committed write wins.

SEE ALSO:
  - availability.go, overtime.go, override.go: the consumers
*/
package schedule

import "context"

// =============================================================================
// OVERRIDE STORE
// =============================================================================

// OverrideStore persists per-resource-per-date availability exceptions.
type OverrideStore interface {
	// GetOverride returns the override for (kind, resourceID, date),
	// or nil when none exists.
	GetOverride(ctx context.Context, kind ResourceKind, resourceID string, date Date) (*AvailabilityOverride, error)

	// GetOverridesInRange returns overrides for one resource with dates
	// in [from, to], in ascending date order.
	GetOverridesInRange(ctx context.Context, kind ResourceKind, resourceID string, from, to Date) ([]AvailabilityOverride, error)

	// UpsertOverride inserts or updates the row for
	// (kind, resourceID, date) atomically.
	UpsertOverride(ctx context.Context, ov AvailabilityOverride) error

	// InsertOverrideIfAbsent inserts the row only when no row exists for
	// its (kind, resourceID, date). Reports whether a row was inserted.
	// Existing rows are never touched.
	InsertOverrideIfAbsent(ctx context.Context, ov AvailabilityOverride) (bool, error)
}

// =============================================================================
// TRIP LEDGER
// =============================================================================

// TripLedger is read-only access to scheduled trips. Implementations
// exclude cancelled trips from every method.
type TripLedger interface {
	// TripsOnDate returns the resource's non-cancelled trips on one date.
	TripsOnDate(ctx context.Context, kind ResourceKind, resourceID string, date Date) ([]Trip, error)

	// TripsInRange returns the resource's non-cancelled trips with dates
	// in [from, to].
	TripsInRange(ctx context.Context, kind ResourceKind, resourceID string, from, to Date) ([]Trip, error)

	// GetTrip returns one trip by id regardless of status, or nil when
	// the id is unknown. Used to find the current occupants of a trip
	// being edited.
	GetTrip(ctx context.Context, id int64) (*Trip, error)
}

// =============================================================================
// MASTER DATA
// =============================================================================

// ResourceDirectory is read access to enabled drivers and trucks.
type ResourceDirectory interface {
	// ListResources returns enabled resources of one kind, optionally
	// filtered by zone (empty zone means all zones).
	ListResources(ctx context.Context, kind ResourceKind, zone string) ([]Resource, error)

	// GetResource returns one enabled resource, or nil when the id is
	// unknown or the resource is disabled.
	GetResource(ctx context.Context, kind ResourceKind, id string) (*Resource, error)
}

// HolidayCalendar lists registered company day-offs.
type HolidayCalendar interface {
	// DayOffsInRange returns day-offs with dates in [from, to].
	DayOffsInRange(ctx context.Context, from, to Date) ([]CompanyDayOff, error)
}

// OvertimeSettingSource looks up per-driver overtime settings.
type OvertimeSettingSource interface {
	// OvertimeSettingFor returns the driver's setting, or nil when the
	// driver has none.
	OvertimeSettingFor(ctx context.Context, driverID string) (*OvertimeSetting, error)
}
