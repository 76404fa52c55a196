/*
override.go - The override write path and bulk initializer

PURPOSE:
  The only mutating operations in the engine. SetOverride records a manual
  toggle of one availability cell; InitializeRange seeds calendar-default
  rows for a list of dates without disturbing existing rows.

INVARIANTS:
  - At most one override row per (kind, resource, date). The store's
    UpsertOverride / InsertOverrideIfAbsent carry the atomicity; this
    layer never does check-then-write across two calls for SetOverride.
  - SetOverride refuses weekends and company holidays outright; those
    cells are owned by the calendar.
  - InitializeRange is idempotent: a second run with the same date list
    inserts nothing and changes nothing.
*/
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Overrides is the write path for availability exception rows.
type Overrides struct {
	store     OverrideStore
	directory ResourceDirectory
	holidays  HolidayCalendar
	log       *zap.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewOverrides wires the override write path.
func NewOverrides(store OverrideStore, directory ResourceDirectory, holidays HolidayCalendar, log *zap.Logger) *Overrides {
	if log == nil {
		log = zap.NewNop()
	}
	return &Overrides{store: store, directory: directory, holidays: holidays, log: log, now: time.Now}
}

// SetOverride records a manual availability toggle for one cell and
// returns the decision the cell now resolves to.
//
// The target date must not be a weekend or a registered company holiday;
// such writes fail with ErrDayOffLocked. Writes are atomic upserts: an
// existing row for the cell is updated in place, otherwise one is
// inserted, and two concurrent writers end with the last committed write.
func (o *Overrides) SetOverride(ctx context.Context, kind ResourceKind, resourceID string, date Date, isAvailable, isDayOff bool, reason string) (Decision, error) {
	res, err := o.directory.GetResource(ctx, kind, resourceID)
	if err != nil {
		return Decision{}, err
	}
	if res == nil {
		return Decision{}, &NotFoundError{Kind: kind, ID: resourceID}
	}

	if date.IsWeekend() {
		return Decision{}, &DayOffLockedError{Date: date, Reason: ReasonWeekend}
	}
	dayOffs, err := o.holidays.DayOffsInRange(ctx, date, date)
	if err != nil {
		return Decision{}, err
	}
	if IsCompanyDayOff(date, dayOffs) {
		return Decision{}, &DayOffLockedError{Date: date, Reason: ReasonCompanyHoliday}
	}

	now := o.now().UTC()
	ov := AvailabilityOverride{
		ID:          uuid.NewString(),
		Kind:        kind,
		ResourceID:  resourceID,
		Date:        date,
		IsAvailable: isAvailable,
		IsDayOff:    isDayOff,
		Reason:      reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.store.UpsertOverride(ctx, ov); err != nil {
		return Decision{}, err
	}

	o.log.Info("availability override written",
		zap.String("kind", string(kind)),
		zap.String("resource_id", resourceID),
		zap.String("date", date.String()),
		zap.Bool("is_available", isAvailable),
		zap.Bool("is_day_off", isDayOff))

	// The write path does not consult the trip ledger; the returned
	// decision reflects the override alone.
	return ResolveDay(DayInput{ResourceID: resourceID, Date: date, Override: &ov, DayOffs: dayOffs}), nil
}

// InitializeRange seeds one override row per date not already covered for
// the resource. Seeded values are the pure calendar defaults: weekends
// and holidays become day-off rows, everything else an available row.
// Dates already covered are left untouched.
func (o *Overrides) InitializeRange(ctx context.Context, kind ResourceKind, resourceID string, dates []Date) (int, error) {
	res, err := o.directory.GetResource(ctx, kind, resourceID)
	if err != nil {
		return 0, err
	}
	if res == nil {
		return 0, &NotFoundError{Kind: kind, ID: resourceID}
	}
	if len(dates) == 0 {
		return 0, nil
	}

	min, max := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	dayOffs, err := o.holidays.DayOffsInRange(ctx, min, max)
	if err != nil {
		return 0, err
	}

	initialized := 0
	for _, date := range dates {
		ov := calendarDefaultOverride(kind, resourceID, date, dayOffs, o.now().UTC())
		inserted, err := o.store.InsertOverrideIfAbsent(ctx, ov)
		if err != nil {
			return initialized, err
		}
		if inserted {
			initialized++
		}
	}

	o.log.Info("availability range initialized",
		zap.String("kind", string(kind)),
		zap.String("resource_id", resourceID),
		zap.Int("dates", len(dates)),
		zap.Int("initialized", initialized))
	return initialized, nil
}

// calendarDefaultOverride derives the seed row for one date purely from
// calendar rules.
func calendarDefaultOverride(kind ResourceKind, resourceID string, date Date, dayOffs []CompanyDayOff, now time.Time) AvailabilityOverride {
	ov := AvailabilityOverride{
		ID:          uuid.NewString(),
		Kind:        kind,
		ResourceID:  resourceID,
		Date:        date,
		IsAvailable: true,
		Reason:      ReasonDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch {
	case date.IsWeekend():
		ov.IsAvailable = false
		ov.IsDayOff = true
		ov.Reason = ReasonWeekend
	case IsCompanyDayOff(date, dayOffs):
		ov.IsAvailable = false
		ov.IsDayOff = true
		ov.Reason = ReasonCompanyHoliday
	}
	return ov
}
