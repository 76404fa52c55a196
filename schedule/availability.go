/*
availability.go - The availability rule chain and its resolvers

PURPOSE:
  Decides whether a resource may be assigned on a date, and why not when
  it may not. The original back office expressed this as nested
  conditionals mutating a shared reason/available pair; here it is an
  ordered list of pure rule functions, each returning either a terminal
  decision or no opinion.

PRECEDENCE (load-bearing, first terminal decision wins):
  1. Current occupant of the trip being edited  -> available
  2. Override marked day-off                    -> unavailable, day-off
  3. Override marked unavailable                -> unavailable
  4. Weekend / company holiday                  -> unavailable, day-off
     (unless an available override whose reason carries an override
     token re-opens the day)
  5. Conflicting non-cancelled trip             -> unavailable
  6. Default                                    -> available

  Rules 4 and 5 must not swap: an overridden "available" weekend slot
  would otherwise be blocked by the same-day trip check before the
  override is read.

BATCH SEMANTICS:
  Grid and listing operations never fail wholesale because one resource
  misbehaves; anomalies are logged and the resource skipped. Single
  resource operations propagate NotFound.

SEE ALSO:
  - override.go: the write path (SetOverride, InitializeRange)
  - overtime.go: the hour-budget side of the same screens
*/
package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Decision reasons surfaced to planners. The override-token sniffing in
// reasonReopensDay is a convention inherited from the back office's wire
// contract; see DESIGN.md before changing it.
const (
	ReasonCurrentTrip     = "Assigned to this trip"
	ReasonDayOffScheduled = "Day off scheduled"
	ReasonManualBlock     = "Manually marked as unavailable"
	ReasonWeekend         = "Weekend"
	ReasonCompanyHoliday  = "Company holiday"
	ReasonDefault         = "Available for assignment"
)

// =============================================================================
// PURE RESOLUTION - rule chain over pre-fetched inputs
// =============================================================================

// DayInput carries everything one day's resolution needs. All I/O happens
// before the rule chain runs, so each rule is pure and testable alone.
type DayInput struct {
	ResourceID string
	Date       Date

	// Override is the persisted exception for this (resource, date),
	// nil when none exists.
	Override *AvailabilityOverride

	// DayOffs are the registered company holidays to consider.
	DayOffs []CompanyDayOff

	// Trips are the resource's non-cancelled trips on Date, already
	// excluding the trip being edited, if any.
	Trips []Trip

	// CurrentOccupant marks this resource as the current occupant of the
	// trip being edited. It short-circuits every other rule so that
	// editing a trip never locks out its own driver or truck.
	CurrentOccupant bool
}

type dayRule func(DayInput) *Decision

// dayRules is the precedence chain. Order is observable behavior.
var dayRules = []dayRule{
	ruleCurrentOccupant,
	ruleOverrideDayOff,
	ruleOverrideUnavailable,
	ruleCalendarDayOff,
	ruleTripConflict,
}

// ResolveDay runs the rule chain and returns the first terminal decision,
// falling back to the available default.
func ResolveDay(in DayInput) Decision {
	for _, rule := range dayRules {
		if d := rule(in); d != nil {
			return *d
		}
	}
	reason := ReasonDefault
	if in.Override != nil && in.Override.Reason != "" {
		reason = in.Override.Reason
	}
	return Decision{ResourceID: in.ResourceID, Date: in.Date, Available: true, Reason: reason}
}

func ruleCurrentOccupant(in DayInput) *Decision {
	if !in.CurrentOccupant {
		return nil
	}
	return &Decision{ResourceID: in.ResourceID, Date: in.Date, Available: true, Reason: ReasonCurrentTrip}
}

func ruleOverrideDayOff(in DayInput) *Decision {
	if in.Override == nil || !in.Override.IsDayOff {
		return nil
	}
	reason := in.Override.Reason
	if reason == "" {
		reason = ReasonDayOffScheduled
	}
	return &Decision{ResourceID: in.ResourceID, Date: in.Date, IsDayOff: true, Reason: reason}
}

func ruleOverrideUnavailable(in DayInput) *Decision {
	if in.Override == nil || in.Override.IsAvailable {
		return nil
	}
	reason := in.Override.Reason
	if reason == "" {
		reason = ReasonManualBlock
	}
	return &Decision{ResourceID: in.ResourceID, Date: in.Date, Reason: reason}
}

func ruleCalendarDayOff(in DayInput) *Decision {
	var label string
	switch {
	case in.Date.IsWeekend():
		label = ReasonWeekend
	case IsCompanyDayOff(in.Date, in.DayOffs):
		label = ReasonCompanyHoliday
	default:
		return nil
	}

	if in.Override != nil && in.Override.IsAvailable && reasonReopensDay(in.Override.Reason) {
		return &Decision{
			ResourceID: in.ResourceID,
			Date:       in.Date,
			Available:  true,
			Reason:     fmt.Sprintf("%s - Available by override: %s", label, in.Override.Reason),
		}
	}
	return &Decision{ResourceID: in.ResourceID, Date: in.Date, IsDayOff: true, Reason: label}
}

func ruleTripConflict(in DayInput) *Decision {
	for _, trip := range in.Trips {
		if trip.Status == TripCancelled {
			continue
		}
		return &Decision{
			ResourceID: in.ResourceID,
			Date:       in.Date,
			Reason:     fmt.Sprintf("Already assigned to trip #%d", trip.ID),
		}
	}
	return nil
}

// reasonReopensDay implements the inherited convention that an available
// override only beats the calendar default when its reason mentions
// "override" or "emergency" (case-insensitive substring).
func reasonReopensDay(reason string) bool {
	lower := strings.ToLower(reason)
	return strings.Contains(lower, "override") || strings.Contains(lower, "emergency")
}

// ResolveRange applies ResolveDay once per day in [from, to] over
// pre-fetched inputs. No cross-date state; identical inputs yield
// identical output.
func ResolveRange(resourceID string, from, to Date, overrides []AvailabilityOverride, dayOffs []CompanyDayOff, trips []Trip) (map[Date]Decision, error) {
	days, err := DatesBetween(from, to)
	if err != nil {
		return nil, err
	}

	overrideByDate := make(map[Date]*AvailabilityOverride, len(overrides))
	for i := range overrides {
		overrideByDate[overrides[i].Date] = &overrides[i]
	}
	tripsByDate := make(map[Date][]Trip)
	for _, t := range trips {
		tripsByDate[t.Date] = append(tripsByDate[t.Date], t)
	}

	decisions := make(map[Date]Decision, len(days))
	for _, day := range days {
		decisions[day] = ResolveDay(DayInput{
			ResourceID: resourceID,
			Date:       day,
			Override:   overrideByDate[day],
			DayOffs:    dayOffs,
			Trips:      tripsByDate[day],
		})
	}
	return decisions, nil
}

// =============================================================================
// AVAILABILITY RESOLVER - I/O composition over the rule chain
// =============================================================================

// Availability composes the rule chain with the collaborator stores.
type Availability struct {
	overrides OverrideStore
	trips     TripLedger
	directory ResourceDirectory
	holidays  HolidayCalendar
	log       *zap.Logger
}

// NewAvailability wires an availability resolver. A nil logger disables
// anomaly logging.
func NewAvailability(overrides OverrideStore, trips TripLedger, directory ResourceDirectory, holidays HolidayCalendar, log *zap.Logger) *Availability {
	if log == nil {
		log = zap.NewNop()
	}
	return &Availability{overrides: overrides, trips: trips, directory: directory, holidays: holidays, log: log}
}

// DayStatus resolves one (resource, date), excluding the trip being
// edited when excludeTripID is non-zero. The current occupant of that
// trip is always reported available.
func (a *Availability) DayStatus(ctx context.Context, kind ResourceKind, resourceID string, date Date, excludeTripID int64) (Decision, error) {
	res, err := a.directory.GetResource(ctx, kind, resourceID)
	if err != nil {
		return Decision{}, err
	}
	if res == nil {
		return Decision{}, &NotFoundError{Kind: kind, ID: resourceID}
	}

	currentOccupant, err := a.isCurrentOccupant(ctx, kind, resourceID, excludeTripID)
	if err != nil {
		return Decision{}, err
	}

	override, err := a.overrides.GetOverride(ctx, kind, resourceID, date)
	if err != nil {
		return Decision{}, err
	}
	dayOffs, err := a.holidays.DayOffsInRange(ctx, date, date)
	if err != nil {
		return Decision{}, err
	}
	trips, err := a.trips.TripsOnDate(ctx, kind, resourceID, date)
	if err != nil {
		return Decision{}, err
	}

	return ResolveDay(DayInput{
		ResourceID:      resourceID,
		Date:            date,
		Override:        override,
		DayOffs:         dayOffs,
		Trips:           excludeTrip(trips, excludeTripID),
		CurrentOccupant: currentOccupant,
	}), nil
}

// RangeStatus resolves one resource across [from, to].
func (a *Availability) RangeStatus(ctx context.Context, kind ResourceKind, resourceID string, from, to Date) (map[Date]Decision, error) {
	res, err := a.directory.GetResource(ctx, kind, resourceID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, &NotFoundError{Kind: kind, ID: resourceID}
	}

	dayOffs, err := a.holidays.DayOffsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return a.rangeFor(ctx, kind, resourceID, from, to, dayOffs)
}

func (a *Availability) rangeFor(ctx context.Context, kind ResourceKind, resourceID string, from, to Date, dayOffs []CompanyDayOff) (map[Date]Decision, error) {
	overrides, err := a.overrides.GetOverridesInRange(ctx, kind, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	trips, err := a.trips.TripsInRange(ctx, kind, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	return ResolveRange(resourceID, from, to, overrides, dayOffs, trips)
}

// =============================================================================
// BATCH GRID
// =============================================================================

// BatchRequest selects the resource set for a calendar grid. Filtering
// and pagination apply to the resource list before any date resolution,
// so a page never cuts a resource's grid in half.
type BatchRequest struct {
	Kind   ResourceKind
	From   Date
	To     Date
	Search string
	Zone   string

	// PageIndex is zero-based. PageSize <= 0 disables pagination.
	PageIndex int
	PageSize  int
}

// ResourceGrid is one resource's resolved date range plus summary counts
// for grid header rows.
type ResourceGrid struct {
	Resource         Resource
	Days             map[Date]Decision
	AvailableCount   int
	UnavailableCount int
	DayOffCount      int
}

// BatchResult is a page of resource grids. TotalCount is the filtered
// resource count before pagination.
type BatchResult struct {
	Data       []ResourceGrid
	TotalCount int
}

// BatchStatus resolves a grid of decisions for a filtered, paginated
// resource set. A resource whose resolution fails is logged and skipped,
// never synthesized.
func (a *Availability) BatchStatus(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if req.To.Before(req.From) {
		return nil, fmt.Errorf("%w: range end %s before start %s", ErrInvalidDate, req.To, req.From)
	}

	resources, err := a.directory.ListResources(ctx, req.Kind, req.Zone)
	if err != nil {
		return nil, err
	}

	if req.Search != "" {
		needle := strings.ToLower(req.Search)
		filtered := resources[:0]
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Name), needle) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	sort.Slice(resources, func(i, j int) bool { return resources[i].Name < resources[j].Name })
	total := len(resources)
	resources = pageOf(resources, req.PageIndex, req.PageSize)

	dayOffs, err := a.holidays.DayOffsInRange(ctx, req.From, req.To)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Data: make([]ResourceGrid, 0, len(resources)), TotalCount: total}
	for _, res := range resources {
		days, err := a.rangeFor(ctx, req.Kind, res.ID, req.From, req.To, dayOffs)
		if err != nil {
			a.log.Warn("skipping resource in availability grid",
				zap.String("kind", string(req.Kind)),
				zap.String("resource_id", res.ID),
				zap.Error(err))
			continue
		}

		grid := ResourceGrid{Resource: res, Days: days}
		for _, d := range days {
			switch {
			case d.Available:
				grid.AvailableCount++
			case d.IsDayOff:
				grid.DayOffCount++
			default:
				grid.UnavailableCount++
			}
		}
		result.Data = append(result.Data, grid)
	}
	return result, nil
}

// =============================================================================
// DAY PARTITION - candidate lists for trip planning
// =============================================================================

// DayPartition splits a resource set into available and unavailable for
// one date, each sorted by resource name.
type DayPartition struct {
	Available   []ResourceDecision
	Unavailable []ResourceDecision
}

// ListAvailableForDate resolves every enabled resource of a kind for one
// date and partitions the results. When excludeTripID names a trip being
// edited, its current occupant is always listed available.
func (a *Availability) ListAvailableForDate(ctx context.Context, kind ResourceKind, date Date, zone string, excludeTripID int64) (*DayPartition, error) {
	resources, err := a.directory.ListResources(ctx, kind, zone)
	if err != nil {
		return nil, err
	}

	occupantID := ""
	if excludeTripID != 0 {
		trip, err := a.trips.GetTrip(ctx, excludeTripID)
		if err != nil {
			return nil, err
		}
		if trip != nil {
			occupantID = trip.ResourceID(kind)
		}
	}

	dayOffs, err := a.holidays.DayOffsInRange(ctx, date, date)
	if err != nil {
		return nil, err
	}

	part := &DayPartition{}
	for _, res := range resources {
		override, err := a.overrides.GetOverride(ctx, kind, res.ID, date)
		if err != nil {
			a.log.Warn("skipping resource in day listing",
				zap.String("kind", string(kind)),
				zap.String("resource_id", res.ID),
				zap.Error(err))
			continue
		}
		trips, err := a.trips.TripsOnDate(ctx, kind, res.ID, date)
		if err != nil {
			a.log.Warn("skipping resource in day listing",
				zap.String("kind", string(kind)),
				zap.String("resource_id", res.ID),
				zap.Error(err))
			continue
		}

		decision := ResolveDay(DayInput{
			ResourceID:      res.ID,
			Date:            date,
			Override:        override,
			DayOffs:         dayOffs,
			Trips:           excludeTrip(trips, excludeTripID),
			CurrentOccupant: occupantID != "" && res.ID == occupantID,
		})

		rd := ResourceDecision{Resource: res, Decision: decision}
		if decision.Available {
			part.Available = append(part.Available, rd)
		} else {
			part.Unavailable = append(part.Unavailable, rd)
		}
	}

	byName := func(list []ResourceDecision) {
		sort.Slice(list, func(i, j int) bool { return list[i].Resource.Name < list[j].Resource.Name })
	}
	byName(part.Available)
	byName(part.Unavailable)
	return part, nil
}

// isCurrentOccupant reports whether the resource is the current driver or
// truck of the trip being edited.
func (a *Availability) isCurrentOccupant(ctx context.Context, kind ResourceKind, resourceID string, excludeTripID int64) (bool, error) {
	if excludeTripID == 0 {
		return false, nil
	}
	trip, err := a.trips.GetTrip(ctx, excludeTripID)
	if err != nil {
		return false, err
	}
	if trip == nil {
		return false, nil
	}
	return trip.ResourceID(kind) == resourceID, nil
}

func excludeTrip(trips []Trip, excludeTripID int64) []Trip {
	if excludeTripID == 0 {
		return trips
	}
	kept := trips[:0]
	for _, t := range trips {
		if t.ID != excludeTripID {
			kept = append(kept, t)
		}
	}
	return kept
}

func pageOf(resources []Resource, pageIndex, pageSize int) []Resource {
	if pageSize <= 0 {
		return resources
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	start := pageIndex * pageSize
	if start >= len(resources) {
		return nil
	}
	end := start + pageSize
	if end > len(resources) {
		end = len(resources)
	}
	return resources[start:end]
}
