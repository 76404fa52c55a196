/*
overtime.go - Driver hour budgets and overtime classification

PURPOSE:
  Answers "if I add a trip of H hours for driver D on date X, what
  happens?". Sums the driver's scheduled hours, classifies the day
  against the driver's cap, and reports remaining budget. Also performs
  the stricter wall-clock overlap check: a candidate can fit the hour
  budget and still collide with an existing trip.

CLASSIFICATION:
  maxTotal = maxDaily + ceiling (ceiling is a process-wide policy value,
  2 hours unless configured otherwise)

    newTotal >  maxTotal              -> "exceeded"  (blocked)
    maxDaily <  newTotal <= maxTotal  -> "overtime"  (needs approval)
    newTotal <= maxDaily              -> "available"

  Severity is monotonic non-decreasing in candidate duration.

PRECISION:
  All arithmetic is decimal.Decimal. Reported figures are rounded to two
  places, half away from zero; classification compares unrounded values.

SEE ALSO:
  - availability.go: the calendar/override side of assignment checks
*/
package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// POLICY
// =============================================================================

// OvertimePolicy carries the process-wide hour policy. Injected rather
// than hard-coded so tests can run alternative policies.
type OvertimePolicy struct {
	// DefaultDailyHours applies when a driver has no active
	// OvertimeSetting or the setting carries no positive daily cap.
	DefaultDailyHours decimal.Decimal

	// CeilingHours is added on top of the daily cap to obtain the hard
	// cap beyond which a day is "exceeded" rather than merely "overtime".
	CeilingHours decimal.Decimal
}

// DefaultOvertimePolicy is the shipped policy: 8h normal day, 2h ceiling.
func DefaultOvertimePolicy() OvertimePolicy {
	return OvertimePolicy{
		DefaultDailyHours: decimal.NewFromInt(8),
		CeilingHours:      decimal.NewFromInt(2),
	}
}

// =============================================================================
// RESULTS
// =============================================================================

// OvertimeStatus classifies one driver-day under a candidate assignment.
type OvertimeStatus string

const (
	OvertimeAvailable OvertimeStatus = "available"
	OvertimeOvertime  OvertimeStatus = "overtime"
	OvertimeExceeded  OvertimeStatus = "exceeded"
)

// Severity orders statuses for ranking: available < overtime < exceeded.
func (s OvertimeStatus) Severity() int {
	switch s {
	case OvertimeOvertime:
		return 1
	case OvertimeExceeded:
		return 2
	default:
		return 0
	}
}

// DailyHours is a driver's scheduled load on one date.
type DailyHours struct {
	DriverID   string
	Date       Date
	Trips      []Trip // ordered by scheduled start time
	TotalHours decimal.Decimal
}

// OvertimeResult reports the classification of a candidate assignment.
// All hour figures are rounded to two decimal places.
type OvertimeResult struct {
	DriverID string
	Date     Date

	Status           OvertimeStatus
	Available        bool
	RequiresApproval bool

	MaxDailyHours  decimal.Decimal
	MaxTotalHours  decimal.Decimal
	ExistingHours  decimal.Decimal
	CandidateHours decimal.Decimal
	NewTotalHours  decimal.Decimal

	NewOvertimeHours       decimal.Decimal
	RemainingNormalHours   decimal.Decimal
	RemainingOvertimeHours decimal.Decimal

	// Weekly figures are advisory context only; they never change the
	// daily classification. MaxWeeklyHours is zero when the driver has
	// no active weekly cap.
	WeekHours      decimal.Decimal
	MaxWeeklyHours decimal.Decimal
}

// Conflict reports a wall-clock overlap with an existing trip.
type Conflict struct {
	HasConflict bool
	Reason      string
	Trip        *Trip
}

// RankedDriver pairs a driver with their classification for a candidate
// duration.
type RankedDriver struct {
	Driver Resource
	Result OvertimeResult
}

// =============================================================================
// OVERTIME RESOLVER
// =============================================================================

// Overtime computes hour budgets for drivers. Stateless per call.
type Overtime struct {
	trips     TripLedger
	settings  OvertimeSettingSource
	directory ResourceDirectory
	policy    OvertimePolicy
	log       *zap.Logger
}

// NewOvertime wires an overtime resolver with the given policy.
func NewOvertime(trips TripLedger, settings OvertimeSettingSource, directory ResourceDirectory, policy OvertimePolicy, log *zap.Logger) *Overtime {
	if log == nil {
		log = zap.NewNop()
	}
	return &Overtime{trips: trips, settings: settings, directory: directory, policy: policy, log: log}
}

// DriverDailyHours sums duration over the driver's non-cancelled trips on
// one date, excluding the trip being edited when excludeTripID is
// non-zero. Trips come back ordered by scheduled start for display.
func (o *Overtime) DriverDailyHours(ctx context.Context, driverID string, date Date, excludeTripID int64) (*DailyHours, error) {
	if err := o.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return o.dailyHours(ctx, driverID, date, excludeTripID)
}

func (o *Overtime) dailyHours(ctx context.Context, driverID string, date Date, excludeTripID int64) (*DailyHours, error) {
	trips, err := o.trips.TripsOnDate(ctx, KindDriver, driverID, date)
	if err != nil {
		return nil, err
	}
	trips = excludeTrip(trips, excludeTripID)
	sort.Slice(trips, func(i, j int) bool { return trips[i].Start < trips[j].Start })

	total := decimal.Zero
	for _, t := range trips {
		total = total.Add(t.DurationHours)
	}
	return &DailyHours{DriverID: driverID, Date: date, Trips: trips, TotalHours: total}, nil
}

// CheckOvertime classifies a candidate assignment of candidateHours for
// the driver on the given date.
func (o *Overtime) CheckOvertime(ctx context.Context, driverID string, date Date, candidateHours decimal.Decimal, excludeTripID int64) (*OvertimeResult, error) {
	if !candidateHours.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDuration, candidateHours)
	}
	if err := o.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}
	return o.checkOvertime(ctx, driverID, date, candidateHours, excludeTripID)
}

func (o *Overtime) checkOvertime(ctx context.Context, driverID string, date Date, candidateHours decimal.Decimal, excludeTripID int64) (*OvertimeResult, error) {
	setting, err := o.settings.OvertimeSettingFor(ctx, driverID)
	if err != nil {
		return nil, err
	}

	maxDaily := o.policy.DefaultDailyHours
	maxWeekly := decimal.Zero
	if setting != nil && setting.IsActive {
		if setting.MaxDailyHours.IsPositive() {
			maxDaily = setting.MaxDailyHours
		}
		if setting.MaxWeeklyHours.IsPositive() {
			maxWeekly = setting.MaxWeeklyHours
		}
	}
	maxTotal := maxDaily.Add(o.policy.CeilingHours)

	daily, err := o.dailyHours(ctx, driverID, date, excludeTripID)
	if err != nil {
		return nil, err
	}
	existing := daily.TotalHours
	newTotal := existing.Add(candidateHours)

	result := &OvertimeResult{
		DriverID:       driverID,
		Date:           date,
		MaxDailyHours:  round2(maxDaily),
		MaxTotalHours:  round2(maxTotal),
		ExistingHours:  round2(existing),
		CandidateHours: round2(candidateHours),
		NewTotalHours:  round2(newTotal),
		MaxWeeklyHours: round2(maxWeekly),
	}

	switch {
	case newTotal.GreaterThan(maxTotal):
		result.Status = OvertimeExceeded
	case newTotal.GreaterThan(maxDaily):
		result.Status = OvertimeOvertime
		result.Available = true
		result.RequiresApproval = true
	default:
		result.Status = OvertimeAvailable
		result.Available = true
	}

	result.NewOvertimeHours = round2(clampZero(newTotal.Sub(maxDaily)))
	result.RemainingNormalHours = round2(clampZero(maxDaily.Sub(existing)))
	result.RemainingOvertimeHours = round2(clampZero(maxTotal.Sub(existing)))

	// Advisory weekly load: existing trips in the ISO week plus the
	// candidate.
	weekStart, weekEnd := date.WeekBounds()
	weekTrips, err := o.trips.TripsInRange(ctx, KindDriver, driverID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	weekHours := candidateHours
	for _, t := range excludeTrip(weekTrips, excludeTripID) {
		weekHours = weekHours.Add(t.DurationHours)
	}
	result.WeekHours = round2(weekHours)

	return result, nil
}

// CheckRealTimeConflict flags a wall-clock overlap between the candidate
// window [start, start+candidateHours) and any existing non-cancelled
// trip of the driver on the date, half-open on both sides.
func (o *Overtime) CheckRealTimeConflict(ctx context.Context, driverID string, date Date, start ClockTime, candidateHours decimal.Decimal, excludeTripID int64) (*Conflict, error) {
	if !candidateHours.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDuration, candidateHours)
	}
	if err := o.requireDriver(ctx, driverID); err != nil {
		return nil, err
	}

	trips, err := o.trips.TripsOnDate(ctx, KindDriver, driverID, date)
	if err != nil {
		return nil, err
	}

	hours, _ := candidateHours.Float64()
	newStart, newEnd := start, start.AddHours(hours)
	for _, trip := range excludeTrip(trips, excludeTripID) {
		tripStart, tripEnd := trip.Interval()
		if newStart < tripEnd && newEnd > tripStart {
			t := trip
			return &Conflict{
				HasConflict: true,
				Reason:      fmt.Sprintf("Overlaps trip #%d (%s-%s)", trip.ID, tripStart, tripEnd),
				Trip:        &t,
			}, nil
		}
	}
	return &Conflict{}, nil
}

// RankDriverAvailability classifies every eligible driver for a candidate
// duration and sorts ascending by severity, ties broken by driver name.
// Drivers whose classification fails are logged and skipped.
func (o *Overtime) RankDriverAvailability(ctx context.Context, date Date, candidateHours decimal.Decimal, zone string, excludeTripID int64) ([]RankedDriver, error) {
	if !candidateHours.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDuration, candidateHours)
	}

	drivers, err := o.directory.ListResources(ctx, KindDriver, zone)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedDriver, 0, len(drivers))
	for _, driver := range drivers {
		result, err := o.checkOvertime(ctx, driver.ID, date, candidateHours, excludeTripID)
		if err != nil {
			o.log.Warn("skipping driver in overtime ranking",
				zap.String("driver_id", driver.ID),
				zap.Error(err))
			continue
		}
		ranked = append(ranked, RankedDriver{Driver: driver, Result: *result})
	}

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := ranked[i].Result.Status.Severity(), ranked[j].Result.Status.Severity()
		if si != sj {
			return si < sj
		}
		return ranked[i].Driver.Name < ranked[j].Driver.Name
	})
	return ranked, nil
}

func (o *Overtime) requireDriver(ctx context.Context, driverID string) error {
	driver, err := o.directory.GetResource(ctx, KindDriver, driverID)
	if err != nil {
		return err
	}
	if driver == nil {
		return &NotFoundError{Kind: KindDriver, ID: driverID}
	}
	return nil
}

// round2 rounds to two decimal places, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
