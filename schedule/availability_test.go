package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/scheduling-engine/schedule"
	"github.com/fleetops/scheduling-engine/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	monday   = schedule.NewDate(2026, time.March, 2)
	friday   = schedule.NewDate(2026, time.March, 6)
	saturday = schedule.NewDate(2026, time.March, 7)
	mayDay   = schedule.NewDate(2026, time.May, 1) // a Friday
)

func driver(id, name string) schedule.Resource {
	return schedule.Resource{ID: id, Kind: schedule.KindDriver, Name: name, Enabled: true}
}

func overrideOn(date schedule.Date, available, dayOff bool, reason string) *schedule.AvailabilityOverride {
	return &schedule.AvailabilityOverride{
		ID:          "ov-" + date.String(),
		Kind:        schedule.KindDriver,
		ResourceID:  "d1",
		Date:        date,
		IsAvailable: available,
		IsDayOff:    dayOff,
		Reason:      reason,
	}
}

func tripOn(id int64, driverID string, date schedule.Date, start schedule.ClockTime, hours float64) schedule.Trip {
	return schedule.Trip{
		ID:            id,
		DriverID:      driverID,
		Date:          date,
		Start:         start,
		DurationHours: decimal.NewFromFloat(hours),
		Status:        schedule.TripPlanned,
	}
}

func newAvailability(mem *store.Memory) *schedule.Availability {
	return schedule.NewAvailability(mem, mem, mem, mem, nil)
}

// =============================================================================
// RULE CHAIN - ResolveDay precedence
// =============================================================================

func TestResolveDay_DefaultWeekday(t *testing.T) {
	// GIVEN: A weekday with no override, no holiday, no trips
	// WHEN: Resolving the day
	// THEN: The resource is available with the default reason

	d := schedule.ResolveDay(schedule.DayInput{ResourceID: "d1", Date: monday})
	assert.True(t, d.Available)
	assert.False(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonDefault, d.Reason)
}

func TestResolveDay_CurrentOccupantBeatsEverything(t *testing.T) {
	// GIVEN: A day-off override AND the resource being the current
	//        occupant of the trip under edit
	// WHEN: Resolving the day
	// THEN: The resource stays available so editing never locks it out

	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID:      "d1",
		Date:            monday,
		Override:        overrideOn(monday, false, true, "Vacation"),
		CurrentOccupant: true,
	})
	assert.True(t, d.Available)
	assert.Equal(t, schedule.ReasonCurrentTrip, d.Reason)
}

func TestResolveDay_OverrideDayOff(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Override:   overrideOn(monday, false, true, "Vacation"),
	})
	assert.False(t, d.Available)
	assert.True(t, d.IsDayOff)
	assert.Equal(t, "Vacation", d.Reason)
}

func TestResolveDay_OverrideDayOff_DefaultReason(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Override:   overrideOn(monday, false, true, ""),
	})
	assert.True(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonDayOffScheduled, d.Reason)
}

func TestResolveDay_OverrideUnavailable(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Override:   overrideOn(monday, false, false, ""),
	})
	assert.False(t, d.Available)
	assert.False(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonManualBlock, d.Reason)
}

func TestResolveDay_Weekend(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{ResourceID: "d1", Date: saturday})
	assert.False(t, d.Available)
	assert.True(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonWeekend, d.Reason)
}

func TestResolveDay_CompanyHoliday(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       mayDay,
		DayOffs:    []schedule.CompanyDayOff{{ID: "h1", Date: mayDay, Name: "Labour Day"}},
	})
	assert.False(t, d.Available)
	assert.True(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonCompanyHoliday, d.Reason)
}

func TestResolveDay_WeekendReopenedByOverrideToken(t *testing.T) {
	// GIVEN: A Saturday with an available override whose reason carries
	//        the override token
	// WHEN: Resolving the day
	// THEN: The weekend default yields to the override

	for _, reason := range []string{"Manager override", "Emergency coverage", "EMERGENCY call-in"} {
		d := schedule.ResolveDay(schedule.DayInput{
			ResourceID: "d1",
			Date:       saturday,
			Override:   overrideOn(saturday, true, false, reason),
		})
		assert.True(t, d.Available, "reason %q should reopen the day", reason)
		assert.Contains(t, d.Reason, schedule.ReasonWeekend)
		assert.Contains(t, d.Reason, reason)
	}
}

func TestResolveDay_WeekendNotReopenedWithoutToken(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       saturday,
		Override:   overrideOn(saturday, true, false, "Prefers Saturdays"),
	})
	assert.False(t, d.Available)
	assert.True(t, d.IsDayOff)
	assert.Equal(t, schedule.ReasonWeekend, d.Reason)
}

func TestResolveDay_TripConflict(t *testing.T) {
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Trips:      []schedule.Trip{tripOn(7, "d1", monday, schedule.NewClockTime(9, 0), 4)},
	})
	assert.False(t, d.Available)
	assert.False(t, d.IsDayOff)
	assert.Equal(t, "Already assigned to trip #7", d.Reason)
}

func TestResolveDay_CancelledTripIgnored(t *testing.T) {
	trip := tripOn(7, "d1", monday, schedule.NewClockTime(9, 0), 4)
	trip.Status = schedule.TripCancelled

	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Trips:      []schedule.Trip{trip},
	})
	assert.True(t, d.Available)
}

func TestResolveDay_AvailableOverrideDoesNotShadowTripConflict(t *testing.T) {
	// GIVEN: An explicit available override on a weekday that also has a
	//        scheduled trip
	// WHEN: Resolving the day
	// THEN: The trip conflict still blocks the resource

	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       monday,
		Override:   overrideOn(monday, true, false, "Back from leave"),
		Trips:      []schedule.Trip{tripOn(7, "d1", monday, schedule.NewClockTime(9, 0), 4)},
	})
	assert.False(t, d.Available)
	assert.Equal(t, "Already assigned to trip #7", d.Reason)
}

func TestResolveDay_DayOffOverrideBeatsWeekendReopening(t *testing.T) {
	// A day-off override on a Saturday wins even when its reason carries
	// the override token: rule order is day-off first.
	d := schedule.ResolveDay(schedule.DayInput{
		ResourceID: "d1",
		Date:       saturday,
		Override:   overrideOn(saturday, false, true, "Emergency leave"),
	})
	assert.False(t, d.Available)
	assert.True(t, d.IsDayOff)
}

func TestResolveRange_Deterministic(t *testing.T) {
	overrides := []schedule.AvailabilityOverride{*overrideOn(monday, false, true, "Vacation")}
	trips := []schedule.Trip{tripOn(3, "d1", friday, schedule.NewClockTime(8, 0), 6)}

	first, err := schedule.ResolveRange("d1", monday, saturday, overrides, nil, trips)
	require.NoError(t, err)
	second, err := schedule.ResolveRange("d1", monday, saturday, overrides, nil, trips)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
	assert.True(t, first[monday].IsDayOff)
	assert.False(t, first[friday].Available)
	assert.True(t, first[saturday].IsDayOff)
	assert.True(t, first[monday.AddDays(1)].Available)
}

// =============================================================================
// AVAILABILITY SERVICE - I/O composition
// =============================================================================

func TestDayStatus_UnknownResource(t *testing.T) {
	mem := store.NewMemory()
	avail := newAvailability(mem)

	_, err := avail.DayStatus(context.Background(), schedule.KindDriver, "ghost", monday, 0)
	assert.True(t, schedule.IsNotFound(err))
}

func TestDayStatus_EditModeExcludesTripAndMarksOccupant(t *testing.T) {
	// GIVEN: A driver whose only Monday trip is the one being edited
	// WHEN: Resolving Monday with that trip excluded
	// THEN: The driver reports available as the trip's current occupant

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	tripID := mem.PutTrip(tripOn(0, "d1", monday, schedule.NewClockTime(9, 0), 4))

	avail := newAvailability(mem)

	blocked, err := avail.DayStatus(context.Background(), schedule.KindDriver, "d1", monday, 0)
	require.NoError(t, err)
	assert.False(t, blocked.Available)

	editing, err := avail.DayStatus(context.Background(), schedule.KindDriver, "d1", monday, tripID)
	require.NoError(t, err)
	assert.True(t, editing.Available)
	assert.Equal(t, schedule.ReasonCurrentTrip, editing.Reason)
}

func TestDayStatus_EditModeOtherDriverUnaffected(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	mem.PutResource(driver("d2", "Ben"))
	tripID := mem.PutTrip(tripOn(0, "d1", monday, schedule.NewClockTime(9, 0), 4))

	avail := newAvailability(mem)

	d, err := avail.DayStatus(context.Background(), schedule.KindDriver, "d2", monday, tripID)
	require.NoError(t, err)
	assert.True(t, d.Available)
	assert.Equal(t, schedule.ReasonDefault, d.Reason)
}

func TestBatchStatus_FilterSortPaginate(t *testing.T) {
	// GIVEN: Three drivers
	// WHEN: Requesting page 0 of size 2 over a working week
	// THEN: The page holds the first two by name and the total counts all

	mem := store.NewMemory()
	mem.PutResource(driver("d3", "Cora"))
	mem.PutResource(driver("d1", "Ada"))
	mem.PutResource(driver("d2", "Ben"))

	avail := newAvailability(mem)
	req := schedule.BatchRequest{
		Kind:      schedule.KindDriver,
		From:      monday,
		To:        friday,
		PageIndex: 0,
		PageSize:  2,
	}

	result, err := avail.BatchStatus(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Ada", result.Data[0].Resource.Name)
	assert.Equal(t, "Ben", result.Data[1].Resource.Name)

	// Five plain weekdays, all available.
	assert.Equal(t, 5, result.Data[0].AvailableCount)
	assert.Equal(t, 0, result.Data[0].UnavailableCount)
	assert.Equal(t, 0, result.Data[0].DayOffCount)

	req.PageIndex = 1
	result, err = avail.BatchStatus(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Cora", result.Data[0].Resource.Name)
}

func TestBatchStatus_Search(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada Lovelace"))
	mem.PutResource(driver("d2", "Ben"))

	avail := newAvailability(mem)
	result, err := avail.BatchStatus(context.Background(), schedule.BatchRequest{
		Kind:   schedule.KindDriver,
		From:   monday,
		To:     monday,
		Search: "love",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "d1", result.Data[0].Resource.ID)
}

func TestBatchStatus_CountsSplitDayOffsFromBlocks(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	mem.PutTrip(tripOn(0, "d1", friday, schedule.NewClockTime(8, 0), 6))

	avail := newAvailability(mem)
	result, err := avail.BatchStatus(context.Background(), schedule.BatchRequest{
		Kind: schedule.KindDriver,
		From: monday,
		To:   saturday,
	})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	grid := result.Data[0]
	assert.Equal(t, 4, grid.AvailableCount)   // Mon-Thu
	assert.Equal(t, 1, grid.UnavailableCount) // Friday trip
	assert.Equal(t, 1, grid.DayOffCount)      // Saturday
}

func TestBatchStatus_InvertedRange(t *testing.T) {
	mem := store.NewMemory()
	avail := newAvailability(mem)

	_, err := avail.BatchStatus(context.Background(), schedule.BatchRequest{
		Kind: schedule.KindDriver,
		From: friday,
		To:   monday,
	})
	assert.True(t, schedule.IsInvalidArgument(err))
}

func TestListAvailableForDate_PartitionSortedByName(t *testing.T) {
	// GIVEN: One busy driver and two free ones
	// WHEN: Partitioning a Monday
	// THEN: Each side is sorted by name and carries its decision

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Cora"))
	mem.PutResource(driver("d2", "Ada"))
	mem.PutResource(driver("d3", "Ben"))
	mem.PutTrip(tripOn(0, "d3", monday, schedule.NewClockTime(9, 0), 4))

	avail := newAvailability(mem)
	part, err := avail.ListAvailableForDate(context.Background(), schedule.KindDriver, monday, "", 0)
	require.NoError(t, err)

	require.Len(t, part.Available, 2)
	assert.Equal(t, "Ada", part.Available[0].Resource.Name)
	assert.Equal(t, "Cora", part.Available[1].Resource.Name)

	require.Len(t, part.Unavailable, 1)
	assert.Equal(t, "Ben", part.Unavailable[0].Resource.Name)
	assert.Contains(t, part.Unavailable[0].Decision.Reason, "Already assigned")
}

func TestListAvailableForDate_EditModeRestoresOccupant(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	tripID := mem.PutTrip(tripOn(0, "d1", monday, schedule.NewClockTime(9, 0), 4))

	avail := newAvailability(mem)
	part, err := avail.ListAvailableForDate(context.Background(), schedule.KindDriver, monday, "", tripID)
	require.NoError(t, err)

	require.Len(t, part.Available, 1)
	assert.Equal(t, schedule.ReasonCurrentTrip, part.Available[0].Decision.Reason)
	assert.Empty(t, part.Unavailable)
}

func TestListAvailableForDate_ZoneFilter(t *testing.T) {
	mem := store.NewMemory()
	north := driver("d1", "Ada")
	north.Zone = "north"
	south := driver("d2", "Ben")
	south.Zone = "south"
	mem.PutResource(north)
	mem.PutResource(south)

	avail := newAvailability(mem)
	part, err := avail.ListAvailableForDate(context.Background(), schedule.KindDriver, monday, "north", 0)
	require.NoError(t, err)

	require.Len(t, part.Available, 1)
	assert.Equal(t, "d1", part.Available[0].Resource.ID)
}
