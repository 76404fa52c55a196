package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/scheduling-engine/schedule"
	"github.com/fleetops/scheduling-engine/schedule/store"
)

func newOverrides(mem *store.Memory) *schedule.Overrides {
	return schedule.NewOverrides(mem, mem, mem, nil)
}

// =============================================================================
// SET OVERRIDE
// =============================================================================

func TestSetOverride_Weekday(t *testing.T) {
	// GIVEN: An enabled driver and a plain Monday
	// WHEN: Marking the day unavailable
	// THEN: The returned decision reflects the block and the row persists

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)

	decision, err := overrides.SetOverride(context.Background(), schedule.KindDriver, "d1", monday, false, false, "Truck inspection")
	require.NoError(t, err)
	assert.False(t, decision.Available)
	assert.Equal(t, "Truck inspection", decision.Reason)

	stored, err := mem.GetOverride(context.Background(), schedule.KindDriver, "d1", monday)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsAvailable)
	assert.Equal(t, "Truck inspection", stored.Reason)
}

func TestSetOverride_RejectsWeekend(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)

	_, err := overrides.SetOverride(context.Background(), schedule.KindDriver, "d1", saturday, false, false, "")
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidOperation(err))

	var locked *schedule.DayOffLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, schedule.ReasonWeekend, locked.Reason)

	// Nothing was written.
	stored, err := mem.GetOverride(context.Background(), schedule.KindDriver, "d1", saturday)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSetOverride_RejectsCompanyHoliday(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	mem.PutDayOff(schedule.CompanyDayOff{ID: "h1", Date: mayDay, Name: "Labour Day"})
	overrides := newOverrides(mem)

	_, err := overrides.SetOverride(context.Background(), schedule.KindDriver, "d1", mayDay, true, false, "Emergency coverage")
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidOperation(err))

	var locked *schedule.DayOffLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, schedule.ReasonCompanyHoliday, locked.Reason)
}

func TestSetOverride_UnknownResource(t *testing.T) {
	mem := store.NewMemory()
	overrides := newOverrides(mem)

	_, err := overrides.SetOverride(context.Background(), schedule.KindDriver, "ghost", monday, false, false, "")
	assert.True(t, schedule.IsNotFound(err))
}

func TestSetOverride_SecondWriteUpdatesInPlace(t *testing.T) {
	// GIVEN: An existing override for a cell
	// WHEN: Writing the cell again with new values
	// THEN: One row remains and it carries the last write

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)
	ctx := context.Background()

	_, err := overrides.SetOverride(ctx, schedule.KindDriver, "d1", monday, false, true, "Vacation")
	require.NoError(t, err)
	_, err = overrides.SetOverride(ctx, schedule.KindDriver, "d1", monday, true, false, "Vacation cancelled")
	require.NoError(t, err)

	all, err := mem.GetOverridesInRange(ctx, schedule.KindDriver, "d1", monday, monday)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsAvailable)
	assert.False(t, all[0].IsDayOff)
	assert.Equal(t, "Vacation cancelled", all[0].Reason)
}

func TestSetOverride_KindsDoNotCollide(t *testing.T) {
	// A driver and a truck sharing an id occupy separate cells.
	mem := store.NewMemory()
	mem.PutResource(driver("x1", "Ada"))
	mem.PutResource(schedule.Resource{ID: "x1", Kind: schedule.KindTruck, Name: "Volvo FH", Enabled: true})
	overrides := newOverrides(mem)
	ctx := context.Background()

	_, err := overrides.SetOverride(ctx, schedule.KindDriver, "x1", monday, false, true, "Vacation")
	require.NoError(t, err)

	truckRow, err := mem.GetOverride(ctx, schedule.KindTruck, "x1", monday)
	require.NoError(t, err)
	assert.Nil(t, truckRow)
}

// =============================================================================
// INITIALIZE RANGE
// =============================================================================

func TestInitializeRange_SeedsCalendarDefaults(t *testing.T) {
	// GIVEN: A week including a Saturday and a holiday Friday
	// WHEN: Initializing the range
	// THEN: Weekdays seed available, the weekend and holiday seed day-off

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	holiday := schedule.NewDate(2026, time.March, 5) // Thursday
	mem.PutDayOff(schedule.CompanyDayOff{ID: "h1", Date: holiday, Name: "Founders Day"})
	overrides := newOverrides(mem)
	ctx := context.Background()

	dates, err := schedule.DatesBetween(monday, saturday)
	require.NoError(t, err)

	inserted, err := overrides.InitializeRange(ctx, schedule.KindDriver, "d1", dates)
	require.NoError(t, err)
	assert.Equal(t, 6, inserted)

	mondayRow, err := mem.GetOverride(ctx, schedule.KindDriver, "d1", monday)
	require.NoError(t, err)
	require.NotNil(t, mondayRow)
	assert.True(t, mondayRow.IsAvailable)
	assert.Equal(t, schedule.ReasonDefault, mondayRow.Reason)

	holidayRow, err := mem.GetOverride(ctx, schedule.KindDriver, "d1", holiday)
	require.NoError(t, err)
	require.NotNil(t, holidayRow)
	assert.True(t, holidayRow.IsDayOff)
	assert.Equal(t, schedule.ReasonCompanyHoliday, holidayRow.Reason)

	saturdayRow, err := mem.GetOverride(ctx, schedule.KindDriver, "d1", saturday)
	require.NoError(t, err)
	require.NotNil(t, saturdayRow)
	assert.True(t, saturdayRow.IsDayOff)
	assert.Equal(t, schedule.ReasonWeekend, saturdayRow.Reason)
}

func TestInitializeRange_Idempotent(t *testing.T) {
	// GIVEN: A range already initialized
	// WHEN: Initializing it again
	// THEN: Zero rows are inserted and manual edits survive

	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)
	ctx := context.Background()

	dates, err := schedule.DatesBetween(monday, friday)
	require.NoError(t, err)

	first, err := overrides.InitializeRange(ctx, schedule.KindDriver, "d1", dates)
	require.NoError(t, err)
	assert.Equal(t, 5, first)

	// A planner edits Tuesday by hand.
	tuesday := monday.AddDays(1)
	_, err = overrides.SetOverride(ctx, schedule.KindDriver, "d1", tuesday, false, true, "Vacation")
	require.NoError(t, err)

	second, err := overrides.InitializeRange(ctx, schedule.KindDriver, "d1", dates)
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	row, err := mem.GetOverride(ctx, schedule.KindDriver, "d1", tuesday)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Vacation", row.Reason)
}

func TestInitializeRange_PartialOverlap(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)
	ctx := context.Background()

	firstHalf, err := schedule.DatesBetween(monday, monday.AddDays(2))
	require.NoError(t, err)
	_, err = overrides.InitializeRange(ctx, schedule.KindDriver, "d1", firstHalf)
	require.NoError(t, err)

	fullWeek, err := schedule.DatesBetween(monday, friday)
	require.NoError(t, err)
	inserted, err := overrides.InitializeRange(ctx, schedule.KindDriver, "d1", fullWeek)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestInitializeRange_EmptyAndUnknown(t *testing.T) {
	mem := store.NewMemory()
	mem.PutResource(driver("d1", "Ada"))
	overrides := newOverrides(mem)
	ctx := context.Background()

	inserted, err := overrides.InitializeRange(ctx, schedule.KindDriver, "d1", nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	_, err = overrides.InitializeRange(ctx, schedule.KindDriver, "ghost", []schedule.Date{monday})
	assert.True(t, schedule.IsNotFound(err))
}
