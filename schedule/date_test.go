package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/scheduling-engine/schedule"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate_RoundTrip(t *testing.T) {
	// GIVEN: A wire-format date string
	// WHEN: Parsing and formatting it back
	// THEN: The string survives unchanged

	d, err := schedule.ParseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", d.String())
	assert.Equal(t, time.Monday, d.Weekday())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "02-03-2026", "2026-13-01", "not a date"} {
		_, err := schedule.ParseDate(input)
		assert.ErrorIs(t, err, schedule.ErrInvalidDate, "input %q", input)
	}
}

func TestDate_IsWeekend(t *testing.T) {
	sat := schedule.NewDate(2026, time.March, 7)
	sun := schedule.NewDate(2026, time.March, 8)
	mon := schedule.NewDate(2026, time.March, 2)

	assert.True(t, sat.IsWeekend())
	assert.True(t, sun.IsWeekend())
	assert.False(t, mon.IsWeekend())
}

func TestDate_WeekBounds_ISOWeek(t *testing.T) {
	// GIVEN: A Wednesday
	// WHEN: Computing its week bounds
	// THEN: The week runs Monday through Sunday

	wed := schedule.NewDate(2026, time.March, 4)
	start, end := wed.WeekBounds()
	assert.Equal(t, "2026-03-02", start.String())
	assert.Equal(t, "2026-03-08", end.String())

	// A Sunday belongs to the week that started the previous Monday.
	sun := schedule.NewDate(2026, time.March, 8)
	start, end = sun.WeekBounds()
	assert.Equal(t, "2026-03-02", start.String())
	assert.Equal(t, "2026-03-08", end.String())

	// A Monday starts its own week.
	mon := schedule.NewDate(2026, time.March, 2)
	start, _ = mon.WeekBounds()
	assert.Equal(t, "2026-03-02", start.String())
}

func TestDatesBetween_Inclusive(t *testing.T) {
	from := schedule.NewDate(2026, time.March, 2)
	to := schedule.NewDate(2026, time.March, 6)

	days, err := schedule.DatesBetween(from, to)
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.Equal(t, "2026-03-02", days[0].String())
	assert.Equal(t, "2026-03-06", days[4].String())
}

func TestDatesBetween_SingleDay(t *testing.T) {
	d := schedule.NewDate(2026, time.March, 2)
	days, err := schedule.DatesBetween(d, d)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestDatesBetween_InvertedRange(t *testing.T) {
	from := schedule.NewDate(2026, time.March, 6)
	to := schedule.NewDate(2026, time.March, 2)
	_, err := schedule.DatesBetween(from, to)
	assert.ErrorIs(t, err, schedule.ErrInvalidDate)
}

func TestIsCompanyDayOff(t *testing.T) {
	holiday := schedule.NewDate(2026, time.May, 1)
	dayOffs := []schedule.CompanyDayOff{{ID: "h1", Date: holiday, Name: "Labour Day"}}

	assert.True(t, schedule.IsCompanyDayOff(holiday, dayOffs))
	assert.False(t, schedule.IsCompanyDayOff(holiday.AddDays(1), dayOffs))
	assert.False(t, schedule.IsCompanyDayOff(holiday, nil))
}

// =============================================================================
// CLOCK TIME TESTS
// =============================================================================

func TestParseClockTime(t *testing.T) {
	c, err := schedule.ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Hour())
	assert.Equal(t, 30, c.Minute())
	assert.Equal(t, "09:30", c.String())

	_, err = schedule.ParseClockTime("9h30")
	assert.ErrorIs(t, err, schedule.ErrInvalidClockTime)
	_, err = schedule.ParseClockTime("")
	assert.ErrorIs(t, err, schedule.ErrInvalidClockTime)
}

func TestClockTime_AddHours(t *testing.T) {
	start := schedule.NewClockTime(9, 0)

	assert.Equal(t, "11:00", start.AddHours(2).String())
	assert.Equal(t, "10:30", start.AddHours(1.5).String())
	// Fractional hours round to the nearest minute.
	assert.Equal(t, "09:15", start.AddHours(0.25).String())
}
