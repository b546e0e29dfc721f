package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muster/personnel-engine/calendar"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeDailyLookup reports submissions from a fixed set.
type fakeDailyLookup struct {
	submitted map[string]bool // key: dept + "|" + ISO date
}

func (f *fakeDailyLookup) HasDailyReport(_ context.Context, department string, date calendar.Date) (bool, error) {
	return f.submitted[department+"|"+date.ISO()], nil
}

func date(y int, m time.Month, d int) calendar.Date { return calendar.NewDate(y, m, d) }

// =============================================================================
// WEEKLY WINDOW
// =============================================================================

func TestNextWeekRange_Simple_FullWeekSpan(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeSimple, nil)

	// GIVEN: Monday Jan 1 2024; next week is Jan 8-14, same month
	got := svc.NextWeekRange(date(2024, time.January, 1))
	assert.Equal(t, "8-14 ม.ค. 2567", got)
}

func TestNextWeekRange_Simple_SpansMonths(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeSimple, nil)

	// Next week runs Jun 30 - Jul 6 2025: year elided, months shown
	got := svc.NextWeekRange(date(2025, time.June, 23))
	assert.Equal(t, "30 มิ.ย. - 6 ก.ค. 2568", got)
}

func TestNextWeekRange_Simple_SpansYears(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeSimple, nil)

	// Next week runs Dec 30 2024 - Jan 5 2025: both full dates shown
	got := svc.NextWeekRange(date(2024, time.December, 23))
	assert.Equal(t, "30 ธ.ค. 2567 - 5 ม.ค. 2568", got)
}

func TestNextWeekRange_Simple_SundayStillRollsToNextWeek(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeSimple, nil)

	// Sunday Jan 7 2024 belongs to the Jan 1-7 week; the window is Jan 8-14
	got := svc.NextWeekRange(date(2024, time.January, 7))
	assert.Equal(t, "8-14 ม.ค. 2567", got)
}

func TestNextWeekRange_Legacy_MergesAroundSongkran(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeLegacy, nil)

	// GIVEN: The week of Apr 14-16 2025 (Songkran holidays)
	// WHEN: Computing the legacy window from the Monday before
	// THEN: Working days 17,18 and 21,22,23 form two runs joined by และ
	got := svc.NextWeekRange(date(2025, time.April, 7))
	assert.Equal(t, "17-18 เม.ย. 2568 และ 21-23 เม.ย. 2568", got)
}

func TestNextWeekRange_Legacy_YearRollover(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeLegacy, nil)

	// Dec 31 and Jan 1 are holidays; window crosses the BE year boundary so
	// each run carries its own full year
	got := svc.NextWeekRange(date(2024, time.December, 23))
	assert.Equal(t, "30 ธ.ค. 2567 และ 2-3 ม.ค. 2568 และ 6 ม.ค. 2568", got)
}

func TestNextWeekRange_Legacy_PlainWeek(t *testing.T) {
	svc := calendar.NewService(calendar.WeekRangeLegacy, nil)

	// No holidays in the week of Mar 10-14 2025: one run of five days
	got := svc.NextWeekRange(date(2025, time.March, 3))
	assert.Equal(t, "10-14 มี.ค. 2568", got)
}

// =============================================================================
// DAILY WINDOW
// =============================================================================

func TestNextDailyDate_Unsubmitted_ReturnsToday(t *testing.T) {
	lookup := &fakeDailyLookup{submitted: map[string]bool{}}
	svc := calendar.NewService(calendar.WeekRangeSimple, lookup)

	got, err := svc.NextDailyDate(context.Background(), "A", date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.ISO())
}

func TestNextDailyDate_Submitted_AdvancesOneDay(t *testing.T) {
	lookup := &fakeDailyLookup{submitted: map[string]bool{"A|2024-01-01": true}}
	svc := calendar.NewService(calendar.WeekRangeSimple, lookup)

	got, err := svc.NextDailyDate(context.Background(), "A", date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", got.ISO())
}

func TestNextDailyDate_PeeksExactlyOneDay(t *testing.T) {
	// GIVEN: Today AND tomorrow already submitted
	lookup := &fakeDailyLookup{submitted: map[string]bool{
		"A|2024-01-01": true,
		"A|2024-01-02": true,
	}}
	svc := calendar.NewService(calendar.WeekRangeSimple, lookup)

	// THEN: The window still lands on tomorrow; no scan-ahead
	got, err := svc.NextDailyDate(context.Background(), "A", date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", got.ISO())
}

func TestNextDailyDate_ScopedPerDepartment(t *testing.T) {
	lookup := &fakeDailyLookup{submitted: map[string]bool{"A|2024-01-01": true}}
	svc := calendar.NewService(calendar.WeekRangeSimple, lookup)

	got, err := svc.NextDailyDate(context.Background(), "B", date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got.ISO())
}
