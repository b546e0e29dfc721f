package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/muster/personnel-engine/calendar"
)

func TestFormatRange_ThreeTierElision(t *testing.T) {
	cases := []struct {
		name       string
		start, end calendar.Date
		want       string
	}{
		{
			name:  "same day collapses to single date",
			start: date(2024, time.March, 10), end: date(2024, time.March, 10),
			want: "10 มี.ค. 2567",
		},
		{
			name:  "same month shows compact day range",
			start: date(2024, time.March, 10), end: date(2024, time.March, 15),
			want: "10-15 มี.ค. 2567",
		},
		{
			name:  "same year elides duplicate year",
			start: date(2024, time.March, 28), end: date(2024, time.April, 2),
			want: "28 มี.ค. - 2 เม.ย. 2567",
		},
		{
			name:  "different years show both full dates",
			start: date(2024, time.December, 30), end: date(2025, time.January, 2),
			want: "30 ธ.ค. 2567 - 2 ม.ค. 2568",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calendar.FormatRange(tc.start, tc.end))
		})
	}
}

func TestFormatRangeCompact_TwoDigitYears(t *testing.T) {
	cases := []struct {
		name       string
		start, end calendar.Date
		want       string
	}{
		{
			name:  "same day",
			start: date(2024, time.July, 5), end: date(2024, time.July, 5),
			want: "5 ก.ค.67",
		},
		{
			name:  "same month",
			start: date(2024, time.July, 1), end: date(2024, time.July, 5),
			want: "1 - 5 ก.ค.67",
		},
		{
			name:  "same year",
			start: date(2024, time.June, 28), end: date(2024, time.July, 2),
			want: "28 มิ.ย. - 2 ก.ค.67",
		},
		{
			name:  "different years",
			start: date(2024, time.December, 30), end: date(2025, time.January, 2),
			want: "30 ธ.ค.67 - 2 ม.ค.68",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calendar.FormatRangeCompact(tc.start, tc.end))
		})
	}
}

func TestBEYear(t *testing.T) {
	assert.Equal(t, 2567, calendar.BEYear(date(2024, time.March, 10)))
	assert.Equal(t, 2568, calendar.BEYear(date(2025, time.January, 1)))
}

func TestPublicHolidays_ContainsFixedSet(t *testing.T) {
	set := calendar.PublicHolidays(2025)
	assert.True(t, set[date(2025, time.January, 1)])
	assert.True(t, set[date(2025, time.April, 14)])
	assert.True(t, set[date(2025, time.December, 31)])
	assert.False(t, set[date(2025, time.March, 3)])
	assert.Len(t, set, 18)
}
