package calendar

import "time"

// =============================================================================
// THAI PUBLIC HOLIDAYS
// =============================================================================

// holidayDates is the fixed set of Thai public holidays observed by the
// legacy weekly window, as (month, day) pairs applied to any year.
// Substitution days for holidays falling on weekends are not modeled.
var holidayDates = [][2]int{
	{1, 1},   // New Year's Day
	{2, 26},  // Makha Bucha Day
	{4, 7},   // Chakri Day (substitution)
	{4, 14}, {4, 15}, {4, 16}, // Songkran
	{5, 1},   // National Labour Day
	{5, 5},   // Coronation Day (substitution)
	{5, 26},  // Visakha Bucha Day
	{6, 3},   // H.M. the Queen's Birthday
	{7, 25},  // Asarnha Bucha Day (substitution)
	{7, 28},  // H.M. the King's Birthday
	{8, 12},  // H.M. the Queen Mother's Birthday
	{10, 13}, // King Rama IX Memorial Day
	{10, 23}, // Chulalongkorn Day
	{12, 5},  // King Rama IX's Birthday
	{12, 10}, // Constitution Day
	{12, 31}, // New Year's Eve
}

// PublicHolidays returns the Thai public holiday set for a year.
func PublicHolidays(year int) map[Date]bool {
	set := make(map[Date]bool, len(holidayDates))
	for _, md := range holidayDates {
		set[NewDate(year, time.Month(md[0]), md[1])] = true
	}
	return set
}

// holidaysSpanning returns the holiday set covering a year and the next,
// so a window computed in late December sees January holidays.
func holidaysSpanning(year int) map[Date]bool {
	set := PublicHolidays(year)
	for d := range PublicHolidays(year + 1) {
		set[d] = true
	}
	return set
}
