/*
thai.go - Buddhist Era date formatting

PURPOSE:
  All dates shown to users are rendered in the Thai civil calendar:
  Buddhist Era year (Gregorian + 543) with abbreviated Thai month names.
  Range formatting uses a three-tier elision so the shortest unambiguous
  form is produced:

    different BE years   ->  "30 ธ.ค. 2567 - 2 ม.ค. 2568"
    same year, months    ->  "30 มิ.ย. - 2 ก.ค. 2567"
    same month           ->  "1-5 ก.ค. 2567"

  Two width variants exist because the system historically rendered the
  weekly window with full 4-digit years server-side while per-item ranges
  use a compact 2-digit year. Both are kept display-compatible.

SEE ALSO:
  - window.go: merges business-day runs and formats them with FormatRange
*/
package calendar

import (
	"fmt"
	"time"
)

// BEOffset converts a Gregorian year to a Buddhist Era year.
const BEOffset = 543

// ThaiConjunction joins merged business-day runs in the weekly window.
const ThaiConjunction = " และ "

var thaiMonthsAbbr = [12]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// MonthAbbr returns the Thai abbreviation for a month.
func MonthAbbr(m time.Month) string { return thaiMonthsAbbr[int(m)-1] }

// BEYear returns the Buddhist Era year of a date.
func BEYear(d Date) int { return d.Year() + BEOffset }

// FormatDate renders a single date with a full BE year: "2 ม.ค. 2567".
func FormatDate(d Date) string {
	return fmt.Sprintf("%d %s %d", d.Day(), MonthAbbr(d.Month()), BEYear(d))
}

// FormatRange renders a date range with full BE years and three-tier elision.
func FormatRange(start, end Date) string {
	if start.Equal(end) {
		return FormatDate(start)
	}
	switch {
	case BEYear(start) != BEYear(end):
		return fmt.Sprintf("%d %s %d - %d %s %d",
			start.Day(), MonthAbbr(start.Month()), BEYear(start),
			end.Day(), MonthAbbr(end.Month()), BEYear(end))
	case start.Month() != end.Month():
		return fmt.Sprintf("%d %s - %d %s %d",
			start.Day(), MonthAbbr(start.Month()),
			end.Day(), MonthAbbr(end.Month()), BEYear(end))
	default:
		return fmt.Sprintf("%d-%d %s %d",
			start.Day(), end.Day(), MonthAbbr(start.Month()), BEYear(end))
	}
}

// FormatDateCompact renders a single date with a 2-digit BE year: "2 ม.ค.67".
func FormatDateCompact(d Date) string {
	return fmt.Sprintf("%d %s%02d", d.Day(), MonthAbbr(d.Month()), BEYear(d)%100)
}

// FormatRangeCompact renders a date range with 2-digit BE years, used for
// per-item unavailability intervals.
func FormatRangeCompact(start, end Date) string {
	if start.Equal(end) {
		return FormatDateCompact(start)
	}
	switch {
	case BEYear(start) != BEYear(end):
		return fmt.Sprintf("%d %s%02d - %d %s%02d",
			start.Day(), MonthAbbr(start.Month()), BEYear(start)%100,
			end.Day(), MonthAbbr(end.Month()), BEYear(end)%100)
	case start.Month() != end.Month():
		return fmt.Sprintf("%d %s - %d %s%02d",
			start.Day(), MonthAbbr(start.Month()),
			end.Day(), MonthAbbr(end.Month()), BEYear(end)%100)
	default:
		return fmt.Sprintf("%d - %d %s%02d",
			start.Day(), end.Day(), MonthAbbr(start.Month()), BEYear(end)%100)
	}
}
