/*
window.go - Reporting window computation

PURPOSE:
  Computes the reporting window a department should submit against.

  Weekly: the next full week after the one containing today. Two variants
  are supported because consumers evolved from one to the other:
    - Legacy: the first five working days of next week, excluding weekends
      and the fixed Thai public holiday set. Surviving days are merged into
      contiguous runs and joined with the Thai conjunction, e.g.
      "13-14 เม.ย. 2568 และ 17-18 เม.ย. 2568".
    - Simple: the fixed Monday-Sunday span of next week, no exclusions.

  Daily: the next unsubmitted day for a department. If a report already
  exists for (department, today), the window advances to tomorrow.

KNOWN LIMITATION (kept intentionally):
  The daily window peeks exactly one day ahead. If tomorrow's report was
  also already submitted, the window still lands on tomorrow. Consumers
  depend on this; do not add scan-ahead without changing them too.

SEE ALSO:
  - thai.go: range formatting rules
  - muster/service.go: feeds report existence into DailyLookup
*/
package calendar

import (
	"context"
	"strings"
)

// WeekRangeMode selects how the weekly window is computed.
type WeekRangeMode string

const (
	// WeekRangeLegacy excludes weekends and public holidays and merges the
	// remaining working days into human-readable runs.
	WeekRangeLegacy WeekRangeMode = "legacy"

	// WeekRangeSimple is the full Monday-Sunday span of next week.
	WeekRangeSimple WeekRangeMode = "simple"
)

// DailyLookup answers whether a daily report has been submitted for a
// department on a given date. Implemented by the report store.
type DailyLookup interface {
	HasDailyReport(ctx context.Context, department string, date Date) (bool, error)
}

// Service computes reporting windows.
type Service struct {
	Mode    WeekRangeMode
	Reports DailyLookup
}

func NewService(mode WeekRangeMode, reports DailyLookup) *Service {
	if mode == "" {
		mode = WeekRangeSimple
	}
	return &Service{Mode: mode, Reports: reports}
}

// NextWeekRange returns the formatted weekly reporting window after the week
// containing today.
func (s *Service) NextWeekRange(today Date) string {
	switch s.Mode {
	case WeekRangeLegacy:
		return legacyWeekRange(today)
	default:
		monday := today.NextMonday()
		return FormatRange(monday, monday.AddDays(6))
	}
}

// NextDailyDate returns the date the department's next daily report covers:
// today, or tomorrow when today is already submitted.
func (s *Service) NextDailyDate(ctx context.Context, department string, today Date) (Date, error) {
	submitted, err := s.Reports.HasDailyReport(ctx, department, today)
	if err != nil {
		return Date{}, err
	}
	if submitted {
		return today.AddDays(1), nil
	}
	return today, nil
}

// legacyWeekRange collects the first five working days of next week and
// formats the contiguous runs.
func legacyWeekRange(today Date) string {
	holidays := holidaysSpanning(today.Year())

	var working []Date
	day := today.NextMonday()
	for len(working) < 5 {
		if !day.IsWeekend() && !holidays[day] {
			working = append(working, day)
		}
		day = day.AddDays(1)
	}

	parts := make([]string, 0, len(working))
	for _, run := range groupConsecutive(working) {
		parts = append(parts, FormatRange(run[0], run[len(run)-1]))
	}
	return strings.Join(parts, ThaiConjunction)
}

// groupConsecutive splits an ascending day list into runs of adjacent days.
func groupConsecutive(days []Date) [][]Date {
	if len(days) == 0 {
		return nil
	}
	groups := [][]Date{{days[0]}}
	for _, d := range days[1:] {
		last := groups[len(groups)-1]
		if last[len(last)-1].AddDays(1).Equal(d) {
			groups[len(groups)-1] = append(last, d)
		} else {
			groups = append(groups, []Date{d})
		}
	}
	return groups
}
