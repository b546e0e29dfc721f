package calendar

import "time"

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day. All report windows and availability intervals in
// the system are day-granular; wall-clock time only appears on submission
// timestamps. Dates are normalized to midnight UTC so comparisons are exact.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISO returns the date formatted as 2006-01-02.
func (d Date) ISO() string { return d.t.Format("2006-01-02") }

func (d Date) String() string { return d.ISO() }

// NextMonday returns the Monday of the week after the one containing d.
// Monday itself rolls forward a full week.
func (d Date) NextMonday() Date {
	// time.Weekday has Sunday == 0; the reporting week starts on Monday.
	offset := int(d.Weekday()) - 1
	if offset < 0 {
		offset = 6
	}
	return d.AddDays(-offset).AddDays(7)
}
