/*
service.go - Report submission, availability queries, archive and history

PURPOSE:
  The Service is the single entry point for everything that mutates or
  reads report and availability state. It owns the invariants; the store
  only provides atomicity.

SUBMISSION FLOW:
  Submit -> stamp with server time at UTC+7 -> build the filtered
  availability records -> one store transaction replacing both the active
  report and the department's ledger slice.

CLOCK:
  Submission timestamps use a fixed UTC+7 offset applied to server UTC
  time, NOT the host's local timezone. The same offset yields the
  reference date used for record filtering. The clock is injectable for
  tests.

SEE ALSO:
  - daily.go: daily-mode roster partitioning and history
  - admin.go: personnel and user administration
  - calendar/window.go: reporting window computation
*/
package muster

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/muster/personnel-engine/calendar"
	"github.com/muster/personnel-engine/rank"
)

// serverUTCOffset is the fixed display timezone of the organization.
const serverUTCOffset = 7 * time.Hour

const timestampLayout = "2006-01-02 15:04:05"

// Service coordinates the report store, the availability ledger and the
// calendar service.
type Service struct {
	store     Store
	cal       *calendar.Service
	now       func() time.Time
	hasher    PasswordHasher
	adminUser string
}

type Option func(*Service)

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithProtectedAdmin names the account that can never be deleted.
func WithProtectedAdmin(username string) Option {
	return func(s *Service) { s.adminUser = username }
}

func NewService(store Store, weekMode calendar.WeekRangeMode, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	s.cal = calendar.NewService(weekMode, dailyLookup{store})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dailyLookup adapts the report store to the calendar service.
type dailyLookup struct {
	store ReportStore
}

func (d dailyLookup) HasDailyReport(ctx context.Context, department string, date calendar.Date) (bool, error) {
	return d.store.HasDailyReport(ctx, department, date.ISO())
}

// serverNow returns the current server time shifted to UTC+7.
func (s *Service) serverNow() time.Time {
	return s.now().UTC().Add(serverUTCOffset)
}

// Today returns the reference date for availability filtering.
func (s *Service) Today() calendar.Date {
	return calendar.DateOf(s.serverNow())
}

// =============================================================================
// REPORT WINDOWS
// =============================================================================

// WeeklyRange returns the formatted upcoming weekly reporting window.
func (s *Service) WeeklyRange() string {
	return s.cal.NextWeekRange(s.Today())
}

// DailyWindow returns the ISO date the department's next daily report
// covers: today, or tomorrow when today was already submitted.
func (s *Service) DailyWindow(ctx context.Context, department string) (string, error) {
	d, err := s.cal.NextDailyDate(ctx, department, s.Today())
	if err != nil {
		return "", err
	}
	return d.ISO(), nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitWeekly replaces the department's active report and rebuilds its
// slice of the availability ledger, atomically.
func (s *Service) SubmitWeekly(ctx context.Context, department, submittedBy string, items []ReportItem) (*Report, error) {
	if department == "" {
		return nil, Validationf("missing department")
	}

	now := s.serverNow()
	today := calendar.DateOf(now).ISO()

	report := Report{
		ID:          uuid.NewString(),
		Date:        today,
		Department:  department,
		SubmittedBy: submittedBy,
		Timestamp:   now.Format(timestampLayout),
		Items:       items,
	}
	records := buildRecords(department, items, today)

	if err := s.store.SubmitWeekly(ctx, report, records); err != nil {
		return nil, err
	}
	return &report, nil
}

// SubmitDaily upserts the (department, report date) report, computes the
// per-category head counts server-side, and rebuilds the department's
// ledger slice with the report date as reference.
func (s *Service) SubmitDaily(ctx context.Context, department, reportDate, submittedBy string, items []ReportItem) (*DailyReport, error) {
	if department == "" {
		return nil, Validationf("missing department")
	}
	if _, err := calendar.ParseDate(reportDate); err != nil {
		return nil, Validationf("invalid report_date %q (use YYYY-MM-DD)", reportDate)
	}

	summary, err := s.dailySummary(ctx, department, items)
	if err != nil {
		return nil, err
	}

	report := DailyReport{
		ID:          uuid.NewString(),
		Department:  department,
		ReportDate:  reportDate,
		SubmittedBy: submittedBy,
		Timestamp:   s.serverNow().Format(timestampLayout),
		Items:       items,
		Summary:     summary,
	}
	records := buildRecords(department, items, reportDate)

	if err := s.store.SubmitDaily(ctx, report, records); err != nil {
		return nil, err
	}
	return &report, nil
}

// buildRecords converts report items to availability records, dropping
// no-status items and intervals that ended before the reference date.
func buildRecords(department string, items []ReportItem, referenceDate string) []AvailabilityRecord {
	records := make([]AvailabilityRecord, 0, len(items))
	for _, item := range items {
		if item.Status == StatusNone || item.Status == "" {
			continue
		}
		if item.EndDate < referenceDate {
			continue
		}
		records = append(records, AvailabilityRecord{
			ID:          uuid.NewString(),
			PersonnelID: item.PersonnelID,
			Department:  department,
			Status:      item.Status,
			Details:     item.Details,
			StartDate:   item.StartDate,
			EndDate:     item.EndDate,
		})
	}
	return records
}

// =============================================================================
// AVAILABILITY QUERIES
// =============================================================================

// ActiveStatuses is the partition of a roster scope into unavailable
// personnel (with their records) and everyone else.
type ActiveStatuses struct {
	Unavailable []PersonStatus
	Available   []Person
	Total       int
}

// ActiveStatusesFor returns the active unavailability records and the
// complementary available personnel for a scope (department, or all when
// empty), as of a date. Both lists are ordered by rank, ties in storage
// order. The two sets partition the roster exactly.
func (s *Service) ActiveStatusesFor(ctx context.Context, department string, asOf calendar.Date) (*ActiveStatuses, error) {
	records, err := s.store.ActiveRecords(ctx, department, asOf.ISO())
	if err != nil {
		return nil, err
	}
	roster, err := s.store.ListPersonnel(ctx, department)
	if err != nil {
		return nil, err
	}

	unavailable := make(map[string]bool, len(records))
	for _, r := range records {
		unavailable[r.Person.ID] = true
	}

	available := make([]Person, 0, len(roster))
	for _, p := range roster {
		if !unavailable[p.ID] {
			available = append(available, p)
		}
	}

	for i := range records {
		records[i].RangeText = formatRecordRange(records[i].StartDate, records[i].EndDate)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return rank.SortKey(records[i].Person.Rank) < rank.SortKey(records[j].Person.Rank)
	})
	sort.SliceStable(available, func(i, j int) bool {
		return rank.SortKey(available[i].Rank) < rank.SortKey(available[j].Rank)
	})

	return &ActiveStatuses{
		Unavailable: records,
		Available:   available,
		Total:       len(roster),
	}, nil
}

// formatRecordRange renders a record's interval in the compact 2-digit BE
// form. Bounds that fail to parse are shown raw rather than dropped.
func formatRecordRange(start, end string) string {
	s, errS := calendar.ParseDate(start)
	e, errE := calendar.ParseDate(end)
	if errS != nil || errE != nil {
		if start == end {
			return start
		}
		return start + " - " + end
	}
	return calendar.FormatRangeCompact(s, e)
}

// =============================================================================
// ARCHIVE + HISTORY
// =============================================================================

// ArchiveInput is one report selected for archiving, as sent by the
// dashboard. SubmittedBy is the frozen display name.
type ArchiveInput struct {
	Date        string
	Department  string
	SubmittedBy string
	Timestamp   string
	Items       []ReportItem
}

// Archive moves the given reports into the immutable archive (idempotent
// per date+department) and then clears EVERY department's active weekly
// report. The global reset is intentional; callers must warn operators.
func (s *Service) Archive(ctx context.Context, inputs []ArchiveInput) error {
	rows := make([]ArchivedReport, 0, len(inputs))
	for _, in := range inputs {
		d, err := calendar.ParseDate(in.Date)
		if err != nil {
			return Validationf("invalid report date %q", in.Date)
		}
		rows = append(rows, ArchivedReport{
			ID:          uuid.NewString(),
			Year:        d.Year(),
			Month:       int(d.Month()),
			Date:        in.Date,
			Department:  in.Department,
			SubmittedBy: in.SubmittedBy,
			Timestamp:   in.Timestamp,
			Items:       in.Items,
		})
	}
	return s.store.ArchiveReports(ctx, rows)
}

// ActiveReports returns every department's active weekly report, newest
// first. The dashboard uses this to drive archive selection.
func (s *Service) ActiveReports(ctx context.Context) ([]Report, error) {
	return s.store.ActiveReports(ctx)
}

// ArchivedByMonth returns the archive grouped by year then month
// (Gregorian, as stored), newest rows first within each group.
func (s *Service) ArchivedByMonth(ctx context.Context) (map[string]map[string][]ArchivedReport, error) {
	rows, err := s.store.ArchivedReports(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string]map[string][]ArchivedReport)
	for _, r := range rows {
		year := strconv.Itoa(r.Year)
		month := strconv.Itoa(r.Month)
		if grouped[year] == nil {
			grouped[year] = make(map[string][]ArchivedReport)
		}
		grouped[year][month] = append(grouped[year][month], r)
	}
	return grouped, nil
}

// History merges a department's active and archived weekly reports and
// groups them by BE year then month of the submission timestamp, newest
// first within each group.
func (s *Service) History(ctx context.Context, department string) (map[string]map[string][]Report, error) {
	if department == "" {
		return nil, Validationf("missing department")
	}
	reports, err := s.store.ReportsForDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]map[string][]Report)
	for _, r := range reports {
		t, ok := parseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		year := strconv.Itoa(t.Year() + calendar.BEOffset)
		month := strconv.Itoa(int(t.Month()))
		if grouped[year] == nil {
			grouped[year] = make(map[string][]Report)
		}
		grouped[year][month] = append(grouped[year][month], r)
	}
	return grouped, nil
}

// parseTimestamp reads a stored submission timestamp, tolerating a
// fractional-seconds suffix from older rows.
func parseTimestamp(ts string) (time.Time, bool) {
	ts = strings.SplitN(ts, ".", 2)[0]
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ReportForEditing fetches a previously submitted report (active or
// archived) so the client can prefill the submission form. Read-only;
// editing is fetch-then-resubmit.
func (s *Service) ReportForEditing(ctx context.Context, id string) (*Report, error) {
	if id == "" {
		return nil, Validationf("missing report id")
	}
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrReportNotFound
	}
	return report, nil
}

// =============================================================================
// DASHBOARD
// =============================================================================

// SubmissionInfo describes a department's latest active submission.
type SubmissionInfo struct {
	SubmitterFullName string        `json:"submitter_fullname"`
	Timestamp         string        `json:"timestamp"`
	StatusCount       int           `json:"status_count"`
	Summary           *DailySummary `json:"summary,omitempty"`
}

// DashboardSummary is the admin overview of the weekly flow.
type DashboardSummary struct {
	AllDepartments  []string                  `json:"all_departments"`
	SubmittedInfo   map[string]SubmissionInfo `json:"submitted_info"`
	StatusSummary   map[string]int            `json:"status_summary"`
	TotalPersonnel  int                       `json:"total_personnel"`
	TotalOnDuty     int                       `json:"total_on_duty"`
	OnDutyPercent   string                    `json:"on_duty_percent"`
	WeeklyDateRange string                    `json:"weekly_date_range"`
}

// Dashboard aggregates the weekly submission state across departments.
func (s *Service) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	departments, err := s.store.Departments(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.store.ActiveReports(ctx)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]SubmissionInfo)
	statusSummary := make(map[string]int)
	for _, r := range reports {
		for _, item := range r.Items {
			statusSummary[item.Status]++
		}
		if _, seen := submitted[r.Department]; seen {
			continue // reports are newest first; keep the latest per department
		}
		info := SubmissionInfo{Timestamp: r.Timestamp, StatusCount: len(r.Items)}
		if u, err := s.store.GetUser(ctx, r.SubmittedBy); err == nil && u != nil {
			info.SubmitterFullName = u.DisplayName()
		}
		submitted[r.Department] = info
	}

	roster, err := s.store.ListPersonnel(ctx, "")
	if err != nil {
		return nil, err
	}
	total := len(roster)
	unavailable := 0
	for _, n := range statusSummary {
		unavailable += n
	}
	onDuty := total - unavailable

	return &DashboardSummary{
		AllDepartments:  departments,
		SubmittedInfo:   submitted,
		StatusSummary:   statusSummary,
		TotalPersonnel:  total,
		TotalOnDuty:     onDuty,
		OnDutyPercent:   percent(onDuty, total),
		WeeklyDateRange: s.WeeklyRange(),
	}, nil
}

// percent renders part/whole as a percentage with one decimal place.
func percent(part, whole int) string {
	if whole <= 0 {
		return "0.0"
	}
	return decimal.NewFromInt(int64(part)).
		Div(decimal.NewFromInt(int64(whole))).
		Mul(decimal.NewFromInt(100)).
		StringFixed(1)
}
