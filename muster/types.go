/*
Package muster is the core of the personnel availability engine.

PURPOSE:
  Tracks which personnel are unavailable (leave, duty, training) over
  rolling windows and manages the weekly/daily attendance reports that
  department representatives submit. The package owns:

  - The domain types (Person, Report, AvailabilityRecord, User)
  - The Availability Ledger: a department's unavailability records,
    rebuilt wholesale from every report submission
  - The Report Store lifecycle: active -> edited -> archived

KEY INVARIANTS:
  1. A submission is the single source of truth for its department's
     near-term unavailability. ReplaceForDepartment semantics: all prior
     records for the department are dropped, the new ones inserted, in
     one storage transaction.
  2. Records never store no-ops: items with status "ไม่มี" or an already
     expired end date are filtered before insert.
  3. Expiry is soft: records with end_date < today stop matching queries
     but are not deleted.
  4. Archiving clears ALL active weekly reports, not just the archived
     department's. This global reset is intentional.

DATES ON THE WIRE:
  Interval bounds travel as ISO strings (2006-01-02) and are compared
  lexicographically, which matches chronological order for valid ISO
  dates and makes an empty bound sort before every real date.

SEE ALSO:
  - service.go: submission, queries, archive, history
  - daily.go: daily-mode roster partitioning and summaries
  - admin.go: personnel and user administration
  - store/sqlite: persistence implementation
*/
package muster

// =============================================================================
// REPORTING MODE
// =============================================================================

// ReportingMode selects the weekly or daily report lifecycle. The two modes
// share submission and ledger machinery; only keying and roster shape differ.
type ReportingMode string

const (
	ModeWeekly ReportingMode = "weekly"
	ModeDaily  ReportingMode = "daily"
)

// StatusNone is the item status meaning "present, nothing to report".
// Items carrying it never reach the availability ledger.
const StatusNone = "ไม่มี"

// =============================================================================
// PERSONNEL
// =============================================================================

// Person is a roster entry. Identity is immutable; attributes are edited
// through admin actions. Deleting a person cascades to their availability
// records.
type Person struct {
	ID         string `json:"id"`
	Rank       string `json:"rank"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Specialty  string `json:"specialty"`
	Department string `json:"department"`
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportItem is one line of a submitted report. StartDate/EndDate are ISO
// dates and may be empty when Status is StatusNone.
type ReportItem struct {
	PersonnelID   string `json:"personnel_id"`
	PersonnelName string `json:"personnel_name,omitempty"`
	Status        string `json:"status"`
	Details       string `json:"details"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// ReportSource marks where a report row lives.
type ReportSource string

const (
	SourceActive   ReportSource = "active"
	SourceArchived ReportSource = "archived"
)

// Report is a weekly submission. At most one active report exists per
// department; archived copies are immutable.
type Report struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"` // ISO date of submission
	Department  string       `json:"department"`
	SubmittedBy string       `json:"submitted_by"`
	Timestamp   string       `json:"timestamp"` // 2006-01-02 15:04:05, server time at UTC+7
	Items       []ReportItem `json:"items"`
	Source      ReportSource `json:"source,omitempty"`
}

// ArchivedReport is an immutable archive row, keyed by the year/month
// extracted from the report date.
type ArchivedReport struct {
	ID          string       `json:"id"`
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	Date        string       `json:"date"`
	Department  string       `json:"department"`
	SubmittedBy string       `json:"submitted_by"` // display name, frozen at archive time
	Timestamp   string       `json:"timestamp"`
	Items       []ReportItem `json:"items"`
}

// CategoryCount is a per-bucket head count in a daily summary.
type CategoryCount struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Mission   int `json:"mission"`
}

// DailySummary is the per-category head count attached to a daily report.
type DailySummary struct {
	Officer         CategoryCount `json:"officer"`
	NonCommissioned CategoryCount `json:"nco"`
	Civilian        CategoryCount `json:"civilian"`
}

// DailyReport is a daily submission, keyed by (department, report date).
// Resubmitting the same key overwrites.
type DailyReport struct {
	ID          string       `json:"id"`
	Department  string       `json:"department"`
	ReportDate  string       `json:"report_date"` // ISO date the report covers
	SubmittedBy string       `json:"submitted_by"`
	Timestamp   string       `json:"timestamp"`
	Items       []ReportItem `json:"items"`
	Summary     DailySummary `json:"summary"`
}

// =============================================================================
// AVAILABILITY LEDGER
// =============================================================================

// AvailabilityRecord is one contiguous interval during which a person is not
// counted as on duty. Records for a department are replaced wholesale on
// every submission; they are never merged.
type AvailabilityRecord struct {
	ID          string `json:"id"`
	PersonnelID string `json:"personnel_id"`
	Department  string `json:"department"`
	Status      string `json:"status"`
	Details     string `json:"details"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// PersonStatus joins an availability record with its person for display.
// RangeText is the compact Thai rendering of the interval, filled in by the
// service before the row leaves the API.
type PersonStatus struct {
	Person    Person `json:"person"`
	Status    string `json:"status"`
	Details   string `json:"details"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	RangeText string `json:"date_range_text,omitempty"`
}

// =============================================================================
// USERS
// =============================================================================

// RoleAdmin grants access to admin-only actions.
const RoleAdmin = "admin"

// User is a login account. Salt/Key belong to the password-hash capability
// and must never leave the session/auth layer.
type User struct {
	Username   string `json:"username"`
	Salt       []byte `json:"-"`
	Key        []byte `json:"-"`
	Rank       string `json:"rank"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// DisplayName is the "rank first last" form used when freezing a submitter
// name into archives and dashboards.
func (u User) DisplayName() string {
	return u.Rank + " " + u.FirstName + " " + u.LastName
}
