/*
store.go - Persistence interfaces for the muster domain

PURPOSE:
  Defines the contract between domain logic and the database. The store is
  an ordered key-value engine with query capability; SQLite implements it
  in store/sqlite.

TRANSACTION BOUNDARIES:
  SubmitWeekly and SubmitDaily take BOTH the report row and the already
  filtered availability records, and must apply the report replace and the
  ledger replace as one atomic unit. Partial application is impossible by
  construction: there is no separate ReplaceRecords write for callers to
  forget. ArchiveReports likewise bundles the archive upsert with the
  global active-report clear.

ORDERING:
  List methods return rows in storage order unless documented otherwise.
  Rank ordering is a display concern and is applied by the service layer.

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - service.go: the only caller of the mutating methods
*/
package muster

import "context"

// =============================================================================
// PERSONNEL
// =============================================================================

type PersonnelStore interface {
	// ListPersonnel returns the roster, optionally scoped to a department
	// (empty = all), in storage order.
	ListPersonnel(ctx context.Context, department string) ([]Person, error)

	// SearchPersonnel returns a page of personnel matching term (name or
	// position, any of them) plus the total match count.
	SearchPersonnel(ctx context.Context, department, term string, limit, offset int) ([]Person, int, error)

	// GetPerson returns a person or nil when absent.
	GetPerson(ctx context.Context, id string) (*Person, error)

	SavePerson(ctx context.Context, p Person) error
	UpdatePerson(ctx context.Context, p Person) error

	// DeletePerson removes a person. Their availability records cascade.
	DeletePerson(ctx context.Context, id string) error

	// ReplaceAllPersonnel atomically swaps the entire roster (bulk import).
	ReplaceAllPersonnel(ctx context.Context, people []Person) error

	// Departments returns the distinct non-empty department names.
	Departments(ctx context.Context) ([]string, error)
}

// =============================================================================
// REPORTS + AVAILABILITY (one submission = one transaction)
// =============================================================================

type ReportStore interface {
	// SubmitWeekly replaces the department's active report and all of its
	// availability records in one transaction.
	SubmitWeekly(ctx context.Context, report Report, records []AvailabilityRecord) error

	// SubmitDaily upserts the (department, report date) daily report and
	// replaces the department's availability records in one transaction.
	SubmitDaily(ctx context.Context, report DailyReport, records []AvailabilityRecord) error

	// ActiveReports returns all active weekly reports, newest first.
	ActiveReports(ctx context.Context) ([]Report, error)

	// ActiveReportForDepartment returns the department's active weekly
	// report or nil.
	ActiveReportForDepartment(ctx context.Context, department string) (*Report, error)

	// HasDailyReport reports whether a daily report exists for the key.
	HasDailyReport(ctx context.Context, department, date string) (bool, error)

	// DailyReportsForDate returns all daily reports covering a date.
	DailyReportsForDate(ctx context.Context, date string) ([]DailyReport, error)

	// DailyReportsForDepartment returns a department's daily reports,
	// newest first.
	DailyReportsForDepartment(ctx context.Context, department string) ([]DailyReport, error)

	// ArchiveReports upserts the archive rows (idempotent on date +
	// department) and clears ALL active weekly reports, atomically.
	ArchiveReports(ctx context.Context, rows []ArchivedReport) error

	// ArchivedReports returns the archive, newest first.
	ArchivedReports(ctx context.Context) ([]ArchivedReport, error)

	// ReportsForDepartment merges active and archived weekly reports for a
	// department, newest first, with Source set on each row.
	ReportsForDepartment(ctx context.Context, department string) ([]Report, error)

	// GetReport finds a report by id, checking active then archive.
	// Returns nil when absent.
	GetReport(ctx context.Context, id string) (*Report, error)
}

type AvailabilityStore interface {
	// ActiveRecords returns records with end_date >= asOf, joined with their
	// person, optionally scoped to a department. Storage order.
	ActiveRecords(ctx context.Context, department, asOf string) ([]PersonStatus, error)

	// RecordsActiveOn returns records covering target: start_date <= target
	// AND end_date >= target. Used by the daily flow only.
	RecordsActiveOn(ctx context.Context, department, target string) ([]AvailabilityRecord, error)
}

// =============================================================================
// USERS
// =============================================================================

type UserStore interface {
	// GetUser returns a user with credentials, or nil when absent.
	GetUser(ctx context.Context, username string) (*User, error)

	SaveUser(ctx context.Context, u User) error

	// UpdateUser rewrites profile fields; credentials only when
	// updatePassword is set.
	UpdateUser(ctx context.Context, u User, updatePassword bool) error

	DeleteUser(ctx context.Context, username string) error

	// SearchUsers returns a page of users matching term plus the total count.
	SearchUsers(ctx context.Context, term string, limit, offset int) ([]User, int, error)
}

// Store is the full persistence surface.
type Store interface {
	PersonnelStore
	ReportStore
	AvailabilityStore
	UserStore
}
