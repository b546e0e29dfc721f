/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements muster.Store (personnel, reports, availability ledger, users)
  and session.Store on a single SQLite database. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  personnel:            The roster
  users:                Login accounts with salted password keys
  status_reports:       Active weekly reports (at most one per department)
  daily_reports:        Daily reports, keyed by (department, report_date)
  archived_reports:     Immutable archive, keyed by (date, department)
  availability_records: The availability ledger
  sessions:             Server-side login sessions

TRANSACTION BOUNDARIES:
  SubmitWeekly, SubmitDaily, ArchiveReports and ReplaceAllPersonnel each
  run inside one BEGIN..COMMIT. A submission can never leave the report
  and its ledger slice out of step.

CASCADES:
  availability_records.personnel_id references personnel(id) with
  ON DELETE CASCADE; foreign keys are switched on in the DSN.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode: multiple
  readers don't block, a single writer at a time.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - muster/store.go: interface definitions and ordering contracts
  - session/guard.go: the session.Store consumer
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/muster/personnel-engine/muster"
	"github.com/muster/personnel-engine/session"
)

// Store implements muster.Store and session.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS personnel (
		id TEXT PRIMARY KEY,
		rank TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		position TEXT NOT NULL,
		specialty TEXT NOT NULL,
		department TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_personnel_department
		ON personnel(department);

	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		salt BLOB NOT NULL,
		key BLOB NOT NULL,
		rank TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		position TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user'
	);

	-- Active weekly reports. The department delete-then-insert in
	-- SubmitWeekly keeps this at one row per department.
	CREATE TABLE IF NOT EXISTS status_reports (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		department TEXT NOT NULL,
		submitted_by TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		items_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_status_reports_department
		ON status_reports(department);

	CREATE TABLE IF NOT EXISTS daily_reports (
		id TEXT PRIMARY KEY,
		department TEXT NOT NULL,
		report_date TEXT NOT NULL,
		submitted_by TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		items_json TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		UNIQUE(department, report_date)
	);

	CREATE INDEX IF NOT EXISTS idx_daily_reports_date
		ON daily_reports(report_date);

	CREATE TABLE IF NOT EXISTS archived_reports (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		date TEXT NOT NULL,
		department TEXT NOT NULL,
		submitted_by TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		items_json TEXT NOT NULL,
		UNIQUE(date, department)
	);

	CREATE INDEX IF NOT EXISTS idx_archived_reports_year_month
		ON archived_reports(year, month);

	CREATE TABLE IF NOT EXISTS availability_records (
		id TEXT PRIMARY KEY,
		personnel_id TEXT NOT NULL REFERENCES personnel(id) ON DELETE CASCADE,
		department TEXT NOT NULL,
		status TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_availability_department_end
		ON availability_records(department, end_date);
	CREATE INDEX IF NOT EXISTS idx_availability_personnel
		ON availability_records(personnel_id);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created_at
		ON sessions(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func storeErr(op string, err error) error {
	return &muster.StorageError{Op: op, Err: err}
}

// =============================================================================
// PERSONNEL (muster.PersonnelStore)
// =============================================================================

const personColumns = "id, rank, first_name, last_name, position, specialty, department"

// ListPersonnel returns the roster, scoped to a department when one is given.
func (s *Store) ListPersonnel(ctx context.Context, department string) ([]muster.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + personColumns + " FROM personnel WHERE (? = '' OR department = ?) ORDER BY rowid"
	rows, err := s.db.QueryContext(ctx, query, department, department)
	if err != nil {
		return nil, storeErr("list personnel", err)
	}
	defer rows.Close()

	return scanPeople(rows)
}

// SearchPersonnel returns one page of roster entries whose name or position
// matches term, plus the total match count. limit < 0 disables paging.
func (s *Store) SearchPersonnel(ctx context.Context, department, term string, limit, offset int) ([]muster.Person, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := " FROM personnel WHERE (? = '' OR department = ?) AND (? = '' OR first_name LIKE ? OR last_name LIKE ? OR position LIKE ?)"
	pattern := "%" + term + "%"
	args := []any{department, department, term, pattern, pattern, pattern}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count personnel", err)
	}

	query := "SELECT " + personColumns + where + " ORDER BY rowid LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, storeErr("search personnel", err)
	}
	defer rows.Close()

	people, err := scanPeople(rows)
	return people, total, err
}

// GetPerson returns a person or nil when absent.
func (s *Store) GetPerson(ctx context.Context, id string) (*muster.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p muster.Person
	err := s.db.QueryRowContext(ctx,
		"SELECT "+personColumns+" FROM personnel WHERE id = ?", id,
	).Scan(&p.ID, &p.Rank, &p.FirstName, &p.LastName, &p.Position, &p.Specialty, &p.Department)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get person", err)
	}
	return &p, nil
}

func (s *Store) SavePerson(ctx context.Context, p muster.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO personnel ("+personColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Rank, p.FirstName, p.LastName, p.Position, p.Specialty, p.Department)
	if err != nil {
		return storeErr("save person", err)
	}
	return nil
}

func (s *Store) UpdatePerson(ctx context.Context, p muster.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE personnel SET rank = ?, first_name = ?, last_name = ?, position = ?, specialty = ?, department = ?
		 WHERE id = ?`,
		p.Rank, p.FirstName, p.LastName, p.Position, p.Specialty, p.Department, p.ID)
	if err != nil {
		return storeErr("update person", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return muster.ErrPersonNotFound
	}
	return nil
}

// DeletePerson removes a person; their availability records cascade.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM personnel WHERE id = ?", id)
	if err != nil {
		return storeErr("delete person", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return muster.ErrPersonNotFound
	}
	return nil
}

// ReplaceAllPersonnel swaps the entire roster in one transaction. The
// personnel delete cascades to every availability record.
func (s *Store) ReplaceAllPersonnel(ctx context.Context, people []muster.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("replace personnel", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM personnel"); err != nil {
		return storeErr("replace personnel", err)
	}
	for _, p := range people {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO personnel ("+personColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Rank, p.FirstName, p.LastName, p.Position, p.Specialty, p.Department)
		if err != nil {
			return storeErr("replace personnel", err)
		}
	}
	return tx.Commit()
}

// Departments returns the distinct non-empty department names.
func (s *Store) Departments(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT department FROM personnel WHERE department != '' ORDER BY department")
	if err != nil {
		return nil, storeErr("list departments", err)
	}
	defer rows.Close()

	var departments []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, storeErr("list departments", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func scanPeople(rows *sql.Rows) ([]muster.Person, error) {
	var people []muster.Person
	for rows.Next() {
		var p muster.Person
		if err := rows.Scan(&p.ID, &p.Rank, &p.FirstName, &p.LastName, &p.Position, &p.Specialty, &p.Department); err != nil {
			return nil, storeErr("scan person", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

// =============================================================================
// REPORTS (muster.ReportStore)
// =============================================================================

// SubmitWeekly replaces the department's active report and its ledger
// slice in one transaction.
func (s *Store) SubmitWeekly(ctx context.Context, report muster.Report, records []muster.AvailabilityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(report.Items)
	if err != nil {
		return storeErr("submit weekly", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("submit weekly", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM status_reports WHERE department = ?", report.Department); err != nil {
		return storeErr("submit weekly", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO status_reports (id, date, department, submitted_by, timestamp, items_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.Date, report.Department, report.SubmittedBy, report.Timestamp, string(itemsJSON)); err != nil {
		return storeErr("submit weekly", err)
	}
	if err := replaceRecordsTx(ctx, tx, report.Department, records); err != nil {
		return err
	}
	return tx.Commit()
}

// SubmitDaily upserts the (department, report_date) report and replaces
// the department's ledger slice in one transaction.
func (s *Store) SubmitDaily(ctx context.Context, report muster.DailyReport, records []muster.AvailabilityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(report.Items)
	if err != nil {
		return storeErr("submit daily", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return storeErr("submit daily", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("submit daily", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO daily_reports (id, department, report_date, submitted_by, timestamp, items_json, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(department, report_date) DO UPDATE SET
		   submitted_by = excluded.submitted_by,
		   timestamp = excluded.timestamp,
		   items_json = excluded.items_json,
		   summary_json = excluded.summary_json`,
		report.ID, report.Department, report.ReportDate, report.SubmittedBy,
		report.Timestamp, string(itemsJSON), string(summaryJSON)); err != nil {
		return storeErr("submit daily", err)
	}
	if err := replaceRecordsTx(ctx, tx, report.Department, records); err != nil {
		return err
	}
	return tx.Commit()
}

// replaceRecordsTx swaps a department's slice of the availability ledger.
// Caller owns the transaction.
func replaceRecordsTx(ctx context.Context, tx *sql.Tx, department string, records []muster.AvailabilityRecord) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM availability_records WHERE department = ?", department); err != nil {
		return storeErr("replace records", err)
	}
	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO availability_records (id, personnel_id, department, status, details, start_date, end_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.PersonnelID, r.Department, r.Status, r.Details, r.StartDate, r.EndDate)
		if err != nil {
			return storeErr("replace records", err)
		}
	}
	return nil
}

const reportColumns = "id, date, department, submitted_by, timestamp, items_json"

// ActiveReports returns all active weekly reports, newest first.
func (s *Store) ActiveReports(ctx context.Context) ([]muster.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM status_reports ORDER BY timestamp DESC")
	if err != nil {
		return nil, storeErr("list active reports", err)
	}
	defer rows.Close()

	return scanReports(rows, muster.SourceActive)
}

// ActiveReportForDepartment returns the department's active weekly report
// or nil.
func (s *Store) ActiveReportForDepartment(ctx context.Context, department string) (*muster.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM status_reports WHERE department = ? ORDER BY timestamp DESC LIMIT 1",
		department)
	r, err := scanReportRow(row, muster.SourceActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get active report", err)
	}
	return r, nil
}

// HasDailyReport reports whether a daily report exists for the key.
func (s *Store) HasDailyReport(ctx context.Context, department, date string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_reports WHERE department = ? AND report_date = ?",
		department, date).Scan(&count)
	if err != nil {
		return false, storeErr("check daily report", err)
	}
	return count > 0, nil
}

const dailyColumns = "id, department, report_date, submitted_by, timestamp, items_json, summary_json"

// DailyReportsForDate returns all daily reports covering a date.
func (s *Store) DailyReportsForDate(ctx context.Context, date string) ([]muster.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+dailyColumns+" FROM daily_reports WHERE report_date = ? ORDER BY department", date)
	if err != nil {
		return nil, storeErr("list daily reports", err)
	}
	defer rows.Close()

	return scanDailyReports(rows)
}

// DailyReportsForDepartment returns a department's daily reports, newest
// first.
func (s *Store) DailyReportsForDepartment(ctx context.Context, department string) ([]muster.DailyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+dailyColumns+" FROM daily_reports WHERE department = ? ORDER BY report_date DESC, timestamp DESC",
		department)
	if err != nil {
		return nil, storeErr("list daily reports", err)
	}
	defer rows.Close()

	return scanDailyReports(rows)
}

// ArchiveReports upserts the archive rows and clears ALL active weekly
// reports, in one transaction. The global clear is the documented archive
// semantics, not a shortcut.
func (s *Store) ArchiveReports(ctx context.Context, archived []muster.ArchivedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("archive reports", err)
	}
	defer tx.Rollback()

	for _, r := range archived {
		itemsJSON, err := json.Marshal(r.Items)
		if err != nil {
			return storeErr("archive reports", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO archived_reports (id, year, month, date, department, submitted_by, timestamp, items_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(date, department) DO UPDATE SET
			   submitted_by = excluded.submitted_by,
			   timestamp = excluded.timestamp,
			   items_json = excluded.items_json`,
			r.ID, r.Year, r.Month, r.Date, r.Department, r.SubmittedBy, r.Timestamp, string(itemsJSON))
		if err != nil {
			return storeErr("archive reports", err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM status_reports"); err != nil {
		return storeErr("archive reports", err)
	}
	return tx.Commit()
}

// ArchivedReports returns the archive, newest first.
func (s *Store) ArchivedReports(ctx context.Context) ([]muster.ArchivedReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, year, month, date, department, submitted_by, timestamp, items_json
		 FROM archived_reports ORDER BY date DESC, timestamp DESC`)
	if err != nil {
		return nil, storeErr("list archived reports", err)
	}
	defer rows.Close()

	var archived []muster.ArchivedReport
	for rows.Next() {
		var (
			r         muster.ArchivedReport
			itemsJSON string
		)
		if err := rows.Scan(&r.ID, &r.Year, &r.Month, &r.Date, &r.Department, &r.SubmittedBy, &r.Timestamp, &itemsJSON); err != nil {
			return nil, storeErr("scan archived report", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
			return nil, storeErr("decode archived report", err)
		}
		archived = append(archived, r)
	}
	return archived, rows.Err()
}

// ReportsForDepartment merges active and archived weekly reports for a
// department, newest first, with Source set on each row.
func (s *Store) ReportsForDepartment(ctx context.Context, department string) ([]muster.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM status_reports WHERE department = ?", department)
	if err != nil {
		return nil, storeErr("list department reports", err)
	}
	active, err := scanReports(rows, muster.SourceActive)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, date, department, submitted_by, timestamp, items_json
		 FROM archived_reports WHERE department = ?`, department)
	if err != nil {
		return nil, storeErr("list department reports", err)
	}
	archived, err := scanReports(rows, muster.SourceArchived)
	rows.Close()
	if err != nil {
		return nil, err
	}

	merged := append(active, archived...)
	// Timestamps are zero-padded "2006-01-02 15:04:05"; string order is
	// chronological order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged, nil
}

// GetReport finds a report by id, checking active then archive. Returns
// nil when absent.
func (s *Store) GetReport(ctx context.Context, id string) (*muster.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM status_reports WHERE id = ?", id)
	r, err := scanReportRow(row, muster.SourceActive)
	if err == nil {
		return r, nil
	}
	if err != sql.ErrNoRows {
		return nil, storeErr("get report", err)
	}

	row = s.db.QueryRowContext(ctx,
		`SELECT id, date, department, submitted_by, timestamp, items_json
		 FROM archived_reports WHERE id = ?`, id)
	r, err = scanReportRow(row, muster.SourceArchived)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get report", err)
	}
	return r, nil
}

func scanReports(rows *sql.Rows, source muster.ReportSource) ([]muster.Report, error) {
	var reports []muster.Report
	for rows.Next() {
		var (
			r         muster.Report
			itemsJSON string
		)
		if err := rows.Scan(&r.ID, &r.Date, &r.Department, &r.SubmittedBy, &r.Timestamp, &itemsJSON); err != nil {
			return nil, storeErr("scan report", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
			return nil, storeErr("decode report", err)
		}
		r.Source = source
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func scanReportRow(row *sql.Row, source muster.ReportSource) (*muster.Report, error) {
	var (
		r         muster.Report
		itemsJSON string
	)
	if err := row.Scan(&r.ID, &r.Date, &r.Department, &r.SubmittedBy, &r.Timestamp, &itemsJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
		return nil, err
	}
	r.Source = source
	return &r, nil
}

func scanDailyReports(rows *sql.Rows) ([]muster.DailyReport, error) {
	var reports []muster.DailyReport
	for rows.Next() {
		var (
			r           muster.DailyReport
			itemsJSON   string
			summaryJSON string
		)
		if err := rows.Scan(&r.ID, &r.Department, &r.ReportDate, &r.SubmittedBy, &r.Timestamp, &itemsJSON, &summaryJSON); err != nil {
			return nil, storeErr("scan daily report", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &r.Items); err != nil {
			return nil, storeErr("decode daily report", err)
		}
		if err := json.Unmarshal([]byte(summaryJSON), &r.Summary); err != nil {
			return nil, storeErr("decode daily report", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// =============================================================================
// AVAILABILITY LEDGER (muster.AvailabilityStore)
// =============================================================================

// ActiveRecords returns unexpired records joined with their person.
// ISO dates compare correctly as strings.
func (s *Store) ActiveRecords(ctx context.Context, department, asOf string) ([]muster.PersonStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.rank, p.first_name, p.last_name, p.position, p.specialty, p.department,
		        r.status, r.details, r.start_date, r.end_date
		 FROM availability_records r
		 JOIN personnel p ON p.id = r.personnel_id
		 WHERE r.end_date >= ? AND (? = '' OR r.department = ?)
		 ORDER BY r.rowid`,
		asOf, department, department)
	if err != nil {
		return nil, storeErr("list active records", err)
	}
	defer rows.Close()

	var statuses []muster.PersonStatus
	for rows.Next() {
		var ps muster.PersonStatus
		err := rows.Scan(
			&ps.Person.ID, &ps.Person.Rank, &ps.Person.FirstName, &ps.Person.LastName,
			&ps.Person.Position, &ps.Person.Specialty, &ps.Person.Department,
			&ps.Status, &ps.Details, &ps.StartDate, &ps.EndDate)
		if err != nil {
			return nil, storeErr("scan active record", err)
		}
		statuses = append(statuses, ps)
	}
	return statuses, rows.Err()
}

// RecordsActiveOn returns records covering the target date:
// start_date <= target AND end_date >= target.
func (s *Store) RecordsActiveOn(ctx context.Context, department, target string) ([]muster.AvailabilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, personnel_id, department, status, details, start_date, end_date
		 FROM availability_records
		 WHERE department = ? AND start_date <= ? AND end_date >= ?
		 ORDER BY rowid`,
		department, target, target)
	if err != nil {
		return nil, storeErr("list records", err)
	}
	defer rows.Close()

	var records []muster.AvailabilityRecord
	for rows.Next() {
		var r muster.AvailabilityRecord
		if err := rows.Scan(&r.ID, &r.PersonnelID, &r.Department, &r.Status, &r.Details, &r.StartDate, &r.EndDate); err != nil {
			return nil, storeErr("scan record", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// USERS (muster.UserStore)
// =============================================================================

const userColumns = "username, salt, key, rank, first_name, last_name, position, department, role"

// GetUser returns a user with credentials, or nil when absent.
func (s *Store) GetUser(ctx context.Context, username string) (*muster.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u muster.User
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username,
	).Scan(&u.Username, &u.Salt, &u.Key, &u.Rank, &u.FirstName, &u.LastName, &u.Position, &u.Department, &u.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

func (s *Store) SaveUser(ctx context.Context, u muster.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.Username, u.Salt, u.Key, u.Rank, u.FirstName, u.LastName, u.Position, u.Department, u.Role)
	if err != nil {
		return storeErr("save user", err)
	}
	return nil
}

// UpdateUser rewrites profile fields; credentials only when updatePassword
// is set.
func (s *Store) UpdateUser(ctx context.Context, u muster.User, updatePassword bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if updatePassword {
		res, err = s.db.ExecContext(ctx,
			`UPDATE users SET salt = ?, key = ?, rank = ?, first_name = ?, last_name = ?, position = ?, department = ?, role = ?
			 WHERE username = ?`,
			u.Salt, u.Key, u.Rank, u.FirstName, u.LastName, u.Position, u.Department, u.Role, u.Username)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE users SET rank = ?, first_name = ?, last_name = ?, position = ?, department = ?, role = ?
			 WHERE username = ?`,
			u.Rank, u.FirstName, u.LastName, u.Position, u.Department, u.Role, u.Username)
	}
	if err != nil {
		return storeErr("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return muster.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE username = ?", username)
	if err != nil {
		return storeErr("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return muster.ErrUserNotFound
	}
	return nil
}

// SearchUsers returns one page of accounts matching term plus the total
// match count.
func (s *Store) SearchUsers(ctx context.Context, term string, limit, offset int) ([]muster.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where := " FROM users WHERE (? = '' OR username LIKE ? OR first_name LIKE ? OR last_name LIKE ?)"
	pattern := "%" + term + "%"
	args := []any{term, pattern, pattern, pattern}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count users", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+where+" ORDER BY username LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, storeErr("search users", err)
	}
	defer rows.Close()

	var users []muster.User
	for rows.Next() {
		var u muster.User
		if err := rows.Scan(&u.Username, &u.Salt, &u.Key, &u.Rank, &u.FirstName, &u.LastName, &u.Position, &u.Department, &u.Role); err != nil {
			return nil, 0, storeErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// =============================================================================
// SESSIONS (session.Store)
// =============================================================================

func (s *Store) SaveSession(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (token, username, created_at) VALUES (?, ?, ?)",
		sess.Token, sess.Username, sess.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return storeErr("save session", err)
	}
	return nil
}

// GetSession returns a session or nil when absent.
func (s *Store) GetSession(ctx context.Context, token string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sess      session.Session
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT token, username, created_at FROM sessions WHERE token = ?", token,
	).Scan(&sess.Token, &sess.Username, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get session", err)
	}
	sess.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, storeErr("get session", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return storeErr("delete session", err)
	}
	return nil
}

// DeleteSessionsBefore purges sessions created before cutoff.
func (s *Store) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE created_at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, storeErr("purge sessions", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
