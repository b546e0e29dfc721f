/*
daily.go - Daily-mode roster partitioning, summaries and history

PURPOSE:
  The daily flow differs from the weekly flow in three ways:
  - the roster is partitioned into officer / non-commissioned / civilian
    buckets (ranks outside the table are excluded from the buckets),
  - a person's status for a target date requires the record to have
    STARTED (start_date <= target), not merely to not have ended - the
    weekly queries only apply the end-date floor,
  - reports are keyed by (department, report date) and carry per-category
    head counts.

SEE ALSO:
  - service.go: shared submission machinery
  - rank/rank.go: category partitioning
*/
package muster

import (
	"context"
	"sort"
	"strconv"

	"github.com/muster/personnel-engine/calendar"
	"github.com/muster/personnel-engine/rank"
)

// DailyPerson is a roster entry annotated with the availability record (if
// any) covering the target date.
type DailyPerson struct {
	Person
	Status    string `json:"status,omitempty"`
	Details   string `json:"details,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// DailyRosterView is the category-partitioned roster for a submission form.
type DailyRosterView struct {
	Officer         []DailyPerson `json:"officer"`
	NonCommissioned []DailyPerson `json:"nco"`
	Civilian        []DailyPerson `json:"civilian"`
}

// DailyRoster partitions a department's roster into rank-category buckets
// and annotates each person with any record covering targetDate. A record
// covers the date when start_date <= target AND end_date >= target.
func (s *Service) DailyRoster(ctx context.Context, department, targetDate string) (*DailyRosterView, error) {
	if department == "" {
		return nil, Validationf("missing department")
	}
	roster, err := s.store.ListPersonnel(ctx, department)
	if err != nil {
		return nil, err
	}
	records, err := s.store.RecordsActiveOn(ctx, department, targetDate)
	if err != nil {
		return nil, err
	}

	covering := make(map[string]AvailabilityRecord, len(records))
	for _, r := range records {
		if _, seen := covering[r.PersonnelID]; !seen {
			covering[r.PersonnelID] = r
		}
	}

	view := &DailyRosterView{
		Officer:         []DailyPerson{},
		NonCommissioned: []DailyPerson{},
		Civilian:        []DailyPerson{},
	}
	for _, p := range roster {
		dp := DailyPerson{Person: p}
		if r, ok := covering[p.ID]; ok {
			dp.Status = r.Status
			dp.Details = r.Details
			dp.StartDate = r.StartDate
			dp.EndDate = r.EndDate
		}
		switch rank.Classify(p.Rank) {
		case rank.CategoryOfficer:
			view.Officer = append(view.Officer, dp)
		case rank.CategoryNonCommissioned:
			view.NonCommissioned = append(view.NonCommissioned, dp)
		case rank.CategoryCivilian:
			view.Civilian = append(view.Civilian, dp)
		}
	}

	for _, bucket := range [][]DailyPerson{view.Officer, view.NonCommissioned, view.Civilian} {
		sort.SliceStable(bucket, func(i, j int) bool {
			return rank.SortKey(bucket[i].Rank) < rank.SortKey(bucket[j].Rank)
		})
	}
	return view, nil
}

// dailySummary computes per-category head counts for a submission:
// total roster size, mission (items with a real status) and the remainder.
func (s *Service) dailySummary(ctx context.Context, department string, items []ReportItem) (DailySummary, error) {
	roster, err := s.store.ListPersonnel(ctx, department)
	if err != nil {
		return DailySummary{}, err
	}

	categoryOf := make(map[string]rank.Category, len(roster))
	totals := make(map[rank.Category]int)
	for _, p := range roster {
		cat := rank.Classify(p.Rank)
		categoryOf[p.ID] = cat
		totals[cat]++
	}

	missions := make(map[rank.Category]int)
	for _, item := range items {
		if item.Status == StatusNone || item.Status == "" {
			continue
		}
		missions[categoryOf[item.PersonnelID]]++
	}

	count := func(cat rank.Category) CategoryCount {
		total, mission := totals[cat], missions[cat]
		return CategoryCount{Total: total, Available: total - mission, Mission: mission}
	}
	return DailySummary{
		Officer:         count(rank.CategoryOfficer),
		NonCommissioned: count(rank.CategoryNonCommissioned),
		Civilian:        count(rank.CategoryCivilian),
	}, nil
}

// DailyHistory groups a department's daily reports by BE year then month of
// the submission timestamp, newest first within each group.
func (s *Service) DailyHistory(ctx context.Context, department string) (map[string]map[string][]DailyReport, error) {
	if department == "" {
		return nil, Validationf("missing department")
	}
	reports, err := s.store.DailyReportsForDepartment(ctx, department)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]map[string][]DailyReport)
	for _, r := range reports {
		t, ok := parseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		year := strconv.Itoa(t.Year() + calendar.BEOffset)
		month := strconv.Itoa(int(t.Month()))
		if grouped[year] == nil {
			grouped[year] = make(map[string][]DailyReport)
		}
		grouped[year][month] = append(grouped[year][month], r)
	}
	return grouped, nil
}

// DailyDashboardSummary is the admin overview of today's daily submissions.
type DailyDashboardSummary struct {
	ReportDate     string                    `json:"report_date"`
	AllDepartments []string                  `json:"all_departments"`
	SubmittedInfo  map[string]SubmissionInfo `json:"submitted_info"`
}

// DailyDashboard reports which departments have submitted for today.
func (s *Service) DailyDashboard(ctx context.Context) (*DailyDashboardSummary, error) {
	today := s.Today().ISO()
	departments, err := s.store.Departments(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.store.DailyReportsForDate(ctx, today)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]SubmissionInfo, len(reports))
	for _, r := range reports {
		summary := r.Summary
		info := SubmissionInfo{
			Timestamp:   r.Timestamp,
			StatusCount: len(r.Items),
			Summary:     &summary,
		}
		if u, err := s.store.GetUser(ctx, r.SubmittedBy); err == nil && u != nil {
			info.SubmitterFullName = u.DisplayName()
		}
		submitted[r.Department] = info
	}

	return &DailyDashboardSummary{
		ReportDate:     today,
		AllDepartments: departments,
		SubmittedInfo:  submitted,
	}, nil
}
