/*
handlers.go - Action handlers for the report endpoint

PURPOSE:
  Implements the single RPC-style endpoint: POST /api with a JSON body
  {action, payload}. Every action is declared in the action table with
  its auth requirements; the dispatcher enforces the gate before any
  handler runs.

GATE ORDER:
  1. Unknown action           -> 404
  2. authRequired, no session -> 401
  3. adminOnly, role != admin -> 403
  4. Handler runs. Validation, lockout and not-found failures are
     reported in-band as 200 {status:"error", message}; unexpected
     failures become a generic 500.

SCOPING:
  Non-admin users are always scoped to their own department. The
  department field in their payloads is ignored, not trusted.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
  - session/guard.go: authentication
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/muster/personnel-engine/muster"
	"github.com/muster/personnel-engine/session"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for the action handlers.
type Handler struct {
	svc   *muster.Service
	guard *session.Guard
	log   *slog.Logger

	table map[string]action
}

type handlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, user *muster.User, payload json.RawMessage)

type action struct {
	handle       handlerFunc
	authRequired bool
	adminOnly    bool
}

// NewHandler wires the action table.
func NewHandler(svc *muster.Service, guard *session.Guard, log *slog.Logger) *Handler {
	h := &Handler{svc: svc, guard: guard, log: log}
	h.table = map[string]action{
		"login":  {handle: h.login},
		"logout": {handle: h.logout, authRequired: true},

		"get_dashboard_summary":       {handle: h.dashboardSummary, authRequired: true, adminOnly: true},
		"get_daily_dashboard_summary": {handle: h.dailyDashboardSummary, authRequired: true, adminOnly: true},

		"list_users":  {handle: h.listUsers, authRequired: true, adminOnly: true},
		"add_user":    {handle: h.addUser, authRequired: true, adminOnly: true},
		"update_user": {handle: h.updateUser, authRequired: true, adminOnly: true},
		"delete_user": {handle: h.deleteUser, authRequired: true, adminOnly: true},

		"list_personnel":        {handle: h.listPersonnel, authRequired: true},
		"get_personnel_details": {handle: h.personnelDetails, authRequired: true, adminOnly: true},
		"add_personnel":         {handle: h.addPersonnel, authRequired: true, adminOnly: true},
		"update_personnel":      {handle: h.updatePersonnel, authRequired: true, adminOnly: true},
		"delete_personnel":      {handle: h.deletePersonnel, authRequired: true, adminOnly: true},
		"import_personnel":      {handle: h.importPersonnel, authRequired: true, adminOnly: true},

		"submit_status_report":   {handle: h.submitStatusReport, authRequired: true},
		"get_status_reports":     {handle: h.statusReports, authRequired: true, adminOnly: true},
		"archive_reports":        {handle: h.archiveReports, authRequired: true, adminOnly: true},
		"get_archived_reports":   {handle: h.archivedReports, authRequired: true, adminOnly: true},
		"get_submission_history": {handle: h.submissionHistory, authRequired: true},
		"get_report_for_editing": {handle: h.reportForEditing, authRequired: true},
		"get_active_statuses":    {handle: h.activeStatuses, authRequired: true},

		"get_daily_personnel_for_submission": {handle: h.dailyPersonnel, authRequired: true},
		"submit_daily_report":                {handle: h.submitDailyReport, authRequired: true},
		"get_daily_submission_history":       {handle: h.dailySubmissionHistory, authRequired: true},
	}
	return h
}

// Dispatch is the POST /api entry point.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var env Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		failMessage(w, "invalid request body")
		return
	}

	act, ok := h.table[env.Action]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"status": "error", "message": "unknown action",
		})
		return
	}

	ctx := r.Context()
	var user *muster.User
	if act.authRequired {
		var err error
		user, err = h.guard.Authenticate(ctx, r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"status": "error", "message": "authentication required",
			})
			return
		}
		if act.adminOnly && user.Role != muster.RoleAdmin {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"status": "error", "message": "insufficient privileges",
			})
			return
		}
	}

	act.handle(ctx, w, r, user, env.Payload)
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

func (h *Handler) login(ctx context.Context, w http.ResponseWriter, r *http.Request, _ *muster.User, payload json.RawMessage) {
	var req LoginRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid login payload")
		return
	}

	user, cookie, err := h.guard.Login(ctx, clientKey(r), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}

	http.SetCookie(w, cookie)
	success(w, map[string]any{"user": toUserDTO(*user)})
}

func (h *Handler) logout(ctx context.Context, w http.ResponseWriter, r *http.Request, _ *muster.User, _ json.RawMessage) {
	cookie, err := h.guard.Logout(ctx, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	http.SetCookie(w, cookie)
	success(w, nil)
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

func (h *Handler) dashboardSummary(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, _ json.RawMessage) {
	summary, err := h.svc.Dashboard(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"summary": summary})
}

func (h *Handler) dailyDashboardSummary(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, _ json.RawMessage) {
	summary, err := h.svc.DailyDashboard(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"summary": summary})
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) listUsers(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req ListRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	users, total, err := h.svc.UsersPage(ctx, req.SearchTerm, req.Page)
	if err != nil {
		h.fail(w, err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	success(w, map[string]any{
		"users":       dtos,
		"total_count": total,
		"per_page":    muster.PageSize,
	})
}

func (h *Handler) addUser(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req UserRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	if err := h.svc.AddUser(ctx, req.user(), req.Password); err != nil {
		h.fail(w, err)
		return
	}
	success(w, nil)
}

func (h *Handler) updateUser(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req UserRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	if err := h.svc.UpdateUser(ctx, req.user(), req.Password); err != nil {
		h.fail(w, err)
		return
	}
	success(w, nil)
}

func (h *Handler) deleteUser(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req DeleteUserRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	if err := h.svc.DeleteUser(ctx, req.Username); err != nil {
		h.fail(w, err)
		return
	}
	success(w, nil)
}

// =============================================================================
// PERSONNEL HANDLERS
// =============================================================================

func (h *Handler) listPersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req ListRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	department := scopeDepartment(user, req.Department)
	people, total, err := h.svc.PersonnelPage(ctx, department, req.SearchTerm, req.Page, req.FetchAll)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{
		"personnel":   people,
		"total_count": total,
		"per_page":    muster.PageSize,
	})
}

func (h *Handler) personnelDetails(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req PersonIDRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	p, err := h.svc.PersonDetails(ctx, req.PersonnelID)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"personnel": p})
}

func (h *Handler) addPersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req PersonRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	p, err := h.svc.AddPerson(ctx, req.person())
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"personnel": p})
}

func (h *Handler) updatePersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req PersonRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	if err := h.svc.UpdatePerson(ctx, req.person()); err != nil {
		h.fail(w, err)
		return
	}
	success(w, nil)
}

func (h *Handler) deletePersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req PersonIDRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	if err := h.svc.DeletePerson(ctx, req.PersonnelID); err != nil {
		h.fail(w, err)
		return
	}
	success(w, nil)
}

func (h *Handler) importPersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req ImportPersonnelRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	people := make([]muster.Person, len(req.Personnel))
	for i, p := range req.Personnel {
		people[i] = p.person()
	}
	count, err := h.svc.ImportPersonnel(ctx, people)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"imported_count": count})
}

// =============================================================================
// WEEKLY REPORT HANDLERS
// =============================================================================

func (h *Handler) submitStatusReport(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req SubmitReportRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	department := scopeDepartment(user, req.Department)
	report, err := h.svc.SubmitWeekly(ctx, department, user.Username, req.Items)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"report_id": report.ID, "timestamp": report.Timestamp})
}

func (h *Handler) statusReports(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, _ json.RawMessage) {
	reports, err := h.svc.ActiveReports(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"reports": reports})
}

func (h *Handler) archiveReports(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req ArchiveRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	inputs := make([]muster.ArchiveInput, len(req.Reports))
	for i, r := range req.Reports {
		inputs[i] = muster.ArchiveInput{
			Date:        r.Date,
			Department:  r.Department,
			SubmittedBy: r.SubmittedBy,
			Timestamp:   r.Timestamp,
			Items:       r.Items,
		}
	}
	if err := h.svc.Archive(ctx, inputs); err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"archived_count": len(inputs)})
}

func (h *Handler) archivedReports(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, _ json.RawMessage) {
	grouped, err := h.svc.ArchivedByMonth(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"archived_reports": grouped})
}

func (h *Handler) submissionHistory(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req DepartmentRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	grouped, err := h.svc.History(ctx, scopeDepartment(user, req.Department))
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"history": grouped})
}

func (h *Handler) reportForEditing(ctx context.Context, w http.ResponseWriter, _ *http.Request, _ *muster.User, payload json.RawMessage) {
	var req ReportIDRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}
	report, err := h.svc.ReportForEditing(ctx, req.ReportID)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"report": report})
}

func (h *Handler) activeStatuses(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req DepartmentRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	department := scopeDepartment(user, req.Department)
	statuses, err := h.svc.ActiveStatusesFor(ctx, department, h.svc.Today())
	if err != nil {
		h.fail(w, err)
		return
	}

	fields := map[string]any{
		"unavailable_personnel": statuses.Unavailable,
		"available_personnel":   statuses.Available,
		"total_personnel":       statuses.Total,
		"date_range":            h.svc.WeeklyRange(),
	}
	if department != "" {
		submittedAt, err := h.svc.WeeklySubmissionStatus(ctx, department)
		if err != nil {
			h.fail(w, err)
			return
		}
		fields["last_submission"] = submittedAt
	}
	success(w, fields)
}

// =============================================================================
// DAILY REPORT HANDLERS
// =============================================================================

func (h *Handler) dailyPersonnel(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req DepartmentRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	department := scopeDepartment(user, req.Department)
	reportDate, err := h.svc.DailyWindow(ctx, department)
	if err != nil {
		h.fail(w, err)
		return
	}
	roster, err := h.svc.DailyRoster(ctx, department, reportDate)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{
		"report_date": reportDate,
		"personnel":   roster,
	})
}

func (h *Handler) submitDailyReport(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req SubmitReportRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	department := scopeDepartment(user, req.Department)
	report, err := h.svc.SubmitDaily(ctx, department, req.ReportDate, user.Username, req.Items)
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{
		"report_id": report.ID,
		"timestamp": report.Timestamp,
		"summary":   report.Summary,
	})
}

func (h *Handler) dailySubmissionHistory(ctx context.Context, w http.ResponseWriter, _ *http.Request, user *muster.User, payload json.RawMessage) {
	var req DepartmentRequest
	if err := decode(payload, &req); err != nil {
		failMessage(w, "invalid payload")
		return
	}

	grouped, err := h.svc.DailyHistory(ctx, scopeDepartment(user, req.Department))
	if err != nil {
		h.fail(w, err)
		return
	}
	success(w, map[string]any{"history": grouped})
}

// =============================================================================
// HELPERS
// =============================================================================

// scopeDepartment forces non-admin callers onto their own department.
func scopeDepartment(user *muster.User, requested string) string {
	if user != nil && user.Role != muster.RoleAdmin {
		return user.Department
	}
	return requested
}

// clientKey extracts the lockout key from the request's remote address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// success writes {status:"success"} merged with the given fields.
func success(w http.ResponseWriter, fields map[string]any) {
	data := map[string]any{"status": "success"}
	for k, v := range fields {
		data[k] = v
	}
	writeJSON(w, http.StatusOK, data)
}

// failMessage reports a handler-level failure in-band.
func failMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": message})
}

// fail maps a domain error to the wire. Expected failures go in-band;
// anything else is a generic 500 with the detail kept to the log.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var locked *session.LockedOutError
	switch {
	case errors.As(err, &locked),
		errors.Is(err, session.ErrInvalidCredentials),
		muster.IsValidation(err),
		errors.Is(err, muster.ErrReportNotFound),
		errors.Is(err, muster.ErrPersonNotFound),
		errors.Is(err, muster.ErrUserNotFound),
		errors.Is(err, muster.ErrUserExists),
		errors.Is(err, muster.ErrProtectedUser):
		failMessage(w, err.Error())
	default:
		h.log.Error("action failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error", "message": "internal server error",
		})
	}
}
