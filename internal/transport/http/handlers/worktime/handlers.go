package worktimehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"peopledesk/internal/domain/audit"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/employees"
	"peopledesk/internal/domain/reports"
	"peopledesk/internal/domain/worktime"
	"peopledesk/internal/platform/metrics"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
	"peopledesk/internal/transport/http/shared"
)

type Handler struct {
	Tracker   *worktime.Tracker
	Directory *employees.Store
	Audit     *audit.Service
	Metrics   *metrics.Collector
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/worktime", func(r chi.Router) {
		r.Get("/active", h.handleActive)
		r.Post("/start", h.handleStart)
		r.Post("/pause", h.handlePause)
		r.Post("/resume", h.handleResume)
		r.Post("/stop", h.handleStop)
		r.Get("/history", h.handleHistory)
		r.Get("/history/export", h.handleExport)
	})
}

// employeeScope resolves which employee the request acts on. Employees are
// always scoped to themselves; HR may pass ?employeeId= to read another
// employee's data.
func (h *Handler) employeeScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return "", false
	}

	employeeID := user.EmployeeID
	if requested := r.URL.Query().Get("employeeId"); requested != "" && requested != user.EmployeeID {
		if user.Role != auth.RoleHR {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot access another employee's sessions", middleware.GetRequestID(r.Context()))
			return "", false
		}
		employeeID = requested
	}
	if employeeID == "" {
		api.Fail(w, http.StatusConflict, "no_employee_record", "no employee record is linked to this account", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return employeeID, true
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	view, err := h.Tracker.ActiveView(r.Context(), employeeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	session, err := h.Tracker.Start(r.Context(), employeeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.SessionStarted()
	}
	h.recordAudit(r, "worktime.start", session.ID, employeeID)
	api.Created(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	session, err := h.Tracker.Pause(r.Context(), employeeID, payload.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.recordAudit(r, "worktime.pause", session.ID, employeeID)
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	session, err := h.Tracker.Resume(r.Context(), employeeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.recordAudit(r, "worktime.resume", session.ID, employeeID)
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	session, err := h.Tracker.Stop(r.Context(), employeeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.recordAudit(r, "worktime.stop", session.ID, employeeID)
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) historyRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// End date is inclusive on the wire, exclusive in the query.
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	from, to, err := h.historyRange(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be RFC3339 or YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	sessions, err := h.Tracker.History(r.Context(), employeeID, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{
		"sessions": sessions,
		"rows":     reports.BuildTimesheet(sessions),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.employeeScope(w, r)
	if !ok {
		return
	}
	from, to, err := h.historyRange(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "dates must be RFC3339 or YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}
	sessions, err := h.Tracker.History(r.Context(), employeeID, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	name := employeeID
	if profile, err := h.Directory.Get(r.Context(), employeeID); err == nil {
		name = fmt.Sprintf("%s %s", profile.Personal.FirstName, profile.Personal.LastName)
	}

	rows := reports.BuildTimesheet(sessions)
	filename := fmt.Sprintf("timesheet-%s", from.Format("2006-01-02"))

	switch format := r.URL.Query().Get("format"); format {
	case "", "pdf":
		payload, err := reports.TimesheetPDF(name, from, to.AddDate(0, 0, -1), rows)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render timesheet", middleware.GetRequestID(r.Context()))
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
		_, _ = w.Write(payload)
	case "xlsx":
		payload, err := reports.TimesheetXLSX(name, rows)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render timesheet", middleware.GetRequestID(r.Context()))
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
		_, _ = w.Write(payload)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be pdf or xlsx", middleware.GetRequestID(r.Context()))
	}
}

func (h *Handler) recordAudit(r *http.Request, action, sessionID, employeeID string) {
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "work_session", sessionID,
		middleware.GetRequestID(r.Context()), map[string]string{"employeeId": employeeID}); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, worktime.ErrOutsideWorkingHours):
		api.Fail(w, http.StatusConflict, "outside_working_hours", err.Error(), requestID)
	case errors.Is(err, worktime.ErrActiveSessionExists):
		api.Fail(w, http.StatusConflict, "active_session_exists", err.Error(), requestID)
	case errors.Is(err, worktime.ErrNoActiveSession):
		api.Fail(w, http.StatusConflict, "no_active_session", err.Error(), requestID)
	case errors.Is(err, worktime.ErrInvalidTransition):
		api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
	case errors.Is(err, worktime.ErrUnknownPauseReason):
		api.Fail(w, http.StatusBadRequest, "unknown_pause_reason", err.Error(), requestID)
	case errors.Is(err, worktime.ErrSessionNotFound):
		api.Fail(w, http.StatusNotFound, "session_not_found", err.Error(), requestID)
	default:
		slog.Error("worktime request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to update work session", requestID)
	}
}
