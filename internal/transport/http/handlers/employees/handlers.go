package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"peopledesk/internal/domain/audit"
	"peopledesk/internal/domain/auth"
	"peopledesk/internal/domain/employees"
	"peopledesk/internal/domain/onboarding"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
)

type Handler struct {
	Store *employees.Store
	Audit *audit.Service
}

func NewHandler(store *employees.Store, auditor *audit.Service) *Handler {
	return &Handler{Store: store, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleHR)).Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.Post("/{employeeID}/experience", h.handleAddExperience)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if user.Role != auth.RoleHR && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot access another employee's profile", middleware.GetRequestID(r.Context()))
		return
	}

	profile, err := h.Store.Get(r.Context(), employeeID)
	if errors.Is(err, employees.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if user.Role != auth.RoleHR && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot modify another employee's profile", middleware.GetRequestID(r.Context()))
		return
	}

	var entry onboarding.ExperienceEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.TrimSpace(entry.Company) == "" || strings.TrimSpace(entry.Title) == "" {
		api.Fail(w, http.StatusUnprocessableEntity, "validation_failed", "company and title are required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.AddExperience(r.Context(), employeeID, entry); err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "experience_add_failed", "failed to add experience entry", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Audit.Record(r.Context(), user.UserID, "employees.add_experience", "employee", employeeID,
		middleware.GetRequestID(r.Context()), entry); err != nil {
		slog.Warn("audit record failed", "err", err)
	}
	api.Created(w, entry, middleware.GetRequestID(r.Context()))
}
