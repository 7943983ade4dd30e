package onboardinghandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peopledesk/internal/domain/audit"
	"peopledesk/internal/domain/employees"
	"peopledesk/internal/domain/notifications"
	"peopledesk/internal/domain/onboarding"
	"peopledesk/internal/platform/drafts"
	"peopledesk/internal/platform/metrics"
	"peopledesk/internal/transport/http/api"
	"peopledesk/internal/transport/http/middleware"
)

type Handler struct {
	Employees   *onboarding.Store
	Drafts      *drafts.Store
	Directory   *employees.Store
	Idempotency *middleware.IdempotencyStore
	Audit       *audit.Service
	Notifier    *notifications.Service
	Mailer      notifications.Mailer
	EmailFrom   string
	Metrics     *metrics.Collector
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Get("/", h.handleState)
		r.Put("/sections/{section}", h.handleSaveSection)
		r.Post("/sections/{section}/advance", h.handleAdvance)
		r.Post("/back", h.handleBack)
		r.Post("/select", h.handleSelect)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) workflow(w http.ResponseWriter, r *http.Request) (*onboarding.Workflow, string, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, "", false
	}
	wf, err := onboarding.NewWorkflow(h.Employees, h.Drafts, user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "draft_load_failed", "failed to load onboarding draft", middleware.GetRequestID(r.Context()))
		return nil, "", false
	}
	return wf, user.UserID, true
}

type stateView struct {
	Active           onboarding.SectionID          `json:"active"`
	Progress         map[onboarding.SectionID]bool `json:"progress"`
	Status           onboarding.Status             `json:"status"`
	EmployeeRecordID string                        `json:"employeeRecordId,omitempty"`
	Draft            *onboarding.Draft             `json:"draft"`
}

func viewOf(wf *onboarding.Workflow) stateView {
	return stateView{
		Active:           wf.Active(),
		Progress:         wf.Progress(),
		Status:           wf.Status(),
		EmployeeRecordID: wf.Draft().EmployeeRecordID,
		Draft:            wf.Draft(),
	}
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}
	api.Success(w, viewOf(wf), middleware.GetRequestID(r.Context()))
}

// handleSaveSection stores the payload without validating or advancing, so a
// half-filled form survives a page reload.
func (h *Handler) handleSaveSection(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	section := onboarding.SectionID(chi.URLParam(r, "section"))
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload, err := decodePayload(section, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := wf.SetSectionData(payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, viewOf(wf), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	wf, userID, ok := h.workflow(w, r)
	if !ok {
		return
	}

	section := onboarding.SectionID(chi.URLParam(r, "section"))
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	endpoint := "onboarding/advance/" + string(section)
	idemKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(body)
	if idemKey != "" {
		stored, found, err := h.Idempotency.Check(r.Context(), userID, endpoint, idemKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", middleware.GetRequestID(r.Context()))
			return
		}
		if found {
			var replay any
			_ = json.Unmarshal(stored, &replay)
			api.Success(w, replay, middleware.GetRequestID(r.Context()))
			return
		}
	}

	payload, err := decodePayload(section, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := wf.Advance(r.Context(), payload)
	if err != nil {
		var validation *onboarding.ValidationError
		if errors.As(err, &validation) && h.Metrics != nil {
			h.Metrics.ValidationRejection()
		}
		h.writeError(w, r, err)
		return
	}

	if err := h.Audit.Record(r.Context(), userID, "onboarding.advance", "employee", result.EmployeeRecordID,
		middleware.GetRequestID(r.Context()), map[string]any{"section": result.Section, "completed": result.Completed}); err != nil {
		slog.Warn("audit record failed", "err", err)
	}

	if result.Completed {
		h.finishOnboarding(r, wf, result)
	}

	data := map[string]any{
		"section":          result.Section,
		"active":           result.Active,
		"employeeRecordId": result.EmployeeRecordID,
		"completed":        result.Completed,
	}
	if idemKey != "" {
		if raw, err := json.Marshal(data); err == nil {
			if err := h.Idempotency.Save(r.Context(), userID, endpoint, idemKey, requestHash, raw); err != nil {
				slog.Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Success(w, data, middleware.GetRequestID(r.Context()))
}

// finishOnboarding activates the employee record and sends the welcome
// notification. Failures here are logged, not surfaced: the submission
// already committed.
func (h *Handler) finishOnboarding(r *http.Request, wf *onboarding.Workflow, result *onboarding.AdvanceResult) {
	if h.Metrics != nil {
		h.Metrics.OnboardingCompleted()
	}
	if err := h.Directory.MarkOnboarded(r.Context(), result.EmployeeRecordID); err != nil {
		slog.Warn("mark onboarded failed", "employeeId", result.EmployeeRecordID, "err", err)
	}
	if err := h.Notifier.Create(r.Context(), result.EmployeeRecordID, notifications.KindOnboardingCompleted,
		"Onboarding completed, your employee profile is now active"); err != nil {
		slog.Warn("onboarding notification failed", "employeeId", result.EmployeeRecordID, "err", err)
	}
	if personal := wf.Draft().Personal; personal != nil && personal.Email != "" {
		body := fmt.Sprintf("Hi %s,\n\nYour onboarding is complete and your employee profile is active.\n", personal.FirstName)
		if err := h.Mailer.Send(r.Context(), h.EmailFrom, personal.Email, "Welcome aboard", body); err != nil {
			slog.Warn("welcome email failed", "employeeId", result.EmployeeRecordID, "err", err)
		}
	}
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.Back(); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, viewOf(wf), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var payload struct {
		Section onboarding.SectionID `json:"section"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if err := wf.SelectSection(payload.Section); err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, viewOf(wf), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	wf, userID, ok := h.workflow(w, r)
	if !ok {
		return
	}
	if err := wf.Reset(); err != nil {
		api.Fail(w, http.StatusInternalServerError, "draft_reset_failed", "failed to reset onboarding draft", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Audit.Record(r.Context(), userID, "onboarding.reset", "draft", userID,
		middleware.GetRequestID(r.Context()), nil); err != nil {
		slog.Warn("audit record failed", "err", err)
	}
	api.Success(w, viewOf(wf), middleware.GetRequestID(r.Context()))
}

func decodePayload(section onboarding.SectionID, body []byte) (onboarding.SectionPayload, error) {
	var payload onboarding.SectionPayload
	switch section {
	case onboarding.SectionPersonal:
		payload = &onboarding.PersonalDetails{}
	case onboarding.SectionEducation:
		payload = &onboarding.EducationDetails{}
	case onboarding.SectionExperience:
		payload = &onboarding.ExperienceDetails{}
	case onboarding.SectionBank:
		payload = &onboarding.BankDetails{}
	default:
		return nil, onboarding.ErrUnknownSection
	}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, &onboarding.ValidationError{Field: string(section), Reason: "malformed payload"}
	}
	return payload, nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var validation *onboarding.ValidationError
	if errors.As(err, &validation) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "validation_failed", validation.Error(),
			map[string]string{"field": validation.Field, "reason": validation.Reason}, requestID)
		return
	}

	switch {
	case errors.Is(err, onboarding.ErrUnknownSection):
		api.Fail(w, http.StatusBadRequest, "unknown_section", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrSectionIncomplete):
		api.Fail(w, http.StatusConflict, "section_incomplete", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrAtFirstSection):
		api.Fail(w, http.StatusConflict, "at_first_section", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrNoPersonalRecord):
		api.Fail(w, http.StatusConflict, "no_personal_record", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrDuplicateEmployeeID):
		api.Fail(w, http.StatusConflict, "duplicate_employee_id", err.Error(), requestID)
	case errors.Is(err, onboarding.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "employee_not_found", err.Error(), requestID)
	default:
		slog.Error("onboarding request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "store_error", "failed to save onboarding data", requestID)
	}
}
