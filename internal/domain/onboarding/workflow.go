package onboarding

import "context"

// Status is the per-submission-attempt state of the workflow, orthogonal to
// the active section and the per-section progress flags.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// EmployeeStore persists committed section data. The first successful
// personal submission establishes the employee record identity; later
// sections are partial updates keyed by that identity.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, personal *PersonalDetails) (string, error)
	SaveSection(ctx context.Context, employeeRecordID string, payload SectionPayload) error
}

// DraftStore is single-slot draft persistence, one slot per owner.
type DraftStore interface {
	Load(owner string) (*Draft, error)
	Save(owner string, draft *Draft) error
	Clear(owner string) error
}

// Workflow sequences the four onboarding sections for one owner. Callers
// must serialize calls to a given instance; every transition auto-saves the
// draft and terminal success clears it.
type Workflow struct {
	employees EmployeeStore
	drafts    DraftStore
	owner     string
	draft     *Draft
	status    Status
}

// NewWorkflow restores the owner's draft from the draft store, or starts an
// empty one when no prior draft exists.
func NewWorkflow(employees EmployeeStore, drafts DraftStore, owner string) (*Workflow, error) {
	draft, err := drafts.Load(owner)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		draft = NewDraft()
	}
	if draft.Progress == nil {
		draft.Progress = NewDraft().Progress
	}
	if !draft.Active.Valid() {
		draft.Active = SectionPersonal
	}
	return &Workflow{
		employees: employees,
		drafts:    drafts,
		owner:     owner,
		draft:     draft,
		status:    StatusIdle,
	}, nil
}

func (w *Workflow) Draft() *Draft     { return w.draft }
func (w *Workflow) Status() Status    { return w.status }
func (w *Workflow) Active() SectionID { return w.draft.Active }

func (w *Workflow) Progress() map[SectionID]bool {
	out := make(map[SectionID]bool, len(w.draft.Progress))
	for section, done := range w.draft.Progress {
		out[section] = done
	}
	return out
}

// AdvanceResult reports the outcome of a successful Advance call.
type AdvanceResult struct {
	Section          SectionID
	Active           SectionID
	EmployeeRecordID string
	Completed        bool
}

// Advance validates the payload, commits it to the employee store and moves
// the active section forward. Validation and store failures leave the
// active section unchanged and the draft intact for resubmission.
func (w *Workflow) Advance(ctx context.Context, payload SectionPayload) (*AdvanceResult, error) {
	section := payload.Section()
	if !section.Valid() {
		return nil, ErrUnknownSection
	}

	w.status = StatusValidating
	if err := ValidateSection(payload); err != nil {
		w.status = StatusError
		w.draft.Progress[section] = false
		w.save()
		return nil, err
	}

	w.status = StatusSubmitting
	if section == SectionPersonal && w.draft.EmployeeRecordID == "" {
		personal := payload.(*PersonalDetails)
		id, err := w.employees.CreateEmployee(ctx, personal)
		if err != nil {
			return nil, w.submitFailed(section, "create", err)
		}
		w.draft.EmployeeRecordID = id
	} else {
		if w.draft.EmployeeRecordID == "" {
			w.status = StatusError
			w.save()
			return nil, ErrNoPersonalRecord
		}
		if err := w.employees.SaveSection(ctx, w.draft.EmployeeRecordID, payload); err != nil {
			return nil, w.submitFailed(section, "update", err)
		}
	}

	w.draft.SetPayload(payload)
	w.draft.Progress[section] = true
	w.status = StatusSuccess

	result := &AdvanceResult{
		Section:          section,
		EmployeeRecordID: w.draft.EmployeeRecordID,
	}
	if section.Terminal() {
		result.Completed = true
		result.Active = w.draft.Active
		if err := w.drafts.Clear(w.owner); err != nil {
			return nil, &StoreError{Op: "clear draft", Err: err}
		}
		return result, nil
	}

	if next, ok := section.Next(); ok {
		w.draft.Active = next
	}
	result.Active = w.draft.Active
	w.save()
	return result, nil
}

func (w *Workflow) submitFailed(section SectionID, op string, err error) error {
	w.status = StatusError
	w.draft.Progress[section] = false
	w.save()
	return &StoreError{Op: op, Err: err}
}

// SetSectionData stores payload data without touching progress.
func (w *Workflow) SetSectionData(payload SectionPayload) error {
	if !payload.Section().Valid() {
		return ErrUnknownSection
	}
	w.draft.SetPayload(payload)
	w.save()
	return nil
}

// CompleteSection marks a section complete or incomplete. A section cannot
// be marked complete before any data was stored for it.
func (w *Workflow) CompleteSection(section SectionID, complete bool) error {
	if !section.Valid() {
		return ErrUnknownSection
	}
	if complete && !w.draft.HasSection(section) {
		return ErrSectionIncomplete
	}
	w.draft.Progress[section] = complete
	w.save()
	return nil
}

// Back moves the active section one step earlier in canonical order.
func (w *Workflow) Back() error {
	prev, ok := w.draft.Active.Prev()
	if !ok {
		return ErrAtFirstSection
	}
	w.draft.Active = prev
	w.save()
	return nil
}

// SelectSection supports direct tab clicks. Leaving the active section is
// only allowed once it is complete and has data.
func (w *Workflow) SelectSection(target SectionID) error {
	if !target.Valid() {
		return ErrUnknownSection
	}
	if target == w.draft.Active {
		return nil
	}
	if !w.draft.Progress[w.draft.Active] || !w.draft.HasSection(w.draft.Active) {
		return ErrSectionIncomplete
	}
	w.draft.Active = target
	w.save()
	return nil
}

// Reset discards the draft and clears the draft store slot.
func (w *Workflow) Reset() error {
	w.draft = NewDraft()
	w.status = StatusIdle
	return w.drafts.Clear(w.owner)
}

// save is best-effort: draft persistence must never turn a succeeded
// transition into a failure.
func (w *Workflow) save() {
	_ = w.drafts.Save(w.owner, w.draft)
}
