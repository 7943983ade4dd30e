package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type fakeEmployeeStore struct {
	nextID     int
	numbers    map[string]bool
	sections   map[string][]SectionID
	failCreate error
	failSave   error
}

func newFakeEmployeeStore() *fakeEmployeeStore {
	return &fakeEmployeeStore{numbers: map[string]bool{}, sections: map[string][]SectionID{}}
}

func (f *fakeEmployeeStore) CreateEmployee(_ context.Context, personal *PersonalDetails) (string, error) {
	if f.failCreate != nil {
		return "", f.failCreate
	}
	if f.numbers[personal.EmployeeID] {
		return "", ErrDuplicateEmployeeID
	}
	f.numbers[personal.EmployeeID] = true
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.sections[id] = []SectionID{SectionPersonal}
	return id, nil
}

func (f *fakeEmployeeStore) SaveSection(_ context.Context, employeeRecordID string, payload SectionPayload) error {
	if f.failSave != nil {
		return f.failSave
	}
	if _, ok := f.sections[employeeRecordID]; !ok {
		return ErrEmployeeNotFound
	}
	f.sections[employeeRecordID] = append(f.sections[employeeRecordID], payload.Section())
	return nil
}

// fakeDraftStore round-trips drafts through JSON so tests catch anything
// that would not survive real persistence.
type fakeDraftStore struct {
	drafts   map[string][]byte
	saves    int
	failSave error
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{drafts: map[string][]byte{}}
}

func (f *fakeDraftStore) Load(owner string) (*Draft, error) {
	raw, ok := f.drafts[owner]
	if !ok {
		return nil, nil
	}
	draft := &Draft{}
	if err := json.Unmarshal(raw, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (f *fakeDraftStore) Save(owner string, draft *Draft) error {
	if f.failSave != nil {
		return f.failSave
	}
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	f.drafts[owner] = raw
	f.saves++
	return nil
}

func (f *fakeDraftStore) Clear(owner string) error {
	delete(f.drafts, owner)
	return nil
}

func newTestWorkflow(t *testing.T) (*Workflow, *fakeEmployeeStore, *fakeDraftStore) {
	t.Helper()
	employees := newFakeEmployeeStore()
	drafts := newFakeDraftStore()
	wf, err := NewWorkflow(employees, drafts, "user-1")
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}
	return wf, employees, drafts
}

func validEducation() *EducationDetails {
	return &EducationDetails{SSCDocument: "ssc.pdf", HSCDocument: "hsc.pdf", DegreeDocument: "degree.pdf"}
}

func TestWorkflowInitialState(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)

	if wf.Active() != SectionPersonal {
		t.Fatalf("active = %s, want personal", wf.Active())
	}
	if wf.Status() != StatusIdle {
		t.Fatalf("status = %s, want idle", wf.Status())
	}
	for _, section := range SectionOrder {
		if wf.Progress()[section] {
			t.Fatalf("section %s should start incomplete", section)
		}
	}
}

func TestAdvanceValidationFailureKeepsSection(t *testing.T) {
	wf, _, drafts := newTestWorkflow(t)

	personal := validPersonal()
	personal.Email = ""
	_, err := wf.Advance(context.Background(), personal)
	wantFieldError(t, err, "email")

	if wf.Active() != SectionPersonal {
		t.Fatalf("active moved to %s on validation failure", wf.Active())
	}
	if wf.Status() != StatusError {
		t.Fatalf("status = %s, want error", wf.Status())
	}
	if wf.Progress()[SectionPersonal] {
		t.Fatal("failed section marked complete")
	}
	if drafts.saves == 0 {
		t.Fatal("draft not persisted after failed attempt")
	}
}

func TestAdvancePersonalCreatesEmployee(t *testing.T) {
	wf, employees, drafts := newTestWorkflow(t)

	result, err := wf.Advance(context.Background(), validPersonal())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if result.EmployeeRecordID == "" {
		t.Fatal("no employee record id assigned")
	}
	if result.Active != SectionEducation || wf.Active() != SectionEducation {
		t.Fatalf("active = %s, want education", result.Active)
	}
	if !wf.Progress()[SectionPersonal] {
		t.Fatal("personal not marked complete")
	}
	if len(employees.sections[result.EmployeeRecordID]) != 1 {
		t.Fatalf("employee store sections = %v", employees.sections[result.EmployeeRecordID])
	}

	// A restored workflow picks up exactly where this one stopped.
	restored, err := NewWorkflow(employees, drafts, "user-1")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Active() != SectionEducation {
		t.Fatalf("restored active = %s", restored.Active())
	}
	if !restored.Progress()[SectionPersonal] {
		t.Fatal("restored progress lost")
	}
	if restored.Draft().Personal == nil || restored.Draft().Personal.EmployeeID != "EMP-001" {
		t.Fatal("restored draft lost personal data")
	}
	if restored.Draft().EmployeeRecordID != result.EmployeeRecordID {
		t.Fatal("restored draft lost employee record id")
	}
}

func TestAdvanceDuplicateEmployeeID(t *testing.T) {
	employees := newFakeEmployeeStore()
	drafts := newFakeDraftStore()

	first, err := NewWorkflow(employees, drafts, "user-1")
	if err != nil {
		t.Fatalf("workflow: %v", err)
	}
	if _, err := first.Advance(context.Background(), validPersonal()); err != nil {
		t.Fatalf("advance: %v", err)
	}

	second, err := NewWorkflow(employees, drafts, "user-2")
	if err != nil {
		t.Fatalf("workflow: %v", err)
	}
	_, err = second.Advance(context.Background(), validPersonal())
	if !errors.Is(err, ErrDuplicateEmployeeID) {
		t.Fatalf("err = %v, want ErrDuplicateEmployeeID", err)
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %T, want *StoreError", err)
	}
	if second.Active() != SectionPersonal {
		t.Fatal("duplicate failure moved the active section")
	}
}

func TestAdvanceStoreFailureIsRetryable(t *testing.T) {
	wf, employees, _ := newTestWorkflow(t)

	employees.failCreate = errors.New("connection refused")
	_, err := wf.Advance(context.Background(), validPersonal())
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want *StoreError", err)
	}
	if wf.Active() != SectionPersonal || wf.Progress()[SectionPersonal] {
		t.Fatal("failed submit corrupted workflow state")
	}

	// The same call succeeds once the store recovers.
	employees.failCreate = nil
	if _, err := wf.Advance(context.Background(), validPersonal()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if wf.Active() != SectionEducation {
		t.Fatalf("active = %s after retry", wf.Active())
	}
}

func TestAdvanceLaterSectionWithoutPersonalRecord(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	if _, err := wf.Advance(context.Background(), validEducation()); !errors.Is(err, ErrNoPersonalRecord) {
		t.Fatalf("err = %v, want ErrNoPersonalRecord", err)
	}
}

func TestSelectSectionGate(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)

	// Selecting the active section is a no-op, never an error.
	if err := wf.SelectSection(SectionPersonal); err != nil {
		t.Fatalf("self-select: %v", err)
	}

	// Leaving an incomplete section is blocked, in both directions.
	if err := wf.SelectSection(SectionBank); !errors.Is(err, ErrSectionIncomplete) {
		t.Fatalf("err = %v, want ErrSectionIncomplete", err)
	}

	if _, err := wf.Advance(context.Background(), validPersonal()); err != nil {
		t.Fatalf("advance: %v", err)
	}

	// Education is now active with no data; moving away is still blocked.
	if err := wf.SelectSection(SectionPersonal); !errors.Is(err, ErrSectionIncomplete) {
		t.Fatalf("err = %v, want ErrSectionIncomplete", err)
	}

	if _, err := wf.Advance(context.Background(), validEducation()); err != nil {
		t.Fatalf("advance education: %v", err)
	}

	// Experience is active; it has no data yet so it gates too, until data
	// is stored and the section is marked complete.
	if err := wf.SetSectionData(&ExperienceDetails{}); err != nil {
		t.Fatalf("set data: %v", err)
	}
	if err := wf.SelectSection(SectionPersonal); !errors.Is(err, ErrSectionIncomplete) {
		t.Fatalf("err = %v, want ErrSectionIncomplete", err)
	}
	if err := wf.CompleteSection(SectionExperience, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := wf.SelectSection(SectionPersonal); err != nil {
		t.Fatalf("select after complete: %v", err)
	}
	if wf.Active() != SectionPersonal {
		t.Fatalf("active = %s", wf.Active())
	}
}

func TestSelectUnknownSection(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	if err := wf.SelectSection("payroll"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("err = %v, want ErrUnknownSection", err)
	}
}

func TestBack(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)

	if err := wf.Back(); !errors.Is(err, ErrAtFirstSection) {
		t.Fatalf("err = %v, want ErrAtFirstSection", err)
	}

	if _, err := wf.Advance(context.Background(), validPersonal()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := wf.Back(); err != nil {
		t.Fatalf("back: %v", err)
	}
	if wf.Active() != SectionPersonal {
		t.Fatalf("active = %s, want personal", wf.Active())
	}
	// Back never erases earned progress.
	if !wf.Progress()[SectionPersonal] {
		t.Fatal("back cleared personal progress")
	}
}

func TestCompleteSectionRequiresData(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)

	if err := wf.CompleteSection(SectionEducation, true); !errors.Is(err, ErrSectionIncomplete) {
		t.Fatalf("err = %v, want ErrSectionIncomplete", err)
	}
	if err := wf.SetSectionData(validEducation()); err != nil {
		t.Fatalf("set data: %v", err)
	}
	if err := wf.CompleteSection(SectionEducation, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// Un-completing never requires data.
	if err := wf.CompleteSection(SectionEducation, false); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
}

func TestFullWalkCompletesAndClearsDraft(t *testing.T) {
	wf, employees, drafts := newTestWorkflow(t)
	ctx := context.Background()

	if _, err := wf.Advance(ctx, validPersonal()); err != nil {
		t.Fatalf("personal: %v", err)
	}
	if _, err := wf.Advance(ctx, validEducation()); err != nil {
		t.Fatalf("education: %v", err)
	}
	if _, err := wf.Advance(ctx, &ExperienceDetails{}); err != nil {
		t.Fatalf("experience: %v", err)
	}

	result, err := wf.Advance(ctx, validBank())
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	if !result.Completed {
		t.Fatal("terminal advance not marked completed")
	}
	if wf.Status() != StatusSuccess {
		t.Fatalf("status = %s", wf.Status())
	}

	// Terminal success clears the stored draft: the next session starts
	// fresh instead of resuming a finished flow.
	if _, ok := drafts.drafts["user-1"]; ok {
		t.Fatal("draft not cleared after completion")
	}
	fresh, err := NewWorkflow(employees, drafts, "user-1")
	if err != nil {
		t.Fatalf("fresh workflow: %v", err)
	}
	if fresh.Active() != SectionPersonal || fresh.Progress()[SectionPersonal] {
		t.Fatal("fresh workflow did not start over")
	}

	wantSections := []SectionID{SectionPersonal, SectionEducation, SectionExperience, SectionBank}
	got := employees.sections[result.EmployeeRecordID]
	if len(got) != len(wantSections) {
		t.Fatalf("persisted sections = %v", got)
	}
	for i, section := range wantSections {
		if got[i] != section {
			t.Fatalf("persisted sections = %v, want %v", got, wantSections)
		}
	}
}

func TestReset(t *testing.T) {
	wf, _, drafts := newTestWorkflow(t)

	if _, err := wf.Advance(context.Background(), validPersonal()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := wf.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if wf.Active() != SectionPersonal || wf.Status() != StatusIdle {
		t.Fatalf("reset left active=%s status=%s", wf.Active(), wf.Status())
	}
	if wf.Draft().EmployeeRecordID != "" || wf.Draft().Personal != nil {
		t.Fatal("reset kept draft data")
	}
	if _, ok := drafts.drafts["user-1"]; ok {
		t.Fatal("reset did not clear the stored draft")
	}
}

func TestNewWorkflowRepairsCorruptDraft(t *testing.T) {
	employees := newFakeEmployeeStore()
	drafts := newFakeDraftStore()
	if err := drafts.Save("user-1", &Draft{Active: "payroll"}); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	wf, err := NewWorkflow(employees, drafts, "user-1")
	if err != nil {
		t.Fatalf("workflow: %v", err)
	}
	if wf.Active() != SectionPersonal {
		t.Fatalf("active = %s, want personal", wf.Active())
	}
	if wf.Progress() == nil {
		t.Fatal("progress not repaired")
	}
}

func TestAdvanceUnknownSectionPayload(t *testing.T) {
	wf, _, _ := newTestWorkflow(t)
	if err := wf.SetSectionData(badPayload{}); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("err = %v, want ErrUnknownSection", err)
	}
	if _, err := wf.Advance(context.Background(), badPayload{}); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("err = %v, want ErrUnknownSection", err)
	}
}

type badPayload struct{}

func (badPayload) Section() SectionID { return "payroll" }
