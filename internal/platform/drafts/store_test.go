package drafts

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"peopledesk/internal/domain/onboarding"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLoadMissingDraft(t *testing.T) {
	store := openTestStore(t)

	draft, err := store.Load("user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if draft != nil {
		t.Fatalf("expected nil draft, got %+v", draft)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)

	draft := onboarding.NewDraft()
	draft.Active = onboarding.SectionEducation
	draft.Progress[onboarding.SectionPersonal] = true
	draft.EmployeeRecordID = "rec-7"
	draft.Personal = &onboarding.PersonalDetails{EmployeeID: "EMP-007", FirstName: "Asha"}
	draft.Education = &onboarding.EducationDetails{SSCDocument: "ssc.pdf"}

	if err := store.Save("user-1", draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load("user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(draft, loaded); diff != "" {
		t.Fatalf("draft round trip (-want +got):\n%s", diff)
	}
}

func TestSaveOverwritesSlot(t *testing.T) {
	store := openTestStore(t)

	first := onboarding.NewDraft()
	first.EmployeeRecordID = "rec-1"
	if err := store.Save("user-1", first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := onboarding.NewDraft()
	second.EmployeeRecordID = "rec-2"
	second.Active = onboarding.SectionBank
	if err := store.Save("user-1", second); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load("user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.EmployeeRecordID != "rec-2" || loaded.Active != onboarding.SectionBank {
		t.Fatalf("slot not overwritten: %+v", loaded)
	}
}

func TestOwnersAreIsolated(t *testing.T) {
	store := openTestStore(t)

	draft := onboarding.NewDraft()
	draft.EmployeeRecordID = "rec-1"
	if err := store.Save("user-1", draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, err := store.Load("user-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if other != nil {
		t.Fatalf("owner isolation broken: %+v", other)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	if err := store.Save("user-1", onboarding.NewDraft()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear("user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	draft, err := store.Load("user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if draft != nil {
		t.Fatalf("draft survived clear: %+v", draft)
	}

	// Clearing an empty slot is not an error.
	if err := store.Clear("user-1"); err != nil {
		t.Fatalf("double clear: %v", err)
	}
}
