package reports

import (
	"bytes"
	"testing"
	"time"

	"peopledesk/internal/domain/worktime"
)

func completedSession(start time.Time, minutes, pauseMinutes, overtime int) worktime.Session {
	end := start.Add(time.Duration(minutes+pauseMinutes) * time.Minute)
	return worktime.Session{
		ID:                "session-1",
		EmployeeID:        "emp-1",
		Status:            worktime.StatusCompleted,
		StartTime:         start,
		EndTime:           &end,
		TotalPauseMinutes: pauseMinutes,
		OvertimeMinutes:   overtime,
	}
}

func TestBuildTimesheet(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	rows := BuildTimesheet([]worktime.Session{
		completedSession(start, 480, 30, 0),
		{
			ID:         "session-2",
			EmployeeID: "emp-1",
			Status:     worktime.StatusRunning,
			StartTime:  start.AddDate(0, 0, 1),
		},
	})

	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Date != "2025-06-02" || rows[0].Start != "10:00" || rows[0].End != "18:30" {
		t.Fatalf("row = %+v", rows[0])
	}
	if rows[0].WorkedMinutes != 480 || rows[0].PauseMinutes != 30 {
		t.Fatalf("row minutes = %+v", rows[0])
	}
	if rows[1].End != "" || rows[1].Status != "running" {
		t.Fatalf("open session row = %+v", rows[1])
	}
}

func TestTimesheetPDF(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	rows := BuildTimesheet([]worktime.Session{completedSession(start, 510, 45, 30)})

	payload, err := TimesheetPDF("Asha Nair", start, start.AddDate(0, 0, 6), rows)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestTimesheetXLSX(t *testing.T) {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	rows := BuildTimesheet([]worktime.Session{completedSession(start, 480, 0, 0)})

	payload, err := TimesheetXLSX("Asha Nair", rows)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(payload, []byte("PK")) {
		t.Fatal("output is not an XLSX archive")
	}
}
