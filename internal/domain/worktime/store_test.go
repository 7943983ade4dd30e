package worktime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var sessionRowColumns = []string{
	"id", "employee_id", "status", "start_time", "end_time",
	"pause_reason", "pause_start_time", "pause_end_time",
	"total_pause_minutes", "overtime_minutes", "regular_hours_completed",
	"created_at", "updated_at",
}

func runningSessionRow(start time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(sessionRowColumns).AddRow(
		"session-1", "emp-1", StatusRunning, start, (*time.Time)(nil),
		"", (*time.Time)(nil), (*time.Time)(nil),
		0, 0, false, start, start,
	)
}

func TestStoreCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	start := at(10, 0)
	mock.ExpectQuery("INSERT INTO work_sessions").
		WithArgs("emp-1", StatusRunning, start).
		WillReturnRows(runningSessionRow(start))

	store := NewStore(mock)
	session, err := store.CreateSession(context.Background(), "emp-1", start)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.ID != "session-1" || session.Status != StatusRunning {
		t.Fatalf("unexpected session %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreCreateSessionUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	start := at(10, 0)
	mock.ExpectQuery("INSERT INTO work_sessions").
		WithArgs("emp-1", StatusRunning, start).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	store := NewStore(mock)
	if _, err := store.CreateSession(context.Background(), "emp-1", start); !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("err = %v, want ErrActiveSessionExists", err)
	}
}

func TestStoreActiveSessionNone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM work_sessions").
		WithArgs("emp-1", StatusRunning, StatusPaused).
		WillReturnError(pgx.ErrNoRows)

	store := NewStore(mock)
	session, err := store.ActiveSession(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session, got %+v", session)
	}
}

func TestStoreMarkPausedGuards(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		wantErr error
	}{
		{"missing session", 0, ErrSessionNotFound},
		{"wrong state", 1, ErrInvalidTransition},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("mock pool: %v", err)
			}
			defer mock.Close()

			pausedAt := at(12, 0)
			mock.ExpectQuery("UPDATE work_sessions").
				WithArgs(StatusPaused, PauseReasonLunch, pausedAt, "session-1", StatusRunning).
				WillReturnError(pgx.ErrNoRows)
			mock.ExpectQuery("SELECT COUNT").
				WithArgs("session-1").
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(tc.count))

			store := NewStore(mock)
			if _, err := store.MarkPaused(context.Background(), "session-1", PauseReasonLunch, pausedAt); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStoreAutoCloseStaleCapsAtClosingHour(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	start := at(14, 0)
	pauseStart := at(15, 0)
	end := at(18, 0)

	stale := pgxmock.NewRows(sessionRowColumns).AddRow(
		"session-9", "emp-1", StatusPaused, start, (*time.Time)(nil),
		PauseReasonOther, &pauseStart, (*time.Time)(nil),
		10, 0, false, start, pauseStart,
	)
	mock.ExpectQuery("SELECT (.+) FROM work_sessions").
		WithArgs(StatusRunning, StatusPaused, at(23, 0)).
		WillReturnRows(stale)

	// Open pause runs from 15:00 to the 18:00 cap: 180 minutes on top of
	// the 10 already folded. Worked time is 240 - 190 = 50 minutes.
	completed := pgxmock.NewRows(sessionRowColumns).AddRow(
		"session-9", "emp-1", StatusCompleted, start, &end,
		"", (*time.Time)(nil), (*time.Time)(nil),
		190, 0, false, start, end,
	)
	mock.ExpectQuery("UPDATE work_sessions").
		WithArgs(StatusCompleted, end, 190, 0, false, "session-9", StatusRunning, StatusPaused).
		WillReturnRows(completed)

	store := NewStore(mock)
	closed, err := store.AutoCloseStale(context.Background(), at(23, 0))
	if err != nil {
		t.Fatalf("auto close: %v", err)
	}
	if len(closed) != 1 {
		t.Fatalf("closed = %d sessions", len(closed))
	}
	if closed[0].TotalPauseMinutes != 190 || closed[0].Status != StatusCompleted {
		t.Fatalf("unexpected closed session %+v", closed[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
