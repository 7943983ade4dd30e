package worktime

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const sessionColumns = `id, employee_id, status, start_time, end_time,
           COALESCE(pause_reason, ''), pause_start_time, pause_end_time,
           total_pause_minutes, overtime_minutes, regular_hours_completed,
           created_at, updated_at`

// Querier is the slice of the pgx pool API the session store needs. A
// *pgxpool.Pool satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	DB Querier
}

func NewStore(db Querier) *Store {
	return &Store{DB: db}
}

// CreateSession inserts a running session. The partial unique index on
// active sessions makes the database the last line of defense when two
// trackers race to start for the same employee.
func (s *Store) CreateSession(ctx context.Context, employeeID string, start time.Time) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO work_sessions (employee_id, status, start_time)
    VALUES ($1, $2, $3)
    RETURNING `+sessionColumns+`
  `, employeeID, StatusRunning, start)
	session, err := scanSession(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrActiveSessionExists
		}
		return nil, err
	}
	return session, nil
}

func (s *Store) ActiveSession(ctx context.Context, employeeID string) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+sessionColumns+`
    FROM work_sessions
    WHERE employee_id = $1 AND status IN ($2, $3)
  `, employeeID, StatusRunning, StatusPaused)
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) MarkPaused(ctx context.Context, sessionID, reason string, at time.Time) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE work_sessions
    SET status = $1,
        pause_reason = $2,
        pause_start_time = $3,
        updated_at = now()
    WHERE id = $4 AND status = $5
    RETURNING `+sessionColumns+`
  `, StatusPaused, reason, at, sessionID, StatusRunning)
	return s.guardTransition(ctx, sessionID, row)
}

func (s *Store) MarkResumed(ctx context.Context, sessionID string, at time.Time, pauseMinutes int) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE work_sessions
    SET status = $1,
        pause_end_time = $2,
        total_pause_minutes = total_pause_minutes + $3,
        pause_reason = NULL,
        pause_start_time = NULL,
        updated_at = now()
    WHERE id = $4 AND status = $5
    RETURNING `+sessionColumns+`
  `, StatusRunning, at, pauseMinutes, sessionID, StatusPaused)
	return s.guardTransition(ctx, sessionID, row)
}

func (s *Store) MarkCompleted(ctx context.Context, sessionID string, at time.Time, pauseMinutes, overtimeMinutes int, regularDone bool) (*Session, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE work_sessions
    SET status = $1,
        end_time = $2,
        total_pause_minutes = $3,
        overtime_minutes = $4,
        regular_hours_completed = $5,
        pause_reason = NULL,
        pause_start_time = NULL,
        updated_at = now()
    WHERE id = $6 AND status IN ($7, $8)
    RETURNING `+sessionColumns+`
  `, StatusCompleted, at, pauseMinutes, overtimeMinutes, regularDone, sessionID, StatusRunning, StatusPaused)
	return s.guardTransition(ctx, sessionID, row)
}

func (s *Store) SessionHistory(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+sessionColumns+`
    FROM work_sessions
    WHERE employee_id = $1 AND start_time >= $2 AND start_time < $3
    ORDER BY start_time DESC
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *session)
	}
	return out, rows.Err()
}

// AutoCloseStale completes sessions still active past cutoff, capping the
// end time at the start day's closing hour. Used by the background job.
func (s *Store) AutoCloseStale(ctx context.Context, cutoff time.Time) ([]Session, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+sessionColumns+`
    FROM work_sessions
    WHERE status IN ($1, $2) AND start_time < $3
  `, StatusRunning, StatusPaused, cutoff)
	if err != nil {
		return nil, err
	}
	stale, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}

	var closed []Session
	for _, session := range stale {
		end := time.Date(session.StartTime.Year(), session.StartTime.Month(), session.StartTime.Day(),
			WorkdayEndHour, 0, 0, 0, session.StartTime.Location())
		if end.Before(session.StartTime) {
			end = session.StartTime
		}
		pauseMinutes := session.TotalPauseMinutes
		if session.Status == StatusPaused && session.PauseStartTime != nil && end.After(*session.PauseStartTime) {
			pauseMinutes += PauseMinutes(*session.PauseStartTime, end)
		}
		worked := end.Sub(session.StartTime) - time.Duration(pauseMinutes)*time.Minute
		if worked < 0 {
			worked = 0
		}
		done, err := s.MarkCompleted(ctx, session.ID, end, pauseMinutes, OvertimeMinutes(worked), int(worked.Minutes()) >= RegularWorkMinutes)
		if err != nil {
			return closed, err
		}
		closed = append(closed, *done)
	}
	return closed, nil
}

func (s *Store) guardTransition(ctx context.Context, sessionID string, row pgx.Row) (*Session, error) {
	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var count int
		if checkErr := s.DB.QueryRow(ctx, `
      SELECT COUNT(1)
      FROM work_sessions
      WHERE id = $1
    `, sessionID).Scan(&count); checkErr != nil {
			return nil, checkErr
		}
		if count == 0 {
			return nil, ErrSessionNotFound
		}
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func collectSessions(rows pgx.Rows) ([]Session, error) {
	defer rows.Close()
	var out []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *session)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var session Session
	if err := row.Scan(
		&session.ID,
		&session.EmployeeID,
		&session.Status,
		&session.StartTime,
		&session.EndTime,
		&session.PauseReason,
		&session.PauseStartTime,
		&session.PauseEndTime,
		&session.TotalPauseMinutes,
		&session.OvertimeMinutes,
		&session.RegularHoursCompleted,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
