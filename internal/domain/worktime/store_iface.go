package worktime

import (
	"context"
	"time"
)

// SessionStore persists work sessions. It is the sole arbiter of the
// one-active-session-per-employee rule: CreateSession must fail with
// ErrActiveSessionExists when a running or paused session already exists.
type SessionStore interface {
	CreateSession(ctx context.Context, employeeID string, start time.Time) (*Session, error)
	ActiveSession(ctx context.Context, employeeID string) (*Session, error)
	MarkPaused(ctx context.Context, sessionID, reason string, at time.Time) (*Session, error)
	MarkResumed(ctx context.Context, sessionID string, at time.Time, pauseMinutes int) (*Session, error)
	MarkCompleted(ctx context.Context, sessionID string, at time.Time, pauseMinutes, overtimeMinutes int, regularDone bool) (*Session, error)
	SessionHistory(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error)
}
