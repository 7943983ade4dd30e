package worktime

import (
	"context"
	"time"
)

// Tracker drives one employee's work session through its transitions. It
// keeps no local session state beyond what it fetches from the store, so a
// failed store call never leaves the machine drifted from the persisted
// row. Callers must serialize calls per employee.
type Tracker struct {
	store SessionStore
	clock func() time.Time
}

func NewTracker(store SessionStore) *Tracker {
	return &Tracker{store: store, clock: time.Now}
}

// NewTrackerWithClock injects a clock for tests of the office-hours gate
// and the timing arithmetic.
func NewTrackerWithClock(store SessionStore, clock func() time.Time) *Tracker {
	return &Tracker{store: store, clock: clock}
}

// Start creates a running session. The store rejects a second active
// session for the same employee regardless of what this instance has seen.
func (t *Tracker) Start(ctx context.Context, employeeID string) (*Session, error) {
	now := t.clock()
	if !WithinWorkingHours(now) {
		return nil, ErrOutsideWorkingHours
	}
	return t.store.CreateSession(ctx, employeeID, now)
}

func (t *Tracker) Pause(ctx context.Context, employeeID, reason string) (*Session, error) {
	if !ValidPauseReason(reason) {
		return nil, ErrUnknownPauseReason
	}
	session, err := t.store.ActiveSession(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	if session.Status != StatusRunning {
		return nil, ErrInvalidTransition
	}
	return t.store.MarkPaused(ctx, session.ID, reason, t.clock())
}

// Resume folds the just-finished pause interval into the session
// accumulator and clears the live pause fields.
func (t *Tracker) Resume(ctx context.Context, employeeID string) (*Session, error) {
	session, err := t.store.ActiveSession(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}
	if session.Status != StatusPaused || session.PauseStartTime == nil {
		return nil, ErrInvalidTransition
	}
	now := t.clock()
	return t.store.MarkResumed(ctx, session.ID, now, PauseMinutes(*session.PauseStartTime, now))
}

// Stop completes the session from either running or paused. A pause still
// open at stop time is closed first so no dangling pause start survives
// completion.
func (t *Tracker) Stop(ctx context.Context, employeeID string) (*Session, error) {
	session, err := t.store.ActiveSession(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoActiveSession
	}

	now := t.clock()
	pauseMinutes := session.TotalPauseMinutes
	if session.Status == StatusPaused && session.PauseStartTime != nil {
		pauseMinutes += PauseMinutes(*session.PauseStartTime, now)
	}

	worked := now.Sub(session.StartTime) - time.Duration(pauseMinutes)*time.Minute
	if worked < 0 {
		worked = 0
	}
	overtime := OvertimeMinutes(worked)
	regularDone := int(worked.Minutes()) >= RegularWorkMinutes

	return t.store.MarkCompleted(ctx, session.ID, now, pauseMinutes, overtime, regularDone)
}

func (t *Tracker) Active(ctx context.Context, employeeID string) (*Session, error) {
	return t.store.ActiveSession(ctx, employeeID)
}

func (t *Tracker) History(ctx context.Context, employeeID string, from, to time.Time) ([]Session, error) {
	return t.store.SessionHistory(ctx, employeeID, from, to)
}

// View is what the UI renders for the active session: live elapsed time
// and the advisory break warning, both derived from timestamps on demand.
type View struct {
	Status         Status   `json:"status"`
	Session        *Session `json:"session,omitempty"`
	ElapsedSeconds int64    `json:"elapsedSeconds"`
	PauseMinutes   int      `json:"pauseMinutes"`
	BreakWarning   string   `json:"breakWarning,omitempty"`
}

func (t *Tracker) ActiveView(ctx context.Context, employeeID string) (*View, error) {
	session, err := t.store.ActiveSession(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	now := t.clock()
	view := &View{Status: "none"}
	if session == nil {
		return view, nil
	}
	view.Status = session.Status
	view.Session = session
	view.ElapsedSeconds = int64(Elapsed(session, now).Seconds())
	view.PauseMinutes = session.TotalPauseMinutes
	if session.Status == StatusPaused && session.PauseStartTime != nil {
		view.PauseMinutes += PauseMinutes(*session.PauseStartTime, now)
	}
	if warning, ok := BreakWarning(session, now); ok {
		view.BreakWarning = warning
	}
	return view, nil
}
