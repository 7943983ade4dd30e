package worktime

import (
	"fmt"
	"time"
)

const (
	// Sessions may only start within the office window, inclusive of the
	// opening hour and exclusive of the closing one.
	WorkdayStartHour = 10
	WorkdayEndHour   = 18

	// RegularWorkMinutes is a standard eight-hour day; anything beyond it
	// is annotated as overtime when a session completes.
	RegularWorkMinutes = 8 * 60

	LunchBreakLimit   = 45 * time.Minute
	DefaultBreakLimit = 15 * time.Minute
)

// WithinWorkingHours reports whether a session may start at now.
func WithinWorkingHours(now time.Time) bool {
	hour := now.Hour()
	return hour >= WorkdayStartHour && hour < WorkdayEndHour
}

// Elapsed computes worked time as a pure function of the session and now.
// It is re-derived from timestamps on every call, so repeated invocations
// with the same inputs always agree and no drift accumulates.
func Elapsed(s *Session, now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	reference := now
	if s.Status == StatusCompleted && s.EndTime != nil {
		reference = *s.EndTime
	}
	elapsed := reference.Sub(s.StartTime)
	elapsed -= time.Duration(s.TotalPauseMinutes) * time.Minute
	if s.Status == StatusPaused && s.PauseStartTime != nil {
		elapsed -= now.Sub(*s.PauseStartTime)
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// BreakLimit returns the advisory maximum for a pause reason.
func BreakLimit(reason string) time.Duration {
	if reason == PauseReasonLunch {
		return LunchBreakLimit
	}
	return DefaultBreakLimit
}

// BreakWarning returns a display-only warning when the current pause has
// exceeded its per-reason limit. It never blocks a transition.
func BreakWarning(s *Session, now time.Time) (string, bool) {
	if s == nil || s.Status != StatusPaused || s.PauseStartTime == nil {
		return "", false
	}
	limit := BreakLimit(s.PauseReason)
	current := now.Sub(*s.PauseStartTime)
	if current <= limit {
		return "", false
	}
	over := int((current - limit).Minutes())
	if over < 1 {
		over = 1
	}
	reason := s.PauseReason
	if reason == "" {
		reason = "Break"
	}
	return fmt.Sprintf("%s exceeded by %d minutes", reason, over), true
}

// PauseMinutes converts a finished pause interval to the whole minutes
// added to the session accumulator.
func PauseMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Round(time.Minute) / time.Minute)
}

// OvertimeMinutes returns worked minutes beyond the regular day.
func OvertimeMinutes(worked time.Duration) int {
	minutes := int(worked.Minutes())
	if minutes <= RegularWorkMinutes {
		return 0
	}
	return minutes - RegularWorkMinutes
}
