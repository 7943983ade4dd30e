package worktime

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestWithinWorkingHours(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one minute before opening", at(9, 59), false},
		{"at opening", at(10, 0), true},
		{"midday", at(13, 30), true},
		{"last minute", at(17, 59), true},
		{"at closing", at(18, 0), false},
		{"evening", at(21, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinWorkingHours(tc.now); got != tc.want {
				t.Fatalf("WithinWorkingHours(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestElapsedRunning(t *testing.T) {
	session := &Session{Status: StatusRunning, StartTime: at(10, 0)}

	if got := Elapsed(session, at(12, 0)); got != 2*time.Hour {
		t.Fatalf("elapsed = %v, want 2h", got)
	}

	// Same inputs, same answer: nothing accumulates between calls.
	if got := Elapsed(session, at(12, 0)); got != 2*time.Hour {
		t.Fatalf("second call elapsed = %v, want 2h", got)
	}

	session.TotalPauseMinutes = 30
	if got := Elapsed(session, at(12, 0)); got != 90*time.Minute {
		t.Fatalf("elapsed with folded pause = %v, want 90m", got)
	}
}

func TestElapsedPaused(t *testing.T) {
	pauseStart := at(12, 0)
	session := &Session{
		Status:            StatusPaused,
		StartTime:         at(10, 0),
		TotalPauseMinutes: 10,
		PauseStartTime:    &pauseStart,
	}

	// 10:00-12:30 minus 10 folded minutes minus the 30 live pause minutes.
	if got := Elapsed(session, at(12, 30)); got != 110*time.Minute {
		t.Fatalf("elapsed = %v, want 110m", got)
	}
}

func TestElapsedCompletedUsesEndTime(t *testing.T) {
	end := at(17, 0)
	session := &Session{
		Status:            StatusCompleted,
		StartTime:         at(10, 0),
		EndTime:           &end,
		TotalPauseMinutes: 60,
	}

	// A completed session reports the same duration no matter when asked.
	if got := Elapsed(session, at(23, 0)); got != 6*time.Hour {
		t.Fatalf("elapsed = %v, want 6h", got)
	}
	if got := Elapsed(session, end.AddDate(0, 0, 5)); got != 6*time.Hour {
		t.Fatalf("elapsed days later = %v, want 6h", got)
	}
}

func TestElapsedNeverNegative(t *testing.T) {
	session := &Session{Status: StatusRunning, StartTime: at(10, 0), TotalPauseMinutes: 600}
	if got := Elapsed(session, at(11, 0)); got != 0 {
		t.Fatalf("elapsed = %v, want 0", got)
	}
	if got := Elapsed(nil, at(11, 0)); got != 0 {
		t.Fatalf("elapsed(nil) = %v, want 0", got)
	}
}

func TestBreakWarning(t *testing.T) {
	pauseStart := at(12, 0)
	tests := []struct {
		name    string
		session *Session
		now     time.Time
		want    string
		wantOK  bool
	}{
		{
			name:    "lunch within limit",
			session: &Session{Status: StatusPaused, PauseReason: PauseReasonLunch, PauseStartTime: &pauseStart},
			now:     at(12, 45),
		},
		{
			name:    "lunch exceeded",
			session: &Session{Status: StatusPaused, PauseReason: PauseReasonLunch, PauseStartTime: &pauseStart},
			now:     at(12, 50),
			want:    "Lunch Break exceeded by 5 minutes",
			wantOK:  true,
		},
		{
			name:    "coffee exceeded",
			session: &Session{Status: StatusPaused, PauseReason: PauseReasonCoffee, PauseStartTime: &pauseStart},
			now:     at(12, 20),
			want:    "Coffee Break exceeded by 5 minutes",
			wantOK:  true,
		},
		{
			name:    "other exceeded just over limit",
			session: &Session{Status: StatusPaused, PauseReason: PauseReasonOther, PauseStartTime: &pauseStart},
			now:     at(12, 15).Add(10 * time.Second),
			want:    "Other exceeded by 1 minutes",
			wantOK:  true,
		},
		{
			name:    "running session never warns",
			session: &Session{Status: StatusRunning, PauseReason: PauseReasonLunch, PauseStartTime: &pauseStart},
			now:     at(14, 0),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := BreakWarning(tc.session, tc.now)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("BreakWarning = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestPauseMinutes(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exact minutes", at(12, 0), at(12, 30), 30},
		{"rounds down under half", at(12, 0), at(12, 10).Add(20 * time.Second), 10},
		{"rounds up over half", at(12, 0), at(12, 10).Add(40 * time.Second), 11},
		{"end before start", at(12, 30), at(12, 0), 0},
		{"zero duration", at(12, 0), at(12, 0), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PauseMinutes(tc.start, tc.end); got != tc.want {
				t.Fatalf("PauseMinutes = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOvertimeMinutes(t *testing.T) {
	tests := []struct {
		worked time.Duration
		want   int
	}{
		{7 * time.Hour, 0},
		{8 * time.Hour, 0},
		{8*time.Hour + time.Minute, 1},
		{10 * time.Hour, 120},
	}
	for _, tc := range tests {
		if got := OvertimeMinutes(tc.worked); got != tc.want {
			t.Fatalf("OvertimeMinutes(%v) = %d, want %d", tc.worked, got, tc.want)
		}
	}
}

func TestBreakLimit(t *testing.T) {
	if got := BreakLimit(PauseReasonLunch); got != 45*time.Minute {
		t.Fatalf("lunch limit = %v", got)
	}
	if got := BreakLimit(PauseReasonCoffee); got != 15*time.Minute {
		t.Fatalf("coffee limit = %v", got)
	}
	if got := BreakLimit(PauseReasonOther); got != 15*time.Minute {
		t.Fatalf("other limit = %v", got)
	}
}
