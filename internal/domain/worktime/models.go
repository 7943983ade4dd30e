package worktime

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

const (
	PauseReasonLunch  = "Lunch Break"
	PauseReasonCoffee = "Coffee Break"
	PauseReasonOther  = "Other"
)

// PauseReasons is the fixed set the UI offers.
var PauseReasons = []string{PauseReasonLunch, PauseReasonCoffee, PauseReasonOther}

func ValidPauseReason(reason string) bool {
	for _, candidate := range PauseReasons {
		if candidate == reason {
			return true
		}
	}
	return false
}

// Session is one employee work session. PauseStartTime is set exactly while
// the session is paused; completed pause intervals are folded into
// TotalPauseMinutes.
type Session struct {
	ID                    string     `json:"id"`
	EmployeeID            string     `json:"employeeId"`
	Status                Status     `json:"status"`
	StartTime             time.Time  `json:"startTime"`
	EndTime               *time.Time `json:"endTime,omitempty"`
	PauseReason           string     `json:"pauseReason,omitempty"`
	PauseStartTime        *time.Time `json:"pauseStartTime,omitempty"`
	PauseEndTime          *time.Time `json:"pauseEndTime,omitempty"`
	TotalPauseMinutes     int        `json:"totalPauseDurationMinutes"`
	OvertimeMinutes       int        `json:"overtimeMinutes"`
	RegularHoursCompleted bool       `json:"regularHoursCompleted"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

func (s *Session) Active() bool {
	return s != nil && (s.Status == StatusRunning || s.Status == StatusPaused)
}
