package worktime

import "errors"

var (
	// ErrOutsideWorkingHours is the office-hours policy gate on Start.
	ErrOutsideWorkingHours = errors.New("work timer can only be started between 10:00 and 18:00")
	ErrActiveSessionExists = errors.New("an active work session already exists")
	ErrNoActiveSession     = errors.New("no active work session")
	ErrSessionNotFound     = errors.New("work session not found")
	ErrInvalidTransition   = errors.New("invalid work session transition")
	ErrUnknownPauseReason  = errors.New("unknown pause reason")
)
