package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSection      = errors.New("unknown onboarding section")
	ErrSectionIncomplete   = errors.New("active section is incomplete")
	ErrAtFirstSection      = errors.New("already at the first section")
	ErrNoPersonalRecord    = errors.New("personal details must be submitted first")
	ErrDuplicateEmployeeID = errors.New("employee id already exists")
	ErrEmployeeNotFound    = errors.New("employee record not found")
)

// ValidationError reports the first unmet condition found by a section
// validator. It is local and recoverable: the draft is left untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure from the employee store. The workflow returns
// to its pre-call state and the caller may retry the same operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("employee store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
