package asset

import (
	"errors"
	"fmt"
)

// Status is the migration lifecycle state of an asset.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// IsTerminal reports whether s retires the asset from planning.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// CheckTransition validates moving from one status to another.
//
// Allowed: pending → in_progress → completed, and any → skipped.
// Staying in the same status is a no-op and always allowed.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == to || to == StatusSkipped {
		return nil
	}
	switch {
	case from == StatusPending && to == StatusInProgress:
		return nil
	case from == StatusInProgress && to == StatusCompleted:
		return nil
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}
