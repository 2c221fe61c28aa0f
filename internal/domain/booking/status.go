package booking

import (
	"fmt"

	"github.com/pawnest/service-marketplace/internal/domain"
)

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDeclined   Status = "declined"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusDeclined, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusDeclined:   {},
}

// BlockingStatuses are the statuses that occupy a sitter's calendar for
// overlap-conflict purposes.
func BlockingStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusInProgress}
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsBlocking returns true if a booking in this status occupies the sitter's calendar.
func (s Status) IsBlocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProgress
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}
