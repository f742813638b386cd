package asteroid

import (
	"fmt"
	"time"
)

// NotificationKind classifies a notification.
type NotificationKind string

// Notification kinds.
const (
	KindAlert    NotificationKind = "alert"
	KindAccepted NotificationKind = "accepted"
	KindRejected NotificationKind = "rejected"
)

// Display durations.
const (
	AlertDisplay   = 5 * time.Second
	OutcomeDisplay = 3 * time.Second
)

// Notification is a transient, self-expiring event for the UI.
type Notification struct {
	ID           string           `json:"id"`
	Kind         NotificationKind `json:"kind"`
	SuggestionID string           `json:"suggestion_id"`
	TaskID       string           `json:"task_id"`
	Message      string           `json:"message"`
	CreatedAt    time.Time        `json:"created_at"`
	ExpiresAt    time.Time        `json:"expires_at"`
}

func alertMessage(s *Suggestion, now time.Time) string {
	v := View{Suggestion: *s, Remaining: s.TimeLimit.Sub(now)}

	return fmt.Sprintf("%ds left: %s", v.RemainingSeconds(), s.Action)
}

func outcomeMessage(s *Suggestion, o Outcome) string {
	if o == Accept {
		return "Accepted: " + s.Action
	}

	return "Rejected: " + s.Action
}

func outcomeKind(o Outcome) NotificationKind {
	if o == Accept {
		return KindAccepted
	}

	return KindRejected
}
