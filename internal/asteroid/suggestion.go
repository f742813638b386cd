// Package asteroid manages time-boxed suggestions ("asteroids") tied to tasks.
//
// A suggestion is proposed, then leaves the active set exactly once: accepted,
// rejected or expired. All three are terminal. Urgency is never stored; it is
// recomputed from the time limit whenever a view is taken.
package asteroid

import (
	"time"
)

// Urgency tiers by remaining time.
type Urgency string

// Urgency values.
const (
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
	UrgencyExpired  Urgency = "expired"
)

// Tier boundaries. Remaining time above HighAt is medium, down to CriticalAt
// (inclusive) is high, below that is critical until the limit.
const (
	HighAt     = 30 * time.Second
	CriticalAt = 10 * time.Second
)

// UrgencyAt returns the tier of a suggestion with the given time limit at now.
func UrgencyAt(limit, now time.Time) Urgency {
	remaining := limit.Sub(now)

	switch {
	case remaining <= 0:
		return UrgencyExpired
	case remaining < CriticalAt:
		return UrgencyCritical
	case remaining <= HighAt:
		return UrgencyHigh
	default:
		return UrgencyMedium
	}
}

// State is the lifecycle state of a suggestion.
type State string

// States. Everything but StateProposed is terminal.
const (
	StateProposed State = "proposed"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
	StateExpired  State = "expired"
)

// Outcome is an explicit user resolution.
type Outcome string

// Outcomes.
const (
	Accept Outcome = "accept"
	Reject Outcome = "reject"
)

// ParseOutcome accepts "accept"/"a" and "reject"/"r".
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "accept", "a":
		return Accept, true
	case "reject", "r":
		return Reject, true
	default:
		return "", false
	}
}

// Valid reports whether o is Accept or Reject.
func (o Outcome) Valid() bool {
	return o == Accept || o == Reject
}

func (o Outcome) state() State {
	if o == Accept {
		return StateAccepted
	}

	return StateRejected
}

// Impact bounds.
const (
	MinImpact = 1
	MaxImpact = 3
)

// Suggestion is a proposed micro-action for exactly one task.
type Suggestion struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	SystemKey   string    `json:"system_key,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Impact      int       `json:"impact"`
	CreatedAt   time.Time `json:"created_at"`
	TimeLimit   time.Time `json:"time_limit"`
	State       State     `json:"state"`
}

// View is a suggestion as seen at a point in time.
type View struct {
	Suggestion

	Urgency   Urgency       `json:"urgency"`
	Remaining time.Duration `json:"remaining"`

	// TaskText is empty when the target task no longer resolves.
	TaskText string `json:"task_text,omitempty"`
}

// RemainingSeconds rounds the remaining time up to whole seconds.
func (v *View) RemainingSeconds() int {
	if v.Remaining <= 0 {
		return 0
	}

	return int((v.Remaining + time.Second - 1) / time.Second)
}
