// Package task holds the task model and the in-memory task list that every
// derived structure (classifications, solar systems, layouts) is projected
// from.
package task

import (
	"slices"
	"strings"
	"time"
)

// Priority is the user-facing urgency of a task.
type Priority string

// Priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	DefaultPriority = PriorityMedium
)

// Priority weights used by ordering and visual formulas.
const (
	WeightLow    = 1
	WeightMedium = 2
	WeightHigh   = 3
)

// ParsePriority normalizes s. Unknown or empty values report ok=false and
// return DefaultPriority, so callers can always use the result.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityHigh:
		return PriorityHigh, true
	default:
		return DefaultPriority, false
	}
}

// Weight maps the priority to 1..3. Invalid priorities weigh as medium.
func (p Priority) Weight() int {
	parsed, _ := ParsePriority(string(p))

	switch parsed {
	case PriorityLow:
		return WeightLow
	case PriorityHigh:
		return WeightHigh
	default:
		return WeightMedium
	}
}

// DefaultCategory is used when a task carries no category.
const DefaultCategory = "general"

// NormalizeCategory trims and lowercases c. Empty input yields
// DefaultCategory and ok=false.
func NormalizeCategory(c string) (string, bool) {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return DefaultCategory, false
	}

	return c, true
}

// SubTask is a checklist item nested inside a task.
type SubTask struct {
	ID        string
	Text      string
	Completed bool
}

// Task is a user-owned unit of work.
//
// Category and Priority are kept exactly as supplied, including invalid
// values; consumers normalize them with NormalizeCategory and ParsePriority.
type Task struct {
	ID        string
	Text      string
	Category  string
	Priority  Priority
	Completed bool
	CreatedAt time.Time
	Deadline  *time.Time
	SubTasks  []SubTask

	// Goal marks the task as an overarching goal.
	Goal bool

	// System, when non-empty, pins the task to a solar system regardless of
	// its category.
	System string

	// seq is the insertion order inside the owning List. It breaks ties
	// between tasks created within the same clock reading.
	seq uint64
}

// Seq returns the insertion sequence assigned by the owning List.
func (t *Task) Seq() uint64 {
	return t.seq
}

// HasDeadline reports whether the task has a usable deadline.
func (t *Task) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// OpenSubTasks returns the sub-tasks that are not completed, in order.
func (t *Task) OpenSubTasks() []SubTask {
	var open []SubTask

	for _, st := range t.SubTasks {
		if !st.Completed {
			open = append(open, st)
		}
	}

	return open
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}

	t.SubTasks = slices.Clone(t.SubTasks)

	return t
}

// Draft carries the fields for a new task.
type Draft struct {
	Text     string
	Category string
	Priority string
	Deadline *time.Time
	SubTasks []string
	Goal     bool
	System   string
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Text      *string
	Category  *string
	Priority  *string
	Completed *bool
	Goal      *bool
	System    *string

	// Deadline replaces the deadline when non-nil. ClearDeadline removes it
	// and takes precedence.
	Deadline      *time.Time
	ClearDeadline bool

	// AddSubTasks appends new sub-tasks with the given texts.
	AddSubTasks []string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p *Patch) IsEmpty() bool {
	return p.Text == nil && p.Category == nil && p.Priority == nil &&
		p.Completed == nil && p.Goal == nil && p.System == nil &&
		p.Deadline == nil && !p.ClearDeadline && len(p.AddSubTasks) == 0
}
