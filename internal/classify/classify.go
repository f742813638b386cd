// Package classify derives a Classification from a task.
//
// Classify is pure: the same task and Context always produce the same
// result. It never fails; every malformed field falls back to a documented
// default so downstream composition and urgency logic always have input.
package classify

import (
	"math"
	"strings"
	"time"

	"github.com/calvinalkan/orbit/internal/task"
)

// Role is a task's celestial role inside its solar system.
type Role string

// Roles.
const (
	RoleSun       Role = "sun"
	RolePlanet    Role = "planet"
	RoleSatellite Role = "satellite"
)

// DefaultDays is used as days-until-deadline when a task has no deadline.
const DefaultDays = 30

const day = 24 * time.Hour

// Context carries the inputs a classification depends on besides the task.
type Context struct {
	Now time.Time
}

// Visual holds render parameters derived from priority and deadline.
type Visual struct {
	SizeMultiplier    float64 `json:"size_multiplier"`
	Brightness        float64 `json:"brightness"`
	RotationSpeed     float64 `json:"rotation_speed"`
	UrgencyColor      string  `json:"urgency_color"`
	DaysUntilDeadline int     `json:"days_until_deadline"`
}

// Seed is a suggested micro-action for a task.
type Seed struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Impact      int    `json:"impact"`
}

// Classification is derived from a task and never stored on its own.
type Classification struct {
	TaskID            string        `json:"task_id"`
	Category          string        `json:"category"`
	Priority          task.Priority `json:"priority"`
	Role              Role          `json:"role"`
	SystemKey         string        `json:"system_key"`
	EstimatedDeadline time.Time     `json:"estimated_deadline"`
	Visual            Visual        `json:"visual"`
	Confidence        int           `json:"confidence"`
	Seeds             []Seed        `json:"seeds,omitempty"`
}

// Classify derives the classification of t at ctx.Now.
func Classify(t task.Task, ctx Context) Classification {
	category, explicitCategory := task.NormalizeCategory(t.Category)
	priority, explicitPriority := task.ParsePriority(string(t.Priority))
	days := DaysUntil(t.Deadline, ctx.Now)

	estimated := ctx.Now.Add(DefaultDays * day)
	if t.HasDeadline() {
		estimated = *t.Deadline
	}

	role, keywordRole := RoleOf(t)

	return Classification{
		TaskID:            t.ID,
		Category:          category,
		Priority:          priority,
		Role:              role,
		SystemKey:         SystemKey(t),
		EstimatedDeadline: estimated,
		Visual:            VisualFor(float64(priority.Weight()), days),
		Confidence:        confidence(t, explicitCategory, explicitPriority, keywordRole),
		Seeds:             Seeds(t, category, days),
	}
}

// DaysUntil returns whole days from now until deadline, rounded up and
// floored at 0. A nil or zero deadline yields DefaultDays.
func DaysUntil(deadline *time.Time, now time.Time) int {
	if deadline == nil || deadline.IsZero() {
		return DefaultDays
	}

	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}

	return int(math.Ceil(float64(remaining) / float64(day)))
}

// SystemKey returns the grouping key for t: the explicit System override, or
// the normalized category.
func SystemKey(t task.Task) string {
	if key := strings.ToLower(strings.TrimSpace(t.System)); key != "" {
		return key
	}

	category, _ := task.NormalizeCategory(t.Category)

	return category
}

const (
	baseConfidence  = 40
	maxConfidence   = 100
	minDetailedText = 3
)

func confidence(t task.Task, explicitCategory, explicitPriority, keywordRole bool) int {
	score := baseConfidence

	if explicitCategory {
		score += 15
	}

	if explicitPriority {
		score += 15
	}

	if t.HasDeadline() {
		score += 15
	}

	if keywordRole || t.Goal || len(t.SubTasks) > 0 {
		score += 10
	}

	if len(strings.Fields(t.Text)) >= minDetailedText {
		score += 5
	}

	return min(max(score, 0), maxConfidence)
}
