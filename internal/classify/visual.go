package classify

import (
	"math"

	"github.com/calvinalkan/orbit/internal/task"
)

// Urgency palette, from most to least urgent.
const (
	ColorOverdue = "#ff3b30" // due within a day
	ColorSoon    = "#ff9500" // within 3 days
	ColorWeek    = "#ffcc00" // within a week
	ColorNeutral = "#8e8e93"
)

// proximityHorizon is the number of days over which deadline proximity
// ramps from 0 to 1.
const proximityHorizon = DefaultDays

// VisualFor computes visual parameters from a priority weight (1..3, may be
// fractional for aggregates) and days until deadline. Out-of-range input is
// clamped; NaN weight counts as medium.
func VisualFor(weight float64, days int) Visual {
	if math.IsNaN(weight) {
		weight = task.WeightMedium
	}

	weight = min(max(weight, task.WeightLow), task.WeightHigh)
	days = max(days, 0)

	p := proximity(days)

	return Visual{
		SizeMultiplier:    round3(0.7 + 0.3*weight + 0.3*p),
		Brightness:        round3(min(0.4+0.15*weight+0.15*p, 1)),
		RotationSpeed:     round3(0.1 + 0.2*weight + 2.0*p),
		UrgencyColor:      UrgencyColor(days),
		DaysUntilDeadline: days,
	}
}

// DefaultVisual is the visual of a medium priority task without deadline.
func DefaultVisual() Visual {
	return VisualFor(task.WeightMedium, DefaultDays)
}

// UrgencyColor steps through the palette at 1, 3 and 7 days.
func UrgencyColor(days int) string {
	switch {
	case days <= 1:
		return ColorOverdue
	case days <= 3:
		return ColorSoon
	case days <= 7:
		return ColorWeek
	default:
		return ColorNeutral
	}
}

func proximity(days int) float64 {
	return 1 - float64(min(days, proximityHorizon))/proximityHorizon
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
