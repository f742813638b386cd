package classify

import (
	"slices"
	"strings"
	"unicode"

	"github.com/calvinalkan/orbit/internal/task"
)

var (
	goalWords    = []string{"goal", "goals", "vision", "mission", "objective", "dream"}
	projectWords = []string{"project", "epic", "milestone", "launch"}
)

// RoleOf assigns the hierarchy role of t. The second result reports whether
// the role came from keyword inference rather than explicit structure.
//
// Rules, first match wins: Goal flag or goal keyword is a sun; sub-tasks or
// project keyword is a planet; everything else is a satellite.
func RoleOf(t task.Task) (Role, bool) {
	words := words(t.Text)

	switch {
	case t.Goal:
		return RoleSun, false
	case containsAny(words, goalWords):
		return RoleSun, true
	case len(t.SubTasks) > 0:
		return RolePlanet, false
	case containsAny(words, projectWords):
		return RolePlanet, true
	default:
		return RoleSatellite, false
	}
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(words, vocab []string) bool {
	return slices.ContainsFunc(words, func(w string) bool {
		return slices.Contains(vocab, w)
	})
}
