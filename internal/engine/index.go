package engine

import (
	"cmp"
	"slices"

	"github.com/calvinalkan/orbit/internal/asteroid"
	"github.com/calvinalkan/orbit/internal/classify"
	"github.com/calvinalkan/orbit/internal/compose"
	"github.com/calvinalkan/orbit/internal/layout"
)

// Location resolves a body ID to where it currently sits. It replaces live
// object handles: callers keep the ID and look it up again after a rebuild.
type Location struct {
	SystemKey string        `json:"system_key"`
	Body      compose.Body  `json:"body"`
	Anchor    layout.Anchor `json:"anchor"`
	// Orbit is nil for suns.
	Orbit *layout.Orbit `json:"orbit,omitempty"`
}

// Locate returns the location of a body in the last composed hierarchy.
// It reports false while grouping is disabled.
func (e *Engine) Locate(bodyID string) (Location, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.grouping {
		return Location{}, false
	}

	loc, ok := e.index[bodyID]
	loc.Body = loc.Body.Clone()

	return loc, ok
}

func buildIndex(systems []compose.System, positions layout.PositionMap) map[string]Location {
	index := make(map[string]Location)

	for i := range systems {
		sys := &systems[i]
		anchor := positions.Anchors[sys.Key]

		for _, b := range sys.Bodies() {
			loc := Location{SystemKey: sys.Key, Body: b, Anchor: anchor}

			if o, ok := positions.Orbits[b.ID]; ok {
				loc.Orbit = &o
			}

			index[b.ID] = loc
		}
	}

	return index
}

func candidateOf(c classify.Classification) asteroid.Candidate {
	return asteroid.Candidate{
		TaskID:    c.TaskID,
		SystemKey: c.SystemKey,
		Seed:      c.Seeds[0],
	}
}

// candidates lists open tasks with seeds, nearest deadline first, then
// highest priority.
func (e *Engine) candidates() []asteroid.Candidate {
	classes := make([]classify.Classification, 0, len(e.classes))

	for _, t := range e.tasks.Tasks() {
		if t.Completed {
			continue
		}

		c, ok := e.classes[t.ID]
		if !ok || len(c.Seeds) == 0 {
			continue
		}

		classes = append(classes, c)
	}

	slices.SortStableFunc(classes, func(a, b classify.Classification) int {
		if c := cmp.Compare(a.Visual.DaysUntilDeadline, b.Visual.DaysUntilDeadline); c != 0 {
			return c
		}

		return cmp.Compare(b.Priority.Weight(), a.Priority.Weight())
	})

	out := make([]asteroid.Candidate, len(classes))
	for i, c := range classes {
		out[i] = candidateOf(c)
	}

	return out
}
