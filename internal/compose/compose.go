// Package compose groups classified tasks into solar systems.
//
// Systems have no identity of their own: Compose is a projection of the task
// list and is recomputed from scratch on every call.
package compose

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/orbit/internal/classify"
	"github.com/calvinalkan/orbit/internal/task"
)

// SunPrefix prefixes the body ID of a synthesized sun.
const SunPrefix = "sun:"

// Body is one celestial body in a system.
type Body struct {
	// ID is the task ID, SunPrefix+key for a synthesized sun, or
	// taskID/subID for a moon.
	ID        string          `json:"id"`
	TaskID    string          `json:"task_id,omitempty"`
	Role      classify.Role   `json:"role"`
	Parent    string          `json:"parent,omitempty"`
	Index     int             `json:"index"`
	Synthetic bool            `json:"synthetic,omitempty"`
	Completed bool            `json:"completed,omitempty"`
	Text      string          `json:"text"`
	Priority  task.Priority   `json:"priority"`
	Visual    classify.Visual `json:"visual"`
	Moons     []Body          `json:"moons,omitempty"`
}

// Stats aggregates the members of a system.
type Stats struct {
	AveragePriority      float64    `json:"average_priority"`
	NearestDeadline      *time.Time `json:"nearest_deadline,omitempty"`
	MinDaysUntilDeadline int        `json:"min_days_until_deadline"`
	TaskCount            int        `json:"task_count"`
	CompletedCount       int        `json:"completed_count"`
}

// System is a group of tasks sharing a system key, with exactly one sun.
type System struct {
	Key        string `json:"key"`
	Stats      Stats  `json:"stats"`
	Sun        Body   `json:"sun"`
	Planets    []Body `json:"planets"`
	Satellites []Body `json:"satellites"`
}

// Bodies returns all bodies of the system, sun first with its moons, then
// planets with their moons, then satellites.
func (s *System) Bodies() []Body {
	out := []Body{s.Sun}
	out = append(out, s.Sun.Moons...)

	for _, p := range s.Planets {
		out = append(out, p)
		out = append(out, p.Moons...)
	}

	return append(out, s.Satellites...)
}

// Clone returns a deep copy of b.
func (b Body) Clone() Body {
	if b.Moons != nil {
		moons := make([]Body, len(b.Moons))
		for i, m := range b.Moons {
			moons[i] = m.Clone()
		}

		b.Moons = moons
	}

	return b
}

// Clone returns a deep copy of s.
func (s System) Clone() System {
	if s.Stats.NearestDeadline != nil {
		d := *s.Stats.NearestDeadline
		s.Stats.NearestDeadline = &d
	}

	s.Sun = s.Sun.Clone()
	s.Planets = cloneBodies(s.Planets)
	s.Satellites = cloneBodies(s.Satellites)

	return s
}

// CloneSystems returns a deep copy of systems. nil stays nil.
func CloneSystems(systems []System) []System {
	if systems == nil {
		return nil
	}

	out := make([]System, len(systems))
	for i, sys := range systems {
		out[i] = sys.Clone()
	}

	return out
}

func cloneBodies(bodies []Body) []Body {
	if bodies == nil {
		return nil
	}

	out := make([]Body, len(bodies))
	for i, b := range bodies {
		out[i] = b.Clone()
	}

	return out
}

type member struct {
	task  task.Task
	class classify.Classification
}

// Compose classifies tasks missing from cache and groups them into systems
// ordered by key. Tasks with an empty or repeated ID are omitted. An empty
// task list yields an empty, non-nil slice.
func Compose(tasks []task.Task, cache map[string]classify.Classification, ctx classify.Context) []System {
	groups := make(map[string][]member)
	seen := make(map[string]bool, len(tasks))

	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			continue
		}

		seen[t.ID] = true

		c, ok := cache[t.ID]
		if !ok {
			c = classify.Classify(t, ctx)
		}

		groups[c.SystemKey] = append(groups[c.SystemKey], member{task: t, class: c})
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	systems := make([]System, 0, len(keys))
	for _, key := range keys {
		systems = append(systems, buildSystem(key, groups[key]))
	}

	return systems
}

func buildSystem(key string, members []member) System {
	slices.SortFunc(members, byPriorityThenAge)

	var suns, planets, satellites []member

	for _, m := range members {
		switch m.class.Role {
		case classify.RoleSun:
			suns = append(suns, m)
		case classify.RolePlanet:
			planets = append(planets, m)
		default:
			satellites = append(satellites, m)
		}
	}

	// Members are sorted, so suns[0] is the strongest candidate. Extra suns
	// join the planets in sorted position.
	if len(suns) > 1 {
		planets = append(planets, suns[1:]...)
		slices.SortFunc(planets, byPriorityThenAge)
		suns = suns[:1]
	}

	stats := aggregate(members)
	sys := System{Key: key, Stats: stats}

	if len(suns) == 1 {
		sys.Sun = bodyOf(suns[0], classify.RoleSun, "", 0)
	} else {
		sys.Sun = Body{
			ID:        SunPrefix + key,
			Role:      classify.RoleSun,
			Synthetic: true,
			Text:      key,
			Priority:  nearestPriority(stats.AveragePriority),
			Visual:    classify.VisualFor(stats.AveragePriority, stats.MinDaysUntilDeadline),
		}
	}

	sys.Planets = make([]Body, 0, len(planets))
	for i, m := range planets {
		b := bodyOf(m, classify.RolePlanet, sys.Sun.ID, i)
		b.Moons = moonsOf(m, b.ID, 0)
		sys.Planets = append(sys.Planets, b)
	}

	// A real sun's sub-tasks orbit the sun outside the planets.
	if len(suns) == 1 {
		sys.Sun.Moons = moonsOf(suns[0], sys.Sun.ID, len(sys.Planets))
	}

	sys.Satellites = make([]Body, 0, len(satellites))

	// Moons take the inner orbits around a planet; satellites continue after.
	next := make(map[string]int, len(sys.Planets)+1)
	next[sys.Sun.ID] = len(sys.Planets) + len(sys.Sun.Moons)

	for _, p := range sys.Planets {
		next[p.ID] = len(p.Moons)
	}

	for i, m := range satellites {
		parent := sys.Sun.ID
		if len(sys.Planets) > 0 {
			parent = sys.Planets[i%len(sys.Planets)].ID
		}

		sys.Satellites = append(sys.Satellites, bodyOf(m, classify.RoleSatellite, parent, next[parent]))
		next[parent]++
	}

	return sys
}

func bodyOf(m member, role classify.Role, parent string, index int) Body {
	return Body{
		ID:        m.task.ID,
		TaskID:    m.task.ID,
		Role:      role,
		Parent:    parent,
		Index:     index,
		Completed: m.task.Completed,
		Text:      m.task.Text,
		Priority:  m.class.Priority,
		Visual:    m.class.Visual,
	}
}

// moonsOf turns the sub-tasks of m into bodies orbiting parentID, indexed
// from first. Sub-tasks without text or ID cannot be placed and are skipped.
func moonsOf(m member, parentID string, first int) []Body {
	var moons []Body

	for _, st := range m.task.SubTasks {
		if st.ID == "" || strings.TrimSpace(st.Text) == "" {
			continue
		}

		moons = append(moons, Body{
			ID:        parentID + "/" + st.ID,
			TaskID:    m.task.ID,
			Role:      classify.RoleSatellite,
			Parent:    parentID,
			Index:     first + len(moons),
			Completed: st.Completed,
			Text:      st.Text,
			Priority:  m.class.Priority,
			Visual:    m.class.Visual,
		})
	}

	return moons
}

func aggregate(members []member) Stats {
	stats := Stats{
		TaskCount:            len(members),
		MinDaysUntilDeadline: classify.DefaultDays,
	}

	if len(members) == 0 {
		stats.AveragePriority = task.WeightMedium

		return stats
	}

	total := 0

	for _, m := range members {
		total += m.class.Priority.Weight()
		stats.MinDaysUntilDeadline = min(stats.MinDaysUntilDeadline, m.class.Visual.DaysUntilDeadline)

		if m.task.Completed {
			stats.CompletedCount++
		}

		if m.task.HasDeadline() && (stats.NearestDeadline == nil || m.task.Deadline.Before(*stats.NearestDeadline)) {
			d := *m.task.Deadline
			stats.NearestDeadline = &d
		}
	}

	stats.AveragePriority = float64(total) / float64(len(members))

	return stats
}

func nearestPriority(weight float64) task.Priority {
	switch {
	case weight < 1.5:
		return task.PriorityLow
	case weight >= 2.5:
		return task.PriorityHigh
	default:
		return task.PriorityMedium
	}
}

// byPriorityThenAge orders by priority desc, then creation asc, then list
// position, then ID.
func byPriorityThenAge(a, b member) int {
	if c := cmp.Compare(b.class.Priority.Weight(), a.class.Priority.Weight()); c != 0 {
		return c
	}

	if c := a.task.CreatedAt.Compare(b.task.CreatedAt); c != 0 {
		return c
	}

	if c := cmp.Compare(a.task.Seq(), b.task.Seq()); c != 0 {
		return c
	}

	return strings.Compare(a.task.ID, b.task.ID)
}
