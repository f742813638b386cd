// Package layout assigns anchors to solar systems and orbits to bodies.
//
// Layout is a pure function of composer output: no state, no memory of
// previous layouts. Orbits depend only on a body's sibling index, so the same
// composition always yields the same geometry.
package layout

import (
	"maps"
	"math"

	"github.com/calvinalkan/orbit/internal/compose"
)

// goldenAngle spreads sibling phases without clustering.
const goldenAngle = math.Pi * (3 - 2.23606797749979)

// Params tunes the geometry. The zero value is not useful; start from
// DefaultParams.
type Params struct {
	// SunClearance is the gap between a sun and its first orbit.
	SunClearance float64
	// PlanetSpacing is the radial distance between consecutive planet orbits.
	PlanetSpacing float64
	// MoonClearance and MoonSpacing play the same roles around planets.
	MoonClearance float64
	MoonSpacing   float64
	// BaseSpeed is the angular speed (rad/s) of an orbit at radius 1.
	BaseSpeed float64
	// SystemGap is the minimum empty space between two system extents.
	SystemGap float64
	// Margin is added to a system's outermost orbit to form its extent.
	Margin float64
}

// DefaultParams returns the geometry used by the engine.
func DefaultParams() Params {
	return Params{
		SunClearance:  6,
		PlanetSpacing: 8,
		MoonClearance: 1.5,
		MoonSpacing:   1.2,
		BaseSpeed:     4,
		SystemGap:     10,
		Margin:        2,
	}
}

// Vec3 is a point in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Anchor places a system.
type Anchor struct {
	Key      string  `json:"key"`
	Position Vec3    `json:"position"`
	Extent   float64 `json:"extent"`
}

// Orbit places a non-sun body relative to its parent.
type Orbit struct {
	BodyID       string  `json:"body_id"`
	ParentID     string  `json:"parent_id"`
	SystemKey    string  `json:"system_key"`
	Radius       float64 `json:"radius"`
	AngularSpeed float64 `json:"angular_speed"`
	Phase        float64 `json:"phase"`
}

// PositionMap is the layout of a whole composition, keyed by system key and
// body ID.
type PositionMap struct {
	Anchors map[string]Anchor `json:"anchors"`
	Orbits  map[string]Orbit  `json:"orbits"`
}

// Clone returns a copy of pm that shares no maps with it.
func (pm PositionMap) Clone() PositionMap {
	return PositionMap{Anchors: maps.Clone(pm.Anchors), Orbits: maps.Clone(pm.Orbits)}
}

// Layout computes anchors and orbits for systems.
func Layout(systems []compose.System, p Params) PositionMap {
	pm := PositionMap{
		Anchors: make(map[string]Anchor, len(systems)),
		Orbits:  make(map[string]Orbit),
	}

	extents := make([]float64, len(systems))
	widest := 0.0

	for i := range systems {
		extents[i] = layoutSystem(&systems[i], p, pm.Orbits)
		widest = max(widest, extents[i])
	}

	ring := RingRadius(len(systems), 2*widest+p.SystemGap)

	for i, sys := range systems {
		pm.Anchors[sys.Key] = Anchor{
			Key:      sys.Key,
			Position: anchorPosition(i, len(systems), ring),
			Extent:   extents[i],
		}
	}

	return pm
}

// PlanetRadius is the orbit radius of the index-th body around a sun.
func PlanetRadius(index int, p Params) float64 {
	return p.SunClearance + float64(index+1)*p.PlanetSpacing
}

// MoonRadius is the orbit radius of the index-th body around a planet.
func MoonRadius(index int, p Params) float64 {
	return p.MoonClearance + float64(index+1)*p.MoonSpacing
}

// AngularSpeed decreases with radius (outer bodies move slower).
func AngularSpeed(radius float64, p Params) float64 {
	if radius <= 0 {
		return p.BaseSpeed
	}

	return p.BaseSpeed / math.Pow(radius, 1.5)
}

// RingRadius returns the radius of the circle holding n anchors so adjacent
// anchors are at least spacing apart. A single system sits at the origin.
func RingRadius(n int, spacing float64) float64 {
	if n <= 1 {
		return 0
	}

	return spacing / (2 * math.Sin(math.Pi/float64(n)))
}

func anchorPosition(i, n int, ring float64) Vec3 {
	if n <= 1 {
		return Vec3{}
	}

	angle := 2 * math.Pi * float64(i) / float64(n)

	return Vec3{X: ring * math.Cos(angle), Z: ring * math.Sin(angle)}
}

// layoutSystem writes orbits for every non-sun body of sys and returns the
// system's extent.
func layoutSystem(sys *compose.System, p Params, orbits map[string]Orbit) float64 {
	planetOf := make(map[string]bool, len(sys.Planets))
	widestChild := make(map[string]float64, len(sys.Planets))
	outerSunOrbit := 0.0

	place := func(b compose.Body, aroundPlanet bool) {
		radius := PlanetRadius(b.Index, p)
		if aroundPlanet {
			radius = MoonRadius(b.Index, p)
			widestChild[b.Parent] = max(widestChild[b.Parent], radius)
		} else {
			outerSunOrbit = max(outerSunOrbit, radius)
		}

		orbits[b.ID] = Orbit{
			BodyID:       b.ID,
			ParentID:     b.Parent,
			SystemKey:    sys.Key,
			Radius:       radius,
			AngularSpeed: AngularSpeed(radius, p),
			Phase:        math.Mod(float64(b.Index)*goldenAngle, 2*math.Pi),
		}
	}

	for _, moon := range sys.Sun.Moons {
		place(moon, false)
	}

	for _, planet := range sys.Planets {
		planetOf[planet.ID] = true
		place(planet, false)

		for _, moon := range planet.Moons {
			place(moon, true)
		}
	}

	for _, sat := range sys.Satellites {
		place(sat, planetOf[sat.Parent])
	}

	extent := outerSunOrbit

	for _, planet := range sys.Planets {
		extent = max(extent, PlanetRadius(planet.Index, p)+widestChild[planet.ID])
	}

	if extent == 0 {
		extent = p.SunClearance
	}

	return extent + p.Margin
}
