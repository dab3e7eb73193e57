// Package micro implements the microscopic molecule engine: per-molecule
// Brownian diffusion, cylinder flow advection, and boundary path validation
// for one region's one time step (§4.D).
package micro

import "github.com/TobiasSchwering/AcCoRD/geom"

// Recent is a molecule that arrived or was created within the current
// step; it carries the time remaining until the next global micro
// boundary (§3 Molecule).
type Recent struct {
	Pos       geom.Point
	DTPartial float64
}

// List holds the two molecule lists for one (region, molecule-type) pair.
// Steady molecules are full-step citizens; Recent molecules only diffuse
// for their partial remaining time before being promoted to Steady.
type List struct {
	Steady []geom.Point
	Recent []Recent
}

// PromoteRecent drains the recent list into the steady list (§3 Molecule:
// "after their first partial step they are promoted to the steady list").
func (l *List) PromoteRecent() {
	for _, m := range l.Recent {
		l.Steady = append(l.Steady, m.Pos)
	}
	l.Recent = l.Recent[:0]
}

// RemoveSteady removes the molecule at index i, replacing it with the last
// element (order does not matter within a step).
func (l *List) RemoveSteady(i int) {
	n := len(l.Steady)
	l.Steady[i] = l.Steady[n-1]
	l.Steady = l.Steady[:n-1]
}

// State is the full microscopic molecule store for a realization: lists
// indexed by [regionID][moleculeType].
type State struct {
	Lists [][]List
}

// NewState allocates an empty molecule store for numRegions regions and
// numTypes molecule types.
func NewState(numRegions, numTypes int) *State {
	s := &State{Lists: make([][]List, numRegions)}
	for r := range s.Lists {
		s.Lists[r] = make([]List, numTypes)
	}
	return s
}

// AddRecent inserts a newly created or arrived molecule into the recent
// list of (regionID, moleculeType).
func (s *State) AddRecent(regionID, moleculeType int, pos geom.Point, dtPartial float64) {
	s.Lists[regionID][moleculeType].Recent = append(s.Lists[regionID][moleculeType].Recent, Recent{Pos: pos, DTPartial: dtPartial})
}
