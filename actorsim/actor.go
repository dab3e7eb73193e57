// Package actorsim implements the active and passive actor engine: CSK
// molecule release for active actors, and count/position observation for
// passive actors (§4.F).
package actorsim

import "github.com/TobiasSchwering/AcCoRD/geom"

// ModulationScheme identifies the symbol-to-intensity mapping. Only CSK
// (concentration shift keying) is specified (§3 Actor).
type ModulationScheme uint8

const (
	CSK ModulationScheme = iota
)

// Modulation holds an active actor's release-shaping parameters.
type Modulation struct {
	Scheme          ModulationScheme
	BitsPerSymbol   int
	Strength        float64
	ProbabilityOne  float64
	SlotInterval    float64
	ReleaseInterval float64
	TimeReleaseRand bool

	// DataBits is the explicit bit sequence the actor transmits, one bit
	// consumed per action (§8 Scenario E: "releasing pattern 1,0,1,1,0").
	// Empty means the actor draws each bit independently with probability
	// ProbabilityOne instead of following a fixed sequence.
	DataBits []bool
}

// Footprint is the spatial region an actor releases into or observes from:
// either a literal shape, or a set of region labels (resolved by the
// caller into shapes + volume weights before footprint sampling, §4.F
// step 3: "rejection-sample uniformly across the union of those regions
// weighted by volume").
type Footprint struct {
	Shape        geom.Shape
	RegionLabels []string
	RegionShapes []geom.Shape  // resolved shapes, parallel to RegionLabels
	RegionWeight []float64     // volume weights, parallel to RegionLabels; sums to 1
}

// Spec is the user-facing actor specification (§3 Actor).
type Spec struct {
	Label         string
	Footprint     Footprint
	IsActive      bool
	StartTime     float64
	ActionInterval float64
	MaxActions    int // 0 means unbounded

	Modulation Modulation

	// ReleaseMask (active) / ObserveMask + RecordPosMask (passive) are
	// per-molecule-type boolean flags.
	ReleaseMask   []bool
	ObserveMask   []bool
	RecordPosMask []bool
	RecordTime    bool
}

// Actor is the runtime record: the Spec plus the count of actions taken.
type Actor struct {
	ID int
	Spec

	ActionsTaken int
}

// NextActionTime returns t_k for the k-th action (§4.F: "t_k = start_time +
// k * action_interval").
func (a *Actor) NextActionTime() float64 {
	return a.StartTime + float64(a.ActionsTaken)*a.ActionInterval
}

// Done reports whether the actor has exhausted MaxActions.
func (a *Actor) Done() bool {
	return a.MaxActions > 0 && a.ActionsTaken >= a.MaxActions
}
