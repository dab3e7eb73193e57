package micro

import (
	"math"

	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// MaxPathDepth bounds the reflection recursion of path validation (§9
// Control flow: "bounded-depth recursion (<=16 reflections per step is
// sufficient in practice)").
const MaxPathDepth = 16

// PathValidationDepthError is the diagnostic raised when a molecule's path
// would need more than MaxPathDepth reflections in one step (§9).
type PathValidationDepthError struct {
	RegionLabel string
}

func (e *PathValidationDepthError) Error() string {
	return "micro: path validation exceeded the reflection depth bound in region " + e.RegionLabel
}

// Outcome describes what happened to a molecule during path validation.
type Outcome uint8

const (
	OutcomeAccepted Outcome = iota
	OutcomeAbsorbed
	OutcomeTransferredMeso
)

// Result is the outcome of validating one molecule's path. A transfer into
// another microscopic region is not reported as a distinct outcome: the
// recursive walk simply continues validation there and the final Result
// reflects whatever happens next (accept, absorb, or a meso transfer).
type Result struct {
	Outcome  Outcome
	FinalPos geom.Point
	DestSubID int // valid when Outcome == OutcomeTransferredMeso
	Altered  bool
}

// Graph is the region builder's full output; path validation reads its
// shapes, adjacency, and neighbor subvolumes, and no reaction/molecule
// state.
type Graph = region.Graph

// Behavior answers the boundary-surface questions path validation needs
// about a region hit on the far side of a face, without coupling this
// package to the chem-rxn compiler directly.
type Behavior interface {
	// IsAbsorbing reports whether regionID carries an admitted Absorbing
	// first-order surface reaction for the molecule type being validated.
	IsAbsorbing(regionID, moleculeType int) bool
	// MembranePassProb returns the pass-through probability for a
	// Membrane region, for the molecule type being validated.
	MembranePassProb(regionID, moleculeType int) float64
	// Uniform01 draws a fresh PRNG sample for pass/reflect decisions.
	Uniform01() float64
}

// Validate walks the segment (p0 -> p1) within region R, following
// reflections, absorptions and region transfers per §4.D.2.
func Validate(g *Graph, regionID, moleculeType int, p0, p1 geom.Point, distErr float64, b Behavior) (Result, error) {
	return validateDepth(g, regionID, moleculeType, p0, p1, distErr, b, 0)
}

func validateDepth(g *Graph, regionID, moleculeType int, p0, p1 geom.Point, distErr float64, b Behavior, depth int) (Result, error) {
	r := g.Regions[regionID]
	if depth > MaxPathDepth {
		return Result{}, &PathValidationDepthError{RegionLabel: r.Label}
	}

	d := p1.Sub(p0)
	length := math.Sqrt(d.Dot(d))
	if length < distErr {
		return Result{Outcome: OutcomeAccepted, FinalPos: p1, Altered: depth > 0}, nil
	}
	dir := d.Scale(1 / length)

	hit, hitDir, err := nearestHit(g, r, p0, dir, length, distErr)
	if err != nil {
		return Result{}, err
	}
	if !hit.Found {
		return Result{Outcome: OutcomeAccepted, FinalPos: p1, Altered: depth > 0}, nil
	}

	// A hit against the region's own outer shape with no recorded
	// cross-region neighbor on that side is a reflective boundary.
	neighborSub, isCross := crossNeighborOnFace(g, r, hit.Point, hitDir)
	if !isCross {
		reflected := geom.Reflect(p0, p1, hit.Point, r.Shape, hit.Face, false)
		return validateDepth(g, regionID, moleculeType, hit.Point, reflected, distErr, b, depth+1)
	}

	neighborRegion := g.Regions[neighborSub.RegionID]

	if b.IsAbsorbing(neighborRegion.ID, moleculeType) {
		return Result{Outcome: OutcomeAbsorbed, FinalPos: hit.Point, Altered: true}, nil
	}

	if neighborRegion.SurfaceKind == region.Membrane {
		prob := b.MembranePassProb(neighborRegion.ID, moleculeType)
		if b.Uniform01() >= prob {
			reflected := geom.Reflect(p0, p1, hit.Point, r.Shape, hit.Face, false)
			return validateDepth(g, regionID, moleculeType, hit.Point, reflected, distErr, b, depth+1)
		}
	}

	if neighborRegion.IsMicroscopic {
		return validateDepth(g, neighborRegion.ID, moleculeType, hit.Point, p1, distErr, b, depth+1)
	}

	return Result{Outcome: OutcomeTransferredMeso, FinalPos: hit.Point, DestSubID: neighborSub.ID, Altered: true}, nil
}

// nearestHit tests the ray against the region's own shape and returns the
// closest boundary hit along with the face direction (for cross-region
// lookup).
func nearestHit(g *Graph, r *region.Region, p0 geom.Point, dir geom.Vec, length, distErr float64) (geom.Hit, geom.Face, error) {
	hit, err := geom.LineHitsBoundary(p0, dir, length, r.Shape, true, distErr)
	if err != nil {
		return geom.Hit{}, geom.FaceNone, err
	}
	return hit, hit.Face, nil
}

// crossNeighborOnFace finds the cross-region neighbor subvolume of the
// specific subvolume of r that the hit point lies in, on the hit face, if
// any. Locating the subvolume by the actual hit point (rather than scanning
// every boundary subvolume of r) matters once a region has more than one
// boundary subvolume on the same side (§4.B step 4 per-direction boundary
// bookkeeping).
func crossNeighborOnFace(g *Graph, r *region.Region, hitPoint geom.Point, face geom.Face) (*region.Subvolume, bool) {
	dir := faceToDirection(face)
	local := r.LocalIndexForPoint(hitPoint)
	if local < 0 {
		return nil, false
	}
	s := g.Subvolumes[r.SubvolumeStart+local]
	for _, n := range s.Neighbors {
		if n.CrossRegion && n.Direction == int(dir) {
			return g.Subvolumes[n.NeighborID], true
		}
	}
	return nil, false
}

func faceToDirection(f geom.Face) geom.Direction {
	switch f {
	case geom.FaceXLo:
		return geom.Left
	case geom.FaceXHi:
		return geom.Right
	case geom.FaceYLo:
		return geom.Down
	case geom.FaceYHi:
		return geom.Up
	case geom.FaceZLo:
		return geom.In
	case geom.FaceZHi:
		return geom.Out
	default:
		return geom.Left
	}
}
