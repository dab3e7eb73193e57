package actorsim

import (
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// Sampler is the PRNG surface the actor engine needs.
type Sampler interface {
	Uniform01() float64
}

// Release is one molecule delivered by an active actor: its type, the
// sampled position, the region it landed in, and dt_partial until the
// next micro boundary.
type Release struct {
	MoleculeType int
	Pos          geom.Point
	RegionID     int
	DTPartial    float64
}

// SymbolValue maps a CSK bit group to its intensity multiplier. With
// BitsPerSymbol==1 this is simply the bit (0 or 1); for wider symbols the
// value is the integer encoded by the bit group, normalized to [0,1] by
// the caller's strength scaling convention.
func SymbolValue(bits []bool) int {
	v := 0
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// ReleaseTimes returns the emission instants within [tk, tk+releaseInterval)
// for one active-actor action (§4.F step 2).
func ReleaseTimes(tk, releaseInterval, slotInterval float64, count int, rand bool, rng Sampler) []float64 {
	if count <= 0 {
		return nil
	}
	times := make([]float64, count)
	if rand {
		for i := range times {
			times[i] = tk + rng.Uniform01()*releaseInterval
		}
		return times
	}
	step := slotInterval
	if step <= 0 && count > 1 {
		step = releaseInterval / float64(count)
	}
	for i := range times {
		times[i] = tk + float64(i)*step
	}
	return times
}

// ReleaseOne samples one molecule's position inside the actor's footprint
// and resolves which region contains it (§4.F step 3-4).
func ReleaseOne(g *region.Graph, fp Footprint, moleculeType int, releaseTime, nextBoundary float64, rng Sampler) (Release, error) {
	pos, regionID, err := SampleFootprint(g, fp, rng)
	if err != nil {
		return Release{}, err
	}
	return Release{
		MoleculeType: moleculeType,
		Pos:          pos,
		RegionID:     regionID,
		DTPartial:    nextBoundary - releaseTime,
	}, nil
}

// SampleFootprint draws a uniform point from the actor's footprint: a
// literal shape, or the volume-weighted union of named regions.
func SampleFootprint(g *region.Graph, fp Footprint, rng Sampler) (geom.Point, int, error) {
	if len(fp.RegionLabels) == 0 {
		pos, err := geom.UniformPoint(fp.Shape, false, geom.FaceNone, rng)
		if err != nil {
			return geom.Point{}, -1, err
		}
		regionID := locateRegion(g, pos)
		return pos, regionID, nil
	}

	pick := rng.Uniform01()
	running := 0.0
	idx := len(fp.RegionWeight) - 1
	for i, w := range fp.RegionWeight {
		running += w
		if pick <= running {
			idx = i
			break
		}
	}
	shape := fp.RegionShapes[idx]
	pos, err := geom.UniformPoint(shape, false, geom.FaceNone, rng)
	if err != nil {
		return geom.Point{}, -1, err
	}
	r, _ := g.RegionByLabel(fp.RegionLabels[idx])
	regionID := -1
	if r != nil {
		regionID = r.ID
	}
	return pos, regionID, nil
}

// locateRegion finds the (innermost) region whose shape contains pos, for
// footprints defined by a literal shape rather than region labels.
func locateRegion(g *region.Graph, pos geom.Point) int {
	best := -1
	for _, r := range g.Regions {
		if geom.Contains(pos, r.Shape, g.DistErr) {
			best = r.ID
		}
	}
	return best
}
