package actorsim

import (
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/micro"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// Observation is one passive-actor snapshot (§3 Observation).
type Observation struct {
	Time      float64
	Counts    []int64
	Positions [][]geom.Point // per observed type, only when RecordPosMask[t]
}

// Observe builds one snapshot for a passive actor at time t, scanning
// microscopic molecule lists and mesoscopic subvolume counts within the
// actor's footprint (§4.F Passive actors).
func Observe(g *region.Graph, st *micro.State, a *Actor, t float64, numTypes int) Observation {
	obs := Observation{Counts: make([]int64, numTypes)}
	if a.RecordTime {
		obs.Time = t
	}
	if len(a.RecordPosMask) > 0 {
		obs.Positions = make([][]geom.Point, numTypes)
	}

	footprintShape := a.Footprint.Shape
	useLabels := len(a.Footprint.RegionLabels) > 0

	for _, r := range g.Regions {
		if useLabels && !inLabelSet(a.Footprint.RegionLabels, r.Label) {
			continue
		}
		if r.IsMicroscopic {
			observeMicro(st, r, obs, a, footprintShape, useLabels)
		} else {
			observeMeso(g, r, obs, footprintShape, useLabels, g.DistErr)
		}
	}
	return obs
}

func inLabelSet(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func observeMicro(st *micro.State, r *region.Region, obs Observation, a *Actor, footprint geom.Shape, useLabels bool) {
	for t := 0; t < len(obs.Counts); t++ {
		if !a.ObserveMask[t] {
			continue
		}
		list := st.Lists[r.ID][t]
		for _, pos := range list.Steady {
			if useLabels || geom.Contains(pos, footprint, 1e-9) {
				obs.Counts[t]++
				if len(a.RecordPosMask) > t && a.RecordPosMask[t] {
					obs.Positions[t] = append(obs.Positions[t], pos)
				}
			}
		}
	}
}

// observeMeso implements §4.F step 1's meso branch: full counts for
// subvolumes wholly inside the footprint, and a volume-weighted partial
// count for boundary subvolumes overlapping it.
func observeMeso(g *region.Graph, r *region.Region, obs Observation, footprint geom.Shape, useLabels bool, distErr float64) {
	for li := 0; li < r.SubvolumeCount; li++ {
		s := g.Subvolumes[r.SubvolumeStart+li]
		if s.Counts == nil {
			continue
		}
		weight := 1.0
		if !useLabels {
			weight = overlapWeight(r, s, footprint, distErr)
			if weight <= 0 {
				continue
			}
		}
		for t, c := range s.Counts {
			obs.Counts[t] += int64(float64(c) * weight)
		}
	}
}

// overlapWeight computes the fraction of a subvolume's volume lying inside
// the footprint shape: 1 when fully surrounded, 0 when disjoint, and the
// exact box/box intersection-volume ratio for the boundary-subvolume
// partial-weight case of §4.F step 1. Footprints the intersection kernel
// cannot resolve to an exact box (a Sphere/Cylinder footprint neither
// containing nor contained by the subvolume) fall back to a half-weight
// estimate, since §4.A's geometry kernel has no closed-form sphere/box or
// cylinder/box overlap-volume routine.
func overlapWeight(r *region.Region, s *region.Subvolume, footprint geom.Shape, distErr float64) float64 {
	subBox := subvolumeBox(r, s)
	if geom.Surrounds(footprint, subBox, distErr) {
		return 1
	}
	isect, err := geom.Intersects(footprint, subBox, distErr)
	if err != nil || (!isect && !geom.Surrounds(subBox, footprint, distErr)) {
		return 0
	}
	subVolume := boxVolume(subBox)
	if subVolume <= 0 {
		return 0
	}
	overlap, err := geom.IntersectBoundary(footprint, subBox)
	if err != nil {
		return 0.5
	}
	return boxVolume(overlap) / subVolume
}

func boxVolume(b geom.Shape) float64 {
	lo, hi := b.Lo(), b.Hi()
	dx, dy, dz := hi.X-lo.X, hi.Y-lo.Y, hi.Z-lo.Z
	if dx < 0 || dy < 0 || dz < 0 {
		return 0
	}
	return dx * dy * dz
}

func subvolumeBox(r *region.Region, s *region.Subvolume) geom.Shape {
	lo := r.Shape.Lo()
	size := r.ActualSubSize()
	origin := geom.Point{X: lo.X + float64(s.IX)*size, Y: lo.Y + float64(s.IY)*size, Z: lo.Z + float64(s.IZ)*size}
	hi := geom.Point{X: origin.X + size, Y: origin.Y + size, Z: origin.Z + size}
	return geom.NewBox(origin, hi)
}
