package chem

import (
	"math"
	"sort"

	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// Compiled is one reaction as admitted and rated for a single region.
type Compiled struct {
	SpecIndex int
	Order     Order
	Surface   SurfaceKind
	Reactants []int
	Products  []int

	// MesoRate is the propensity-table rate used by the mesoscopic engine
	// (already volume/area/length-adjusted for Order0/Order2).
	MesoRate float64

	// MicroProb is the per-step firing probability for Order1 reactions
	// (unused for Order0/Order2, which the micro engine treats as
	// continuous-time events folded into the propensity model only on the
	// meso side; Order0 micro production is handled separately, see
	// RegionTable.Order0MicroRate).
	MicroProb float64
}

// RegionTable is the full compiled reaction set for one region.
type RegionTable struct {
	RegionID int

	Reactions []Compiled

	// Order0MicroRate holds the per-reaction micro production rate
	// (k * region volume) for every Order0 reaction admitted here, aligned
	// by index with the Order0 entries of Reactions filtered in place.
	Order0MicroRate []float64
	order0Index     []int // index into Reactions for each Order0MicroRate entry

	// CumulativeProb[type] is the cumulative probability table C[j][*]
	// over first-order reactions for which molecule type j is the sole
	// reactant (§4.C).
	CumulativeProb [][]float64
	// ReactionOf[type][k] names which Reactions index corresponds to
	// CumulativeProb[type][k].
	ReactionOf [][]int
	// MinRxnTimeRV[type] = exp(-dt * sum of first-order rates for type).
	MinRxnTimeRV []float64
}

// Table is the compiled reaction set for every region, indexed by region ID.
type Table struct {
	Regions []*RegionTable
}

// ExclusivityError reports a compile-time violation of the exclusivity
// constraint (§4.C, §7 ReactionIncompatible): a non-Normal surface reaction
// sharing a reactant with another first-order reaction in the same region.
type ExclusivityError struct {
	RegionLabel string
	RegionIndex int
	MoleculeType int
}

func (e *ExclusivityError) Error() string {
	return "chem: exclusivity violation in region " + e.RegionLabel + ": molecule type has an exclusive reaction sharing a reactant with another first-order reaction"
}

// Compile builds the RegionTable for every region in g, admitting each spec
// by its default-everywhere/exceptions rule and the region's surface kind,
// then computing rates and cumulative probability tables (§4.C).
func Compile(g *region.Graph, specs []Spec, diffCoeff []float64, dt float64) (*Table, error) {
	table := &Table{}
	for _, r := range g.Regions {
		rt, err := compileRegion(r, specs, diffCoeff, dt)
		if err != nil {
			return nil, err
		}
		table.Regions = append(table.Regions, rt)
	}
	return table, nil
}

func admitted(r *region.Region, spec Spec) bool {
	if spec.IsSurface && r.Kind == region.Normal {
		return false
	}
	if !spec.IsSurface && r.Kind != region.Normal {
		return false
	}
	inExceptions := false
	for _, lbl := range spec.Exceptions {
		if lbl == r.Label {
			inExceptions = true
			break
		}
	}
	if spec.DefaultEverywhere {
		return !inExceptions
	}
	return inExceptions
}

func regionMeasure(r *region.Region) float64 {
	switch r.Shape.Kind {
	case geom.Box, geom.Sphere:
		return r.Volume
	case geom.Rectangle:
		return r.Area
	case geom.Cylinder:
		return r.Length
	default:
		return r.Volume
	}
}

func compileRegion(r *region.Region, specs []Spec, diffCoeff []float64, dt float64) (*RegionTable, error) {
	rt := &RegionTable{RegionID: r.ID}
	measure := regionMeasure(r)

	type admittedReaction struct {
		idx  int
		spec Spec
	}
	var admittedList []admittedReaction
	for i, spec := range specs {
		if admitted(r, spec) {
			admittedList = append(admittedList, admittedReaction{idx: i, spec: spec})
		}
	}

	numTypes := len(diffCoeff)
	firstOrderByType := make(map[int][]int) // type -> indices into rt.Reactions

	for _, ar := range admittedList {
		spec := ar.spec
		order := OrderOf(spec.Reactants)
		c := Compiled{SpecIndex: ar.idx, Order: order, Surface: spec.Surface,
			Reactants: spec.Reactants, Products: spec.Products}

		switch order {
		case Order0:
			c.MesoRate = spec.Rate * measure
			rt.Order0MicroRate = append(rt.Order0MicroRate, spec.Rate*r.Volume)
			rt.order0Index = append(rt.order0Index, len(rt.Reactions))
		case Order1:
			sole := SoleReactant(spec.Reactants)
			var d float64
			if sole >= 0 && sole < numTypes {
				d = diffCoeff[sole]
			}
			if spec.IsSurface && spec.Surface == Absorbing {
				c.MesoRate = spec.Rate
				c.MicroProb = firstOrderMicroProbability(absorbingMicroRate(spec.Rate, dt, d), dt)
			} else {
				c.MesoRate = spec.Rate
				c.MicroProb = firstOrderMicroProbability(spec.Rate, dt)
			}
			rt.Reactions = append(rt.Reactions, c)
			if sole >= 0 {
				firstOrderByType[sole] = append(firstOrderByType[sole], len(rt.Reactions)-1)
			}
			continue
		case Order2:
			if measure > 0 {
				c.MesoRate = spec.Rate / measure
			}
		}
		rt.Reactions = append(rt.Reactions, c)
	}

	if err := buildCumulativeTables(r, rt, firstOrderByType, numTypes, dt); err != nil {
		return nil, err
	}
	return rt, nil
}

// buildCumulativeTables builds C[j][k] and minRxnTimeRV[j] per §4.C, and
// enforces the exclusivity constraint.
func buildCumulativeTables(r *region.Region, rt *RegionTable, firstOrderByType map[int][]int, numTypes int, dt float64) error {
	rt.CumulativeProb = make([][]float64, numTypes)
	rt.ReactionOf = make([][]int, numTypes)
	rt.MinRxnTimeRV = make([]float64, numTypes)

	for t := 0; t < numTypes; t++ {
		indices := firstOrderByType[t]
		rt.MinRxnTimeRV[t] = 1 // no reactions => never reacts
		if len(indices) == 0 {
			continue
		}

		exclusiveCount := 0
		for _, idx := range indices {
			if rt.Reactions[idx].Surface.Exclusive() {
				exclusiveCount++
			}
		}
		if exclusiveCount > 0 && len(indices) > 1 {
			return &ExclusivityError{RegionLabel: r.Label, RegionIndex: r.ID, MoleculeType: t}
		}

		// Order deterministically: finite rates first (ascending index),
		// infinite rates share the unit mass equally at the top.
		finite := []int{}
		infinite := []int{}
		for _, idx := range indices {
			if math.IsInf(rt.Reactions[idx].MesoRate, 1) {
				infinite = append(infinite, idx)
			} else {
				finite = append(finite, idx)
			}
		}
		sort.Ints(finite)
		sort.Ints(infinite)
		ordered := append(finite, infinite...)

		sumRates := 0.0
		for _, idx := range finite {
			sumRates += rt.Reactions[idx].MesoRate
		}
		minRxnTimeRV := math.Exp(-dt * sumRates)
		if len(infinite) > 0 {
			minRxnTimeRV = 0
		}
		rt.MinRxnTimeRV[t] = minRxnTimeRV

		cum := make([]float64, 0, len(ordered))
		reactionOf := make([]int, 0, len(ordered))
		running := 0.0
		if len(infinite) == 0 {
			for _, idx := range ordered {
				frac := 0.0
				if sumRates > 0 {
					frac = rt.Reactions[idx].MesoRate / sumRates
				}
				running += frac * (1 - minRxnTimeRV)
				cum = append(cum, running)
				reactionOf = append(reactionOf, idx)
			}
		} else {
			share := 1.0 / float64(len(infinite))
			for _, idx := range infinite {
				running += share
				cum = append(cum, running)
				reactionOf = append(reactionOf, idx)
			}
		}
		rt.CumulativeProb[t] = cum
		rt.ReactionOf[t] = reactionOf
	}
	return nil
}

// SelectReaction finds the smallest k with CumulativeProb[type][k] >= target
// (§4.D step 2), returning the Reactions index, or -1 if none qualifies.
func (rt *RegionTable) SelectReaction(moleculeType int, target float64) int {
	cum := rt.CumulativeProb[moleculeType]
	for k, c := range cum {
		if c >= target {
			return rt.ReactionOf[moleculeType][k]
		}
	}
	return -1
}
