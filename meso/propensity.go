// Package meso implements the mesoscopic next-subvolume-method (NSM)
// engine: per-subvolume reaction and diffusion propensities, and the
// direct-NSM scheduling/update policy (§4.E).
package meso

import (
	"math"

	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// EventKind distinguishes a reaction propensity slot from a diffusion slot.
type EventKind uint8

const (
	EventReaction EventKind = iota
	EventDiffusion
)

// Slot is one propensity entry for a subvolume: either a compiled chemical
// reaction or an outbound diffusion hop to a specific neighbor/type.
type Slot struct {
	Kind         EventKind
	ReactionIdx  int // index into the region's RegionTable.Reactions, if EventReaction
	NeighborIdx  int // index into Subvolume.Neighbors, if EventDiffusion
	MoleculeType int // molecule type diffusing, if EventDiffusion
	Rate         float64
}

// SubState is the per-subvolume NSM bookkeeping: the propensity vector,
// its sum a0, and the scheduled putative reaction time tau.
type SubState struct {
	Slots []Slot
	A0    float64
	Tau   float64
}

// BuildSlots enumerates the reaction and diffusion propensity slots for a
// mesoscopic subvolume (§4.E: "one per chemical reaction compiled for its
// region, plus one per neighbor for every molecule type").
func BuildSlots(sub *region.Subvolume, rt *chem.RegionTable, numTypes int) []Slot {
	var slots []Slot
	for i := range rt.Reactions {
		slots = append(slots, Slot{Kind: EventReaction, ReactionIdx: i})
	}
	for ni := range sub.Neighbors {
		for t := 0; t < numTypes; t++ {
			slots = append(slots, Slot{Kind: EventDiffusion, NeighborIdx: ni, MoleculeType: t})
		}
	}
	return slots
}

// Recompute recomputes a0 from scratch given current molecule counts
// (§4.E Propensity refresh policy: "recompute... from scratch, not by
// delta accounting").
func Recompute(sub *region.Subvolume, rt *chem.RegionTable, slots []Slot) float64 {
	a0 := 0.0
	for i := range slots {
		slots[i].Rate = propensityOf(sub, rt, slots[i])
		a0 += slots[i].Rate
	}
	return a0
}

func propensityOf(sub *region.Subvolume, rt *chem.RegionTable, s Slot) float64 {
	switch s.Kind {
	case EventReaction:
		rx := rt.Reactions[s.ReactionIdx]
		return rx.MesoRate * countFactor(sub, rx)
	case EventDiffusion:
		count := sub.Counts[s.MoleculeType]
		if count <= 0 {
			return 0
		}
		var rate float64
		if s.NeighborIdx < len(sub.DiffusionRates) {
			rates := sub.DiffusionRates[s.NeighborIdx]
			if s.MoleculeType < len(rates) {
				rate = rates[s.MoleculeType]
			}
		}
		return float64(count) * rate
	default:
		return 0
	}
}

// countFactor returns the combinatorial count-dependent factor for a
// reaction's propensity: 1 for order 0, the reactant's count for order 1,
// and the product of (n choose k)-style terms for order 2 (here restricted
// to the common case of two distinct single-count reactants, or n*(n-1)/2
// for a homodimer, per standard stochastic simulation convention).
func countFactor(sub *region.Subvolume, rx chem.Compiled) float64 {
	switch rx.Order {
	case chem.Order0:
		return 1
	case chem.Order1:
		t := chem.SoleReactant(rx.Reactants)
		if t < 0 || t >= len(sub.Counts) {
			return 0
		}
		return float64(sub.Counts[t])
	case chem.Order2:
		return order2Factor(sub, rx)
	default:
		return 0
	}
}

func order2Factor(sub *region.Subvolume, rx chem.Compiled) float64 {
	factor := 1.0
	for t, mult := range rx.Reactants {
		if mult == 0 {
			continue
		}
		n := sub.Counts[t]
		if mult == 2 {
			factor *= float64(n) * float64(n-1) / 2
		} else {
			factor *= float64(n)
		}
	}
	return factor
}

// DrawTau draws a fresh putative reaction time per the direct-NSM formula
// tau = tNow - log(u)/a0 (§4.E).
func DrawTau(tNow, a0, u float64) float64 {
	if a0 <= 0 {
		return math.Inf(1)
	}
	return tNow - math.Log(u)/a0
}
