// Package chem compiles reaction specifications into per-region rate and
// probability tables for both the microscopic and mesoscopic engines
// (§4.C).
package chem

import "math"

// SurfaceKind classifies a surface reaction's physical behavior.
type SurfaceKind uint8

const (
	// Normal is not a surface reaction (the zero value), or a surface
	// reaction with no special boundary behavior.
	Normal SurfaceKind = iota
	Absorbing
	Receptor
	Membrane
)

// Exclusive reports whether this surface kind must be the sole first-order
// reaction available to its reactant in a region (§4.C).
func (k SurfaceKind) Exclusive() bool { return k != Normal }

// Spec is a user-facing reaction specification (§3 Reaction specification).
type Spec struct {
	Label      string
	Reactants  []int // per molecule type, multiplicity
	Products   []int
	Rate       float64
	IsSurface  bool
	Surface    SurfaceKind
	DefaultEverywhere bool
	Exceptions []string // region labels excluded (if DefaultEverywhere) or included (if not)
}

// Order classifies a reaction by its total reactant multiplicity.
type Order uint8

const (
	Order0 Order = iota
	Order1
	Order2
)

// OrderOf returns the reaction's order from its reactant multiplicities.
func OrderOf(reactants []int) Order {
	total := 0
	for _, n := range reactants {
		total += n
	}
	switch {
	case total == 0:
		return Order0
	case total == 1:
		return Order1
	default:
		return Order2
	}
}

// SoleReactant returns the single molecule type with nonzero multiplicity
// for an Order1 reaction, or -1 if the reaction is not Order1.
func SoleReactant(reactants []int) int {
	if OrderOf(reactants) != Order1 {
		return -1
	}
	for t, n := range reactants {
		if n > 0 {
			return t
		}
	}
	return -1
}

// firstOrderMicroProbability returns 1 - exp(-k*dt) for Normal/Receptor/
// Membrane order-1 reactions, or the absorbing-boundary effective rate
// formula k*sqrt(pi*dt/D) turned into a probability the same way.
func firstOrderMicroProbability(k, dt float64) float64 {
	return 1 - math.Exp(-k*dt)
}

// absorbingMicroRate returns the effective micro rate for an absorbing
// first-order surface reaction (§4.C Order 1, Absorbing case).
func absorbingMicroRate(k, dt, diffCoeff float64) float64 {
	if diffCoeff <= 0 {
		return k
	}
	return k * math.Sqrt(math.Pi*dt/diffCoeff)
}
