package micro

import (
	"math"

	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// Sampler is the PRNG surface the micro engine needs: uniform draws for
// reaction selection and membrane decisions, normal draws for diffusion.
type Sampler interface {
	Uniform01() float64
	Normal(mu, sigma float64) float64
}

// Ledger is how the micro engine reports reaction-driven production,
// consumption, and absorbing-surface deletion for the conservation
// accounting of §8 invariant (i).
type Ledger interface {
	RecordProduced(moleculeType int, n int64)
	RecordConsumed(moleculeType int, n int64)
	RecordAbsorbed(moleculeType int, n int64)
}

// Engine runs one micro tick of one region at a time (§4.D). It owns no
// state itself beyond the configuration needed to interpret the shared
// State; all mutable molecule data lives in State.
type Engine struct {
	Graph     *region.Graph
	Table     *chem.Table
	DiffCoeff []float64
	DistErr   float64
}

// New builds an Engine bound to the given graph, compiled reaction table,
// and per-type diffusion coefficients.
func New(g *region.Graph, table *chem.Table, diffCoeff []float64, distErr float64) *Engine {
	return &Engine{Graph: g, Table: table, DiffCoeff: diffCoeff, DistErr: distErr}
}

// Tick runs one full micro step for regionID at simulated time t, advancing
// to t+dt (§4.D steps 1-6). It reports transfers into mesoscopic
// subvolumes so the caller (the scheduler) can update meso counts and
// propensities.
func (e *Engine) Tick(s *State, regionID int, t, dt float64, rng Sampler, ledger Ledger) ([]MesoTransfer, error) {
	r := e.Graph.Regions[regionID]
	rt := e.regionTable(regionID)
	numTypes := len(e.DiffCoeff)

	behavior := &rngBehavior{table: e.Table, rng: rng}

	var transfers []MesoTransfer

	for typ := 0; typ < numTypes; typ++ {
		list := &s.Lists[regionID][typ]

		if err := e.reactSteady(s, r, rt, typ, dt, rng, ledger); err != nil {
			return nil, err
		}

		for i := 0; i < len(list.Steady); {
			pos := list.Steady[i]
			newPos, removed, err := e.diffuseAndValidate(r, regionID, typ, pos, t, dt, rng, behavior, &transfers, ledger)
			if err != nil {
				return nil, err
			}
			if removed {
				list.RemoveSteady(i)
				continue
			}
			list.Steady[i] = newPos
			i++
		}

		if err := e.drainRecent(s, r, regionID, typ, t, rng, behavior, &transfers, ledger); err != nil {
			return nil, err
		}
	}

	return transfers, nil
}

// MesoTransfer records a molecule delivered into a mesoscopic subvolume by
// the micro engine during path validation (§4.D.2, §5 transfer protocol).
type MesoTransfer struct {
	SubID        int
	MoleculeType int
}

func (e *Engine) regionTable(regionID int) *chem.RegionTable {
	for _, rt := range e.Table.Regions {
		if rt.RegionID == regionID {
			return rt
		}
	}
	return &chem.RegionTable{RegionID: regionID}
}

// reactSteady implements §4.D step 2: zero/first-order reactions for
// steady molecules of one type.
func (e *Engine) reactSteady(s *State, r *region.Region, rt *chem.RegionTable, typ int, dt float64, rng Sampler, ledger Ledger) error {
	if typ >= len(rt.CumulativeProb) || len(rt.CumulativeProb[typ]) == 0 {
		return nil
	}
	list := &s.Lists[r.ID][typ]
	minRV := rt.MinRxnTimeRV[typ]
	threshold := 1 - minRV
	if threshold <= 0 {
		return nil
	}

	for i := 0; i < len(list.Steady); {
		u := rng.Uniform01()
		if u >= threshold {
			i++
			continue
		}
		// u lies in [0, threshold), the same range the cumulative table
		// spans, so it selects a reaction directly.
		rxIdx := rt.SelectReaction(typ, u)
		pos := list.Steady[i]
		list.RemoveSteady(i)
		if rxIdx < 0 {
			continue
		}
		rx := rt.Reactions[rxIdx]
		if rx.Surface == chem.Absorbing {
			ledger.RecordAbsorbed(typ, 1)
		} else {
			ledger.RecordConsumed(typ, 1)
		}
		for pt, mult := range rx.Products {
			if mult == 0 {
				continue
			}
			ledger.RecordProduced(pt, int64(mult))
			for k := 0; k < mult; k++ {
				dtPartial := rng.Uniform01() * dt
				dest := pos
				if rx.Surface == chem.Membrane {
					dest = reflectAcrossMembrane(e.Graph, r, pos, e.DistErr)
				}
				s.AddRecent(r.ID, pt, dest, dtPartial)
			}
		}
		// Absorbing reactions simply delete the reactant (no product
		// placement beyond whatever Products lists explicitly).
	}
	return nil
}

// reflectAcrossMembrane places a membrane reaction's product on the far
// side of the membrane region r from its parent region, offset along r's
// zero-extent (normal) axis by twice the distance tolerance so the product
// starts unambiguously past the membrane plane (§4.D step 2 "for Membrane,
// place the product across the membrane").
func reflectAcrossMembrane(g *region.Graph, r *region.Region, pos geom.Point, distErr float64) geom.Point {
	eps := distErr
	if eps <= 0 {
		eps = geom.DefaultDistError
	}
	eps *= 2

	sign := 1.0
	if r.ParentID >= 0 {
		parent := g.Regions[r.ParentID]
		lo, hi := parent.Shape.Lo(), parent.Shape.Hi()
		mid := (axisValue(lo, r.Plane) + axisValue(hi, r.Plane)) / 2
		if axisValue(pos, r.Plane) >= mid {
			sign = -1
		}
	}
	return withAxisOffset(pos, r.Plane, sign*eps)
}

func axisValue(p geom.Point, axis geom.Axis) float64 {
	switch axis {
	case geom.AxisX:
		return p.X
	case geom.AxisY:
		return p.Y
	default:
		return p.Z
	}
}

func withAxisOffset(p geom.Point, axis geom.Axis, delta float64) geom.Point {
	switch axis {
	case geom.AxisX:
		p.X += delta
	case geom.AxisY:
		p.Y += delta
	default:
		p.Z += delta
	}
	return p
}

func (e *Engine) diffuseAndValidate(r *region.Region, regionID, typ int, pos geom.Point, t, dt float64, rng Sampler, behavior *rngBehavior, transfers *[]MesoTransfer, ledger Ledger) (geom.Point, bool, error) {
	d := e.DiffCoeff[typ]
	sigma := math.Sqrt(2 * d * dt)
	target := geom.Point{
		X: pos.X + rng.Normal(0, sigma),
		Y: pos.Y + rng.Normal(0, sigma),
		Z: pos.Z + rng.Normal(0, sigma),
	}
	target = target.Add(flowDisplacement(r, pos, t, dt))

	result, err := Validate(e.Graph, regionID, typ, pos, target, e.DistErr, behavior)
	if err != nil {
		return geom.Point{}, false, err
	}
	switch result.Outcome {
	case OutcomeAbsorbed:
		ledger.RecordAbsorbed(typ, 1)
		return geom.Point{}, true, nil
	case OutcomeTransferredMeso:
		*transfers = append(*transfers, MesoTransfer{SubID: result.DestSubID, MoleculeType: typ})
		return geom.Point{}, true, nil
	default:
		return result.FinalPos, false, nil
	}
}

// drainRecent implements §4.D step 5: diffuse and validate each recent
// molecule for its partial remaining time, then promote it to steady
// (bounded by the reaction chain's own recursion inside Validate).
func (e *Engine) drainRecent(s *State, r *region.Region, regionID, typ int, t float64, rng Sampler, behavior *rngBehavior, transfers *[]MesoTransfer, ledger Ledger) error {
	list := &s.Lists[regionID][typ]
	for len(list.Recent) > 0 {
		batch := list.Recent
		list.Recent = nil

		for _, m := range batch {
			newPos, removed, err := e.diffuseAndValidate(r, regionID, typ, m.Pos, t, m.DTPartial, rng, behavior, transfers, ledger)
			if err != nil {
				return err
			}
			if removed {
				continue
			}
			list.Steady = append(list.Steady, newPos)
		}
	}
	return nil
}

// rngBehavior adapts the compiled reaction table and PRNG into the
// micro.Behavior interface that path validation needs.
type rngBehavior struct {
	table *chem.Table
	rng   Sampler
}

func (b *rngBehavior) IsAbsorbing(regionID, moleculeType int) bool {
	rt := b.regionTableFor(regionID)
	if rt == nil {
		return false
	}
	for _, rx := range rt.Reactions {
		if rx.Order == chem.Order1 && rx.Surface == chem.Absorbing && rx.Reactants[moleculeType] > 0 {
			return true
		}
	}
	return false
}

func (b *rngBehavior) MembranePassProb(regionID, moleculeType int) float64 {
	rt := b.regionTableFor(regionID)
	if rt == nil {
		return 1
	}
	for _, rx := range rt.Reactions {
		if rx.Order == chem.Order1 && rx.Surface == chem.Membrane && rx.Reactants[moleculeType] > 0 {
			return rx.MicroProb
		}
	}
	return 1
}

func (b *rngBehavior) Uniform01() float64 { return b.rng.Uniform01() }

func (b *rngBehavior) regionTableFor(regionID int) *chem.RegionTable {
	for _, rt := range b.table.Regions {
		if rt.RegionID == regionID {
			return rt
		}
	}
	return nil
}
