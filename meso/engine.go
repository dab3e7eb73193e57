package meso

import (
	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// Sampler is the PRNG surface the meso engine needs.
type Sampler interface {
	Uniform01() float64
}

// MicroHandoff is how the meso engine asks the caller to insert a molecule
// into the microscopic recent list when a diffusion event's destination is
// a microscopic neighbor (§4.E: "if the destination is microscopic,
// insert a new recent molecule at a uniform random point within the
// destination subvolume instead").
type MicroHandoff interface {
	InsertRecent(regionID, moleculeType int, pos geom.Point, dtPartial float64)
}

// Ledger is how the meso engine reports reaction-driven production and
// consumption for the conservation accounting of §8 invariant (i).
// Diffusion moves counts between subvolumes rather than producing or
// consuming them, so only Fire's reaction branch reports here.
type Ledger interface {
	RecordProduced(moleculeType int, n int64)
	RecordConsumed(moleculeType int, n int64)
	RecordAbsorbed(moleculeType int, n int64)
}

// Engine owns the per-subvolume NSM state for every mesoscopic subvolume.
type Engine struct {
	Graph   *region.Graph
	Table   *chem.Table
	States  []*SubState // indexed by Subvolume.MesoID
	subByID []*region.Subvolume
	rtByRegion map[int]*chem.RegionTable
}

// New builds the NSM engine and draws the initial tau for every
// mesoscopic subvolume.
func New(g *region.Graph, table *chem.Table, numTypes int, tNow float64, rng Sampler) *Engine {
	e := &Engine{Graph: g, Table: table, rtByRegion: map[int]*chem.RegionTable{}}
	for _, rt := range table.Regions {
		e.rtByRegion[rt.RegionID] = rt
	}
	e.States = make([]*SubState, g.NumMeso)
	e.subByID = make([]*region.Subvolume, g.NumMeso)
	for _, sub := range g.Subvolumes {
		if sub.IsMicro() {
			continue
		}
		rt := e.rtByRegion[sub.RegionID]
		slots := BuildSlots(sub, rt, numTypes)
		st := &SubState{Slots: slots}
		st.A0 = Recompute(sub, rt, st.Slots)
		st.Tau = DrawTau(tNow, st.A0, clampUnit(rng.Uniform01()))
		e.States[sub.MesoID] = st
		e.subByID[sub.MesoID] = sub
	}
	return e
}

func clampUnit(u float64) float64 {
	if u <= 0 {
		return 1e-300
	}
	return u
}

// NextTau returns the smallest scheduled tau across all subvolumes and its
// MesoID, for the scheduler to compare against micro/actor events.
func (e *Engine) NextTau() (mesoID int, tau float64) {
	mesoID = -1
	tau = 0
	for id, st := range e.States {
		if st == nil {
			continue
		}
		if mesoID == -1 || st.Tau < tau {
			mesoID = id
			tau = st.Tau
		}
	}
	return mesoID, tau
}

// Fire executes the event currently scheduled for subvolume mesoID at
// time tNow, and redraws its tau (and the affected neighbor's, for
// diffusion events) per the direct-NSM refresh policy (§4.E).
func (e *Engine) Fire(mesoID int, tNow float64, rng Sampler, handoff MicroHandoff, ledger Ledger) error {
	sub := e.subByID[mesoID]
	st := e.States[mesoID]
	rt := e.rtByRegion[sub.RegionID]

	slot := chooseSlot(st, rng.Uniform01()*st.A0)
	if slot == nil {
		st.Tau = DrawTau(tNow, st.A0, clampUnit(rng.Uniform01()))
		return nil
	}

	switch slot.Kind {
	case EventReaction:
		applyReaction(sub, rt.Reactions[slot.ReactionIdx], ledger)
	case EventDiffusion:
		e.applyDiffusion(sub, slot, tNow, rng, handoff)
	}

	st.A0 = Recompute(sub, rt, st.Slots)
	st.Tau = DrawTau(tNow, st.A0, clampUnit(rng.Uniform01()))
	return nil
}

func chooseSlot(st *SubState, target float64) *Slot {
	running := 0.0
	for i := range st.Slots {
		running += st.Slots[i].Rate
		if running >= target {
			return &st.Slots[i]
		}
	}
	if len(st.Slots) == 0 {
		return nil
	}
	return &st.Slots[len(st.Slots)-1]
}

func applyReaction(sub *region.Subvolume, rx chem.Compiled, ledger Ledger) {
	for t, mult := range rx.Reactants {
		if mult == 0 {
			continue
		}
		sub.Counts[t] -= int64(mult)
		if sub.Counts[t] < 0 {
			sub.Counts[t] = 0
		}
		if rx.Surface == chem.Absorbing {
			ledger.RecordAbsorbed(t, int64(mult))
		} else {
			ledger.RecordConsumed(t, int64(mult))
		}
	}
	for t, mult := range rx.Products {
		if mult == 0 {
			continue
		}
		sub.Counts[t] += int64(mult)
		ledger.RecordProduced(t, int64(mult))
	}
}

func (e *Engine) applyDiffusion(sub *region.Subvolume, slot *Slot, tNow float64, rng Sampler, handoff MicroHandoff) {
	sub.Counts[slot.MoleculeType]--
	if sub.Counts[slot.MoleculeType] < 0 {
		sub.Counts[slot.MoleculeType] = 0
	}
	n := sub.Neighbors[slot.NeighborIdx]
	neighbor := e.findSubvolume(n.NeighborID)
	if neighbor == nil {
		return
	}
	if neighbor.IsMicro() {
		destRegion := e.Graph.Regions[neighbor.RegionID]
		shape := destRegion.Shape
		if shape.Kind == geom.Box {
			lo, size := shape.Lo(), destRegion.ActualSubSize()
			origin := geom.Point{X: lo.X + float64(neighbor.IX)*size, Y: lo.Y + float64(neighbor.IY)*size, Z: lo.Z + float64(neighbor.IZ)*size}
			shape = geom.NewBox(origin, geom.Point{X: origin.X + size, Y: origin.Y + size, Z: origin.Z + size})
		}
		pos, err := geom.UniformPoint(shape, false, geom.FaceNone, rng)
		if err == nil {
			handoff.InsertRecent(neighbor.RegionID, slot.MoleculeType, pos, 0)
		}
		return
	}
	neighbor.Counts[slot.MoleculeType]++
	neighborRT := e.rtByRegion[neighbor.RegionID]
	neighborState := e.States[neighbor.MesoID]
	neighborState.A0 = Recompute(neighbor, neighborRT, neighborState.Slots)
	neighborState.Tau = DrawTau(tNow, neighborState.A0, clampUnit(rng.Uniform01()))
}

// RefreshSubvolume recomputes a subvolume's propensity sum and redraws its
// tau, for use when something outside Fire's own dispatch changes its
// counts (a microscopic molecule crossing into it, per §4.E's refresh
// policy: any count change invalidates the scheduled tau).
func (e *Engine) RefreshSubvolume(mesoID int, tNow float64, rng Sampler) {
	if mesoID < 0 || mesoID >= len(e.States) {
		return
	}
	st := e.States[mesoID]
	if st == nil {
		return
	}
	sub := e.subByID[mesoID]
	rt := e.rtByRegion[sub.RegionID]
	st.A0 = Recompute(sub, rt, st.Slots)
	st.Tau = DrawTau(tNow, st.A0, clampUnit(rng.Uniform01()))
}

func (e *Engine) findSubvolume(id int) *region.Subvolume {
	if id < 0 || id >= len(e.Graph.Subvolumes) {
		return nil
	}
	return e.Graph.Subvolumes[id]
}
