package sim

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/TobiasSchwering/AcCoRD/actorsim"
	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/meso"
	"github.com/TobiasSchwering/AcCoRD/micro"
	"github.com/TobiasSchwering/AcCoRD/region"
	"github.com/TobiasSchwering/AcCoRD/sched"
	"github.com/TobiasSchwering/AcCoRD/telemetry"
)

// Sampler is the single PRNG surface the realization needs; it satisfies
// every engine's narrower Sampler interface.
type Sampler interface {
	Uniform01() float64
	Normal(mu, sigma float64) float64
}

// Config bundles everything needed to build one realization (§3 Region,
// §3 Reaction specification, §3 Actor, §9 Global mutable state).
type Config struct {
	RegionSpecs  []region.Spec
	ReactionSpecs []chem.Spec
	ActorSpecs   []actorsim.Spec
	DiffCoeff    []float64
	BaseSize     float64
	DistErr      float64
	MicroDT      float64
	FinalTime    float64
}

// Realization owns one run's full mutable state: the static region graph,
// the compiled reaction table, the microscopic molecule store, the
// mesoscopic NSM engine, the actor list, the scheduler, and the
// conservation ledger (§9 Global mutable state). It is built once, run
// once, and dropped; nothing here is reused across realizations.
type Realization struct {
	cfg Config

	Graph  *region.Graph
	Table  *chem.Table
	Micro  *micro.State
	microEngine *micro.Engine
	Meso   *meso.Engine
	Actors []*actorsim.Actor
	Ledger *Ledger

	queue *sched.Guard
	rng   Sampler

	t float64

	Observations []actorObservation
	ActiveBits   [][]bool // per active actor (by Actors index), the emitted bit sequence
}

type actorObservation struct {
	ActorID int
	Obs     actorsim.Observation
}

// NewRealization builds the static graph, compiles the reaction table,
// allocates the molecule/count stores, and seeds the scheduler with the
// first event of every component (§4.G initialization).
func NewRealization(cfg Config, rng Sampler) (*Realization, error) {
	g, err := region.Build(cfg.RegionSpecs, cfg.BaseSize, cfg.DistErr, cfg.DiffCoeff)
	if err != nil {
		return nil, toFatal(err, "region.Build")
	}

	table, err := chem.Compile(g, cfg.ReactionSpecs, cfg.DiffCoeff, cfg.MicroDT)
	if err != nil {
		return nil, toFatal(err, "chem.Compile")
	}

	numTypes := len(cfg.DiffCoeff)
	microState := micro.NewState(len(g.Regions), numTypes)
	microEngine := micro.New(g, table, cfg.DiffCoeff, cfg.DistErr)
	mesoEngine := meso.New(g, table, numTypes, 0, rng)

	actors := make([]*actorsim.Actor, len(cfg.ActorSpecs))
	for i, spec := range cfg.ActorSpecs {
		resolveFootprint(g, &spec.Footprint)
		actors[i] = &actorsim.Actor{ID: i, Spec: spec}
	}

	rz := &Realization{
		cfg:         cfg,
		Graph:       g,
		Table:       table,
		Micro:       microState,
		microEngine: microEngine,
		Meso:        mesoEngine,
		Actors:      actors,
		Ledger:      NewLedger(numTypes),
		queue:       sched.NewGuard(sched.New(), cfg.DistErr),
		rng:         rng,
		ActiveBits:  make([][]bool, len(actors)),
	}
	rz.seedSchedule()
	slog.Info("realization_built",
		"actor_count", len(actors),
		"molecule_types", numTypes,
		"final_time", cfg.FinalTime,
	)
	return rz, nil
}

// InsertRecent implements meso.MicroHandoff: a mesoscopic diffusion event
// whose destination is microscopic inserts a new recent molecule instead
// of incrementing a count (§4.E).
func (rz *Realization) InsertRecent(regionID, moleculeType int, pos geom.Point, dtPartial float64) {
	rz.Micro.AddRecent(regionID, moleculeType, pos, dtPartial)
}

// RecordProduced, RecordConsumed, and RecordAbsorbed implement the
// meso/micro Ledger interfaces, tallying reaction-driven molecule count
// changes for the §8 invariant (i) conservation accounting.
func (rz *Realization) RecordProduced(moleculeType int, n int64) {
	rz.Ledger.Produced[moleculeType] += n
}

func (rz *Realization) RecordConsumed(moleculeType int, n int64) {
	rz.Ledger.Consumed[moleculeType] += n
}

func (rz *Realization) RecordAbsorbed(moleculeType int, n int64) {
	rz.Ledger.Absorbed[moleculeType] += n
}

func (rz *Realization) seedSchedule() {
	for _, r := range rz.Graph.Regions {
		if r.IsMicroscopic {
			rz.queue.Push(sched.Event{Time: rz.cfg.MicroDT, Kind: sched.KindMicro, ID: r.ID})
		}
	}
	if mesoID, tau := rz.Meso.NextTau(); mesoID >= 0 {
		rz.queue.Push(sched.Event{Time: tau, Kind: sched.KindMeso, ID: mesoID})
	}
	for _, a := range rz.Actors {
		if !a.Done() {
			rz.queue.Push(sched.Event{Time: a.NextActionTime(), Kind: sched.KindActor, ID: a.ID})
		}
	}
}

// Run drains the scheduler until every event passes FinalTime or every
// actor is Done (§4.G termination condition), dispatching each event to
// its owning engine.
func (rz *Realization) Run() error {
	for {
		e, ok, err := rz.queue.Pop()
		if err != nil {
			return &FatalError{Kind: KindNumericalDegenerate, Phase: "scheduler", Entity: "event queue", Cause: err}
		}
		if !ok || e.Time > rz.cfg.FinalTime {
			slog.Info("realization_complete", "stopped_at", rz.t, "observation_count", len(rz.Observations))
			return nil
		}
		rz.t = e.Time

		switch e.Kind {
		case sched.KindMicro:
			if err := rz.dispatchMicro(e); err != nil {
				return err
			}
		case sched.KindMeso:
			if err := rz.dispatchMeso(e); err != nil {
				return err
			}
		case sched.KindActor:
			if err := rz.dispatchActor(e); err != nil {
				return err
			}
		}

		if rz.allActorsDone() {
			slog.Info("realization_complete", "stopped_at", rz.t, "observation_count", len(rz.Observations))
			return nil
		}
	}
}

func (rz *Realization) dispatchMicro(e sched.Event) error {
	transfers, err := rz.microEngine.Tick(rz.Micro, e.ID, rz.t, rz.cfg.MicroDT, rz.rng, rz)
	if err != nil {
		switch err.(type) {
		case *micro.PathValidationDepthError:
			return &FatalError{Kind: KindPathValidationDepth, Phase: "micro.Tick", Entity: rz.Graph.Regions[e.ID].Label, Cause: err}
		default:
			return toFatal(err, "micro.Tick")
		}
	}
	for _, tr := range transfers {
		sub := rz.Graph.Subvolumes[tr.SubID]
		sub.Counts[tr.MoleculeType]++
		rz.refreshMesoPropensity(sub.MesoID)
	}
	rz.queue.Push(sched.Event{Time: rz.t + rz.cfg.MicroDT, Kind: sched.KindMicro, ID: e.ID})
	return nil
}

// refreshMesoPropensity re-draws the receiving subvolume's tau immediately
// after a micro->meso transfer changes its count outside the NSM engine's
// own Fire path (§4.E: counts changed by an external event must invalidate
// the subvolume's scheduled tau under the direct-NSM refresh policy).
func (rz *Realization) refreshMesoPropensity(mesoID int) {
	if mesoID < 0 {
		return
	}
	rz.Meso.RefreshSubvolume(mesoID, rz.t, rz.rng)
	if id, tau := rz.Meso.NextTau(); id >= 0 {
		rz.queue.Push(sched.Event{Time: tau, Kind: sched.KindMeso, ID: id})
	}
}

func (rz *Realization) dispatchMeso(e sched.Event) error {
	if err := rz.Meso.Fire(e.ID, rz.t, rz.rng, rz, rz); err != nil {
		return toFatal(err, "meso.Fire")
	}
	if id, tau := rz.Meso.NextTau(); id >= 0 {
		rz.queue.Push(sched.Event{Time: tau, Kind: sched.KindMeso, ID: id})
	}
	return nil
}

func (rz *Realization) dispatchActor(e sched.Event) error {
	a := rz.Actors[e.ID]
	if a.IsActive {
		if err := rz.fireActive(a); err != nil {
			return err
		}
	} else {
		obs := actorsim.Observe(rz.Graph, rz.Micro, a, rz.t, len(rz.cfg.DiffCoeff))
		rz.Observations = append(rz.Observations, actorObservation{ActorID: a.ID, Obs: obs})
	}
	a.ActionsTaken++
	if !a.Done() {
		rz.queue.Push(sched.Event{Time: a.NextActionTime(), Kind: sched.KindActor, ID: a.ID})
	}
	return nil
}

func (rz *Realization) fireActive(a *actorsim.Actor) error {
	tk := a.NextActionTime()
	bit := nextSymbolBit(a.Modulation, a.ActionsTaken, rz.rng)
	rz.ActiveBits[a.ID] = append(rz.ActiveBits[a.ID], bit)

	for typ, on := range a.ReleaseMask {
		if !on {
			continue
		}
		count := releaseCount(a.Modulation, bit)
		times := actorsim.ReleaseTimes(tk, a.Modulation.ReleaseInterval, a.Modulation.SlotInterval, count, a.Modulation.TimeReleaseRand, rz.rng)
		for _, rt := range times {
			nextBoundary := (math.Floor(rt/rz.cfg.MicroDT) + 1) * rz.cfg.MicroDT
			rel, err := actorsim.ReleaseOne(rz.Graph, a.Footprint, typ, rt, nextBoundary, rz.rng)
			if err != nil {
				return toFatal(err, "actorsim.ReleaseOne")
			}
			if rel.RegionID < 0 {
				continue
			}
			rg := rz.Graph.Regions[rel.RegionID]
			if rg.IsMicroscopic {
				rz.Micro.AddRecent(rel.RegionID, rel.MoleculeType, rel.Pos, rel.DTPartial)
			} else {
				sub := rz.subvolumeAt(rg, rel.Pos)
				if sub != nil {
					sub.Counts[rel.MoleculeType]++
					rz.refreshMesoPropensity(sub.MesoID)
				}
			}
			rz.Ledger.Released[rel.MoleculeType]++
		}
	}
	return nil
}

// nextSymbolBit returns the k-th transmitted bit: taken from Modulation's
// fixed DataBits sequence if one was given (§8 Scenario E), otherwise
// drawn independently with probability ProbabilityOne.
func nextSymbolBit(m actorsim.Modulation, k int, rng Sampler) bool {
	if len(m.DataBits) > 0 {
		return m.DataBits[k%len(m.DataBits)]
	}
	return rng.Uniform01() < m.ProbabilityOne
}

// releaseCount returns the CSK symbol-driven release count for one active
// action: bit 0 releases nothing, bit 1 releases Strength molecules (§3
// Actor, §8 Scenario E "strength=2" releasing on bit 1).
func releaseCount(m actorsim.Modulation, bit bool) int {
	if !bit || m.Strength <= 0 {
		return 0
	}
	return int(m.Strength)
}

func (rz *Realization) subvolumeAt(r *region.Region, pos geom.Point) *region.Subvolume {
	local := r.LocalIndexForPoint(pos)
	if local < 0 {
		return nil
	}
	return rz.Graph.Subvolumes[r.SubvolumeStart+local]
}

// resolveFootprint fills in RegionShapes/RegionWeight for a footprint
// defined by region labels, volume-weighted per §4.F step 3 ("rejection-
// sample uniformly across the union of those regions weighted by volume").
func resolveFootprint(g *region.Graph, fp *actorsim.Footprint) {
	if len(fp.RegionLabels) == 0 {
		return
	}
	shapes := make([]geom.Shape, len(fp.RegionLabels))
	measures := make([]float64, len(fp.RegionLabels))
	total := 0.0
	for i, label := range fp.RegionLabels {
		r, ok := g.RegionByLabel(label)
		if !ok {
			continue
		}
		shapes[i] = r.Shape
		m := r.Volume
		if m <= 0 {
			m = r.Area
		}
		if m <= 0 {
			m = r.Length
		}
		if m <= 0 {
			m = 1
		}
		measures[i] = m
		total += m
	}
	weights := make([]float64, len(measures))
	for i, m := range measures {
		if total > 0 {
			weights[i] = m / total
		}
	}
	fp.RegionShapes = shapes
	fp.RegionWeight = weights
}

func (rz *Realization) allActorsDone() bool {
	for _, a := range rz.Actors {
		if !a.Done() {
			return false
		}
	}
	return len(rz.Actors) > 0
}

// ActiveBitSequences returns each active actor's emitted bit sequence,
// indexed by actor ID, for the §6 per-realization output stream. A nil
// entry marks a passive actor.
func (rz *Realization) ActiveBitSequences() [][]bool {
	return rz.ActiveBits
}

// PassiveObservationRows flattens every recorded passive-actor
// observation into telemetry's row shape (§6 per-realization output
// stream).
func (rz *Realization) PassiveObservationRows() []telemetry.PassiveRow {
	rows := make([]telemetry.PassiveRow, 0, len(rz.Observations))
	for _, ao := range rz.Observations {
		a := rz.Actors[ao.ActorID]
		row := telemetry.PassiveRow{
			ActorID: ao.ActorID,
			Time:    ao.Obs.Time,
			HasTime: a.RecordTime,
			Counts:  ao.Obs.Counts,
		}
		if len(ao.Obs.Positions) > 0 {
			row.Positions = make([][]string, len(ao.Obs.Positions))
			for t, pts := range ao.Obs.Positions {
				strs := make([]string, len(pts))
				for i, p := range pts {
					strs[i] = fmt.Sprintf("(%g,%g,%g)", p.X, p.Y, p.Z)
				}
				row.Positions[t] = strs
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// toFatal classifies an error from a lower package into the §7 error
// taxonomy, wrapping whatever typed error it already is.
func toFatal(err error, phase string) error {
	switch err.(type) {
	case *region.BuildError:
		return &FatalError{Kind: KindGeometryInvalid, Phase: phase, Entity: "region graph", Cause: err}
	case *chem.ExclusivityError:
		return &FatalError{Kind: KindReactionIncompatible, Phase: phase, Entity: "reaction table", Cause: err}
	case *geom.ErrUnsupportedShapePair:
		return &FatalError{Kind: KindUnsupportedShapePair, Phase: phase, Entity: "geometry", Cause: err}
	default:
		return &FatalError{Kind: KindNumericalDegenerate, Phase: phase, Entity: "realization", Cause: err}
	}
}
