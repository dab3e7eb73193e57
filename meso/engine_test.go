package meso

import (
	"testing"

	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

type sequenceSampler struct {
	vals []float64
	i    int
}

func (s *sequenceSampler) Uniform01() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

type recordingHandoff struct {
	calls int
}

func (h *recordingHandoff) InsertRecent(regionID, moleculeType int, pos geom.Point, dtPartial float64) {
	h.calls++
}

type noopLedger struct{}

func (noopLedger) RecordProduced(moleculeType int, n int64) {}
func (noopLedger) RecordConsumed(moleculeType int, n int64) {}
func (noopLedger) RecordAbsorbed(moleculeType int, n int64) {}

func buildTwoSubGraph(t *testing.T) *region.Graph {
	specs := []region.Spec{
		{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{20, 10, 10}), NX: 2, NY: 1, NZ: 1, SubSize: 1},
	}
	g, err := region.Build(specs, 10, 1e-9, []float64{1e-9})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNewEngineDrawsInitialTau(t *testing.T) {
	g := buildTwoSubGraph(t)
	table, err := chem.Compile(g, nil, []float64{1e-9}, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	g.Subvolumes[0].Counts[0] = 10

	rng := &sequenceSampler{vals: []float64{0.5}}
	e := New(g, table, 1, 0, rng)
	if e.States[0] == nil || e.States[1] == nil {
		t.Fatal("expected both subvolumes to have NSM state")
	}
	if e.States[0].A0 <= 0 {
		t.Errorf("expected positive propensity with molecules present and a diffusion neighbor, got %v", e.States[0].A0)
	}
}

func TestFireDiffusionMovesCountToNeighbor(t *testing.T) {
	g := buildTwoSubGraph(t)
	table, err := chem.Compile(g, nil, []float64{1e-9}, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	g.Subvolumes[0].Counts[0] = 1

	rng := &sequenceSampler{vals: []float64{0.5}}
	e := New(g, table, 1, 0, rng)

	fireRng := &sequenceSampler{vals: []float64{0.99, 0.5}}
	h := &recordingHandoff{}
	if err := e.Fire(0, 0, fireRng, h, noopLedger{}); err != nil {
		t.Fatal(err)
	}
	if g.Subvolumes[0].Counts[0] != 0 {
		t.Errorf("expected source count to drop to 0, got %d", g.Subvolumes[0].Counts[0])
	}
	if g.Subvolumes[1].Counts[0] != 1 {
		t.Errorf("expected destination count to rise to 1, got %d", g.Subvolumes[1].Counts[0])
	}
}

func TestFireDiffusionHandsOffToMicroNeighbor(t *testing.T) {
	specs := []region.Spec{
		{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}), NX: 1, NY: 1, NZ: 1, SubSize: 1},
		{Label: "micro", Shape: geom.NewBox(geom.Point{10, 0, 0}, geom.Point{20, 10, 10}), IsMicroscopic: true, NX: 1, NY: 1, NZ: 1, SubSize: 1},
	}
	g, err := region.Build(specs, 10, 1e-9, []float64{1e-9})
	if err != nil {
		t.Fatal(err)
	}
	table, err := chem.Compile(g, nil, []float64{1e-9}, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	g.Subvolumes[0].Counts[0] = 1

	rng := &sequenceSampler{vals: []float64{0.5}}
	e := New(g, table, 1, 0, rng)

	fireRng := &sequenceSampler{vals: []float64{0.99, 0.5}}
	h := &recordingHandoff{}
	if err := e.Fire(0, 0, fireRng, h, noopLedger{}); err != nil {
		t.Fatal(err)
	}
	if h.calls == 0 {
		t.Errorf("expected diffusion toward the microscopic neighbor to hand off a recent molecule, got 0 calls")
	}
	if g.Subvolumes[0].Counts[0] != 0 {
		t.Errorf("expected source count to drop to 0, got %d", g.Subvolumes[0].Counts[0])
	}
}

func TestDrawTauMonotonicInA0(t *testing.T) {
	small := DrawTau(0, 1, 0.5)
	large := DrawTau(0, 10, 0.5)
	if large >= small {
		t.Errorf("expected a larger a0 to produce a smaller tau, got small=%v large=%v", small, large)
	}
}
