package micro

import (
	"math"
	"testing"

	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// fixedSampler is a deterministic test double for Sampler: every draw
// returns a preset value so diffusion and reaction outcomes are
// reproducible in assertions.
type fixedSampler struct {
	uniform float64
	normal  float64
}

func (f *fixedSampler) Uniform01() float64         { return f.uniform }
func (f *fixedSampler) Normal(mu, sigma float64) float64 { return mu + f.normal }

type noopLedger struct{}

func (noopLedger) RecordProduced(moleculeType int, n int64) {}
func (noopLedger) RecordConsumed(moleculeType int, n int64) {}
func (noopLedger) RecordAbsorbed(moleculeType int, n int64) {}

func buildSingleBoxEngine(t *testing.T) (*Engine, *State) {
	specs := []region.Spec{
		{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{20, 20, 20}), NX: 1, NY: 1, NZ: 1, SubSize: 1, IsMicroscopic: true},
	}
	g, err := region.Build(specs, 20, 1e-9, []float64{1e-10})
	if err != nil {
		t.Fatal(err)
	}
	table, err := chem.Compile(g, nil, []float64{1e-10}, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	e := New(g, table, []float64{1e-10}, 1e-9)
	s := NewState(len(g.Regions), 1)
	return e, s
}

func TestTickDiffusesSteadyMoleculeWithinBounds(t *testing.T) {
	e, s := buildSingleBoxEngine(t)
	s.Lists[0][0].Steady = append(s.Lists[0][0].Steady, geom.Point{X: 10, Y: 10, Z: 10})

	rng := &fixedSampler{uniform: 0.99, normal: 0.1}
	_, err := e.Tick(s, 0, 0, 0.01, rng, noopLedger{})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Lists[0][0].Steady) != 1 {
		t.Fatalf("expected the molecule to remain after a small diffusive step, got %d", len(s.Lists[0][0].Steady))
	}
	p := s.Lists[0][0].Steady[0]
	if !geom.Contains(p, geom.NewBox(geom.Point{0, 0, 0}, geom.Point{20, 20, 20}), 1e-9) {
		t.Errorf("expected molecule to remain inside the region, got %v", p)
	}
}

func TestTickReflectsMoleculeOffBoundary(t *testing.T) {
	e, s := buildSingleBoxEngine(t)
	s.Lists[0][0].Steady = append(s.Lists[0][0].Steady, geom.Point{X: 19.9, Y: 10, Z: 10})

	rng := &fixedSampler{uniform: 0.99, normal: 1.0}
	_, err := e.Tick(s, 0, 0, 0.01, rng, noopLedger{})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Lists[0][0].Steady) != 1 {
		t.Fatalf("expected the molecule to be reflected back into the region, got %d remaining", len(s.Lists[0][0].Steady))
	}
	p := s.Lists[0][0].Steady[0]
	if p.X > 20+1e-9 {
		t.Errorf("expected reflected molecule x <= 20, got %v", p.X)
	}
}

func TestMoleculeListPromoteRecent(t *testing.T) {
	l := &List{}
	l.Recent = append(l.Recent, Recent{Pos: geom.Point{X: 1, Y: 2, Z: 3}, DTPartial: 0.001})
	l.PromoteRecent()
	if len(l.Steady) != 1 || len(l.Recent) != 0 {
		t.Fatalf("expected recent molecule promoted to steady, got steady=%d recent=%d", len(l.Steady), len(l.Recent))
	}
}

func TestFlowDisplacementZeroWhenDisabled(t *testing.T) {
	r := &region.Region{Spec: region.Spec{Shape: geom.NewCylinder(geom.Point{0, 0, 0}, 5, 10, geom.AxisZ)}}
	disp := flowDisplacement(r, geom.Point{X: 1, Y: 0, Z: 5}, 0, 0.01)
	if disp != (geom.Vec{}) {
		t.Errorf("expected zero displacement when flow disabled, got %v", disp)
	}
}

func TestFlowDisplacementLaminarProfile(t *testing.T) {
	r := &region.Region{Spec: region.Spec{
		Shape: geom.NewCylinder(geom.Point{0, 0, 0}, 5, 10, geom.AxisZ),
		Flow: region.Flow{Enabled: true, Velocity: 2, Profile: region.FlowLaminar},
	}}
	disp := flowDisplacement(r, geom.Point{X: 0, Y: 0, Z: 5}, 0, 1)
	want := 2 * 2.0 * (1 - 0)
	if math.Abs(disp.Z-want) > 1e-9 {
		t.Errorf("expected centerline laminar displacement %v, got %v", want, disp.Z)
	}
}
