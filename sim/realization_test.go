package sim

import (
	"testing"

	"github.com/TobiasSchwering/AcCoRD/actorsim"
	"github.com/TobiasSchwering/AcCoRD/chem"
	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// stillSampler draws deterministic "nothing happens" values: uniform
// draws near 1 (so reaction/threshold comparisons never fire) and zero
// normal draws (so diffusion never moves a molecule).
type stillSampler struct{}

func (stillSampler) Uniform01() float64          { return 0.999999 }
func (stillSampler) Normal(mu, sigma float64) float64 { return mu }

func TestNewRealizationBuildsGraphAndTable(t *testing.T) {
	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}),
				NX: 2, NY: 2, NZ: 2, SubSize: 1},
		},
		ReactionSpecs: nil,
		DiffCoeff:     []float64{1e-10},
		BaseSize:      5,
		DistErr:       1e-9,
		MicroDT:       1e-3,
		FinalTime:     0,
	}
	rz, err := NewRealization(cfg, stillSampler{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rz.Graph.Subvolumes) != 8 {
		t.Fatalf("expected 8 subvolumes, got %d", len(rz.Graph.Subvolumes))
	}
	if len(rz.Table.Regions) != 1 {
		t.Fatalf("expected 1 compiled region table, got %d", len(rz.Table.Regions))
	}
}

func TestRunTerminatesAtFinalTimeWithNoActors(t *testing.T) {
	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}),
				NX: 1, NY: 1, NZ: 1, SubSize: 1, IsMicroscopic: true},
		},
		DiffCoeff: []float64{1e-10},
		BaseSize:  10,
		DistErr:   1e-9,
		MicroDT:   0.01,
		FinalTime: 0.05,
	}
	rz, err := NewRealization(cfg, stillSampler{})
	if err != nil {
		t.Fatal(err)
	}
	if err := rz.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rz.t < cfg.FinalTime {
		t.Errorf("expected the realization to advance to final time, stopped at %v", rz.t)
	}
}

func TestRunWithActiveAndPassiveActors(t *testing.T) {
	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "bulk", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}),
				NX: 1, NY: 1, NZ: 1, SubSize: 1, IsMicroscopic: true},
		},
		ReactionSpecs: nil,
		ActorSpecs: []actorsim.Spec{
			{
				Label:          "tx",
				IsActive:       true,
				StartTime:      0,
				ActionInterval: 0.02,
				MaxActions:     1,
				Footprint:      actorsim.Footprint{Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{1, 1, 1})},
				Modulation:     actorsim.Modulation{Strength: 1, ReleaseInterval: 0.01},
				ReleaseMask:    []bool{true},
			},
			{
				Label:          "rx",
				IsActive:       false,
				StartTime:      0.01,
				ActionInterval: 0.02,
				MaxActions:     1,
				Footprint:      actorsim.Footprint{Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10})},
				ObserveMask:    []bool{true},
			},
		},
		DiffCoeff: []float64{1e-10},
		BaseSize:  10,
		DistErr:   1e-9,
		MicroDT:   0.01,
		FinalTime: 0.05,
	}
	rz, err := NewRealization(cfg, stillSampler{})
	if err != nil {
		t.Fatal(err)
	}
	if err := rz.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rz.Observations) == 0 {
		t.Fatal("expected at least one passive observation to be recorded")
	}
}

func TestExclusivityViolationSurfacesAsFatalError(t *testing.T) {
	cfg := Config{
		RegionSpecs: []region.Spec{
			{Label: "wall", Shape: geom.NewRectangle(geom.Point{0, 0, 0}, geom.Point{10, 10, 0}),
				Kind: region.Surface2D},
		},
		ReactionSpecs: []chem.Spec{
			{Label: "r1", Reactants: []int{1}, IsSurface: true, Surface: chem.Absorbing,
				Rate: 1, DefaultEverywhere: true},
			{Label: "r2", Reactants: []int{1}, IsSurface: true, Surface: chem.Normal,
				Rate: 1, DefaultEverywhere: true},
		},
		DiffCoeff: []float64{1e-10},
		BaseSize:  1,
		DistErr:   1e-9,
		MicroDT:   1e-3,
	}
	_, err := NewRealization(cfg, stillSampler{})
	if err == nil {
		t.Fatal("expected an exclusivity violation to surface as a fatal error")
	}
	fe, ok := err.(*FatalError)
	if !ok {
		t.Fatalf("expected *FatalError, got %T", err)
	}
	if fe.Kind != KindReactionIncompatible {
		t.Errorf("expected KindReactionIncompatible, got %v", fe.Kind)
	}
}
