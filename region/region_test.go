package region

import (
	"testing"

	"github.com/TobiasSchwering/AcCoRD/geom"
)

func TestBuildSingleRectangularRegion(t *testing.T) {
	specs := []Spec{
		{
			Label:         "bulk",
			Shape:         geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}),
			NX:            2, NY: 2, NZ: 2,
			SubSize:       1,
			IsMicroscopic: false,
		},
	}
	g, err := Build(specs, 5, 1e-9, []float64{1e-10})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Subvolumes) != 8 {
		t.Fatalf("expected 8 subvolumes, got %d", len(g.Subvolumes))
	}
	if g.NumMeso != 8 {
		t.Fatalf("expected 8 mesoscopic subvolumes, got %d", g.NumMeso)
	}
	for _, s := range g.Subvolumes {
		if s.IsMicro() {
			t.Errorf("subvolume %d: expected mesoscopic", s.ID)
		}
		if len(s.Counts) != 1 {
			t.Errorf("subvolume %d: expected 1 count slot, got %d", s.ID, len(s.Counts))
		}
	}
	// Interior subvolumes should have 3 internal neighbors in a 2x2x2 grid;
	// every subvolume here is a corner of the cube, hence exactly 3.
	for _, s := range g.Subvolumes {
		if s.NumNeighbors() != 3 {
			t.Errorf("subvolume %d: expected 3 neighbors in 2x2x2 grid, got %d", s.ID, s.NumNeighbors())
		}
	}
}

func TestBuildRoundRegionIsSingleSubvolume(t *testing.T) {
	specs := []Spec{
		{Label: "sph", Shape: geom.NewSphere(geom.Point{0, 0, 0}, 5)},
	}
	g, err := Build(specs, 1, 1e-9, []float64{1e-10})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Subvolumes) != 1 {
		t.Fatalf("expected 1 subvolume for a sphere region, got %d", len(g.Subvolumes))
	}
	if !g.Subvolumes[0].IsMicro() {
		t.Error("expected sphere region to be forced microscopic")
	}
	if g.NumMeso != 0 {
		t.Errorf("expected 0 mesoscopic subvolumes, got %d", g.NumMeso)
	}
}

func TestBuildParentageFailsWhenNotSurrounded(t *testing.T) {
	specs := []Spec{
		{Label: "outer", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10})},
		{Label: "inner", ParentLabel: "outer", Shape: geom.NewBox(geom.Point{5, 5, 5}, geom.Point{20, 20, 20})},
	}
	_, err := Build(specs, 1, 1e-9, []float64{1e-10})
	if err == nil {
		t.Fatal("expected a build error when the child is not surrounded by its parent")
	}
	if _, ok := err.(*BuildError); !ok {
		t.Errorf("expected *BuildError, got %T", err)
	}
}

func TestBuildCrossRegionNeighborsAdjacentBoxes(t *testing.T) {
	specs := []Spec{
		{Label: "left", Shape: geom.NewBox(geom.Point{0, 0, 0}, geom.Point{10, 10, 10}), NX: 1, NY: 1, NZ: 1, SubSize: 1},
		{Label: "right", Shape: geom.NewBox(geom.Point{10, 0, 0}, geom.Point{20, 10, 10}), NX: 1, NY: 1, NZ: 1, SubSize: 1},
	}
	g, err := Build(specs, 10, 1e-9, []float64{1e-10})
	if err != nil {
		t.Fatal(err)
	}
	left, right := g.Subvolumes[0], g.Subvolumes[1]
	foundCross := false
	for _, n := range left.Neighbors {
		if n.CrossRegion && n.NeighborID == right.ID {
			foundCross = true
			if n.FaceArea <= 0 {
				t.Errorf("expected positive shared face area, got %v", n.FaceArea)
			}
		}
	}
	if !foundCross {
		t.Error("expected a cross-region neighbor link between adjacent box regions")
	}
}
