package geom

import (
	"math"
	"testing"
)

const testDistErr = 1e-9

func TestContainsBox(t *testing.T) {
	box := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	if !Contains(Point{5, 5, 5}, box, testDistErr) {
		t.Error("expected center to be contained")
	}
	if Contains(Point{11, 5, 5}, box, testDistErr) {
		t.Error("expected point outside box to not be contained")
	}
}

func TestContainsCylinder(t *testing.T) {
	cyl := NewCylinder(Point{0, 0, 0}, 5, 20, AxisZ)
	if !Contains(Point{0, 0, 10}, cyl, testDistErr) {
		t.Error("expected axis point to be contained")
	}
	if Contains(Point{6, 0, 10}, cyl, testDistErr) {
		t.Error("expected point outside radius to not be contained")
	}
	if Contains(Point{0, 0, 21}, cyl, testDistErr) {
		t.Error("expected point beyond length to not be contained")
	}
}

// Round-trip law (i): contains(p, shape) => surrounds(shape, point_shape(p))
// for a point-radius-0 shape.
func TestContainsImpliesSurroundsPoint(t *testing.T) {
	box := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	p := Point{5, 5, 5}
	if !Contains(p, box, testDistErr) {
		t.Fatal("setup: expected p contained")
	}
	if !Surrounds(box, PointShape(p), 0) {
		t.Error("expected surrounds(box, point_shape(p))")
	}
}

// Round-trip law (ii): for disjoint shapes, intersects(a,b,0) = false and
// intersect_boundary(a,b) returns an empty box.
func TestDisjointBoxesDoNotIntersect(t *testing.T) {
	a := NewBox(Point{0, 0, 0}, Point{1, 1, 1})
	b := NewBox(Point{5, 5, 5}, Point{6, 6, 6})
	isect, err := Intersects(a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if isect {
		t.Error("expected disjoint boxes to not intersect")
	}
	result, err := IntersectBoundary(a, b)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := result.Lo(), result.Hi()
	if !(lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z) {
		t.Errorf("expected empty intersection box, got lo=%v hi=%v", lo, hi)
	}
}

func TestSurroundsBoxBox(t *testing.T) {
	outer := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	inner := NewBox(Point{2, 2, 2}, Point{8, 8, 8})
	if !Surrounds(outer, inner, 0) {
		t.Error("expected inner box to be surrounded")
	}
	if Surrounds(inner, outer, 0) {
		t.Error("expected outer box to not be surrounded by inner")
	}
}

func TestAdjacentBoxBox(t *testing.T) {
	a := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	b := NewBox(Point{10, 0, 0}, Point{20, 10, 10})
	dir, ok, err := Adjacent(a, b, testDistErr)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a and b to be adjacent")
	}
	if dir != Right {
		t.Errorf("expected Right, got %v", dir)
	}
}

func TestAdjacentIntersectingBoxesIsNotAdjacent(t *testing.T) {
	a := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	b := NewBox(Point{5, 5, 5}, Point{15, 15, 15})
	_, ok, err := Adjacent(a, b, testDistErr)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected overlapping boxes to not be reported as adjacent")
	}
}

func TestLineHitsBoxFace(t *testing.T) {
	box := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	p := Point{5, 5, 5}
	dir := Vec{1, 0, 0}
	hit, err := LineHitsBoundary(p, dir, 100, box, true, testDistErr)
	if err != nil {
		t.Fatal(err)
	}
	if !hit.Found {
		t.Fatal("expected a hit")
	}
	if hit.Face != FaceXHi {
		t.Errorf("expected FaceXHi, got %v", hit.Face)
	}
	if math.Abs(hit.Dist-5) > 1e-9 {
		t.Errorf("expected dist 5, got %v", hit.Dist)
	}
}

func TestLineHitsSphere(t *testing.T) {
	sph := NewSphere(Point{0, 0, 0}, 5)
	p := Point{0, 0, 0}
	dir := Vec{0, 0, 1}
	hit, err := LineHitsBoundary(p, dir, 100, sph, true, testDistErr)
	if err != nil {
		t.Fatal(err)
	}
	if !hit.Found || math.Abs(hit.Dist-5) > 1e-9 {
		t.Errorf("expected hit at dist 5, got %+v", hit)
	}
}

// Round-trip law (iii): reflect followed by reflect across the same face
// returns to within dist_error of the original.
func TestReflectTwiceReturnsOriginal(t *testing.T) {
	box := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	old := Point{9, 5, 5}
	target := Point{11, 5, 5} // overshoots the Right face
	hit, err := LineHitsBoundary(old, Vec{1, 0, 0}, 2, box, true, testDistErr)
	if err != nil {
		t.Fatal(err)
	}
	if !hit.Found {
		t.Fatal("expected hit")
	}
	reflected := Reflect(old, target, hit.Point, box, hit.Face, false)
	back := Reflect(old, reflected, hit.Point, box, hit.Face, false)
	if math.Abs(back.X-target.X) > 1e-9 {
		t.Errorf("expected round trip to recover original x, got %v vs %v", back.X, target.X)
	}
}

func TestUniformPointInBox(t *testing.T) {
	box := NewBox(Point{0, 0, 0}, Point{10, 10, 10})
	u := &fixedUniformer{vals: []float64{0.3, 0.6, 0.9}}
	p, err := UniformPoint(box, false, FaceNone, u)
	if err != nil {
		t.Fatal(err)
	}
	if !Contains(p, box, testDistErr) {
		t.Errorf("expected sampled point to be contained, got %v", p)
	}
}

type fixedUniformer struct {
	vals []float64
	i    int
}

func (f *fixedUniformer) Uniform01() float64 {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

