package geom

// IntersectBoundary computes the shape resulting from intersecting a and b.
// Box-box is a box by min/max per axis; one boundary fully inside the other
// returns that boundary; disjoint returns an empty box. For cylinders of
// equal orientation the intersection is a cylinder if one's cross-section
// is inside the other's; for a cylinder and a box, either a box (box's
// cross-section inside the cylinder's disk) or a cylinder (disk inside the
// box). Other combinations fail with ErrUnsupportedShapePair.
func IntersectBoundary(a, b Shape) (Shape, error) {
	switch {
	case isBoxLike(a.Kind) && isBoxLike(b.Kind):
		return intersectBoundaryBoxBox(a, b), nil
	case a.Kind == Cylinder && b.Kind == Cylinder && a.Axis() == b.Axis():
		return intersectBoundaryCylinderCylinder(a, b)
	case a.Kind == Cylinder && isBoxLike(b.Kind):
		return intersectBoundaryCylinderBox(a, b)
	case isBoxLike(a.Kind) && b.Kind == Cylinder:
		return intersectBoundaryCylinderBox(b, a)
	default:
		return Shape{}, &ErrUnsupportedShapePair{Op: "IntersectBoundary", A: a.Kind, B: b.Kind}
	}
}

func intersectBoundaryBoxBox(a, b Shape) Shape {
	aLo, aHi := a.Lo(), a.Hi()
	bLo, bHi := b.Lo(), b.Hi()
	lo := Point{maxF(aLo.X, bLo.X), maxF(aLo.Y, bLo.Y), maxF(aLo.Z, bLo.Z)}
	hi := Point{minF(aHi.X, bHi.X), minF(aHi.Y, bHi.Y), minF(aHi.Z, bHi.Z)}
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return NewBox(lo, hi) // empty box: lo exceeds hi on at least one axis
	}
	return NewBox(lo, hi)
}

func intersectBoundaryCylinderCylinder(a, b Shape) (Shape, error) {
	if Surrounds(a, b, 0) {
		return b, nil
	}
	if Surrounds(b, a, 0) {
		return a, nil
	}
	return Shape{}, &ErrUnsupportedShapePair{Op: "IntersectBoundary(cylinder,cylinder,neither nested)", A: a.Kind, B: b.Kind}
}

func intersectBoundaryCylinderBox(cyl, box Shape) (Shape, error) {
	if Surrounds(cyl, box, 0) {
		return box, nil
	}
	if Surrounds(box, cyl, 0) {
		return cyl, nil
	}
	return Shape{}, &ErrUnsupportedShapePair{Op: "IntersectBoundary(cylinder,box,neither nested)", A: cyl.Kind, B: box.Kind}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
