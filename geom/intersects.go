package geom

import "math"

// Intersects reports whether a and b share any point after both are shrunk
// by clearance, provided neither surrounds the other (surrounding pairs are
// reported by Surrounds, not Intersects, per §4.A).
func Intersects(a, b Shape, clearance float64) (bool, error) {
	if Surrounds(a, b, clearance) || Surrounds(b, a, clearance) {
		return false, nil
	}
	switch {
	case isBoxLike(a.Kind) && isBoxLike(b.Kind):
		return intersectBoxBox(a, b, clearance), nil
	case a.Kind == Sphere && isBoxLike(b.Kind):
		return intersectSphereBox(a, b, clearance), nil
	case isBoxLike(a.Kind) && b.Kind == Sphere:
		return intersectSphereBox(b, a, clearance), nil
	case a.Kind == Cylinder && isBoxLike(b.Kind):
		return intersectCylinderBox(a, b, clearance), nil
	case isBoxLike(a.Kind) && b.Kind == Cylinder:
		return intersectCylinderBox(b, a, clearance), nil
	case a.Kind == Cylinder && b.Kind == Cylinder:
		return intersectCylinderCylinder(a, b, clearance)
	case a.Kind == Sphere && b.Kind == Sphere:
		return intersectSphereSphere(a, b, clearance), nil
	case a.Kind == Sphere && b.Kind == Cylinder:
		return false, &ErrUnsupportedShapePair{Op: "Intersects", A: a.Kind, B: b.Kind}
	case a.Kind == Cylinder && b.Kind == Sphere:
		return false, &ErrUnsupportedShapePair{Op: "Intersects", A: a.Kind, B: b.Kind}
	default:
		return false, &ErrUnsupportedShapePair{Op: "Intersects", A: a.Kind, B: b.Kind}
	}
}

func isBoxLike(k Kind) bool { return k == Box || k == Rectangle }

// intersectBoxBox is the axis-aligned overlap test, shrinking both boxes by
// clearance/2 on every face (so the combined shrink applied to the gap
// between them equals clearance).
func intersectBoxBox(a, b Shape, clearance float64) bool {
	aLo, aHi := shrink(a, clearance/2)
	bLo, bHi := shrink(b, clearance/2)
	return aLo.X <= bHi.X && aHi.X >= bLo.X &&
		aLo.Y <= bHi.Y && aHi.Y >= bLo.Y &&
		aLo.Z <= bHi.Z && aHi.Z >= bLo.Z
}

func shrink(s Shape, amt float64) (Point, Point) {
	lo, hi := s.Lo(), s.Hi()
	out := func(loV, hiV, a float64) (float64, float64) {
		if hiV-loV <= 2*a {
			mid := (loV + hiV) / 2
			return mid, mid
		}
		return loV + a, hiV - a
	}
	lx, hx := out(lo.X, hi.X, amt)
	ly, hy := out(lo.Y, hi.Y, amt)
	lz, hz := out(lo.Z, hi.Z, amt)
	return Point{lx, ly, lz}, Point{hx, hy, hz}
}

// intersectSphereBox is the classical squared-distance test: clamp the
// sphere center to the box, compare squared distance to (r-clearance)^2.
func intersectSphereBox(sph, box Shape, clearance float64) bool {
	c := sph.Center()
	lo, hi := box.Lo(), box.Hi()
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	nearest := Point{clamp(c.X, lo.X, hi.X), clamp(c.Y, lo.Y, hi.Y), clamp(c.Z, lo.Z, hi.Z)}
	r := sph.Radius() - clearance
	if r < 0 {
		r = 0
	}
	return sqDist(c, nearest) <= r*r
}

func intersectSphereSphere(a, b Shape, clearance float64) bool {
	r := a.Radius() + b.Radius() - clearance
	if r < 0 {
		return false
	}
	return dist(a.Center(), b.Center()) <= r
}

// intersectCylinderBox splits into an axial-extent test and a cross-section
// test. The cross-section test covers three overlap modes, each checked
// explicitly: the rectangle contains the circle center, the circle contains
// a rectangle corner, or a rectangle edge crosses the circle (the point of
// the rectangle nearest the axis lies within the radius).
func intersectCylinderBox(cyl, box Shape, clearance float64) bool {
	anchor := cyl.Anchor()
	axis := cyl.Axis()
	lo, hi := box.Lo(), box.Hi()

	axLo := axisComponent(lo.Sub(anchor), axis)
	axHi := axisComponent(hi.Sub(anchor), axis)
	if axLo > axHi {
		axLo, axHi = axHi, axLo
	}
	cylLo, cylHi := 0.0+clearance/2, cyl.Length()-clearance/2
	if cylLo > cylHi {
		mid := cyl.Length() / 2
		cylLo, cylHi = mid, mid
	}
	if axHi < cylLo || axLo > cylHi {
		return false
	}

	r := cyl.Radius() - clearance/2
	if r < 0 {
		r = 0
	}
	rx0, ry0 := radialComponents(lo.Sub(anchor), axis)
	rx1, ry1 := radialComponents(hi.Sub(anchor), axis)

	// Mode 1: rectangle contains circle center.
	if rx0 <= 0 && 0 <= rx1 && ry0 <= 0 && 0 <= ry1 {
		return true
	}
	// Mode 2: circle contains a rectangle corner.
	corners := [4][2]float64{{rx0, ry0}, {rx0, ry1}, {rx1, ry0}, {rx1, ry1}}
	for _, c := range corners {
		if c[0]*c[0]+c[1]*c[1] <= r*r {
			return true
		}
	}
	// Mode 3: circle crosses a rectangle edge without containing a corner
	// or being contained: nearest point on rectangle to origin is within r.
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	nx := clamp(0, rx0, rx1)
	ny := clamp(0, ry0, ry1)
	return nx*nx+ny*ny <= r*r
}

// intersectCylinderCylinder requires equal orientation axes.
func intersectCylinderCylinder(a, b Shape, clearance float64) (bool, error) {
	if a.Axis() != b.Axis() {
		return false, &ErrUnsupportedShapePair{Op: "Intersects(cylinder,cylinder,differing axis)", A: a.Kind, B: b.Kind}
	}
	axis := a.Axis()
	aAnchor, bAnchor := a.Anchor(), b.Anchor()
	aLo := axisComponent(Vec{}, axis)
	aHi := a.Length()
	bOffset := axisComponent(bAnchor.Sub(aAnchor), axis)
	bLo := bOffset
	bHi := bOffset + b.Length()
	if aHi-clearance/2 < bLo+clearance/2 || aLo+clearance/2 > bHi-clearance/2 {
		return false, nil
	}
	crossDist := math.Hypot(radialDelta(aAnchor, bAnchor, axis))
	r := a.Radius() + b.Radius() - clearance
	if r < 0 {
		r = 0
	}
	return crossDist <= r, nil
}

func radialDelta(a, b Point, axis Axis) (float64, float64) {
	rx0, ry0 := radialComponents(Vec{}, axis)
	d := b.Sub(a)
	rx1, ry1 := radialComponents(d, axis)
	return rx1 - rx0, ry1 - ry0
}
