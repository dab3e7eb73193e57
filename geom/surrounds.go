package geom

import "math"

// Surrounds reports whether b lies strictly inside a, shrunk by clearance.
func Surrounds(a, b Shape, clearance float64) bool {
	switch {
	case isBoxLike(a.Kind) && isBoxLike(b.Kind):
		return surroundsBoxBox(a, b, clearance)
	case isBoxLike(a.Kind) && b.Kind == Sphere:
		return surroundsBoxSphere(a, b, clearance)
	case a.Kind == Sphere && b.Kind == Sphere:
		return surroundsSphereSphere(a, b, clearance)
	case a.Kind == Sphere && isBoxLike(b.Kind):
		return surroundsSphereBox(a, b, clearance)
	case a.Kind == Cylinder && isBoxLike(b.Kind):
		return surroundsCylinderBox(a, b, clearance)
	case a.Kind == Cylinder && b.Kind == Cylinder:
		return surroundsCylinderCylinder(a, b, clearance)
	default:
		return false
	}
}

// surroundsBoxBox is inclusive-interval inclusion.
func surroundsBoxBox(a, b Shape, clearance float64) bool {
	aLo, aHi := a.Lo(), a.Hi()
	bLo, bHi := b.Lo(), b.Hi()
	return bLo.X >= aLo.X+clearance && bHi.X <= aHi.X-clearance &&
		bLo.Y >= aLo.Y+clearance && bHi.Y <= aHi.Y-clearance &&
		bLo.Z >= aLo.Z+clearance && bHi.Z <= aHi.Z-clearance
}

// surroundsBoxSphere checks the sphere's axis-aligned extent against the box.
func surroundsBoxSphere(box, sph Shape, clearance float64) bool {
	lo, hi := box.Lo(), box.Hi()
	c, r := sph.Center(), sph.Radius()
	return c.X-r >= lo.X+clearance && c.X+r <= hi.X-clearance &&
		c.Y-r >= lo.Y+clearance && c.Y+r <= hi.Y-clearance &&
		c.Z-r >= lo.Z+clearance && c.Z+r <= hi.Z-clearance
}

// surroundsSphereSphere uses center distance + inner radius.
func surroundsSphereSphere(a, b Shape, clearance float64) bool {
	return dist(a.Center(), b.Center())+b.Radius()+clearance <= a.Radius()
}

// surroundsSphereBox tests all eight corners of the box against the sphere.
func surroundsSphereBox(sph, box Shape, clearance float64) bool {
	lo, hi := box.Lo(), box.Hi()
	r := sph.Radius() - clearance
	if r < 0 {
		return false
	}
	corners := [8]Point{
		{lo.X, lo.Y, lo.Z}, {lo.X, lo.Y, hi.Z}, {lo.X, hi.Y, lo.Z}, {lo.X, hi.Y, hi.Z},
		{hi.X, lo.Y, lo.Z}, {hi.X, lo.Y, hi.Z}, {hi.X, hi.Y, lo.Z}, {hi.X, hi.Y, hi.Z},
	}
	c := sph.Center()
	for _, p := range corners {
		if sqDist(p, c) > r*r {
			return false
		}
	}
	return true
}

// surroundsCylinderBox enforces both axial inclusion and per-corner radial
// inclusion.
func surroundsCylinderBox(cyl, box Shape, clearance float64) bool {
	anchor := cyl.Anchor()
	axis := cyl.Axis()
	lo, hi := box.Lo(), box.Hi()

	axLo := axisComponent(lo.Sub(anchor), axis)
	axHi := axisComponent(hi.Sub(anchor), axis)
	if axLo < clearance || axHi > cyl.Length()-clearance {
		return false
	}

	r := cyl.Radius() - clearance
	if r < 0 {
		return false
	}
	rx0, ry0 := radialComponents(lo.Sub(anchor), axis)
	rx1, ry1 := radialComponents(hi.Sub(anchor), axis)
	corners := [4][2]float64{{rx0, ry0}, {rx0, ry1}, {rx1, ry0}, {rx1, ry1}}
	for _, c := range corners {
		if c[0]*c[0]+c[1]*c[1] > r*r {
			return false
		}
	}
	return true
}

// surroundsCylinderCylinder (equal orientation) uses axial inclusion plus
// center-distance <= (R_outer - R_inner - clearance).
func surroundsCylinderCylinder(a, b Shape, clearance float64) bool {
	if a.Axis() != b.Axis() {
		return false
	}
	axis := a.Axis()
	aAnchor, bAnchor := a.Anchor(), b.Anchor()
	offset := axisComponent(bAnchor.Sub(aAnchor), axis)
	if offset < clearance || offset+b.Length() > a.Length()-clearance {
		return false
	}
	crossX, crossY := radialDelta(aAnchor, bAnchor, axis)
	centerDist := hypot2(crossX, crossY)
	return centerDist <= a.Radius()-b.Radius()-clearance
}

func hypot2(x, y float64) float64 {
	return math.Hypot(x, y)
}
