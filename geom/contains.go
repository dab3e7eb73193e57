package geom

import "math"

// Contains reports whether p lies in the closed set described by s, within
// tolerance distErr.
func Contains(p Point, s Shape, distErr float64) bool {
	switch s.Kind {
	case Rectangle, Box:
		lo, hi := s.Lo(), s.Hi()
		return p.X >= lo.X-distErr && p.X <= hi.X+distErr &&
			p.Y >= lo.Y-distErr && p.Y <= hi.Y+distErr &&
			p.Z >= lo.Z-distErr && p.Z <= hi.Z+distErr
	case Sphere:
		d := p.Sub(s.Center())
		r := s.Radius()
		return d.Dot(d) <= (r+distErr)*(r+distErr)
	case Cylinder:
		return containsCylinder(p, s, distErr)
	default:
		return false
	}
}

// containsCylinder implements the cylinder containment test of §4.A: the
// axial coordinate must lie in [anchor, anchor+length] and the radial
// distance from the axis must not exceed radius.
func containsCylinder(p Point, s Shape, distErr float64) bool {
	anchor := s.Anchor()
	axial := p.Sub(anchor)
	a := axisComponent(axial, s.Axis())
	if a < -distErr || a > s.Length()+distErr {
		return false
	}
	rx, ry := radialComponents(axial, s.Axis())
	r2 := rx*rx + ry*ry
	r := s.Radius()
	return r2 <= (r+distErr)*(r+distErr)
}

// radialComponents returns the two cross-section coordinates of v
// perpendicular to axis.
func radialComponents(v Vec, axis Axis) (float64, float64) {
	switch axis {
	case AxisX:
		return v.Y, v.Z
	case AxisY:
		return v.X, v.Z
	default:
		return v.X, v.Y
	}
}

// PointShape returns a degenerate sphere of radius 0 centered at p, used by
// the round-trip law Contains(p,shape) => Surrounds(shape, PointShape(p)).
func PointShape(p Point) Shape {
	return NewSphere(p, 0)
}

// distance helpers shared by contains/surrounds/intersects.
func sqDist(a, b Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

func dist(a, b Point) float64 {
	return math.Sqrt(sqDist(a, b))
}
