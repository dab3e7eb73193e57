package geom

import "math"

// Uniformer draws a uniform(0,1) variate. geom has no PRNG of its own; the
// caller (the rng package) supplies one so this kernel stays a pure
// geometry library.
type Uniformer interface {
	Uniform01() float64
}

// UniformPoint samples a point uniformly from the interior of s, or from a
// specified face if onSurface is true (planeID selects which face; its
// interpretation is shape-specific: a Face value for boxes/cylinders,
// ignored for rectangles and spheres since they have one natural surface
// mode).
func UniformPoint(s Shape, onSurface bool, planeID Face, u Uniformer) (Point, error) {
	switch s.Kind {
	case Rectangle:
		return uniformRectangle(s, u), nil
	case Box:
		if onSurface {
			return uniformBoxFace(s, planeID, u), nil
		}
		return uniformBox(s, u), nil
	case Sphere:
		if onSurface {
			return uniformSphereSurface(s, u), nil
		}
		return uniformSphereVolume(s, u), nil
	case Cylinder:
		if onSurface {
			return uniformCylinderFace(s, planeID, u), nil
		}
		return uniformCylinderVolume(s, u), nil
	default:
		return Point{}, &ErrUnsupportedShapePair{Op: "UniformPoint", A: s.Kind}
	}
}

func lerp(lo, hi, t float64) float64 { return lo + t*(hi-lo) }

func uniformBox(s Shape, u Uniformer) Point {
	lo, hi := s.Lo(), s.Hi()
	return Point{
		lerp(lo.X, hi.X, u.Uniform01()),
		lerp(lo.Y, hi.Y, u.Uniform01()),
		lerp(lo.Z, hi.Z, u.Uniform01()),
	}
}

func uniformRectangle(s Shape, u Uniformer) Point {
	return uniformBox(s, u) // the zero-extent axis lerps lo==hi trivially
}

func uniformBoxFace(s Shape, face Face, u Uniformer) Point {
	lo, hi := s.Lo(), s.Hi()
	p := uniformBox(s, u)
	switch face {
	case FaceXLo:
		p.X = lo.X
	case FaceXHi:
		p.X = hi.X
	case FaceYLo:
		p.Y = lo.Y
	case FaceYHi:
		p.Y = hi.Y
	case FaceZLo:
		p.Z = lo.Z
	case FaceZHi:
		p.Z = hi.Z
	}
	return p
}

// uniformSphereVolume uses classical rejection sampling in the unit cube.
func uniformSphereVolume(s Shape, u Uniformer) Point {
	for {
		x := 2*u.Uniform01() - 1
		y := 2*u.Uniform01() - 1
		z := 2*u.Uniform01() - 1
		if x*x+y*y+z*z <= 1 {
			c := s.Center()
			r := s.Radius()
			return Point{c.X + x*r, c.Y + y*r, c.Z + z*r}
		}
	}
}

// uniformSphereSurface rejection-samples a volume point then normalizes it
// to the surface.
func uniformSphereSurface(s Shape, u Uniformer) Point {
	for {
		x := 2*u.Uniform01() - 1
		y := 2*u.Uniform01() - 1
		z := 2*u.Uniform01() - 1
		n2 := x*x + y*y + z*z
		if n2 > 1e-12 && n2 <= 1 {
			n := math.Sqrt(n2)
			c := s.Center()
			r := s.Radius()
			return Point{c.X + x/n*r, c.Y + y/n*r, c.Z + z/n*r}
		}
	}
}

func uniformCylinderVolume(s Shape, u Uniformer) Point {
	anchor := s.Anchor()
	axis := s.Axis()
	r := s.Radius()

	var rx, ry float64
	for {
		x := 2*u.Uniform01() - 1
		y := 2*u.Uniform01() - 1
		if x*x+y*y <= 1 {
			rx, ry = x*r, y*r
			break
		}
	}
	axialVal := u.Uniform01() * s.Length()
	return combineAxial(anchor, axis, axialVal, rx, ry)
}

func uniformCylinderFace(s Shape, face Face, u Uniformer) Point {
	switch face {
	case FaceCylCapLo:
		p := uniformCylinderVolume(s, u)
		return setAxialValue(p, s, 0)
	case FaceCylCapHi:
		p := uniformCylinderVolume(s, u)
		return setAxialValue(p, s, s.Length())
	default: // mantle
		theta := 2 * math.Pi * u.Uniform01()
		rx, ry := s.Radius()*math.Cos(theta), s.Radius()*math.Sin(theta)
		axialVal := u.Uniform01() * s.Length()
		return combineAxial(s.Anchor(), s.Axis(), axialVal, rx, ry)
	}
}

func setAxialValue(p Point, s Shape, val float64) Point {
	anchor := s.Anchor()
	axis := s.Axis()
	rel := p.Sub(anchor)
	rx, ry := radialComponents(rel, axis)
	return combineAxial(anchor, axis, val, rx, ry)
}
