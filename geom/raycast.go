package geom

import "math"

// Face identifies which surface of a shape a ray hit, for use by Reflect.
type Face int

const (
	FaceNone Face = iota
	FaceXLo
	FaceXHi
	FaceYLo
	FaceYHi
	FaceZLo
	FaceZHi
	FaceSphere
	FaceCylMantle
	FaceCylCapLo
	FaceCylCapHi
)

// Hit describes the result of a ray-vs-shape query.
type Hit struct {
	Found    bool
	Dist     float64
	Face     Face
	Point    Point
}

// LineHitsBoundary tests the ray (p, dir, length) against shape s and
// returns the closest positive hit with Dist <= length. inside indicates
// whether p is known to be inside s (used by the sphere case to choose the
// entry or exit root).
func LineHitsBoundary(p Point, dir Vec, length float64, s Shape, inside bool, distErr float64) (Hit, error) {
	switch s.Kind {
	case Rectangle, Box:
		return lineHitsBox(p, dir, length, s, distErr), nil
	case Sphere:
		return lineHitsSphere(p, dir, length, s, inside, distErr), nil
	case Cylinder:
		return lineHitsCylinder(p, dir, length, s, inside, distErr)
	default:
		return Hit{}, &ErrUnsupportedShapePair{Op: "LineHitsBoundary", A: s.Kind}
	}
}

// lineHitsBox tests all six faces and returns the closest positive d<=length.
func lineHitsBox(p Point, dir Vec, length float64, s Shape, distErr float64) Hit {
	lo, hi := s.Lo(), s.Hi()
	best := Hit{}
	tryAxis := func(d, loV, hiV float64, faceLo, faceHi Face) {
		if nearZero(d, distErr) {
			return
		}
		for _, pair := range [2]struct {
			bound float64
			face  Face
		}{{loV, faceLo}, {hiV, faceHi}} {
			t := (pair.bound - axisScalar(p, faceAxis(pair.face))) / d
			if t <= distErr || t > length+distErr {
				continue
			}
			hitP := p.Add(dir.Scale(t))
			if !withinOtherAxes(hitP, faceAxis(pair.face), lo, hi, distErr) {
				continue
			}
			if !best.Found || t < best.Dist {
				best = Hit{Found: true, Dist: t, Face: pair.face, Point: hitP}
			}
		}
	}
	tryAxis(dir.X, lo.X, hi.X, FaceXLo, FaceXHi)
	tryAxis(dir.Y, lo.Y, hi.Y, FaceYLo, FaceYHi)
	tryAxis(dir.Z, lo.Z, hi.Z, FaceZLo, FaceZHi)
	return best
}

func faceAxis(f Face) Axis {
	switch f {
	case FaceXLo, FaceXHi:
		return AxisX
	case FaceYLo, FaceYHi:
		return AxisY
	default:
		return AxisZ
	}
}

func axisScalar(p Point, a Axis) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

func withinOtherAxes(p Point, skip Axis, lo, hi Point, distErr float64) bool {
	ok := true
	if skip != AxisX {
		ok = ok && p.X >= lo.X-distErr && p.X <= hi.X+distErr
	}
	if skip != AxisY {
		ok = ok && p.Y >= lo.Y-distErr && p.Y <= hi.Y+distErr
	}
	if skip != AxisZ {
		ok = ok && p.Z >= lo.Z-distErr && p.Z <= hi.Z+distErr
	}
	return ok
}

// lineHitsSphere solves the line-sphere quadratic and picks the entry (if
// outside) or exit (if inside) root.
func lineHitsSphere(p Point, dir Vec, length float64, s Shape, inside bool, distErr float64) Hit {
	c := s.Center()
	r := s.Radius()
	oc := p.Sub(c)
	a := dir.Dot(dir)
	if nearZero(a, distErr) {
		return Hit{}
	}
	b := 2 * oc.Dot(dir)
	cc := oc.Dot(oc) - r*r
	disc := b*b - 4*a*cc
	if disc < 0 {
		return Hit{}
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	var t float64
	if inside {
		t = t1
	} else {
		t = t0
		if t < -distErr {
			t = t1
		}
	}
	if t < -distErr || t > length+distErr {
		return Hit{}
	}
	if t < 0 {
		t = 0
	}
	hitP := p.Add(dir.Scale(t))
	return Hit{Found: true, Dist: t, Face: FaceSphere, Point: hitP}
}

// lineHitsCylinder tests the two circular caps and the curved mantle
// separately. A zero-length cylinder degenerates to just the disk.
func lineHitsCylinder(p Point, dir Vec, length float64, s Shape, inside bool, distErr float64) (Hit, error) {
	if s.Length() <= distErr {
		return lineHitsDisk(p, dir, length, s, distErr), nil
	}
	best := Hit{}
	consider := func(h Hit) {
		if h.Found && (!best.Found || h.Dist < best.Dist) {
			best = h
		}
	}
	consider(lineHitsCap(p, dir, length, s, 0, FaceCylCapLo, distErr))
	consider(lineHitsCap(p, dir, length, s, s.Length(), FaceCylCapHi, distErr))
	mantle, err := lineHitsMantle(p, dir, length, s, inside, distErr)
	if err != nil {
		return Hit{}, err
	}
	consider(mantle)
	return best, nil
}

func lineHitsDisk(p Point, dir Vec, length float64, s Shape, distErr float64) Hit {
	return lineHitsCap(p, dir, length, s, 0, FaceCylCapLo, distErr)
}

func lineHitsCap(p Point, dir Vec, length float64, s Shape, axialOffset float64, face Face, distErr float64) Hit {
	axis := s.Axis()
	anchor := s.Anchor()
	d := axisComponent(dir, axis)
	if nearZero(d, distErr) {
		return Hit{}
	}
	p0 := axisComponent(p.Sub(anchor), axis)
	t := (axialOffset - p0) / d
	if t <= distErr || t > length+distErr {
		return Hit{}
	}
	hitP := p.Add(dir.Scale(t))
	rx, ry := radialComponents(hitP.Sub(anchor), axis)
	if rx*rx+ry*ry > s.Radius()*s.Radius()+distErr {
		return Hit{}
	}
	return Hit{Found: true, Dist: t, Face: face, Point: hitP}
}

func lineHitsMantle(p Point, dir Vec, length float64, s Shape, inside bool, distErr float64) (Hit, error) {
	axis := s.Axis()
	anchor := s.Anchor()
	rel := p.Sub(anchor)
	px, py := radialComponents(rel, axis)
	dx, dy := radialComponents(dir, axis)
	r := s.Radius()

	a := dx*dx + dy*dy
	if nearZero(a, distErr) {
		return Hit{}, nil
	}
	b := 2 * (px*dx + py*dy)
	c := px*px + py*py - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, nil
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	var t float64
	if inside {
		t = t1
	} else {
		t = t0
		if t < -distErr {
			t = t1
		}
	}
	if t < -distErr || t > length+distErr {
		return Hit{}, nil
	}
	if t < 0 {
		t = 0
	}
	hitP := p.Add(dir.Scale(t))
	axialPos := axisComponent(hitP.Sub(anchor), axis)
	if axialPos < -distErr || axialPos > s.Length()+distErr {
		return Hit{}, nil
	}
	return Hit{Found: true, Dist: t, Face: FaceCylMantle, Point: hitP}, nil
}
