package geom

// Reflect computes the post-reflection endpoint for a molecule whose step
// toward the target point stepVec hit face at current (the intersection
// point): it returns the mirror image of stepVec across the surface at
// current. For a box/rectangle, it mirrors
// across the hit plane. For a sphere, it mirrors across the tangent at the
// intersection point using new = current - 2*((current-P)._n)*n, where
// n = (P-center)/R. For a cylinder mantle, the same formula is applied in
// the 2D cross-section while the axial component is preserved; for the end
// caps, reflection is across the cap plane.
func Reflect(old, stepVec Point, current Point, s Shape, face Face, reflectInside bool) Point {
	switch face {
	case FaceXLo, FaceXHi:
		return mirrorAxis(stepVec, current, AxisX)
	case FaceYLo, FaceYHi:
		return mirrorAxis(stepVec, current, AxisY)
	case FaceZLo, FaceZHi:
		return mirrorAxis(stepVec, current, AxisZ)
	case FaceSphere:
		return mirrorSphere(stepVec, current, s.Center(), s.Radius())
	case FaceCylMantle:
		return mirrorCylinderMantle(stepVec, current, s)
	case FaceCylCapLo:
		return mirrorCapAxis(stepVec, s, 0)
	case FaceCylCapHi:
		return mirrorCapAxis(stepVec, s, s.Length())
	default:
		return stepVec
	}
}

// mirrorAxis mirrors target across the plane through current perpendicular
// to axis.
func mirrorAxis(target, current Point, axis Axis) Point {
	switch axis {
	case AxisX:
		return Point{2*current.X - target.X, target.Y, target.Z}
	case AxisY:
		return Point{target.X, 2*current.Y - target.Y, target.Z}
	default:
		return Point{target.X, target.Y, 2*current.Z - target.Z}
	}
}

func mirrorCapAxis(target Point, s Shape, axialOffset float64) Point {
	return mirrorAtAxisValue(target, s.Anchor(), s.Axis(), axialOffset)
}

func mirrorAtAxisValue(target Point, anchor Point, axis Axis, planeLocal float64) Point {
	switch axis {
	case AxisX:
		plane := anchor.X + planeLocal
		return Point{2*plane - target.X, target.Y, target.Z}
	case AxisY:
		plane := anchor.Y + planeLocal
		return Point{target.X, 2*plane - target.Y, target.Z}
	default:
		plane := anchor.Z + planeLocal
		return Point{target.X, target.Y, 2*plane - target.Z}
	}
}

// mirrorSphere mirrors target across the tangent plane of the sphere at
// intersection point current, using n = (current-center)/R.
func mirrorSphere(target, current, center Point, radius float64) Point {
	n := current.Sub(center)
	if radius > 0 {
		n = n.Scale(1 / radius)
	}
	delta := target.Sub(current)
	proj := delta.Dot(n)
	reflected := delta.Sub(n.Scale(2 * proj))
	return current.Add(reflected)
}

// mirrorCylinderMantle applies the sphere formula in the 2D cross-section
// while preserving the axial component.
func mirrorCylinderMantle(target, current Point, s Shape) Point {
	axis := s.Axis()
	anchor := s.Anchor()

	tx, ty := radialComponents(target.Sub(anchor), axis)
	cx, cy := radialComponents(current.Sub(anchor), axis)
	r := s.Radius()
	nx, ny := cx, cy
	if r > 0 {
		nx, ny = cx/r, cy/r
	}
	dx, dy := tx-cx, ty-cy
	proj := dx*nx + dy*ny
	rx := dx - 2*proj*nx
	ry := dy - 2*proj*ny
	newRadialX, newRadialY := cx+rx, cy+ry

	axialTarget := axisComponent(target.Sub(anchor), axis)
	return combineAxial(anchor, axis, axialTarget, newRadialX, newRadialY)
}

func combineAxial(anchor Point, axis Axis, axialVal, rx, ry float64) Point {
	switch axis {
	case AxisX:
		return Point{anchor.X + axialVal, anchor.Y + rx, anchor.Z + ry}
	case AxisY:
		return Point{anchor.X + rx, anchor.Y + axialVal, anchor.Z + ry}
	default:
		return Point{anchor.X + rx, anchor.Y + ry, anchor.Z + axialVal}
	}
}
