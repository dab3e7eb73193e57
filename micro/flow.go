package micro

import (
	"math"

	"github.com/TobiasSchwering/AcCoRD/geom"
	"github.com/TobiasSchwering/AcCoRD/region"
)

// flowDisplacement returns the additional axial displacement due to
// cylinder flow over dt at position pos within a cylinder region (§4.D.1).
// Radial coordinates are unchanged by flow alone.
func flowDisplacement(r *region.Region, pos geom.Point, t, dt float64) geom.Vec {
	if !r.Flow.Enabled || r.Shape.Kind != geom.Cylinder {
		return geom.Vec{}
	}
	anchor := r.Shape.Anchor()
	axis := r.Shape.Axis()
	radius := r.Shape.Radius()

	rad := radialDistance(pos, anchor, axis)
	v := r.Flow.VelocityAt(t)
	vLocal := r.Flow.LocalVelocity(v, rad, radius)
	disp := vLocal * dt

	switch axis {
	case geom.AxisX:
		return geom.Vec{X: disp}
	case geom.AxisY:
		return geom.Vec{Y: disp}
	default:
		return geom.Vec{Z: disp}
	}
}

func radialDistance(p, anchor geom.Point, axis geom.Axis) float64 {
	d := p.Sub(anchor)
	switch axis {
	case geom.AxisX:
		return math.Hypot(d.Y, d.Z)
	case geom.AxisY:
		return math.Hypot(d.X, d.Z)
	default:
		return math.Hypot(d.X, d.Y)
	}
}
