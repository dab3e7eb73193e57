// Package region builds and owns the static region/subvolume graph: the
// partition of regions into subvolumes, their neighbor lists (including
// cross-region neighbors), and the precomputed per-neighbor diffusion
// rates that the mesoscopic engine reads every event.
package region

import (
	"math"

	"github.com/TobiasSchwering/AcCoRD/geom"
)

// Kind classifies a region's role in the simulation.
type Kind uint8

const (
	Normal Kind = iota
	Surface2D
	Surface3D
)

// SurfaceKind further classifies a Surface2D/Surface3D region.
type SurfaceKind uint8

const (
	SurfaceNone SurfaceKind = iota
	Membrane
	Inner
	Outer
)

// FlowFunction selects the time-dependence of cylinder flow velocity.
type FlowFunction uint8

const (
	FlowLinear FlowFunction = iota
	FlowSinus
)

// FlowProfile selects the radial velocity profile inside a cylinder.
type FlowProfile uint8

const (
	FlowUniform FlowProfile = iota
	FlowLaminar
)

// Flow holds the cylinder-only flow/advection parameters of §4.D.1.
type Flow struct {
	Enabled     bool
	Velocity    float64
	Accel       float64
	Function    FlowFunction
	Frequency   float64
	Amplitude   float64
	Profile     FlowProfile
}

// VelocityAt returns the instantaneous centerline velocity v(t) per §4.D.1.
func (f Flow) VelocityAt(t float64) float64 {
	switch f.Function {
	case FlowSinus:
		return f.Velocity + f.Amplitude*sin2pi(f.Frequency*t)
	default:
		return f.Velocity + f.Accel*t
	}
}

// LocalVelocity returns v_local(r,t) for radial distance r given the
// cylinder's radius R and the centerline velocity v(t).
func (f Flow) LocalVelocity(v float64, r, radius float64) float64 {
	if f.Profile == FlowLaminar && radius > 0 {
		frac := r / radius
		return 2 * v * (1 - frac*frac)
	}
	return v
}

func sin2pi(x float64) float64 {
	return math.Sin(2 * math.Pi * x)
}

// Spec holds the user-facing parameters of a region (§3 Region).
type Spec struct {
	Label       string
	ParentLabel string

	Shape geom.Shape

	Kind        Kind
	SurfaceKind SurfaceKind

	IsMicroscopic bool

	// Subvolume grid, rectangular regions only.
	NX, NY, NZ int
	SubSize    float64 // multiplier of the global base size

	Flow Flow

	DT float64 // micro time step, inherited from the global step
}

// Region is the runtime region record: the user Spec plus everything the
// builder computes (plane, nesting, subvolume index range, geometry
// metadata used by the compiler).
type Region struct {
	ID int
	Spec

	// Plane is meaningful for Rectangle/Surface2D regions: which of the
	// three coordinate planes the region lies in.
	Plane geom.Axis

	ParentID    int // -1 if no parent
	ChildrenIDs []int

	// SubvolumeStart/Count index into the graph's flat Subvolumes slice.
	SubvolumeStart int
	SubvolumeCount int

	// Grid lookup for rectangular regions: subID[ix][iy][iz] -> local
	// index within [0, SubvolumeCount).
	grid [][][]int

	// Geometry metadata used by the chem-rxn compiler (§4.C).
	Volume float64
	Area   float64
	Length float64

	// BaseSize is the global subvolume base size this region was built
	// against (rectangular regions only).
	BaseSize float64
}

// ActualSubSize returns sub_size * base_size, the real-world side length of
// one rectangular subvolume in this region.
func (r *Region) ActualSubSize() float64 {
	return r.SubSize * r.BaseSize
}

// LocalIndex returns the within-region subvolume index for grid coordinate
// (ix,iy,iz), or -1 if out of range.
func (r *Region) LocalIndex(ix, iy, iz int) int {
	if ix < 0 || iy < 0 || iz < 0 {
		return -1
	}
	if ix >= len(r.grid) || iy >= len(r.grid[ix]) || iz >= len(r.grid[ix][iy]) {
		return -1
	}
	return r.grid[ix][iy][iz]
}

// IsRound reports whether this region's shape has a single implicit
// subvolume (sphere or cylinder).
func (r *Region) IsRound() bool {
	return r.Shape.Kind == geom.Sphere || r.Shape.Kind == geom.Cylinder
}

// LocalIndexForPoint returns the within-region subvolume index that
// contains pos, or -1 if pos falls outside the region's grid. Round
// regions have exactly one implicit subvolume (index 0) whenever they
// have been realized at all.
func (r *Region) LocalIndexForPoint(pos geom.Point) int {
	if r.IsRound() {
		if r.SubvolumeCount > 0 {
			return 0
		}
		return -1
	}
	size := r.ActualSubSize()
	if size <= 0 {
		return -1
	}
	lo, hi := r.Shape.Lo(), r.Shape.Hi()
	cell := func(p, lo, hi float64, n int) int {
		i := int((p - lo) / size)
		if i == n && p <= hi+size*1e-9 {
			i = n - 1 // a point on the region's upper face lies in the last cell
		}
		return i
	}
	nx, ny, nz := len(r.grid), 0, 0
	if nx > 0 {
		ny = len(r.grid[0])
	}
	if ny > 0 {
		nz = len(r.grid[0][0])
	}
	return r.LocalIndex(cell(pos.X, lo.X, hi.X, nx), cell(pos.Y, lo.Y, hi.Y, ny), cell(pos.Z, lo.Z, hi.Z, nz))
}
