package region

import (
	"log/slog"
	"math"
	"sort"

	"github.com/TobiasSchwering/AcCoRD/geom"
)

// Graph is the static region/subvolume graph for one realization (§4.B
// output). It is built once and is immutable for the realization's
// duration (§3 Lifecycle).
type Graph struct {
	Regions    []*Region
	Subvolumes []*Subvolume
	NumMeso    int
	BaseSize   float64
	DistErr    float64
	NumTypes   int
}

// RegionByLabel looks up a region by its label.
func (g *Graph) RegionByLabel(label string) (*Region, bool) {
	for _, r := range g.Regions {
		if r.Label == label {
			return r, true
		}
	}
	return nil, false
}

// Build partitions region specs into subvolumes and resolves neighbor
// adjacency (§4.B). diffCoeff holds one diffusion coefficient per molecule
// type; its length sets the number of types, which sizes per-subvolume
// count vectors and diffusion-rate rows.
func Build(specs []Spec, baseSize float64, distErr float64, diffCoeff []float64) (*Graph, error) {
	g := &Graph{BaseSize: baseSize, DistErr: distErr, NumTypes: len(diffCoeff)}

	if err := resolveRegions(g, specs); err != nil {
		return nil, err
	}
	if err := resolveParentage(g); err != nil {
		return nil, err
	}
	if err := realizeGrids(g); err != nil {
		return nil, err
	}
	if err := buildInternalNeighbors(g); err != nil {
		return nil, err
	}
	if err := buildCrossRegionNeighbors(g); err != nil {
		return nil, err
	}
	if err := computeMesoLayout(g); err != nil {
		return nil, err
	}
	if err := computeDiffusionRates(g, diffCoeff); err != nil {
		return nil, err
	}
	slog.Info("region_graph_built",
		"region_count", len(g.Regions),
		"subvolume_count", len(g.Subvolumes),
		"meso_count", g.NumMeso,
	)
	return g, nil
}

func resolveRegions(g *Graph, specs []Spec) error {
	for i, spec := range specs {
		r := &Region{ID: i, Spec: spec, ParentID: -1}
		if r.Shape.Kind == geom.Sphere || r.Shape.Kind == geom.Cylinder {
			r.IsMicroscopic = true // §3: cylinders and spheres force true
		}
		if r.Shape.Kind == geom.Rectangle {
			r.Plane = r.Shape.ZeroAxis()
		}
		if r.Shape.Kind == geom.Cylinder {
			r.Plane = r.Shape.Axis()
		}
		r.Volume, r.Area, r.Length = measureRegion(r)
		g.Regions = append(g.Regions, r)
	}
	return nil
}

// measureRegion computes the volume/area/length metrics the chem-rxn
// compiler needs, depending on the region's actual dimensionality.
func measureRegion(r *Region) (volume, area, length float64) {
	switch r.Shape.Kind {
	case geom.Box:
		lo, hi := r.Shape.Lo(), r.Shape.Hi()
		dx, dy, dz := hi.X-lo.X, hi.Y-lo.Y, hi.Z-lo.Z
		return dx * dy * dz, 0, 0
	case geom.Rectangle:
		lo, hi := r.Shape.Lo(), r.Shape.Hi()
		dx, dy, dz := hi.X-lo.X, hi.Y-lo.Y, hi.Z-lo.Z
		switch r.Plane {
		case geom.AxisX:
			return 0, dy * dz, 0
		case geom.AxisY:
			return 0, dx * dz, 0
		default:
			return 0, dx * dy, 0
		}
	case geom.Sphere:
		rad := r.Shape.Radius()
		// Open Question resolution (§9): use 4.0/3.0, never integer division.
		return 4.0 / 3.0 * math.Pi * rad * rad * rad, 4 * math.Pi * rad * rad, 0
	case geom.Cylinder:
		rad, length := r.Shape.Radius(), r.Shape.Length()
		return math.Pi * rad * rad * length, 2 * math.Pi * rad * length, length
	default:
		return 0, 0, 0
	}
}

func resolveParentage(g *Graph) error {
	byLabel := map[string]*Region{}
	for _, r := range g.Regions {
		if r.Label != "" {
			byLabel[r.Label] = r
		}
	}
	for _, r := range g.Regions {
		if r.ParentLabel == "" {
			continue
		}
		parent, ok := byLabel[r.ParentLabel]
		if !ok {
			return &BuildError{Phase: "parentage", RegionLabel: r.Label, RegionIndex: r.ID,
				Reason: "parent label \"" + r.ParentLabel + "\" not found"}
		}
		if !geom.Surrounds(parent.Shape, r.Shape, g.DistErr) {
			return &BuildError{Phase: "parentage", RegionLabel: r.Label, RegionIndex: r.ID,
				Reason: "parent does not surround child within clearance"}
		}
		r.ParentID = parent.ID
		parent.ChildrenIDs = append(parent.ChildrenIDs, r.ID)
	}
	return nil
}

// realizeGrids enumerates subvolumes for every region: the product grid for
// rectangular regions, a single implicit subvolume for round regions.
func realizeGrids(g *Graph) error {
	for _, r := range g.Regions {
		if r.IsRound() {
			r.SubvolumeStart = len(g.Subvolumes)
			r.SubvolumeCount = 1
			g.Subvolumes = append(g.Subvolumes, &Subvolume{
				ID: len(g.Subvolumes), RegionID: r.ID, MesoID: MesoSentinel,
			})
			continue
		}

		nx, ny, nz := r.NX, r.NY, r.NZ
		if nx < 1 {
			nx = 1
		}
		if ny < 1 {
			ny = 1
		}
		if nz < 1 {
			nz = 1
		}
		if nx*ny*nz < 1 {
			return &BuildError{Phase: "grid", RegionLabel: r.Label, RegionIndex: r.ID,
				Reason: "nx*ny*nz must be >= 1"}
		}
		r.BaseSize = g.BaseSize
		r.SubvolumeStart = len(g.Subvolumes)

		r.grid = make([][][]int, nx)
		for ix := 0; ix < nx; ix++ {
			r.grid[ix] = make([][]int, ny)
			for iy := 0; iy < ny; iy++ {
				r.grid[ix][iy] = make([]int, nz)
				for iz := 0; iz < nz; iz++ {
					local := len(g.Subvolumes) - r.SubvolumeStart
					r.grid[ix][iy][iz] = local
					g.Subvolumes = append(g.Subvolumes, &Subvolume{
						ID: len(g.Subvolumes), RegionID: r.ID, MesoID: MesoSentinel,
						IX: ix, IY: iy, IZ: iz,
					})
				}
			}
		}
		r.SubvolumeCount = len(g.Subvolumes) - r.SubvolumeStart
	}
	return nil
}

// buildInternalNeighbors wires the six (or fewer, on boundaries)
// face-adjacent grid cells inside each rectangular region.
func buildInternalNeighbors(g *Graph) error {
	for _, r := range g.Regions {
		if r.IsRound() {
			continue
		}
		nx, ny, nz := len(r.grid), 0, 0
		if nx > 0 {
			ny = len(r.grid[0])
		}
		if ny > 0 {
			nz = len(r.grid[0][0])
		}
		for ix := 0; ix < nx; ix++ {
			for iy := 0; iy < ny; iy++ {
				for iz := 0; iz < nz; iz++ {
					localIdx := r.grid[ix][iy][iz]
					sub := g.Subvolumes[r.SubvolumeStart+localIdx]
					boundary := false
					link := func(jx, jy, jz int, dir int) {
						if jx < 0 || jy < 0 || jz < 0 || jx >= nx || jy >= ny || jz >= nz {
							boundary = true
							return
						}
						nIdx := r.grid[jx][jy][jz]
						neighbor := g.Subvolumes[r.SubvolumeStart+nIdx]
						faceArea := faceAreaOf(r, dir)
						sub.Neighbors = append(sub.Neighbors, NeighborLink{
							NeighborID: neighbor.ID, Direction: dir, FaceArea: faceArea,
						})
					}
					link(ix-1, iy, iz, int(geom.Left))
					link(ix+1, iy, iz, int(geom.Right))
					link(ix, iy-1, iz, int(geom.Down))
					link(ix, iy+1, iz, int(geom.Up))
					link(ix, iy, iz-1, int(geom.In))
					link(ix, iy, iz+1, int(geom.Out))
					sub.IsBoundary = boundary
				}
			}
		}
	}
	return nil
}

func faceAreaOf(r *Region, dir int) float64 {
	s := r.ActualSubSize()
	return s * s
}

// buildCrossRegionNeighbors scans boundary subvolumes of adjacent region
// pairs and wires neighbor links across the region boundary (§4.B step 4).
func buildCrossRegionNeighbors(g *Graph) error {
	for i := 0; i < len(g.Regions); i++ {
		for j := i + 1; j < len(g.Regions); j++ {
			a, b := g.Regions[i], g.Regions[j]
			if err := wireCrossRegion(g, a, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func wireCrossRegion(g *Graph, a, b *Region) error {
	switch {
	case !a.IsRound() && !b.IsRound():
		return wireRectRect(g, a, b)
	case a.IsRound() && !b.IsRound():
		return wireRoundRect(g, a, b)
	case !a.IsRound() && b.IsRound():
		return wireRoundRect(g, b, a)
	default:
		return wireRoundRound(g, a, b)
	}
}

func wireRectRect(g *Graph, a, b *Region) error {
	dir, ok, err := geom.Adjacent(a.Shape, b.Shape, g.DistErr)
	if err != nil {
		// Differing plane/orientation: not adjacent, not an error for the
		// builder (many region pairs simply do not touch).
		return nil
	}
	if !ok {
		return nil
	}
	// Walk a's boundary subvolumes on the `dir` face, pairing each with the
	// overlapping subvolume of b on the opposite face.
	for li := 0; li < a.SubvolumeCount; li++ {
		sa := g.Subvolumes[a.SubvolumeStart+li]
		if !onFace(a, sa, dir) {
			continue
		}
		worldA := subvolumeWorldBox(a, sa)
		for lj := 0; lj < b.SubvolumeCount; lj++ {
			sb := g.Subvolumes[b.SubvolumeStart+lj]
			if !onFace(b, sb, dir.Opposite()) {
				continue
			}
			worldB := subvolumeWorldBox(b, sb)
			area := sharedFaceArea(worldA, worldB, dir)
			if area <= g.DistErr {
				continue
			}
			linkCross(sa, sb, int(dir), area, b.IsMicroscopic)
			linkCross(sb, sa, int(dir.Opposite()), area, a.IsMicroscopic)
		}
	}
	return nil
}

func linkCross(from, to *Subvolume, dir int, area float64, toIsMicro bool) {
	from.Neighbors = append(from.Neighbors, NeighborLink{
		NeighborID: to.ID, Direction: dir, FaceArea: area,
		CrossRegion: true, NeighborIsMicro: toIsMicro,
	})
	from.IsBoundary = true
}

func onFace(r *Region, s *Subvolume, dir geom.Direction) bool {
	nx, ny, nz := len(r.grid), 0, 0
	if nx > 0 {
		ny = len(r.grid[0])
	}
	if ny > 0 {
		nz = len(r.grid[0][0])
	}
	switch dir {
	case geom.Left:
		return s.IX == 0
	case geom.Right:
		return s.IX == nx-1
	case geom.Down:
		return s.IY == 0
	case geom.Up:
		return s.IY == ny-1
	case geom.In:
		return s.IZ == 0
	case geom.Out:
		return s.IZ == nz-1
	default:
		return false
	}
}

func subvolumeWorldBox(r *Region, s *Subvolume) geom.Shape {
	lo := r.Shape.Lo()
	size := r.ActualSubSize()
	origin := geom.Point{
		X: lo.X + float64(s.IX)*size,
		Y: lo.Y + float64(s.IY)*size,
		Z: lo.Z + float64(s.IZ)*size,
	}
	hi := geom.Point{X: origin.X + size, Y: origin.Y + size, Z: origin.Z + size}
	return geom.NewBox(origin, hi)
}

// sharedFaceArea computes the overlap area of the two subvolumes' faces
// perpendicular to dir.
func sharedFaceArea(a, b geom.Shape, dir geom.Direction) float64 {
	aLo, aHi := a.Lo(), a.Hi()
	bLo, bHi := b.Lo(), b.Hi()
	overlap1D := func(lo1, hi1, lo2, hi2 float64) float64 {
		lo := maxf(lo1, lo2)
		hi := minf(hi1, hi2)
		if hi <= lo {
			return 0
		}
		return hi - lo
	}
	switch dir {
	case geom.Left, geom.Right:
		return overlap1D(aLo.Y, aHi.Y, bLo.Y, bHi.Y) * overlap1D(aLo.Z, aHi.Z, bLo.Z, bHi.Z)
	case geom.Down, geom.Up:
		return overlap1D(aLo.X, aHi.X, bLo.X, bHi.X) * overlap1D(aLo.Z, aHi.Z, bLo.Z, bHi.Z)
	default:
		return overlap1D(aLo.X, aHi.X, bLo.X, bHi.X) * overlap1D(aLo.Y, aHi.Y, bLo.Y, bHi.Y)
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// wireRoundRect treats the spherical/cylindrical region as a single
// subvolume: the rectangular region's boundary subvolumes whose face
// intersects the curved region become neighbors, with the effective shared
// area being the portion of that rectangular face lying within the curved
// region's cross-section (§4.B step 4).
func wireRoundRect(g *Graph, round, rect *Region) error {
	if !geom.Surrounds(rect.Shape, round.Shape, g.DistErr) {
		isect, err := geom.Intersects(round.Shape, rect.Shape, g.DistErr)
		if err != nil || !isect {
			return nil
		}
	}
	roundSub := g.Subvolumes[round.SubvolumeStart]
	for li := 0; li < rect.SubvolumeCount; li++ {
		s := g.Subvolumes[rect.SubvolumeStart+li]
		box := subvolumeWorldBox(rect, s)
		isect, err := geom.Intersects(round.Shape, box, g.DistErr)
		if err != nil {
			continue
		}
		if !isect && !geom.Surrounds(box, round.Shape, g.DistErr) && !geom.Surrounds(round.Shape, box, g.DistErr) {
			continue
		}
		area := curvedFaceOverlapArea(round, rect, box)
		if area <= g.DistErr {
			continue
		}
		linkCross(s, roundSub, int(geom.In), area, round.IsMicroscopic)
		linkCross(roundSub, s, int(geom.Out), area, rect.IsMicroscopic)
	}
	return nil
}

// curvedFaceOverlapArea approximates the effective shared area between a
// rectangular subvolume face and a curved (sphere/cylinder) region as the
// smaller of the subvolume's own face area and the curved region's
// cross-sectional/surface area, which is exact when one wholly contains
// the other and a reasonable area-weighting otherwise.
func curvedFaceOverlapArea(round, rect *Region, box geom.Shape) float64 {
	subArea := rect.ActualSubSize() * rect.ActualSubSize()
	var curvedArea float64
	switch round.Shape.Kind {
	case geom.Sphere:
		r := round.Shape.Radius()
		curvedArea = math.Pi * r * r
	case geom.Cylinder:
		r := round.Shape.Radius()
		curvedArea = math.Pi * r * r
	}
	if curvedArea < subArea {
		return curvedArea
	}
	return subArea
}

func wireRoundRound(g *Graph, a, b *Region) error {
	if a.Shape.Kind != geom.Cylinder || b.Shape.Kind != geom.Cylinder {
		return nil
	}
	dir, ok, err := geom.Adjacent(a.Shape, b.Shape, g.DistErr)
	if err != nil || !ok {
		return nil
	}
	sa := g.Subvolumes[a.SubvolumeStart]
	sb := g.Subvolumes[b.SubvolumeStart]
	r := a.Shape.Radius()
	if b.Shape.Radius() < r {
		r = b.Shape.Radius()
	}
	area := math.Pi * r * r
	linkCross(sa, sb, int(dir), area, b.IsMicroscopic)
	linkCross(sb, sa, int(dir.Opposite()), area, a.IsMicroscopic)
	return nil
}

// computeMesoLayout assigns MesoID for every mesoscopic subvolume in
// declaration order and records the global count.
func computeMesoLayout(g *Graph) error {
	sorted := make([]*Region, len(g.Regions))
	copy(sorted, g.Regions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	meso := 0
	for _, r := range sorted {
		if r.IsMicroscopic {
			continue
		}
		for li := 0; li < r.SubvolumeCount; li++ {
			s := g.Subvolumes[r.SubvolumeStart+li]
			s.MesoID = meso
			s.Counts = make([]int64, g.NumTypes)
			meso++
		}
	}
	g.NumMeso = meso
	return nil
}

// computeDiffusionRates precomputes D/h^2 (or area-corrected) per
// mesoscopic subvolume, neighbor, and molecule type (§4.B step 5).
func computeDiffusionRates(g *Graph, diffCoeff []float64) error {
	for _, s := range g.Subvolumes {
		if s.IsMicro() {
			continue
		}
		r := g.Regions[s.RegionID]
		h := r.ActualSubSize()
		if h <= 0 {
			h = g.BaseSize
		}
		s.DiffusionRates = make([][]float64, len(s.Neighbors))
		for ni, n := range s.Neighbors {
			rates := make([]float64, g.NumTypes)
			for t, d := range diffCoeff {
				if n.CrossRegion && n.FaceArea > 0 {
					subArea := h * h
					rates[t] = d / (h * h) * (n.FaceArea / subArea)
				} else {
					rates[t] = d / (h * h)
				}
			}
			s.DiffusionRates[ni] = rates
		}
	}
	return nil
}
