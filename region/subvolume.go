package region

// MesoSentinel marks a subvolume that belongs to a microscopic region (it
// has no entry in the flat mesoscopic array).
const MesoSentinel = -1

// NeighborLink records one neighbor of a subvolume: the neighbor's global
// ID, the direction of the shared face (from this subvolume's perspective),
// and the shared face area (used for cross-region rate correction, §4.B
// step 4-5).
type NeighborLink struct {
	NeighborID int
	Direction  int // geom.Direction, kept as int to avoid import cycle pressure
	FaceArea   float64

	// CrossRegion is true when NeighborID belongs to a different region
	// than the owning subvolume.
	CrossRegion bool

	// NeighborIsMicro records the regime of the neighbor, needed by the meso
	// engine to decide whether diffusion delivers an integer count or
	// inserts a molecule into the micro recent list (§4.E).
	NeighborIsMicro bool
}

// Subvolume is the per-subvolume record of §3. Molecule positions for
// microscopic subvolumes are NOT stored here: microscopic molecules are
// owned by the Region's steady/recent lists (§3 Molecule, §9 Ownership
// graph), keyed by (region, type), not by subvolume. A Subvolume only
// carries molecule counts when it is mesoscopic.
type Subvolume struct {
	ID       int
	RegionID int
	MesoID   int // index into the flat mesoscopic array, or MesoSentinel

	// Grid coordinates within the owning region (rectangular regions
	// only); round regions always have (IX,IY,IZ) = (0,0,0).
	IX, IY, IZ int

	Neighbors []NeighborLink

	IsBoundary bool

	// Counts holds molecule counts per type; nil for microscopic
	// subvolumes.
	Counts []int64

	// DiffusionRates[neighborIndex][moleculeType] is the precomputed
	// transition rate D/h^2 (area-corrected for cross-region links),
	// aligned by index with Neighbors. It is filled for every mesoscopic
	// subvolume, interior and boundary alike, and is nil for microscopic
	// subvolumes.
	DiffusionRates [][]float64
}

// NumNeighbors returns the neighbor count (§3 num_neigh).
func (s *Subvolume) NumNeighbors() int { return len(s.Neighbors) }

// IsMicro reports whether this subvolume belongs to a microscopic region.
func (s *Subvolume) IsMicro() bool { return s.MesoID == MesoSentinel }
