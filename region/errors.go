package region

import "fmt"

// BuildError reports a fatal failure of the region graph builder (§7
// GeometryInvalid). It names the offending region by label and index and
// the build phase, per §7's user-visible failure requirement.
type BuildError struct {
	Phase        string
	RegionLabel  string
	RegionIndex  int
	Reason       string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("region build failed at phase %q for region %q (index %d): %s",
		e.Phase, e.RegionLabel, e.RegionIndex, e.Reason)
}
