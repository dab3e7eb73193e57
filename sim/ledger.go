// Package sim owns the per-realization aggregate: the region graph,
// compiled reactions, molecule/count stores, PRNG, scheduler, and actor
// observation lists. It wires the geometry, chem, micro, meso, and actor
// packages into one init-then-run-then-drop realization (§9 Global
// mutable state).
package sim

// Ledger accounts for every molecule count change so that conservation
// can be checked against the universal invariant of §8 (i): total count
// is conserved except for explicit production/consumption/absorption/
// actor release channels, each tracked separately here.
type Ledger struct {
	Produced  []int64 // per molecule type, reaction production (any order)
	Consumed  []int64 // per molecule type, order-1/2 reaction consumption
	Absorbed  []int64 // per molecule type, absorbing-surface deletion
	Released  []int64 // per molecule type, active-actor release
	Removed   []int64 // per molecule type, any other explicit removal
}

// NewLedger allocates a zeroed ledger for numTypes molecule types.
func NewLedger(numTypes int) *Ledger {
	return &Ledger{
		Produced: make([]int64, numTypes),
		Consumed: make([]int64, numTypes),
		Absorbed: make([]int64, numTypes),
		Released: make([]int64, numTypes),
		Removed:  make([]int64, numTypes),
	}
}

// NetChange returns Produced+Released-Consumed-Absorbed-Removed per type,
// the expected delta in total system count.
func (l *Ledger) NetChange(moleculeType int) int64 {
	return l.Produced[moleculeType] + l.Released[moleculeType] -
		l.Consumed[moleculeType] - l.Absorbed[moleculeType] - l.Removed[moleculeType]
}
