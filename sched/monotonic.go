package sched

// MonotonicError reports a scheduler invariant violation: popped event
// times must be non-decreasing (§8 Universal invariants (iii)).
type MonotonicError struct {
	Prev, Got float64
}

func (e *MonotonicError) Error() string {
	return "sched: popped event time went backwards"
}

// Guard wraps a Queue and enforces the non-decreasing pop-time invariant,
// within a small numerical tolerance.
type Guard struct {
	q       *Queue
	last    float64
	hasLast bool
	tol     float64
}

// NewGuard wraps q with a monotonicity check using the given tolerance.
func NewGuard(q *Queue, tol float64) *Guard {
	return &Guard{q: q, tol: tol}
}

// Pop pops the next event, checking it is not earlier than the previous
// popped event by more than the tolerance.
func (g *Guard) Pop() (Event, bool, error) {
	e, ok := g.q.Pop()
	if !ok {
		return Event{}, false, nil
	}
	if g.hasLast && e.Time < g.last-g.tol {
		return e, true, &MonotonicError{Prev: g.last, Got: e.Time}
	}
	g.last = e.Time
	g.hasLast = true
	return e, true, nil
}

// Push delegates to the wrapped Queue.
func (g *Guard) Push(e Event) { g.q.Push(e) }

// Len delegates to the wrapped Queue.
func (g *Guard) Len() int { return g.q.Len() }
