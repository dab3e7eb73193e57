package sched

import "testing"

func TestQueuePopsInTimeOrder(t *testing.T) {
	q := New()
	q.Push(Event{Time: 3, Kind: KindMeso, ID: 1})
	q.Push(Event{Time: 1, Kind: KindMicro, ID: 2})
	q.Push(Event{Time: 2, Kind: KindActor, ID: 3})

	var times []float64
	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		times = append(times, e.Time)
	}
	want := []float64{1, 2, 3}
	for i, w := range want {
		if times[i] != w {
			t.Errorf("pop %d: expected time %v, got %v", i, w, times[i])
		}
	}
}

func TestQueueTiebreakActorBeforeMicroBeforeMeso(t *testing.T) {
	q := New()
	q.Push(Event{Time: 5, Kind: KindMeso, ID: 1})
	q.Push(Event{Time: 5, Kind: KindActor, ID: 2})
	q.Push(Event{Time: 5, Kind: KindMicro, ID: 3})

	first, _ := q.Pop()
	second, _ := q.Pop()
	third, _ := q.Pop()
	if first.Kind != KindActor || second.Kind != KindMicro || third.Kind != KindMeso {
		t.Errorf("expected order actor, micro, meso; got %v, %v, %v", first.Kind, second.Kind, third.Kind)
	}
}

func TestGuardDetectsTimeGoingBackwards(t *testing.T) {
	q := New()
	q.Push(Event{Time: 5, Kind: KindMicro})
	guard := NewGuard(q, 1e-9)
	if _, _, err := guard.Pop(); err != nil {
		t.Fatal(err)
	}
	q.Push(Event{Time: 1, Kind: KindMicro})
	_, _, err := guard.Pop()
	if err == nil {
		t.Fatal("expected a monotonic violation error")
	}
	if _, ok := err.(*MonotonicError); !ok {
		t.Errorf("expected *MonotonicError, got %T", err)
	}
}
