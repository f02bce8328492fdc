package events

import "testing"

func TestQueueOrderAndOverflow(t *testing.T) {
	q := NewQueue(2)
	if !q.Post(Event{Kind: FlagDropped}) || !q.Post(Event{Kind: AtNextPoint}) {
		t.Fatalf("Posts to a queue with space should succeed")
	}
	if q.Post(Event{Kind: GameOver}) {
		t.Fatalf("Post to a full queue should fail")
	}
	evs := q.Drain()
	if len(evs) != 2 || evs[0].Kind != FlagDropped || evs[1].Kind != AtNextPoint {
		t.Fatalf("Unexpected drain result %v", evs)
	}
	if q.Len() != 0 {
		t.Fatalf("Queue should be empty after drain")
	}
}

func TestKindString(t *testing.T) {
	if DetectedBeacon.String() != "DetectedBeacon" {
		t.Errorf("Unexpected name %q", DetectedBeacon.String())
	}
	if Kind(99).String() != "Kind(99)" {
		t.Errorf("Unexpected name %q", Kind(99).String())
	}
}
