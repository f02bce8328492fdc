package timers

import (
	"testing"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/events"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(ms int) { c.t = c.t.Add(time.Duration(ms) * time.Millisecond) }

func setup() (*Service, *events.Queue, *fakeClock) {
	q := events.NewQueue(16)
	c := &fakeClock{t: time.Unix(1000, 0)}
	return New(q, c.now), q, c
}

func TestStartAndExpire(t *testing.T) {
	s, q, c := setup()
	s.Start(Rotate, 100)
	if !s.IsActive(Rotate) {
		t.Fatalf("Timer should be active after Start")
	}
	c.advance(99)
	s.Tick()
	if q.Len() != 0 {
		t.Fatalf("Timer expired early")
	}
	c.advance(1)
	s.Tick()
	evs := q.Drain()
	if len(evs) != 1 || !Expired(evs[0], Rotate) {
		t.Fatalf("Expected rotate timeout, got %v", evs)
	}
	if s.IsActive(Rotate) {
		t.Fatalf("Timer should be inactive after expiring")
	}
	if !s.IsCurrent(evs[0]) {
		t.Fatalf("Fresh timeout should be current")
	}
}

func TestStaleTimeout(t *testing.T) {
	s, q, c := setup()
	s.Start(Check, 10)
	c.advance(10)
	s.Tick()
	ev := q.Drain()[0]

	// Restarted before the timeout was dispatched.
	s.Start(Check, 100)
	if s.IsCurrent(ev) {
		t.Fatalf("Timeout from before the restart should be stale")
	}

	s.Stop(Check)
	s.Start(Obs, 5)
	c.advance(5)
	s.Tick()
	ev = q.Drain()[0]
	s.Stop(Obs)
	if s.IsCurrent(ev) {
		t.Fatalf("Timeout of a stopped timer should be stale")
	}
}

func TestStop(t *testing.T) {
	s, q, c := setup()
	s.Start(Drive, 10)
	s.Stop(Drive)
	c.advance(20)
	s.Tick()
	if q.Len() != 0 || s.IsActive(Drive) {
		t.Fatalf("Stopped timer shouldn't fire")
	}
}

func TestSuspendResume(t *testing.T) {
	s, q, c := setup()
	s.Start(Drive, 300)
	s.Start(Check, 100)
	s.Start(DRS, 10)
	c.advance(40)

	p := s.Suspend(DRS)
	if len(p) != 2 {
		t.Fatalf("Expected two suspended timers, got %v", p)
	}
	if p[0] != (Pending{ID: Drive, MS: 260}) || p[1] != (Pending{ID: Check, MS: 60}) {
		t.Fatalf("Unexpected pending timers %v", p)
	}
	if s.IsActive(Drive) || s.IsActive(Check) || !s.IsActive(DRS) {
		t.Fatalf("Suspend should stop everything except DRS")
	}

	c.advance(1000)
	s.Resume(p)
	if !s.IsActive(Drive) || !s.IsActive(Check) {
		t.Fatalf("Resume should restart suspended timers")
	}
	for id := ID(0); id < numTimers; id++ {
		if id != Drive && id != Check && id != DRS && s.IsActive(id) {
			t.Errorf("Unexpected active timer %v", id)
		}
	}
	q.Drain()
	c.advance(60)
	s.Tick()
	var sawCheck bool
	for _, ev := range q.Drain() {
		if Expired(ev, Drive) {
			t.Fatalf("Drive timer should still have 200ms to run")
		}
		sawCheck = sawCheck || Expired(ev, Check)
	}
	if !sawCheck {
		t.Fatalf("Expected check timer to expire with its remaining time")
	}
}

func TestIDString(t *testing.T) {
	if GiveUp.String() != "GIVE_UP" {
		t.Errorf("Unexpected name %q", GiveUp.String())
	}
}
