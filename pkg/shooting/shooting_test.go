package shooting

import (
	"testing"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart/karttest"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

type fakeBeacon struct {
	armed bool
}

func (b *fakeBeacon) Arm()    { b.armed = true }
func (b *fakeBeacon) Disarm() { b.armed = false }

type fakeLauncher struct {
	fired, loaded int
}

func (l *fakeLauncher) Fire() { l.fired++ }
func (l *fakeLauncher) Load() { l.loaded++ }

func expectState(t *testing.T, s *Shooting, st State) {
	t.Helper()
	if s.State() != st {
		t.Fatalf("Expected %v, in %v", st, s.State())
	}
}

func expectMotors(t *testing.T, m *motors.Dummy, port, starboard motors.Direction, s motors.Speed) {
	t.Helper()
	if m.Direction(motors.Port) != port || m.Direction(motors.Starboard) != starboard ||
		m.Duty(motors.Port) != s.Port || m.Duty(motors.Starboard) != s.Starboard {
		t.Fatalf("Motors at port %v %d, starboard %v %d; expected port %v, starboard %v at %v",
			m.Direction(motors.Port), m.Duty(motors.Port),
			m.Direction(motors.Starboard), m.Duty(motors.Starboard),
			port, starboard, s)
	}
}

// lineUp runs the machine from the shooting approach to FindBeacon.
func lineUp(t *testing.T) (*karttest.Harness, *Shooting, *fakeBeacon, *fakeLauncher) {
	h := karttest.New(track.Pose{X: 120, Y: 70, Heading: 0})
	b := &fakeBeacon{}
	l := &fakeLauncher{}
	s := New(h.Kart, b, l)

	s.Start()
	expectState(t, s, Orient)
	// Quarter turn CCW.
	expectMotors(t, h.Motors, motors.Reverse, motors.Forward, motors.Half)
	h.Advance(h.Kart.Tuning.RotationMS(90))
	h.Dispatch(s)
	expectState(t, s, FindY)
	expectMotors(t, h.Motors, motors.Forward, motors.Forward, motors.Speed{Port: 40, Starboard: 43})

	h.Locator.Pose = track.Pose{X: 120, Y: 80, Heading: 90}
	h.Advance(checkMS)
	h.Dispatch(s)
	expectState(t, s, FindY)

	h.Locator.Pose.Y = 84
	h.Advance(checkMS)
	h.Dispatch(s)
	expectState(t, s, Turn)
	if !h.Timers.IsActive(timers.Check) {
		t.Fatalf("Expected check timer for the turn")
	}

	h.Locator.Pose.Heading = 180
	h.Advance(h.Kart.Tuning.RotationMS(90) + turnExtraMS)
	h.Dispatch(s)
	expectState(t, s, FindX)

	h.Locator.Pose.X = 133
	h.Advance(checkMS)
	h.Dispatch(s)
	expectState(t, s, FindBeacon)
	if !b.armed {
		t.Fatalf("Beacon should be armed while scanning")
	}
	return h, s, b, l
}

func TestShootAndReturn(t *testing.T) {
	h, s, b, l := lineUp(t)
	expectMotors(t, h.Motors, motors.Forward, motors.Reverse, motors.Quarter)

	h.Advance(h.Kart.Tuning.OneSec / 2)
	h.Dispatch(s)
	expectMotors(t, h.Motors, motors.Reverse, motors.Forward, motors.Quarter)

	h.Queue.Post(events.Event{Kind: events.DetectedBeacon})
	h.Dispatch(s)
	expectState(t, s, Fire)
	if b.armed {
		t.Fatalf("Beacon should be disarmed after leaving the scan")
	}
	if l.fired != 1 {
		t.Fatalf("Expected one shot, got %d", l.fired)
	}
	if h.Timers.IsActive(timers.GiveUp) || h.Timers.IsActive(timers.Check) {
		t.Fatalf("Scan timers should be stopped")
	}
	expectMotors(t, h.Motors, motors.Reverse, motors.Forward, motors.Stopped)

	h.Advance(h.Kart.Tuning.OneSec)
	h.Dispatch(s)
	expectState(t, s, ReturnToTape)
	expectMotors(t, h.Motors, motors.Forward, motors.Forward, motors.Half)

	h.Advance(h.Kart.Tuning.OneSec / 2)
	un := h.Dispatch(s)
	if len(un) != 1 || un[0].Kind != events.ToDriving {
		t.Fatalf("Expected ToDriving, got %v", un)
	}
	if h.Motors.Duty(motors.Port) != 0 || h.Motors.Duty(motors.Starboard) != 0 {
		t.Fatalf("Motors should be stopped at the tape")
	}
}

func TestGiveUp(t *testing.T) {
	h, s, b, l := lineUp(t)

	h.Advance(10 * h.Kart.Tuning.OneSec)
	h.Dispatch(s)
	expectState(t, s, ReturnToTape)
	if l.fired != 0 {
		t.Fatalf("Shouldn't fire without a beacon")
	}
	if l.loaded != 1 {
		t.Fatalf("Expected the hopper to load once, got %d", l.loaded)
	}
	if b.armed {
		t.Fatalf("Beacon should be disarmed")
	}
}

func TestAlreadyFacing(t *testing.T) {
	h := karttest.New(track.Pose{X: 120, Y: 84, Heading: 90})
	s := New(h.Kart, &fakeBeacon{}, &fakeLauncher{})
	s.Start()
	h.Advance(0)
	h.Dispatch(s)
	expectState(t, s, FindY)
}
