package gameplay

import (
	"testing"

	"github.com/tigerbot-team/kartbot/pkg/driving"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart/karttest"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/obstacle"
	"github.com/tigerbot-team/kartbot/pkg/shooting"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

type nullBeacon struct{}

func (nullBeacon) Arm()    {}
func (nullBeacon) Disarm() {}

type fakeLauncher struct {
	seen  []events.Event
	fired int
}

func (l *fakeLauncher) Fire() { l.fired++ }
func (l *fakeLauncher) Load() {}
func (l *fakeLauncher) Run(ev events.Event) events.Event {
	l.seen = append(l.seen, ev)
	return ev
}

type cueLog []events.Kind

func (c *cueLog) Announce(k events.Kind) {
	*c = append(*c, k)
}

type fixture struct {
	h        *karttest.Harness
	gp       *GamePlay
	driving  *driving.Driving
	shooting *shooting.Shooting
	launcher *fakeLauncher
	cues     *cueLog
}

func newFixture(pose track.Pose) *fixture {
	h := karttest.New(pose)
	f := &fixture{
		h:        h,
		driving:  driving.New(h.Kart),
		launcher: &fakeLauncher{},
		cues:     &cueLog{},
	}
	f.shooting = shooting.New(h.Kart, nullBeacon{}, f.launcher)
	game := NewRunningGame(f.driving, f.shooting, obstacle.New(h.Kart))
	f.gp = New(h.Kart, game, f.launcher, f.cues)
	f.gp.Start()
	return f
}

func (f *fixture) post(k events.Kind) []events.Event {
	f.h.Queue.Post(events.Event{Kind: k})
	return f.h.Dispatch(f.gp)
}

// step runs one batch of queued events without draining what they post.
func (f *fixture) step() {
	for _, ev := range f.h.Queue.Drain() {
		if f.h.Timers.IsCurrent(ev) {
			f.gp.Run(ev)
		}
	}
}

// caution pauses the race ahead of whatever is already queued.
func (f *fixture) caution(t *testing.T) {
	t.Helper()
	f.gp.Run(events.Event{Kind: events.CautionFlagDropped})
	f.expectState(t, Pause)
	f.h.Dispatch(f.gp)
	if f.h.Motors.Duty(motors.Port) != 0 || f.h.Motors.Duty(motors.Starboard) != 0 {
		t.Fatalf("Motors should stop while paused")
	}
}

func (f *fixture) expectState(t *testing.T, s State) {
	t.Helper()
	if f.gp.State() != s {
		t.Fatalf("Expected %v, in %v", s, f.gp.State())
	}
}

func TestPauseRestoresMotionExactly(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	h := f.h
	f.post(events.FlagDropped)
	f.expectState(t, Running)
	drivingState := f.driving.State()

	// Replace whatever the first hop started with a known set of outputs.
	h.Timers.Suspend()
	motors.Drive(h.Motors, motors.Forward, motors.Forward, motors.Speed{Port: 75, Starboard: 70})
	h.Timers.Start(timers.Drive, 300)
	h.Timers.Start(timers.GiveUp, 5000)
	h.Timers.Start(timers.DRS, 1000)
	h.Advance(100)

	f.post(events.CautionFlagDropped)
	f.expectState(t, Pause)
	if h.Motors.Duty(motors.Port) != 0 || h.Motors.Duty(motors.Starboard) != 0 {
		t.Fatalf("Motors should stop while paused")
	}
	if len(f.gp.Pending()) != 2 {
		t.Fatalf("Expected exactly two pending timers, got %v", f.gp.Pending())
	}
	if h.Timers.IsActive(timers.Drive) || h.Timers.IsActive(timers.GiveUp) {
		t.Fatalf("Race timers should be suspended")
	}
	if !h.Timers.IsActive(timers.DRS) {
		t.Fatalf("The position poll should keep running")
	}

	// Time spent paused doesn't count.
	h.Advance(5000)
	h.Dispatch(f.gp)
	h.Timers.Stop(timers.DRS)

	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if h.Motors.Duty(motors.Port) != 75 || h.Motors.Duty(motors.Starboard) != 70 ||
		h.Motors.Direction(motors.Port) != motors.Forward ||
		h.Motors.Direction(motors.Starboard) != motors.Forward {
		t.Fatalf("Motors not restored: %v", motors.Capture(h.Motors))
	}
	if r := h.Timers.Remaining(timers.Drive); r != 200 {
		t.Fatalf("Drive timer should resume with 200ms, got %d", r)
	}
	if r := h.Timers.Remaining(timers.GiveUp); r != 4900 {
		t.Fatalf("Give up timer should resume with 4900ms, got %d", r)
	}
	for id := timers.Drive; id <= timers.BallShooter; id++ {
		if id != timers.Drive && id != timers.GiveUp && h.Timers.IsActive(id) {
			t.Fatalf("Unexpected timer %v running", id)
		}
	}
	if len(f.gp.Pending()) != 0 {
		t.Fatalf("Snapshot should be cleared after restore")
	}
	if f.driving.State() != drivingState {
		t.Fatalf("Driving should carry on in %v, in %v", drivingState, f.driving.State())
	}
}

func TestPauseResumesShootingWithoutReentry(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 80, Heading: 0})
	h := f.h
	f.post(events.FlagDropped)
	if f.gp.Game().Active() != Machine(f.shooting) {
		t.Fatalf("Expected the shooting detour, active %v", f.gp.Game().Active().Name())
	}
	if f.shooting.State() != shooting.Orient {
		t.Fatalf("Expected shooting to orient first, in %v", f.shooting.State())
	}

	h.Advance(h.Kart.Tuning.RotationMS(90))
	h.Dispatch(f.gp)
	if f.shooting.State() != shooting.FindY {
		t.Fatalf("Expected FindY, in %v", f.shooting.State())
	}

	f.post(events.EmergencyStop)
	f.expectState(t, Pause)
	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if f.gp.Game().Active() != Machine(f.shooting) || f.shooting.State() != shooting.FindY {
		t.Fatalf("Expected to resume shooting in FindY, in %v", f.shooting.State())
	}
	if !h.Timers.IsActive(timers.Check) {
		t.Fatalf("Check timer should be restored")
	}
	if h.Motors.Duty(motors.Port) != shooting.Creep.Port {
		t.Fatalf("Creep should be restored")
	}
}

func TestGameOver(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	h := f.h
	f.post(events.FlagDropped)
	if h.Motors.Duty(motors.Port) == 0 {
		t.Fatalf("Expected the kart to be moving")
	}

	f.post(events.GameOver)
	f.expectState(t, WaitForStart)
	if h.Motors.Duty(motors.Port) != 0 || h.Motors.Duty(motors.Starboard) != 0 {
		t.Fatalf("Motors should stop at game over")
	}
	if h.Timers.IsActive(timers.Drive) || h.Timers.IsActive(timers.Rotate) {
		t.Fatalf("Motion timers should be stopped")
	}

	// Flags other than the start are ignored while waiting.
	f.post(events.CautionFlagDropped)
	f.expectState(t, WaitForStart)

	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if f.driving.Target() != track.DefaultGeometry().BottomRight {
		t.Fatalf("Expected a fresh race to bottom right, got %v", f.driving.Target())
	}

	want := []events.Kind{events.FlagDropped, events.GameOver, events.FlagDropped}
	if len(*f.cues) != len(want) {
		t.Fatalf("Expected cues %v, got %v", want, *f.cues)
	}
	for i := range want {
		if (*f.cues)[i] != want[i] {
			t.Fatalf("Expected cues %v, got %v", want, *f.cues)
		}
	}
}

func TestGameOverWhilePaused(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	f.post(events.FlagDropped)
	f.post(events.CautionFlagDropped)
	f.post(events.GameOver)
	f.expectState(t, WaitForStart)
	if f.h.Motors.Duty(motors.Port) != 0 {
		t.Fatalf("Motors shouldn't be restored at game over")
	}
	if len(f.gp.Pending()) != 0 {
		t.Fatalf("Pending timers should be dropped")
	}
}

func TestLauncherRunsInEveryState(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	ev := events.Event{Kind: events.Timeout, Param: int(timers.BallShooter)}
	f.gp.Run(ev)
	f.post(events.FlagDropped)
	f.gp.Run(ev)
	f.post(events.CautionFlagDropped)
	f.gp.Run(ev)
	n := 0
	for _, e := range f.launcher.seen {
		if timers.Expired(e, timers.BallShooter) {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("Launcher saw %d of its timeouts, expected 3", n)
	}
}

func TestTimeoutQueuedBehindCaution(t *testing.T) {
	// On the right straight facing down the track: a quarter pivot to the
	// top right corner.
	f := newFixture(track.Pose{X: 230, Y: 100, Heading: 180})
	h := f.h
	f.post(events.FlagDropped)
	if f.driving.State() != driving.Turning || !h.Timers.IsActive(timers.Rotate) {
		t.Fatalf("Expected a pivot, in %v", f.driving.State())
	}
	turning := motors.Capture(h.Motors)

	// The caution flag is queued first, then the pivot times out.
	h.Queue.Post(events.Event{Kind: events.CautionFlagDropped})
	h.Advance(h.Kart.Executor.Plan().TurnMS)
	h.Dispatch(f.gp)
	f.expectState(t, Pause)
	if len(f.gp.Pending()) != 1 || f.gp.Pending()[0] != (timers.Pending{ID: timers.Rotate}) {
		t.Fatalf("Expected the expired pivot to be pending, got %v", f.gp.Pending())
	}

	h.Advance(5000)
	h.Dispatch(f.gp)
	if f.driving.State() != driving.Turning {
		t.Fatalf("Driving shouldn't move on while paused, in %v", f.driving.State())
	}

	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if motors.Capture(h.Motors) != turning {
		t.Fatalf("Expected the pivot to be restored, got %v", motors.Capture(h.Motors))
	}
	h.Advance(1)
	h.Dispatch(f.gp)
	if f.driving.State() != driving.DrivingForward {
		t.Fatalf("Pivot should end after the pause, in %v", f.driving.State())
	}
	if h.Motors.Direction(motors.Port) != motors.Forward || h.Motors.Direction(motors.Starboard) != motors.Forward {
		t.Fatalf("Expected to drive forward, got %v", motors.Capture(h.Motors))
	}
	if !h.Timers.IsActive(timers.Drive) {
		t.Fatalf("Expected the drive leg to be timed")
	}
}

func TestArrivalQueuedBehindCaution(t *testing.T) {
	// Already facing the bottom right corner, so the turn completes at once.
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	h := f.h
	f.gp.Run(events.Event{Kind: events.FlagDropped})
	for i := 0; f.driving.State() != driving.Turning; i++ {
		if i > 10 {
			t.Fatalf("Driving never started turning, in %v", f.driving.State())
		}
		f.step()
	}
	if h.Queue.Len() != 1 {
		t.Fatalf("Expected AtNextAngle to be queued, %d events", h.Queue.Len())
	}

	f.caution(t)
	if f.driving.State() != driving.Turning {
		t.Fatalf("Driving shouldn't move on while paused, in %v", f.driving.State())
	}
	if len(f.gp.held) != 1 || f.gp.held[0].Kind != events.AtNextAngle {
		t.Fatalf("Expected AtNextAngle to be held, got %v", f.gp.held)
	}

	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if f.driving.State() != driving.DrivingForward || !h.Timers.IsActive(timers.Drive) {
		t.Fatalf("Expected to drive on after the pause, in %v", f.driving.State())
	}
	if len(f.gp.held) != 0 {
		t.Fatalf("Held events should be cleared after replay")
	}
}

func TestBeaconQueuedBehindCaution(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 80, Heading: 0})
	h := f.h
	sp := track.DefaultGeometry().ShootingPoint
	f.post(events.FlagDropped)
	if f.gp.Game().Active() != Machine(f.shooting) {
		t.Fatalf("Expected the shooting detour, active %v", f.gp.Game().Active().Name())
	}

	h.Advance(h.Kart.Tuning.RotationMS(90))
	h.Dispatch(f.gp)
	h.Locator.Pose = track.Pose{X: 100, Y: sp.Y, Heading: 90}
	h.Advance(100)
	h.Dispatch(f.gp)
	if f.shooting.State() != shooting.Turn {
		t.Fatalf("Expected Turn, in %v", f.shooting.State())
	}
	h.Locator.Pose.Heading = 180
	h.Advance(h.Kart.Tuning.RotationMS(90) + 100)
	h.Dispatch(f.gp)
	h.Locator.Pose.X = sp.X
	h.Advance(100)
	h.Dispatch(f.gp)
	if f.shooting.State() != shooting.FindBeacon {
		t.Fatalf("Expected FindBeacon, in %v", f.shooting.State())
	}

	h.Queue.Post(events.Event{Kind: events.DetectedBeacon})
	f.caution(t)
	if f.shooting.State() != shooting.FindBeacon || f.launcher.fired != 0 {
		t.Fatalf("Shouldn't fire while paused, in %v", f.shooting.State())
	}

	f.post(events.FlagDropped)
	f.expectState(t, Running)
	if f.shooting.State() != shooting.Fire || f.launcher.fired != 1 {
		t.Fatalf("Expected to fire after the pause, in %v with %d shots", f.shooting.State(), f.launcher.fired)
	}
}

func TestGameOverDropsHeldEvents(t *testing.T) {
	f := newFixture(track.Pose{X: 100, Y: 150, Heading: 180})
	f.post(events.FlagDropped)
	f.h.Queue.Post(events.Event{Kind: events.AtNextPoint})
	f.caution(t)
	if len(f.gp.held) != 1 {
		t.Fatalf("Expected AtNextPoint to be held, got %v", f.gp.held)
	}
	f.post(events.GameOver)
	f.expectState(t, WaitForStart)
	if len(f.gp.held) != 0 || f.h.Queue.Len() != 0 {
		t.Fatalf("Held events should be dropped at game over")
	}
}
