package obstacle

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

type State int

const (
	Orient State = iota
	FindX
	Turning
	FindY
	GeneratePath
	TurnToExit
	DrivingForward
	Exiting
)

func (s State) String() string {
	switch s {
	case Orient:
		return "Orient"
	case FindX:
		return "FindX"
	case Turning:
		return "Turning"
	case FindY:
		return "FindY"
	case GeneratePath:
		return "GeneratePath"
	case TurnToExit:
		return "TurnToExit"
	case DrivingForward:
		return "DrivingForward"
	case Exiting:
		return "Exiting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	checkMS = 100
	// Clearance past the inner square before steering for the exit.
	clearY = 10
	// Distance short of the exit's straight at which the kart rejoins.
	exitY = 20
)

var (
	Creep = motors.Quarter.Plus(-10)
	Climb = motors.Quarter.Plus(10)
	Ease  = motors.Quarter.Plus(-20)
)

// Obstacle drives the kart through the obstacle course: square up on the
// entry, punch up the ramp, then hop to the exit and rejoin the track with
// ToDriving.
type Obstacle struct {
	k     *kart.Kart
	state State
}

func New(k *kart.Kart) *Obstacle {
	return &Obstacle{k: k}
}

func (o *Obstacle) Name() string {
	return "OBSTACLE"
}

func (o *Obstacle) State() State {
	return o.state
}

func (o *Obstacle) Start() {
	o.state = Orient
	o.log("Starting in %v", o.state)
	o.enter()
}

func (o *Obstacle) Stop() {
	o.exit()
}

func (o *Obstacle) Run(ev events.Event) events.Event {
	next, ok := o.handle(ev)
	if !ok {
		return ev
	}
	if next != o.state {
		o.transition(next)
	}
	return events.Consumed
}

func (o *Obstacle) transition(next State) {
	o.exit()
	o.log("%v -> %v", o.state, next)
	o.state = next
	o.enter()
}

func (o *Obstacle) handle(ev events.Event) (State, bool) {
	g := o.k.Geometry()
	t := o.k.Timers

	switch o.state {
	case Orient:
		if timers.Expired(ev, timers.Obs) {
			o.k.StopMotors()
			return FindX, true
		}
	case FindX:
		if timers.Expired(ev, timers.Obs) {
			if o.k.Pose().X >= g.ObstacleEntry.X {
				o.k.StopMotors()
				return Turning, true
			}
			t.Start(timers.Obs, checkMS)
			return o.state, true
		}
	case Turning:
		if timers.Expired(ev, timers.Obs) {
			o.k.StopMotors()
			return FindY, true
		}
	case FindY:
		switch {
		case timers.Expired(ev, timers.Nitro):
			o.k.Forward(Climb)
			t.Start(timers.Obs, checkMS)
			return o.state, true
		case timers.Expired(ev, timers.Obs):
			if o.k.Pose().Y < g.Y2+clearY {
				o.k.StopMotors()
				return GeneratePath, true
			}
			t.Start(timers.Obs, checkMS)
			return o.state, true
		}
	case GeneratePath:
		if ev.Kind == events.PathGenerated {
			return TurnToExit, true
		}
	case TurnToExit:
		if ev.Kind == events.AtNextAngle {
			return DrivingForward, true
		}
	case DrivingForward:
		if ev.Kind == events.AtNextPoint {
			if o.k.Pose().Y <= g.Y1+exitY {
				return Exiting, true
			}
			return GeneratePath, true
		}
	case Exiting:
		if timers.Expired(ev, timers.BackToCourse) {
			o.k.StopMotors()
			o.k.Post(events.ToDriving)
			return o.state, true
		}
	}
	return o.state, false
}

func (o *Obstacle) enter() {
	tu := o.k.Tuning

	switch o.state {
	case Orient:
		o.k.Orient(180, timers.Obs, 0)
	case FindX:
		o.k.Forward(Creep)
		o.k.Timers.Start(timers.Obs, checkMS)
	case Turning:
		o.k.Orient(270, timers.Obs, tu.RotationTime*5/360)
	case FindY:
		o.k.Forward(motors.Half)
		o.k.Timers.Start(timers.Nitro, tu.OneSec)
	case GeneratePath:
		o.k.Executor.Load(o.k.Planner.Generate(o.k.Geometry().ObstacleExit))
	case TurnToExit:
		o.k.Executor.Turn()
	case DrivingForward:
		o.k.Executor.DriveForward()
	case Exiting:
		o.k.Forward(Ease)
		o.k.Timers.Start(timers.BackToCourse, tu.OneSec)
	}
}

func (o *Obstacle) exit() {
}

func (o *Obstacle) log(f string, args ...any) {
	fmt.Println(o.Name() + ": " + fmt.Sprintf(f, args...))
}
