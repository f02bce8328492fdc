package motion

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

// Clearer is the part of the heading smoother that the executor resets at
// the start of each drive leg.
type Clearer interface {
	Clear()
}

// Executor carries out plans as timed open-loop motor pulses.  Completion is
// reported by posting AtNextAngle and AtNextPoint.
type Executor struct {
	motors   motors.Interface
	timers   timers.Interface
	poster   events.Poster
	smoother Clearer

	plan planner.Plan
}

func New(m motors.Interface, t timers.Interface, p events.Poster, smoother Clearer) *Executor {
	return &Executor{
		motors:   m,
		timers:   t,
		poster:   p,
		smoother: smoother,
	}
}

// Load sets the plan used by the next Turn and DriveForward.
func (x *Executor) Load(p planner.Plan) {
	x.plan = p
}

func (x *Executor) Plan() planner.Plan {
	return x.plan
}

func (x *Executor) Turn() {
	p := x.plan
	if p.Turn == planner.NoTurn || p.TurnMS <= 0 {
		x.post(events.AtNextAngle)
		return
	}

	switch p.Turn {
	case planner.BankTurn:
		s := motors.Speed{Port: motors.Half.Port, Starboard: motors.Quarter.Starboard}
		if p.Direction == planner.CCW {
			s = motors.Speed{Port: motors.Quarter.Port, Starboard: motors.Half.Starboard}
		}
		motors.Drive(x.motors, motors.Forward, motors.Forward, s)
	case planner.PivotTurn:
		Pivot(x.motors, p.Direction, motors.Half)
	}
	fmt.Printf("MOTION: %s turn %v %d° for %dms\n", p.Turn, p.Direction, p.Magnitude, p.TurnMS)
	x.timers.Start(timers.Rotate, p.TurnMS)
}

func (x *Executor) DriveForward() {
	x.smoother.Clear()
	if x.plan.DriveMS <= 0 {
		x.post(events.AtNextPoint)
		return
	}
	motors.Drive(x.motors, motors.Forward, motors.Forward, motors.Half)
	fmt.Printf("MOTION: Forward for %dms\n", x.plan.DriveMS)
	x.timers.Start(timers.Drive, x.plan.DriveMS)
}

// Run handles the executor's timers and GameOver.  Other events pass
// through.
func (x *Executor) Run(ev events.Event) events.Event {
	switch {
	case timers.Expired(ev, timers.Rotate):
		x.post(events.AtNextAngle)
		return events.Consumed
	case timers.Expired(ev, timers.Drive):
		x.post(events.AtNextPoint)
		return events.Consumed
	case ev.Kind == events.GameOver:
		x.Halt()
	}
	return ev
}

// Halt zeroes the motors and cancels any motion in progress.
func (x *Executor) Halt() {
	motors.Stop(x.motors)
	x.timers.Stop(timers.Drive)
	x.timers.Stop(timers.Rotate)
}

func (x *Executor) post(k events.Kind) {
	x.poster.Post(events.Event{Kind: k})
}

// Pivot spins the kart in place.  Counter-clockwise runs the port side in
// reverse.
func Pivot(m motors.Interface, dir planner.Direction, s motors.Speed) {
	if dir == planner.CCW {
		motors.Drive(m, motors.Reverse, motors.Forward, s)
	} else {
		motors.Drive(m, motors.Forward, motors.Reverse, s)
	}
}
