package shooting

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
	FindY
	Turn
	FindX
	FindBeacon
	Fire
	ReturnToTape
)

func (s State) String() string {
	switch s {
	case Orient:
		return "Orient"
	case FindY:
		return "FindY"
	case Turn:
		return "Turn"
	case FindX:
		return "FindX"
	case FindBeacon:
		return "FindBeacon"
	case Fire:
		return "Fire"
	case ReturnToTape:
		return "ReturnToTape"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

const (
	checkMS = 100
	// Extra pivot time onto the firing line; the kart under-rotates.
	turnExtraMS = 50
)

// Creep is the speed used to inch onto a coordinate.
var Creep = motors.Quarter.Plus(-10)

type Beacon interface {
	Arm()
	Disarm()
}

type Launcher interface {
	Fire()
	Load()
}

// Shooting lines the kart up on the shooting point, sweeps for the target
// beacon and fires one ball.  It hands back to driving with ToDriving.
type Shooting struct {
	k        *kart.Kart
	beacon   Beacon
	launcher Launcher
	state    State

	scanCW bool
}

func New(k *kart.Kart, b Beacon, l Launcher) *Shooting {
	return &Shooting{k: k, beacon: b, launcher: l}
}

func (s *Shooting) Name() string {
	return "SHOOTING"
}

func (s *Shooting) State() State {
	return s.state
}

func (s *Shooting) Start() {
	s.state = Orient
	s.log("Starting in %v", s.state)
	s.enter()
}

func (s *Shooting) Stop() {
	s.exit()
}

func (s *Shooting) Run(ev events.Event) events.Event {
	next, ok := s.handle(ev)
	if !ok {
		return ev
	}
	if next != s.state {
		s.transition(next)
	}
	return events.Consumed
}

func (s *Shooting) transition(next State) {
	s.exit()
	s.log("%v -> %v", s.state, next)
	s.state = next
	s.enter()
}

// handle returns the next state and whether ev was used.  Returning the
// current state consumes the event without re-entering.
func (s *Shooting) handle(ev events.Event) (State, bool) {
	t := s.k.Timers
	sp := s.k.Geometry().ShootingPoint

	switch s.state {
	case Orient:
		if timers.Expired(ev, timers.Check) {
			s.k.StopMotors()
			return FindY, true
		}
	case FindY:
		if timers.Expired(ev, timers.Check) {
			if s.k.Pose().Y >= sp.Y {
				s.k.StopMotors()
				return Turn, true
			}
			t.Start(timers.Check, checkMS)
			return s.state, true
		}
	case Turn:
		if timers.Expired(ev, timers.Check) {
			s.k.StopMotors()
			return FindX, true
		}
	case FindX:
		if timers.Expired(ev, timers.Check) {
			if s.k.Pose().X >= sp.X {
				s.k.StopMotors()
				return FindBeacon, true
			}
			t.Start(timers.Check, checkMS)
			return s.state, true
		}
	case FindBeacon:
		switch {
		case ev.Kind == events.DetectedBeacon:
			s.endScan()
			return Fire, true
		case timers.Expired(ev, timers.Check):
			s.scanCW = !s.scanCW
			s.scan()
			t.Start(timers.Check, s.k.Tuning.OneSec)
			return s.state, true
		case timers.Expired(ev, timers.LoadBall):
			s.launcher.Load()
			return s.state, true
		case timers.Expired(ev, timers.GiveUp):
			s.log("No beacon, giving up")
			s.endScan()
			return ReturnToTape, true
		}
	case Fire:
		if timers.Expired(ev, timers.FireBall) {
			return ReturnToTape, true
		}
	case ReturnToTape:
		if timers.Expired(ev, timers.BackToCourse) {
			s.k.StopMotors()
			s.k.Post(events.ToDriving)
			return s.state, true
		}
	}
	return s.state, false
}

func (s *Shooting) enter() {
	t := s.k.Timers
	oneSec := s.k.Tuning.OneSec

	switch s.state {
	case Orient:
		s.k.Orient(90, timers.Check, 0)
	case FindY, FindX:
		s.k.Forward(Creep)
		t.Start(timers.Check, checkMS)
	case Turn:
		s.k.Orient(180, timers.Check, turnExtraMS)
	case FindBeacon:
		t.Start(timers.GiveUp, 10*oneSec)
		s.scanCW = true
		s.scan()
		t.Start(timers.Check, oneSec/2)
		t.Start(timers.LoadBall, oneSec)
		s.beacon.Arm()
	case Fire:
		t.Stop(timers.GiveUp)
		t.Start(timers.FireBall, oneSec)
		s.launcher.Fire()
	case ReturnToTape:
		s.k.Forward(motors.Half)
		t.Start(timers.BackToCourse, oneSec/2)
	}
}

func (s *Shooting) exit() {
	if s.state == FindBeacon {
		s.beacon.Disarm()
	}
}

// scan sweeps on the spot at quarter speed.  Clockwise runs the port side
// forward.
func (s *Shooting) scan() {
	if s.scanCW {
		motors.Drive(s.k.Motors, motors.Forward, motors.Reverse, motors.Quarter)
	} else {
		motors.Drive(s.k.Motors, motors.Reverse, motors.Forward, motors.Quarter)
	}
}

func (s *Shooting) endScan() {
	s.k.StopMotors()
	s.k.Timers.Stop(timers.Check)
	s.k.Timers.Stop(timers.LoadBall)
}

func (s *Shooting) log(f string, args ...any) {
	fmt.Println(s.Name() + ": " + fmt.Sprintf(f, args...))
}
