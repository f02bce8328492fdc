package gameplay

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

type State int

const (
	WaitForStart State = iota
	Running
	Pause
)

func (s State) String() string {
	switch s {
	case WaitForStart:
		return "WaitForStart"
	case Running:
		return "Running"
	case Pause:
		return "Pause"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Timers that keep going through a pause.  The position service poll and
// the launcher's reload cycle aren't part of the race.
var background = []timers.ID{timers.DRS, timers.BallShooter}

type Runner interface {
	Run(ev events.Event) events.Event
}

// Announcer plays a cue for flag and game over events.
type Announcer interface {
	Announce(k events.Kind)
}

// GamePlay follows the race flags: it waits for the start, runs the game
// and freezes it under a caution flag.
type GamePlay struct {
	k        *kart.Kart
	game     *RunningGame
	launcher Runner
	announce Announcer

	state   State
	history bool

	snapshot motors.Snapshot
	pending  []timers.Pending
	// Race events that arrived while paused, replayed on resume.
	held []events.Event
}

// New creates the supervisor.  announce may be nil.
func New(k *kart.Kart, game *RunningGame, launcher Runner, announce Announcer) *GamePlay {
	return &GamePlay{
		k:        k,
		game:     game,
		launcher: launcher,
		announce: announce,
	}
}

func (p *GamePlay) Name() string {
	return "GAMEPLAY"
}

func (p *GamePlay) State() State {
	return p.state
}

func (p *GamePlay) Game() *RunningGame {
	return p.game
}

// Pending returns the timers that will be restarted when the pause ends.
func (p *GamePlay) Pending() []timers.Pending {
	return p.pending
}

func (p *GamePlay) Start() {
	p.state = WaitForStart
	p.log("Starting in %v", p.state)
	p.enter()
}

// Status is a one line summary for the status screen.
func (p *GamePlay) Status() string {
	if m := p.game.Active(); m != nil && p.state != WaitForStart {
		return fmt.Sprintf("%v %s", p.state, m.Name())
	}
	return p.state.String()
}

func (p *GamePlay) Run(ev events.Event) events.Event {
	if next, ok := p.handle(ev); ok {
		p.cue(ev.Kind)
		p.transition(next)
		return events.Consumed
	}

	switch p.state {
	case Running:
		if ev = p.game.Run(ev); ev.Kind == events.None {
			return ev
		}
		if ev = p.k.Executor.Run(ev); ev.Kind == events.None {
			return ev
		}
		return p.launcher.Run(ev)
	case Pause:
		if ev = p.launcher.Run(ev); ev.Kind == events.None {
			return ev
		}
		if p.hold(ev) {
			return events.Consumed
		}
		return ev
	default:
		return p.launcher.Run(ev)
	}
}

// hold keeps a race event that was already on its way when the pause began.
// A race timer that expired is turned back into a pending timer with nothing
// left to run, so it fires again once the race resumes.
func (p *GamePlay) hold(ev events.Event) bool {
	switch ev.Kind {
	case events.Timeout:
		id := timers.ID(ev.Param)
		if isBackground(id) {
			return false
		}
		p.pending = append(p.pending, timers.Pending{ID: id})
	case events.CautionFlagDropped, events.EmergencyStop:
		return false
	default:
		p.held = append(p.held, ev)
	}
	p.log("Holding %v until the race resumes", ev)
	return true
}

func isBackground(id timers.ID) bool {
	for _, b := range background {
		if b == id {
			return true
		}
	}
	return false
}

func (p *GamePlay) handle(ev events.Event) (State, bool) {
	switch p.state {
	case WaitForStart:
		if ev.Kind == events.FlagDropped {
			p.history = false
			return Running, true
		}
	case Running:
		switch ev.Kind {
		case events.CautionFlagDropped, events.EmergencyStop:
			return Pause, true
		case events.GameOver:
			return WaitForStart, true
		}
	case Pause:
		switch ev.Kind {
		case events.FlagDropped:
			p.history = true
			return Running, true
		case events.GameOver:
			return WaitForStart, true
		}
	}
	return p.state, false
}

func (p *GamePlay) transition(next State) {
	p.exit(next)
	p.log("%v -> %v", p.state, next)
	p.state = next
	p.enter()
}

func (p *GamePlay) enter() {
	switch p.state {
	case WaitForStart:
		p.k.StopMotors()
		p.k.Timers.Suspend(background...)
	case Running:
		if p.history {
			p.game.Resume()
		} else {
			p.game.Start()
		}
	case Pause:
		p.snapshot = motors.Capture(p.k.Motors)
		p.pending = p.k.Timers.Suspend(background...)
		p.k.StopMotors()
		p.log("Paused with motors %v, %d timers pending", p.snapshot, len(p.pending))
	}
}

func (p *GamePlay) exit(next State) {
	switch p.state {
	case Running:
		if next == WaitForStart {
			p.game.Stop()
			p.k.Executor.Halt()
		}
	case Pause:
		if next == Running {
			p.k.Timers.Resume(p.pending)
			p.snapshot.Restore(p.k.Motors)
			for _, ev := range p.held {
				if !p.k.Events.Post(ev) {
					p.log("Queue full, lost held %v", ev)
				}
			}
		} else {
			p.game.Stop()
		}
		p.snapshot = motors.Snapshot{}
		p.pending = nil
		p.held = nil
	}
}

func (p *GamePlay) cue(k events.Kind) {
	if p.announce != nil {
		p.announce.Announce(k)
	}
}

func (p *GamePlay) log(f string, args ...any) {
	fmt.Println(p.Name() + ": " + fmt.Sprintf(f, args...))
}
