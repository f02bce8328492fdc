package gameplay

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/driving"
	"github.com/tigerbot-team/kartbot/pkg/events"
)

// Machine is one behaviour of the running game.
type Machine interface {
	Name() string
	Start()
	Stop()
	Run(ev events.Event) events.Event
}

// RunningGame switches between driving laps and the shooting and obstacle
// detours.  Only the active machine sees events.
type RunningGame struct {
	driving  *driving.Driving
	shooting Machine
	obstacle Machine

	active Machine
}

func NewRunningGame(d *driving.Driving, shooting, obstacle Machine) *RunningGame {
	return &RunningGame{
		driving:  d,
		shooting: shooting,
		obstacle: obstacle,
	}
}

// Start begins a new race in the driving machine.
func (g *RunningGame) Start() {
	g.driving.NewRace()
	g.activate(g.driving)
}

// Resume carries on with whichever machine was active.  The machine isn't
// re-entered.
func (g *RunningGame) Resume() {
	if g.active == nil {
		g.Start()
		return
	}
	fmt.Printf("RUNNING: Resuming %s\n", g.active.Name())
}

func (g *RunningGame) Stop() {
	if g.active != nil {
		g.active.Stop()
	}
}

// Active returns the current machine, nil before the first race.
func (g *RunningGame) Active() Machine {
	return g.active
}

func (g *RunningGame) Run(ev events.Event) events.Event {
	if g.active == nil {
		return ev
	}
	ev = g.active.Run(ev)

	var next Machine
	switch {
	case ev.Kind == events.ToShooting && g.active == Machine(g.driving):
		next = g.shooting
	case ev.Kind == events.ToObstacle && g.active == Machine(g.driving):
		next = g.obstacle
	case ev.Kind == events.ToDriving && g.active != Machine(g.driving):
		next = g.driving
	default:
		return ev
	}
	g.active.Stop()
	g.activate(next)
	return events.Consumed
}

func (g *RunningGame) activate(m Machine) {
	g.active = m
	fmt.Printf("----- %s -----\n", m.Name())
	m.Start()
}
