package driving

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

type State int

const (
	AtPosition State = iota
	GeneratePath
	Turning
	DrivingForward
)

func (s State) String() string {
	switch s {
	case AtPosition:
		return "AtPosition"
	case GeneratePath:
		return "GeneratePath"
	case Turning:
		return "Turning"
	case DrivingForward:
		return "DrivingForward"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Headings that take the kart out of each corner in-zone, back onto the
// next straight.
var kickOutHeadings = map[track.Zone]int{
	track.BottomIn: 135,
	track.RightIn:  225,
	track.TopIn:    315,
	track.LeftIn:   45,
}

// Driving laps the track one hop at a time: pick the next waypoint, plan,
// turn, drive, repeat.  When it passes through a decision zone for a task
// that's still outstanding it asks the supervisor to switch behaviour.
type Driving struct {
	k     *kart.Kart
	state State

	target      track.Point
	kickOut     bool
	kickHeading int
	lastCorner  track.Point

	shootingAttempted bool
	obstacleAttempted bool
}

func New(k *kart.Kart) *Driving {
	d := &Driving{k: k}
	d.NewRace()
	return d
}

func (d *Driving) Name() string {
	return "DRIVING"
}

// NewRace forgets which detours have been tried.
func (d *Driving) NewRace() {
	d.shootingAttempted = false
	d.obstacleAttempted = false
	d.lastCorner = d.k.Geometry().TopLeft
}

func (d *Driving) State() State {
	return d.state
}

func (d *Driving) Target() track.Point {
	return d.target
}

func (d *Driving) Start() {
	d.state = AtPosition
	d.log("Starting in %v", d.state)
	d.enter()
}

func (d *Driving) Stop() {
	d.exit()
}

func (d *Driving) Run(ev events.Event) events.Event {
	next, ok := d.handle(ev)
	if !ok {
		return ev
	}
	d.transition(next)
	return events.Consumed
}

func (d *Driving) transition(next State) {
	d.exit()
	d.log("%v -> %v", d.state, next)
	d.state = next
	d.enter()
}

func (d *Driving) handle(ev events.Event) (State, bool) {
	switch d.state {
	case AtPosition:
		if ev.Kind == events.NextPointCalculated {
			return GeneratePath, true
		}
	case GeneratePath:
		if ev.Kind == events.PathGenerated {
			return Turning, true
		}
	case Turning:
		if ev.Kind == events.AtNextAngle {
			return DrivingForward, true
		}
	case DrivingForward:
		if ev.Kind == events.AtNextPoint {
			return AtPosition, true
		}
	}
	return d.state, false
}

func (d *Driving) enter() {
	switch d.state {
	case AtPosition:
		d.target = d.nextPoint()
		d.k.Post(events.NextPointCalculated)
	case GeneratePath:
		if d.kickOut {
			d.kickOut = false
			d.k.Executor.Load(d.k.Planner.GenerateHeading(d.kickHeading))
		} else {
			d.k.Executor.Load(d.k.Planner.Generate(d.target))
		}
	case Turning:
		d.k.Executor.Turn()
	case DrivingForward:
		d.k.Executor.DriveForward()
	}
}

// Driving leaves motion running on exit; the supervisor snapshots it when
// pausing.
func (d *Driving) exit() {
}

// nextPoint picks the waypoint for the next hop.  Detours are posted to the
// supervisor from here.
func (d *Driving) nextPoint() track.Point {
	g := d.k.Geometry()
	zone := d.k.Zone()

	switch {
	case zone == track.ShootingDecisionZone:
		if !d.shootingAttempted {
			d.shootingAttempted = true
			d.log("In %v, heading for the shooting point", zone)
			d.k.Post(events.ToShooting)
			return g.ShootingPoint
		}
		return g.BottomLeft
	case zone == track.ObstacleDecisionZone:
		if !d.obstacleAttempted {
			d.obstacleAttempted = true
			d.log("In %v, heading for the obstacle", zone)
			d.k.Post(events.ToObstacle)
			return g.ObstacleEntry
		}
		return g.BottomRight
	case zone.IsCornerIn():
		d.kickOut = true
		d.kickHeading = kickOutHeadings[zone]
		d.log("In %v, kicking out at %d", zone, d.kickHeading)
		return d.lastCorner
	case zone == track.DeadZone:
		d.log("In dead zone, falling back to %v", d.lastCorner)
		return d.lastCorner
	}

	corner, _ := g.Corner(zone)
	d.lastCorner = corner
	d.log("In %v, next waypoint %v", zone, corner)
	return corner
}

func (d *Driving) log(f string, args ...any) {
	fmt.Println(d.Name() + ": " + fmt.Sprintf(f, args...))
}
