package kart

import (
	"fmt"

	"github.com/tigerbot-team/kartbot/pkg/angle"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/motion"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Kart bundles what the behaviour state machines drive and sense.  All of it
// is owned by the event loop.
type Kart struct {
	Motors     motors.Interface
	Timers     timers.Interface
	Events     events.Poster
	Locator    track.Locator
	Classifier *track.Classifier
	Tuning     planner.Tuning
	Planner    *planner.Planner
	Executor   *motion.Executor
}

func (k *Kart) Geometry() track.Geometry {
	return k.Classifier.Geometry()
}

func (k *Kart) Pose() track.Pose {
	p, _ := k.Locator.Locate()
	return p
}

// Zone classifies the current position.
func (k *Kart) Zone() track.Zone {
	p, progress := k.Locator.Locate()
	return k.Classifier.Classify(p.Point(), progress)
}

func (k *Kart) Post(kind events.Kind) {
	k.Events.Post(events.Event{Kind: kind})
}

// Orient pivots at half speed onto a fixed heading and starts timer id for
// the rotation time plus extraMS.  If there's nothing to do the timer is
// started with zero length so the caller still sees its timeout.
func (k *Kart) Orient(heading int, id timers.ID, extraMS int) {
	pose := k.Pose()
	delta := angle.Delta(int(pose.Heading), heading)
	if delta == 0 && extraMS == 0 {
		k.Timers.Start(id, 0)
		return
	}
	dir := planner.CCW
	if delta < 0 {
		dir = planner.CW
	}
	motion.Pivot(k.Motors, dir, motors.Half)
	ms := k.Tuning.RotationMS(delta) + extraMS
	fmt.Printf("KART: Orienting %d -> %d (%v) for %dms\n", pose.Heading, heading, dir, ms)
	k.Timers.Start(id, ms)
}

// Forward drives both sides forward at speed s.
func (k *Kart) Forward(s motors.Speed) {
	motors.Drive(k.Motors, motors.Forward, motors.Forward, s)
}

func (k *Kart) StopMotors() {
	motors.Stop(k.Motors)
}
