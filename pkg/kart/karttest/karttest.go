// Package karttest builds a Kart on dummy hardware with a hand-driven clock
// for state machine tests.
package karttest

import (
	"time"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/kart"
	"github.com/tigerbot-team/kartbot/pkg/motion"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/smoother"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Locator is a settable track.Locator.
type Locator struct {
	Pose     track.Pose
	Progress track.Progress
}

func (l *Locator) Locate() (track.Pose, track.Progress) {
	return l.Pose, l.Progress
}

type Runner interface {
	Run(ev events.Event) events.Event
}

type Harness struct {
	Now      time.Time
	Queue    *events.Queue
	Motors   *motors.Dummy
	Timers   *timers.Service
	Locator  *Locator
	Smoother *smoother.Heading
	Kart     *kart.Kart
}

func New(pose track.Pose) *Harness {
	h := &Harness{
		Now:      time.Unix(1000, 0),
		Queue:    events.NewQueue(64),
		Motors:   motors.NewDummy(),
		Locator:  &Locator{Pose: pose},
		Smoother: smoother.New(),
	}
	h.Timers = timers.New(h.Queue, func() time.Time { return h.Now })
	classifier := track.NewClassifier(track.DefaultGeometry())
	tuning := planner.DefaultTuning()
	h.Kart = &kart.Kart{
		Motors:     h.Motors,
		Timers:     h.Timers,
		Events:     h.Queue,
		Locator:    h.Locator,
		Classifier: classifier,
		Tuning:     tuning,
		Planner:    planner.New(h.Locator, classifier, tuning, h.Queue),
		Executor:   motion.New(h.Motors, h.Timers, h.Queue, h.Smoother),
	}
	return h
}

// Advance moves the clock on and posts any timeouts that are due.
func (h *Harness) Advance(ms int) {
	h.Now = h.Now.Add(time.Duration(ms) * time.Millisecond)
	h.Timers.Tick()
}

// Dispatch feeds queued events to r until the queue is empty, dropping stale
// timeouts the way the controller does.  Returns the events that r didn't
// consume.
func (h *Harness) Dispatch(r Runner) []events.Event {
	var unhandled []events.Event
	for h.Queue.Len() > 0 {
		for _, ev := range h.Queue.Drain() {
			if !h.Timers.IsCurrent(ev) {
				continue
			}
			if out := r.Run(ev); out.Kind != events.None {
				unhandled = append(unhandled, out)
			}
		}
	}
	return unhandled
}

// Chain runs an event through each runner in turn until one consumes it.
type Chain []Runner

func (c Chain) Run(ev events.Event) events.Event {
	for _, r := range c {
		ev = r.Run(ev)
		if ev.Kind == events.None {
			break
		}
	}
	return ev
}
