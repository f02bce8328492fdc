// Package controller runs the kart's event loop.  Everything the state
// machines own is touched only from Loop.Run.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

type Runner interface {
	Run(ev events.Event) events.Event
}

type Loop struct {
	Queue  *events.Queue
	Timers *timers.Service
	// Runners see each event in order until one consumes it.
	Runners []Runner
	// AfterEvent, if set, is called after every dispatched event.
	AfterEvent func()
	// TickInterval defaults to a millisecond.
	TickInterval time.Duration

	Dropped int
}

// Run dispatches events until ctx is done.  On the way out the runners get an
// EmergencyStop so the kart is left stationary.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.TickInterval
	if interval == 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("CONTROLLER: Context done, stopping")
			l.Dispatch(events.Event{Kind: events.EmergencyStop})
			return ctx.Err()
		case <-ticker.C:
			l.Timers.Tick()
		case ev := <-l.Queue.C():
			l.Dispatch(ev)
		}
	}
}

// Dispatch hands one event to the runners.  Stale timeouts are dropped.
func (l *Loop) Dispatch(ev events.Event) {
	if !l.Timers.IsCurrent(ev) {
		l.Dropped++
		return
	}
	for _, r := range l.Runners {
		if ev = r.Run(ev); ev.Kind == events.None {
			break
		}
	}
	if l.AfterEvent != nil {
		l.AfterEvent()
	}
}
