package timers

import (
	"fmt"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/events"
)

type ID int

const (
	Drive ID = iota
	Rotate
	Obs
	Nitro
	Check
	LoadBall
	FireBall
	BackToCourse
	GiveUp
	DRS
	BallShooter

	numTimers
)

var idNames = [numTimers]string{
	"DRIVE", "ROTATE", "OBS", "NITRO", "CHECK", "LOAD_BALL", "FIRE_BALL",
	"BACK_TO_COURSE", "GIVE_UP", "DRS", "BALL_SHOOTER",
}

func (id ID) String() string {
	if id < 0 || id >= numTimers {
		return fmt.Sprintf("TIMER(%d)", int(id))
	}
	return idNames[id]
}

// Expired returns true if ev is a timeout of the given timer.
func Expired(ev events.Event, id ID) bool {
	return ev.Kind == events.Timeout && ID(ev.Param) == id
}

// Pending is a timer that was stopped by Suspend along with the time it had
// left to run.
type Pending struct {
	ID ID
	MS int
}

type Interface interface {
	Start(id ID, ms int)
	Stop(id ID)
	IsActive(id ID) bool
	// Suspend stops every active timer apart from those listed in keep.
	Suspend(keep ...ID) []Pending
	// Resume restarts timers returned by Suspend.
	Resume(p []Pending)
}

type timer struct {
	active   bool
	deadline time.Time
	seq      uint64
}

// Service is a set of one-shot millisecond timers.  Expirations are found by
// Tick, which is called from the event loop, and posted as Timeout events.
// Service is not safe for concurrent use.
type Service struct {
	poster events.Poster
	now    func() time.Time
	timers [numTimers]timer
}

func New(poster events.Poster, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		poster: poster,
		now:    now,
	}
}

var _ Interface = (*Service)(nil)

// Start (re)starts the timer to expire in ms milliseconds.
func (s *Service) Start(id ID, ms int) {
	if ms < 0 {
		ms = 0
	}
	t := &s.timers[id]
	t.seq++
	t.active = true
	t.deadline = s.now().Add(time.Duration(ms) * time.Millisecond)
}

func (s *Service) Stop(id ID) {
	t := &s.timers[id]
	if t.active {
		t.seq++
	}
	t.active = false
}

func (s *Service) IsActive(id ID) bool {
	return s.timers[id].active
}

// Remaining returns the milliseconds left on an active timer, 0 otherwise.
func (s *Service) Remaining(id ID) int {
	t := &s.timers[id]
	if !t.active {
		return 0
	}
	left := t.deadline.Sub(s.now())
	if left < 0 {
		return 0
	}
	return int((left + time.Millisecond - 1) / time.Millisecond)
}

func (s *Service) Suspend(keep ...ID) []Pending {
	var pending []Pending
outer:
	for id := ID(0); id < numTimers; id++ {
		if !s.timers[id].active {
			continue
		}
		for _, k := range keep {
			if k == id {
				continue outer
			}
		}
		pending = append(pending, Pending{ID: id, MS: s.Remaining(id)})
		s.Stop(id)
	}
	return pending
}

func (s *Service) Resume(p []Pending) {
	for _, pt := range p {
		s.Start(pt.ID, pt.MS)
	}
}

// Tick posts a timeout for every timer whose deadline has passed.
func (s *Service) Tick() {
	now := s.now()
	for id := ID(0); id < numTimers; id++ {
		t := &s.timers[id]
		if !t.active || now.Before(t.deadline) {
			continue
		}
		t.active = false
		s.poster.Post(events.Event{Kind: events.Timeout, Param: int(id), Seq: t.seq})
	}
}

// IsCurrent returns false for a timeout event whose timer has been restarted
// or stopped since it expired.  Such events are stale and must be dropped.
func (s *Service) IsCurrent(ev events.Event) bool {
	if ev.Kind != events.Timeout {
		return true
	}
	id := ID(ev.Param)
	if id < 0 || id >= numTimers {
		return false
	}
	t := &s.timers[id]
	return !t.active && t.seq == ev.Seq
}
