package launcher

import (
	"fmt"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/timers"
)

// Servos is the part of the PWM board the launcher needs.
type Servos interface {
	SetPulse(port int, width time.Duration) error
}

// Config holds servo channels and pulse widths in microseconds.
type Config struct {
	FlickerChannel int `yaml:"flickerChannel"`
	HopperChannel  int `yaml:"hopperChannel"`

	FlickerSet   int `yaml:"flickerSet"`
	FlickerFlick int `yaml:"flickerFlick"`
	FlickerReset int `yaml:"flickerReset"`
	HopperSet    int `yaml:"hopperSet"`
	HopperOpen   int `yaml:"hopperOpen"`

	// CycleMS is how long each servo move is given to complete.
	CycleMS int `yaml:"cycleMS"`
}

func DefaultConfig() Config {
	return Config{
		FlickerChannel: 2,
		HopperChannel:  3,
		FlickerSet:     1400,
		FlickerFlick:   850,
		FlickerReset:   1900,
		HopperSet:      1000,
		HopperOpen:     1500,
		CycleMS:        500,
	}
}

type State int

const (
	Resetting State = iota
	Ready
)

func (s State) String() string {
	if s == Ready {
		return "Ready"
	}
	return "Resetting"
}

// Launcher flicks a ball with one servo and reloads from a hopper gated by
// another.  After every shot it pulls the flicker back, closing the hopper,
// then returns to the start position and opens the hopper to drop the next
// ball.
type Launcher struct {
	cfg    Config
	servos Servos
	timers timers.Interface
	state  State
}

func New(cfg Config, servos Servos, t timers.Interface) *Launcher {
	return &Launcher{cfg: cfg, servos: servos, timers: t}
}

// Start resets the servos and begins the first reload.
func (l *Launcher) Start() {
	l.reset()
	fmt.Println("LAUNCHER: Initialised")
}

func (l *Launcher) State() State {
	return l.state
}

// Fire flicks the ball.  The launcher reloads itself afterwards.
func (l *Launcher) Fire() {
	fmt.Println("LAUNCHER: Fire!")
	l.set(l.cfg.FlickerChannel, l.cfg.FlickerFlick)
	l.state = Ready
	l.timers.Start(timers.BallShooter, l.cfg.CycleMS)
}

// Load opens the hopper to drop a ball onto the flicker.
func (l *Launcher) Load() {
	fmt.Println("LAUNCHER: Loading")
	l.set(l.cfg.HopperChannel, l.cfg.HopperOpen)
}

func (l *Launcher) Run(ev events.Event) events.Event {
	if !timers.Expired(ev, timers.BallShooter) {
		return ev
	}
	switch l.state {
	case Ready:
		l.reset()
	case Resetting:
		l.set(l.cfg.FlickerChannel, l.cfg.FlickerSet)
		l.Load()
		l.state = Ready
	}
	return events.Consumed
}

func (l *Launcher) reset() {
	l.set(l.cfg.FlickerChannel, l.cfg.FlickerReset)
	l.set(l.cfg.HopperChannel, l.cfg.HopperSet)
	l.state = Resetting
	l.timers.Start(timers.BallShooter, l.cfg.CycleMS)
}

func (l *Launcher) set(ch int, us int) {
	if err := l.servos.SetPulse(ch, time.Duration(us)*time.Microsecond); err != nil {
		fmt.Printf("LAUNCHER: Failed to set servo %d: %v\n", ch, err)
	}
}
