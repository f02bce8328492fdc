// Package robot assembles the kart's control system on top of a hardware
// bundle.
package robot

import (
	"context"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/beacon"
	"github.com/tigerbot-team/kartbot/pkg/config"
	"github.com/tigerbot-team/kartbot/pkg/controller"
	"github.com/tigerbot-team/kartbot/pkg/driving"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/gameplay"
	"github.com/tigerbot-team/kartbot/pkg/hardware"
	"github.com/tigerbot-team/kartbot/pkg/kart"
	"github.com/tigerbot-team/kartbot/pkg/launcher"
	"github.com/tigerbot-team/kartbot/pkg/motion"
	"github.com/tigerbot-team/kartbot/pkg/obstacle"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/screen"
	"github.com/tigerbot-team/kartbot/pkg/shooting"
	"github.com/tigerbot-team/kartbot/pkg/smoother"
	"github.com/tigerbot-team/kartbot/pkg/sound"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// QueueSize bounds the event queue.
const QueueSize = 64

type Robot struct {
	Queue    *events.Queue
	Timers   *timers.Service
	DRS      *drs.Client
	Kart     *kart.Kart
	Launcher *launcher.Launcher
	GamePlay *gameplay.GamePlay
	Loop     *controller.Loop

	myKart int
	screen *screen.Screen
}

// New builds the robot.  q must be the queue d posts to.  now drives the
// timers; nil means the wall clock.
func New(cfg config.Config, hw hardware.Interface, q *events.Queue, d *beacon.Detector,
	scr *screen.Screen, now func() time.Time) (*Robot, error) {
	ts := timers.New(q, now)
	sm := smoother.New()

	client, err := drs.NewClient(hw.DRS(), cfg.Kart.Number, cfg.DRS, q, ts, sm)
	if err != nil {
		return nil, err
	}

	classifier := track.NewClassifier(cfg.Track)
	k := &kart.Kart{
		Motors:     hw.Motors(),
		Timers:     ts,
		Events:     q,
		Locator:    client,
		Classifier: classifier,
		Tuning:     cfg.Tuning,
		Planner:    planner.New(client, classifier, cfg.Tuning, q),
		Executor:   motion.New(hw.Motors(), ts, q, sm),
	}

	l := launcher.New(cfg.Hardware.Launcher, hw.Servos(), ts)
	game := gameplay.NewRunningGame(driving.New(k), shooting.New(k, d, l), obstacle.New(k))
	gp := gameplay.New(k, game, l, sound.NewPlayer(sound.DefaultCues(), hw.Sounds()))

	r := &Robot{
		Queue:    q,
		Timers:   ts,
		DRS:      client,
		Kart:     k,
		Launcher: l,
		GamePlay: gp,
		myKart:   cfg.Kart.Number,
		screen:   scr,
	}
	r.Loop = &controller.Loop{
		Queue:      q,
		Timers:     ts,
		Runners:    []controller.Runner{client, gp},
		AfterEvent: r.updateScreen,
	}
	return r, nil
}

// Start puts the kart on the grid and starts polling the position service.
func (r *Robot) Start() {
	r.GamePlay.Start()
	r.Launcher.Start()
	r.DRS.Start()
}

func (r *Robot) Run(ctx context.Context) error {
	return r.Loop.Run(ctx)
}

// Status summarises the race for the screen.
func (r *Robot) Status() screen.Status {
	me := r.DRS.QueryMyKart()
	st := screen.Status{
		GameState: me.GameState.String(),
		Laps:      int(me.LapsRemaining),
		Machine:   r.GamePlay.Status(),
		Paused:    r.GamePlay.State() == gameplay.Pause,
		Pose:      me.Pose,
	}
	for n := 1; n <= 3; n++ {
		if n != r.myKart {
			st.Peers = append(st.Peers, r.DRS.QueryKart(n).Pose)
		}
	}
	return st
}

func (r *Robot) updateScreen() {
	if r.screen != nil {
		r.screen.Update(r.Status())
	}
}
