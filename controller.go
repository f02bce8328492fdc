package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tigerbot-team/kartbot/pkg/beacon"
	"github.com/tigerbot-team/kartbot/pkg/config"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/hardware"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/robot"
	"github.com/tigerbot-team/kartbot/pkg/screen"
)

var CLI struct {
	ConfigPath string `name:"config" help:"Config file." default:"/cfg/kartbot.yaml" type:"path"`
	Kart       int    `help:"Override the kart number (1-3)."`

	Run  RunCmd  `cmd:"" default:"1" help:"Race."`
	Show ShowCmd `cmd:"" name:"config" help:"Print the effective config."`
	Map  MapCmd  `cmd:"" help:"Render the track map to a PNG."`
}

type Context struct {
	path string
	cfg  config.Config
}

type RunCmd struct {
	Dummy     bool          `help:"Run against the position service simulator."`
	FlagAfter time.Duration `help:"In dummy mode, drop the flag after this long." default:"2s"`
}

func (c *RunCmd) Run(ctx *Context) error {
	fmt.Print("---- Kartbot ----\n\n")
	fmt.Println("GOMAXPROCS", runtime.GOMAXPROCS(0))
	cfg := ctx.cfg

	// Our global context, we cancel it to trigger shutdown.
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancel()
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}()

	q := events.NewQueue(robot.QueueSize)
	d := beacon.NewDetector(cfg.Beacon, q)
	scr := screen.New(cfg.Track)

	var hw hardware.Interface
	if c.Dummy {
		dh := hardware.NewDummy(d, func(m motors.Interface) *drs.Sim {
			return drs.NewSim(m, cfg.Tuning, cfg.Kart.Number, cfg.Kart.Start, nil)
		})
		go func() {
			time.Sleep(c.FlagAfter)
			fmt.Println("DUMMY: Dropping the flag")
			dh.Sim.SetGameState(drs.FlagDropped)
		}()
		hw = dh
	} else {
		h, err := hardware.New(cfg, d, scr)
		if err != nil {
			return err
		}
		hw = h
	}
	defer hw.Shutdown()

	if err := cfg.WriteInUse(ctx.path); err != nil {
		fmt.Println("Failed to record config:", err)
	}

	r, err := robot.New(cfg, hw, q, d, scr, nil)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if err := hw.Start(runCtx, &wg); err != nil {
		return err
	}
	r.Start()
	err = r.Run(runCtx)
	cancel()
	wg.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *Context) error {
	data, err := ctx.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

type MapCmd struct {
	Out string `help:"Output file." default:"map.png" type:"path"`
}

func (c *MapCmd) Run(ctx *Context) error {
	st := screen.Status{
		GameState: "MAP",
		Machine:   fmt.Sprintf("KART %d", ctx.cfg.Kart.Number),
		Pose:      ctx.cfg.Kart.Start,
	}
	if err := screen.SavePNG(c.Out, st, ctx.cfg.Track); err != nil {
		return err
	}
	fmt.Println("Wrote", c.Out)
	return nil
}

func main() {
	k := kong.Parse(&CLI,
		kong.Name("kartbot"),
		kong.Description("Autonomous kart controller."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(CLI.ConfigPath)
	k.FatalIfErrorf(err)
	if CLI.Kart != 0 {
		cfg.Kart.Number = CLI.Kart
		k.FatalIfErrorf(cfg.Validate())
	}

	k.FatalIfErrorf(k.Run(&Context{path: CLI.ConfigPath, cfg: cfg}))
}
