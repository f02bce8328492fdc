package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"periph.io/x/periph/host"

	"github.com/tigerbot-team/kartbot/pkg/angle"
	"github.com/tigerbot-team/kartbot/pkg/config"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/motion"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/pca9685"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/smoother"
	"github.com/tigerbot-team/kartbot/pkg/timers"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

var scanner *bufio.Scanner

func init() {
	scanner = bufio.NewScanner(os.Stdin)
}

func waitForEnter(prompt string) {
	fmt.Println(prompt)
	if !scanner.Scan() {
		panic(scanner.Err())
	}
}

// getFloat asks for a measurement when the position service can't see us.
func getFloat(prompt string) float64 {
	for {
		fmt.Println(prompt)
		if !scanner.Scan() {
			panic(scanner.Err())
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err == nil {
			return v
		}
		fmt.Printf("error: %v, please try again:\n", err)
	}
}

type rig struct {
	m      motors.Interface
	client *drs.Client
	tuning planner.Tuning
}

// pose polls a full query cycle so every field is fresh.
func (r *rig) pose() (track.Pose, bool) {
	ok := true
	for i := 0; i < 8; i++ {
		if err := r.client.Poll(); err != nil {
			fmt.Println("DRS:", err)
			ok = false
		}
		time.Sleep(10 * time.Millisecond)
	}
	p, _ := r.client.Locate()
	return p, ok
}

func (r *rig) run(ms int, start func()) {
	start()
	// Timer milliseconds run at OneSec per second.
	time.Sleep(time.Duration(ms) * time.Second / time.Duration(r.tuning.OneSec))
	motors.Stop(r.m)
	time.Sleep(500 * time.Millisecond)
}

func (r *rig) calibrateDrive() {
	waitForEnter("Place the kart on a straight and press enter to drive for 3s")
	before, ok1 := r.pose()
	r.run(3*r.tuning.OneSec, func() {
		motors.Drive(r.m, motors.Forward, motors.Forward, motors.Half)
	})
	after, ok2 := r.pose()

	var dist float64
	if ok1 && ok2 {
		dist = math.Hypot(float64(after.X)-float64(before.X), float64(after.Y)-float64(before.Y))
		fmt.Printf("Moved %v -> %v\n", before, after)
	} else {
		dist = getFloat("Enter distance driven (pixels):")
	}
	fmt.Printf("pixelsPer3Sec: %d (was %d)\n", int(math.Round(dist)), r.tuning.PixelsPer3Sec)
}

func (r *rig) calibratePivot() {
	waitForEnter("Press enter to pivot CCW for one nominal turn")
	before, ok1 := r.pose()
	r.run(r.tuning.RotationTime, func() {
		motion.Pivot(r.m, planner.CCW, motors.Half)
	})
	after, ok2 := r.pose()

	var turned float64
	if ok1 && ok2 {
		// A nominal full turn ends near where it started.
		residual := angle.Delta(int(before.Heading), int(after.Heading))
		fmt.Printf("Heading %d -> %d, residual %d°\n", before.Heading, after.Heading, residual)
		turned = float64(360 + residual)
	} else {
		turned = getFloat("Enter degrees turned:")
	}
	if turned <= 0 {
		fmt.Println("Didn't turn")
		return
	}
	fmt.Printf("rotationTime: %d (was %d)\n", int(float64(r.tuning.RotationTime)*360/turned), r.tuning.RotationTime)
}

func main() {
	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("Failed to load config", err)
		return
	}

	if _, err := host.Init(); err != nil {
		fmt.Println("Failed to initialise periph", err)
		return
	}
	pwm, err := pca9685.New(cfg.Hardware.I2CDevice)
	if err != nil {
		fmt.Println("Failed to open PCA9685", err)
		return
	}
	defer pwm.Close()
	if err := pwm.Configure(); err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}
	m, err := motors.NewController(pwm, cfg.Hardware.Motors)
	if err != nil {
		fmt.Println("Failed to open motors", err)
		return
	}
	defer motors.Stop(m)

	conn, closer, err := drs.OpenSPI(cfg.DRS)
	if err != nil {
		fmt.Println("Failed to open DRS", err)
		return
	}
	defer closer.Close()
	q := events.NewQueue(16)
	client, err := drs.NewClient(conn, cfg.Kart.Number, cfg.DRS, q, timers.New(q, nil), smoother.New())
	if err != nil {
		fmt.Println(err)
		return
	}

	r := &rig{m: m, client: client, tuning: cfg.Tuning}
	r.calibrateDrive()
	r.calibratePivot()
}
