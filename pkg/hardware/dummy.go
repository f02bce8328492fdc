package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/beacon"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/pca9685"
)

// Dummy runs the kart against the position service simulator.  The beacon
// is seen every BeaconEvery.
type Dummy struct {
	Sim         *drs.Sim
	BeaconEvery time.Duration

	motors *motors.Dummy
	pwm    pca9685.Interface
	beacon *beacon.Detector
	sounds chan string
}

// NewDummy wires a Sim to dummy motors.  newSim is given the motors so the
// simulated kart follows them.
func NewDummy(d *beacon.Detector, newSim func(m motors.Interface) *drs.Sim) *Dummy {
	m := motors.NewDummy()
	return &Dummy{
		Sim:         newSim(m),
		BeaconEvery: 3 * time.Second,
		motors:      m,
		pwm:         pca9685.Dummy(),
		beacon:      d,
		sounds:      make(chan string, 1),
	}
}

var _ Interface = (*Dummy)(nil)

func (d *Dummy) Start(ctx context.Context, wg *sync.WaitGroup) error {
	fmt.Println("DHW: Start")
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-d.sounds:
				fmt.Printf("DHW: PlaySound path=%v\n", s)
			}
		}
	}()
	go func() {
		defer wg.Done()
		t := time.NewTicker(d.BeaconEvery)
		defer t.Stop()
		period := beacon.ToTicks(time.Second / 1300)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				d.beacon.OnPeriod(period)
			}
		}
	}()
	return nil
}

func (d *Dummy) Motors() motors.Interface {
	return d.motors
}

func (d *Dummy) Servos() pca9685.Interface {
	return d.pwm
}

func (d *Dummy) DRS() drs.Conn {
	return d.Sim
}

func (d *Dummy) Sounds() chan string {
	return d.sounds
}

func (d *Dummy) Shutdown() {
	fmt.Println("DHW: Shutdown")
	motors.Stop(d.motors)
}
