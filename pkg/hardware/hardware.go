package hardware

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/periph/host"

	"github.com/tigerbot-team/kartbot/pkg/beacon"
	"github.com/tigerbot-team/kartbot/pkg/config"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/pca9685"
	"github.com/tigerbot-team/kartbot/pkg/screen"
	"github.com/tigerbot-team/kartbot/pkg/sound"
)

const screenDevice = "/dev/fb1"

type Hardware struct {
	cfg config.Config

	pwm    pca9685.Interface
	motors *motors.Controller
	drs    drs.Conn
	spi    io.Closer

	beacon *beacon.Detector
	screen *screen.Screen

	soundsToPlay chan string
}

// New opens the PWM board, motor direction pins and the SPI link.  Beacon
// periods are fed to d and the status screen is drawn from scr.
func New(cfg config.Config, d *beacon.Detector, scr *screen.Screen) (*Hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialise periph")
	}

	pwm, err := pca9685.New(cfg.Hardware.I2CDevice)
	if err != nil {
		return nil, err
	}
	if err := pwm.Configure(); err != nil {
		_ = pwm.Close()
		return nil, errors.Wrap(err, "failed to configure PWM board")
	}

	m, err := motors.NewController(pwm, cfg.Hardware.Motors)
	if err != nil {
		_ = pwm.Close()
		return nil, err
	}

	conn, closer, err := drs.OpenSPI(cfg.DRS)
	if err != nil {
		motors.Stop(m)
		_ = pwm.Close()
		return nil, err
	}

	return &Hardware{
		cfg:          cfg,
		pwm:          pwm,
		motors:       m,
		drs:          conn,
		spi:          closer,
		beacon:       d,
		screen:       scr,
		soundsToPlay: sound.InitSound(),
	}, nil
}

var _ Interface = (*Hardware)(nil)

func (h *Hardware) Start(ctx context.Context, wg *sync.WaitGroup) error {
	if err := beacon.Watch(ctx, h.cfg.Hardware.BeaconPin, h.beacon, wg); err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.screen.Loop(ctx, screenDevice)
	}()
	return nil
}

func (h *Hardware) Motors() motors.Interface {
	return h.motors
}

func (h *Hardware) Servos() pca9685.Interface {
	return h.pwm
}

func (h *Hardware) DRS() drs.Conn {
	return h.drs
}

func (h *Hardware) Sounds() chan string {
	return h.soundsToPlay
}

func (h *Hardware) Shutdown() {
	fmt.Println("HW: Zeroing motors")
	motors.Stop(h.motors)
	if err := h.spi.Close(); err != nil {
		fmt.Println("HW: Failed to close SPI:", err)
	}
	if err := h.pwm.Close(); err != nil {
		fmt.Println("HW: Failed to close PWM:", err)
	}
	close(h.soundsToPlay)
}
