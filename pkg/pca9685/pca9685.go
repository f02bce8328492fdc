package pca9685

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/io/i2c"
)

const (
	DefaultAddr = 0x40

	RegMode1 = 0x00
	RegMode2 = 0x01

	// Each PWM output has two 16-bit (low byte first) registers.
	// First register is the on time, second is the off time.
	RegLEDBase = 0x06

	RegPreScale = 0xfe // Pre-scaler for PWM frequency.

	PWMPeriod = 20 * time.Millisecond
	PWMMax    = 4095

	// Servo pulses outside this range can stall the launcher servos.
	MinPulse = 500 * time.Microsecond
	MaxPulse = 2500 * time.Microsecond

	NumPorts = 16
)

type Interface interface {
	Configure() error
	// SetPWM sets the duty cycle of a port, 0.0-1.0.
	SetPWM(port int, value float64) error
	// SetPulse sets the high time of a port's 20ms period.
	SetPulse(port int, width time.Duration) error
	Close() error
}

type PCA9685 struct {
	dev *i2c.Device
}

func New(deviceFile string) (Interface, error) {
	dev, err := i2c.Open(&i2c.Devfs{Dev: deviceFile}, DefaultAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open PCA9685 on %s", deviceFile)
	}
	return &PCA9685{
		dev: dev,
	}, nil
}

func (p *PCA9685) Configure() (err error) {
	// Put device to sleep.
	err = p.dev.WriteReg(RegMode1, []byte{0x11})
	if err != nil {
		return
	}
	// Update pre-scaler for 50Hz.
	err = p.dev.WriteReg(RegPreScale, []byte{0x79})
	if err != nil {
		return
	}
	// Trigger a reset
	err = p.dev.WriteReg(RegMode1, []byte{0x01})
	if err != nil {
		return
	}
	// Required delay after reset.
	time.Sleep(1 * time.Millisecond)
	// Enable.
	err = p.dev.WriteReg(RegMode1, []byte{0x81})
	return
}

func (p *PCA9685) SetPWM(port int, value float64) error {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	return p.write(port, uint16(PWMMax*value))
}

func (p *PCA9685) SetPulse(port int, width time.Duration) error {
	return p.write(port, PulseToCount(width))
}

func (p *PCA9685) write(port int, count uint16) error {
	if port < 0 || port >= NumPorts {
		return errors.Errorf("PWM port %d out of range", port)
	}
	addr := RegLEDBase + port*4
	return p.dev.WriteReg(byte(addr), []byte{0, 0, byte(count & 0xff), byte(count >> 8)})
}

func (p *PCA9685) Close() error {
	return p.dev.Close()
}

// PulseToCount converts a pulse width to the off-time register value,
// clamping to the safe servo range.
func PulseToCount(width time.Duration) uint16 {
	if width < MinPulse {
		width = MinPulse
	} else if width > MaxPulse {
		width = MaxPulse
	}
	return uint16(PWMMax * width / PWMPeriod)
}

func Dummy() Interface {
	return &dummyPWM{}
}

type dummyPWM struct {
}

func (*dummyPWM) Configure() error {
	fmt.Println("DPWM: Configure")
	return nil
}

func (*dummyPWM) SetPWM(port int, value float64) error {
	return nil
}

func (*dummyPWM) SetPulse(port int, width time.Duration) error {
	fmt.Printf("DPWM: SetPulse port=%v width=%v\n", port, width)
	return nil
}

func (*dummyPWM) Close() error {
	return nil
}
