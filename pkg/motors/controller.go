package motors

import (
	"fmt"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"

	"github.com/tigerbot-team/kartbot/pkg/pca9685"
)

// Pins maps the motors onto the PWM board and the direction GPIOs.
type Pins struct {
	PortPWM         int    `yaml:"portPWM"`
	StarboardPWM    int    `yaml:"starboardPWM"`
	PortDirPin      string `yaml:"portDirPin"`
	StarboardDirPin string `yaml:"starboardDirPin"`
	InvertPort      bool   `yaml:"invertPort"`
	InvertStarboard bool   `yaml:"invertStarboard"`
}

func DefaultPins() Pins {
	return Pins{
		PortPWM:         0,
		StarboardPWM:    1,
		PortDirPin:      "GPIO23",
		StarboardDirPin: "GPIO24",
		InvertStarboard: true,
	}
}

// Controller drives the motors through a PWM board for duty and a GPIO per
// side for polarity.
type Controller struct {
	pwm    pca9685.Interface
	pwmCh  [2]int
	pins   [2]gpio.PinOut
	invert [2]bool

	outputs
}

func NewController(pwm pca9685.Interface, p Pins) (*Controller, error) {
	c := &Controller{
		pwm: pwm,
	}
	c.pwmCh[Port] = p.PortPWM
	c.pwmCh[Starboard] = p.StarboardPWM
	c.invert[Port] = p.InvertPort
	c.invert[Starboard] = p.InvertStarboard

	for ch, name := range map[Channel]string{Port: p.PortDirPin, Starboard: p.StarboardDirPin} {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, errors.Errorf("no GPIO pin %q for %v motor", name, ch)
		}
		c.pins[ch] = pin
	}
	Stop(c)
	c.SetDirection(Port, Forward)
	c.SetDirection(Starboard, Forward)
	return c, nil
}

func (c *Controller) SetDuty(ch Channel, duty uint8) {
	c.duty[ch] = clampDuty(int(duty))
	err := c.pwm.SetPWM(c.pwmCh[ch], float64(c.duty[ch])/100)
	if err != nil {
		fmt.Printf("MOTORS: Failed to set %v duty: %v\n", ch, err)
	}
}

func (c *Controller) SetDirection(ch Channel, dir Direction) {
	c.dir[ch] = dir
	level := gpio.Low
	if (dir == Reverse) != c.invert[ch] {
		level = gpio.High
	}
	if err := c.pins[ch].Out(level); err != nil {
		fmt.Printf("MOTORS: Failed to set %v direction: %v\n", ch, err)
	}
}

var _ Interface = (*Controller)(nil)
