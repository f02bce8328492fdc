// Package config loads the kart's YAML configuration.  Anything missing from
// the file keeps its default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tigerbot-team/kartbot/pkg/beacon"
	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/launcher"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

const DefaultPath = "/cfg/kartbot.yaml"

type Kart struct {
	// Number is our kart on the position service, 1-3.
	Number int `yaml:"number"`
	// Start is where the simulated kart begins in dummy mode.
	Start track.Pose `yaml:"start"`
}

type Hardware struct {
	I2CDevice string          `yaml:"i2cDevice"`
	Motors    motors.Pins     `yaml:"motors"`
	BeaconPin string          `yaml:"beaconPin"`
	Launcher  launcher.Config `yaml:"launcher"`
}

type Config struct {
	Kart     Kart           `yaml:"kart"`
	DRS      drs.Config     `yaml:"drs"`
	Hardware Hardware       `yaml:"hardware"`
	Track    track.Geometry `yaml:"track"`
	Tuning   planner.Tuning `yaml:"tuning"`
	Beacon   beacon.Band    `yaml:"beacon"`
}

func Default() Config {
	return Config{
		Kart: Kart{
			Number: 1,
			Start:  track.Pose{X: 100, Y: 150, Heading: 180},
		},
		DRS: drs.DefaultConfig(),
		Hardware: Hardware{
			I2CDevice: "/dev/i2c-1",
			Motors:    motors.DefaultPins(),
			BeaconPin: "GPIO17",
			Launcher:  launcher.DefaultConfig(),
		},
		Track:  track.DefaultGeometry(),
		Tuning: planner.DefaultTuning(),
		Beacon: beacon.DefaultBand,
	}
}

// Load reads path over the defaults.  A missing file isn't an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		fmt.Printf("CONFIG: %s not found, using defaults\n", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Kart.Number < 1 || c.Kart.Number > 3 {
		return errors.Errorf("kart number must be 1-3, not %d", c.Kart.Number)
	}
	if c.Tuning.OneSec <= 0 || c.Tuning.PixelsPer3Sec <= 0 {
		return errors.New("tuning oneSec and pixelsPer3Sec must be positive")
	}
	if c.Tuning.RotationTime <= 0 {
		return errors.Errorf("tuning rotationTime must be positive, not %d", c.Tuning.RotationTime)
	}
	// Banked turns are timed per degree of a quarter turn.
	if c.Tuning.Bank90Time < 90 {
		return errors.Errorf("tuning bank90Time must be at least 90, not %d", c.Tuning.Bank90Time)
	}
	if c.Tuning.DriveScale <= 0 || c.Tuning.BankScale <= 0 {
		return errors.Errorf("tuning driveScale and bankScale must be positive, not %v and %v",
			c.Tuning.DriveScale, c.Tuning.BankScale)
	}
	if c.Beacon.Low > c.Beacon.High {
		return errors.Errorf("beacon band %d-%d is empty", c.Beacon.Low, c.Beacon.High)
	}
	return nil
}

func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(&c)
	return data, errors.Wrap(err, "failed to marshal config")
}

// InUsePath is where the effective config for path is written.
func InUsePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-in-use" + ext
}

// WriteInUse records the config that's actually being used next to path.
func (c Config) WriteInUse(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	out := InUsePath(path)
	if err := os.WriteFile(out, data, 0666); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	return nil
}
