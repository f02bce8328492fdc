package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/config"
	"github.com/tigerbot-team/kartbot/pkg/pca9685"
)

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
	lc := cfg.Hardware.Launcher

	pwmController, err := pca9685.New(cfg.Hardware.I2CDevice)
	if err != nil {
		fmt.Println("Failed to open PCA9685", err)
		return
	}
	defer pwmController.Close()

	err = pwmController.Configure()
	if err != nil {
		fmt.Println("Failed to configure PCA9685", err)
		return
	}

	fmt.Printf(`Commands:
    s <n> <micros>          # Servo pulse width
    p <n> <pwm-duty-cycle>  # Raw PWM
    f                       # Flick, then reset (flicker on %d)
    l                       # Open then close the hopper (hopper on %d)

<n>               Port number 0-15
<micros>          Pulse width in microseconds, %v-%v
<pwm-duty-cycle>  Raw PWM duty cycle 0.0-1.0; 0=fully off, 1.0=fully on
`, lc.FlickerChannel, lc.HopperChannel, pca9685.MinPulse, pca9685.MaxPulse)

	pulse := func(n, us int) {
		fmt.Printf("Setting servo %d to %dus\n", n, us)
		if err := pwmController.SetPulse(n, time.Duration(us)*time.Microsecond); err != nil {
			fmt.Println("Failed to write to PCA9685: ", err)
		}
	}
	cycle := time.Duration(lc.CycleMS) * time.Millisecond

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nFailed to read stdin: ", err)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "f":
			pulse(lc.FlickerChannel, lc.FlickerFlick)
			time.Sleep(cycle)
			pulse(lc.FlickerChannel, lc.FlickerReset)
			time.Sleep(cycle)
			pulse(lc.FlickerChannel, lc.FlickerSet)
		case "l":
			pulse(lc.HopperChannel, lc.HopperOpen)
			time.Sleep(cycle)
			pulse(lc.HopperChannel, lc.HopperSet)
		case "s", "p":
			if len(parts) < 3 {
				fmt.Println("Not enough parameters")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Expected int, not ", parts[1])
				continue
			}
			if n < 0 || n >= pca9685.NumPorts {
				fmt.Println("Expected 0 <= n < 16")
				continue
			}
			if parts[0] == "s" {
				us, err := strconv.Atoi(parts[2])
				if err != nil {
					fmt.Println("Expected int, not ", parts[2])
					continue
				}
				pulse(n, us)
				continue
			}
			v, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				fmt.Println("Expected float, not ", parts[2])
				continue
			}
			fmt.Printf("Setting PWM %d to %f\n", n, v)
			if err := pwmController.SetPWM(n, v); err != nil {
				fmt.Println("Failed to write to PCA9685: ", err)
				return
			}
		}
	}
}
