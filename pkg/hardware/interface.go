package hardware

import (
	"context"
	"sync"

	"github.com/tigerbot-team/kartbot/pkg/drs"
	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/pca9685"
)

// Interface is everything on the kart that talks to the outside world.
type Interface interface {
	// Start launches the background producers.  They stop when ctx is done
	// and call wg.Done.
	Start(ctx context.Context, wg *sync.WaitGroup) error

	Motors() motors.Interface
	// Servos is the PWM board that carries the launcher servos.
	Servos() pca9685.Interface
	DRS() drs.Conn
	Sounds() chan string

	Shutdown()
}
