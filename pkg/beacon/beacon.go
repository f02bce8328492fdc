package beacon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"

	"github.com/tigerbot-team/kartbot/pkg/events"
)

// Periods are measured in ticks of a 40MHz capture clock.
const TicksPerMS = 40000

type Band struct {
	Low  uint32 `yaml:"low"`
	High uint32 `yaml:"high"`
}

// DefaultBand accepts the shooting target's beacon.
var DefaultBand = Band{Low: 30000, High: 33000}

func (b Band) Contains(period uint32) bool {
	return period >= b.Low && period <= b.High
}

// Detector turns edge periods into DetectedBeacon events while armed.  Arm
// and Disarm are called from the event loop; OnPeriod from the capture
// goroutine.
type Detector struct {
	band   Band
	poster events.Poster
	armed  atomic.Bool
	last   atomic.Uint32
}

func NewDetector(band Band, poster events.Poster) *Detector {
	return &Detector{band: band, poster: poster}
}

func (d *Detector) Arm() {
	d.armed.Store(true)
}

func (d *Detector) Disarm() {
	d.armed.Store(false)
}

func (d *Detector) Armed() bool {
	return d.armed.Load()
}

// LastPeriod returns the most recent period seen, armed or not.
func (d *Detector) LastPeriod() uint32 {
	return d.last.Load()
}

// OnPeriod records a period and posts at most one DetectedBeacon per arming.
func (d *Detector) OnPeriod(period uint32) {
	d.last.Store(period)
	if !d.band.Contains(period) {
		return
	}
	if d.armed.CompareAndSwap(true, false) {
		d.poster.Post(events.Event{Kind: events.DetectedBeacon})
	}
}

// ToTicks converts a measured period to capture ticks.
func ToTicks(period time.Duration) uint32 {
	t := period * TicksPerMS / time.Millisecond
	if t < 0 || t > 1<<32-1 {
		return 1<<32 - 1
	}
	return uint32(t)
}

// Watch measures the period between rising edges on the named pin and feeds
// it to d until ctx is done.
func Watch(ctx context.Context, pinName string, d *Detector, wg *sync.WaitGroup) error {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return errors.Errorf("no GPIO pin %q for the beacon sensor", pinName)
	}
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return errors.Wrapf(err, "failed to configure beacon pin %s", pinName)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer pin.In(gpio.PullDown, gpio.NoEdge)
		fmt.Println("BEACON: Watching", pinName)
		var last time.Time
		for ctx.Err() == nil {
			if !pin.WaitForEdge(100 * time.Millisecond) {
				last = time.Time{}
				continue
			}
			now := time.Now()
			if !last.IsZero() {
				d.OnPeriod(ToTicks(now.Sub(last)))
			}
			last = now
		}
	}()
	return nil
}
