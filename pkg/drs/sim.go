package drs

import (
	"math"
	"sync"
	"time"

	"github.com/tigerbot-team/kartbot/pkg/motors"
	"github.com/tigerbot-team/kartbot/pkg/planner"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

// Sim stands in for the position service when running without hardware.  It
// moves our kart according to the motor outputs and answers queries the way
// the real service does.
type Sim struct {
	lock sync.Mutex

	motors motors.Interface
	tuning planner.Tuning
	now    func() time.Time
	myKart int

	x, y, heading float64
	karts         [4]KartStatus
	last          time.Time
}

func NewSim(m motors.Interface, tuning planner.Tuning, myKart int, start track.Pose, now func() time.Time) *Sim {
	if now == nil {
		now = time.Now
	}
	s := &Sim{
		motors:  m,
		tuning:  tuning,
		now:     now,
		myKart:  myKart,
		x:       float64(start.X),
		y:       float64(start.Y),
		heading: float64(start.Heading),
		last:    now(),
	}
	for n := 1; n <= 3; n++ {
		s.karts[n].LapsRemaining = 3
	}
	return s
}

// SetGameState changes the game state of every kart.
func (s *Sim) SetGameState(g GameState) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for n := 1; n <= 3; n++ {
		s.karts[n].GameState = g
	}
}

func (s *Sim) Pose() track.Pose {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.pose()
}

func (s *Sim) pose() track.Pose {
	return track.Pose{X: clampCoord(s.x), Y: clampCoord(s.y), Heading: uint16(int(s.heading) % 360)}
}

func (s *Sim) Tx(w, r []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.step()
	for i := range r {
		r[i] = 0
	}
	if len(w) == 0 {
		return nil
	}
	switch w[0] {
	case QueryGameState:
		r[1] = 0xaa
		for n := 1; n <= 3; n++ {
			r[statusOffset+n-1] = EncodeStatus(s.karts[n])
		}
	case QueryKart1, QueryKart2, QueryKart3:
		n := kartForQuery(w[0])
		p := s.karts[n].Pose
		if n == s.myKart {
			p = s.pose()
		}
		copy(r, EncodePose(p))
	default:
		for i := 1; i < len(r); i++ {
			r[i] = 0xff
		}
	}
	return nil
}

// step integrates the kart's motion since the last call.  A side at half
// duty covers PixelsPer3Sec in three seconds; opposite sides at half duty
// pivot 360° in RotationTime.
func (s *Sim) step() {
	now := s.now()
	dt := now.Sub(s.last).Seconds()
	s.last = now
	if dt <= 0 || s.motors == nil {
		return
	}

	side := func(ch motors.Channel, half uint8) float64 {
		v := float64(s.motors.Duty(ch)) / float64(half)
		if s.motors.Direction(ch) == motors.Reverse {
			v = -v
		}
		return v
	}
	vp := side(motors.Port, motors.Half.Port)
	vs := side(motors.Starboard, motors.Half.Starboard)

	pxPerSec := float64(s.tuning.PixelsPer3Sec) / 3
	degPerSec := 360 / (float64(s.tuning.RotationTime) / float64(s.tuning.OneSec))

	s.heading += (vs - vp) / 2 * degPerSec * dt
	s.heading = math.Mod(s.heading, 360)
	if s.heading < 0 {
		s.heading += 360
	}
	rad := s.heading * math.Pi / 180
	v := (vp + vs) / 2 * pxPerSec * dt
	s.x += -math.Cos(rad) * v
	s.y += math.Sin(rad) * v
}

func clampCoord(f float64) uint16 {
	if f < 0 {
		return 0
	}
	if f > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(math.Round(f))
}

var _ Conn = (*Sim)(nil)
