package motors

import "fmt"

type Channel int

const (
	Starboard Channel = 0
	Port      Channel = 1
)

func (c Channel) String() string {
	if c == Port {
		return "port"
	}
	return "starboard"
}

type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Speed is a pair of duty cycles in percent.  The two sides need different
// duties to drive straight.
type Speed struct {
	Port      uint8 `yaml:"port"`
	Starboard uint8 `yaml:"starboard"`
}

var (
	Stopped = Speed{0, 0}
	Quarter = Speed{Port: 50, Starboard: 53}
	Half    = Speed{Port: 71, Starboard: 75}
	Full    = Speed{Port: 100, Starboard: 100}
)

// Plus adds delta percent to both sides, clamping into [0, 100].
func (s Speed) Plus(delta int) Speed {
	return Speed{Port: clampDuty(int(s.Port) + delta), Starboard: clampDuty(int(s.Starboard) + delta)}
}

func clampDuty(d int) uint8 {
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return uint8(d)
}

// Interface is the pair of drive motors.  Implementations remember the last
// values written so that motion can be suspended and resumed.
type Interface interface {
	SetDuty(ch Channel, duty uint8)
	SetDirection(ch Channel, dir Direction)
	Duty(ch Channel) uint8
	Direction(ch Channel) Direction
}

// Drive sets both directions and then both duties.
func Drive(m Interface, portDir Direction, starboardDir Direction, s Speed) {
	m.SetDirection(Port, portDir)
	m.SetDirection(Starboard, starboardDir)
	m.SetDuty(Port, s.Port)
	m.SetDuty(Starboard, s.Starboard)
}

// Stop zeroes both duties.  Directions are left alone.
func Stop(m Interface) {
	m.SetDuty(Port, 0)
	m.SetDuty(Starboard, 0)
}

// Snapshot is the complete output state of the motors.
type Snapshot struct {
	DutyPort      uint8
	DutyStarboard uint8
	DirPort       Direction
	DirStarboard  Direction
}

func Capture(m Interface) Snapshot {
	return Snapshot{
		DutyPort:      m.Duty(Port),
		DutyStarboard: m.Duty(Starboard),
		DirPort:       m.Direction(Port),
		DirStarboard:  m.Direction(Starboard),
	}
}

func (s Snapshot) Restore(m Interface) {
	Drive(m, s.DirPort, s.DirStarboard, Speed{Port: s.DutyPort, Starboard: s.DutyStarboard})
}

func (s Snapshot) String() string {
	return fmt.Sprintf("port %d%% %v, starboard %d%% %v", s.DutyPort, s.DirPort, s.DutyStarboard, s.DirStarboard)
}
