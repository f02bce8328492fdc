package planner

import (
	"fmt"
	"math"

	"github.com/quartercastle/vector"

	"github.com/tigerbot-team/kartbot/pkg/angle"
	"github.com/tigerbot-team/kartbot/pkg/events"
	"github.com/tigerbot-team/kartbot/pkg/track"
)

type Turn int

const (
	NoTurn Turn = iota
	BankTurn
	PivotTurn
)

func (t Turn) String() string {
	switch t {
	case NoTurn:
		return "none"
	case BankTurn:
		return "bank"
	case PivotTurn:
		return "pivot"
	}
	return fmt.Sprintf("Turn(%d)", int(t))
}

type Direction int

const (
	CCW Direction = iota
	CW
)

func (d Direction) String() string {
	if d == CW {
		return "CW"
	}
	return "CCW"
}

// Plan is one turn-then-drive hop.  Durations are in timer milliseconds.
type Plan struct {
	Target         track.Point
	Zone           track.Zone
	DesiredHeading int
	// Delta is the signed turn in (-180, 180]; Magnitude is its absolute value.
	Delta     int
	Magnitude int
	Direction Direction
	Turn      Turn
	TurnMS    int
	DriveMS   int
}

func (p Plan) String() string {
	return fmt.Sprintf("to %v heading %d: %s %s %d° for %dms, drive %dms",
		p.Target, p.DesiredHeading, p.Turn, p.Direction, p.Magnitude, p.TurnMS, p.DriveMS)
}

// Tuning holds the kart's calibration.  None of these are derivable; they
// were measured on the track.
type Tuning struct {
	// Timer units per second.
	OneSec int `yaml:"oneSec"`
	// Time for a full 360° pivot at half speed.
	RotationTime int `yaml:"rotationTime"`
	// Time for a 90° banked turn.
	Bank90Time    int `yaml:"bank90Time"`
	PixelsPer3Sec int `yaml:"pixelsPer3Sec"`
	// Drive and bank times are scaled down to allow for system lag.
	DriveScale float64 `yaml:"driveScale"`
	BankScale  float64 `yaml:"bankScale"`
	// The kart under-rotates on the top and right straights.
	TurnBumpMS int `yaml:"turnBumpMS"`
	NoTurnDeg  int `yaml:"noTurnDeg"`
	PivotDeg   int `yaml:"pivotDeg"`
}

func DefaultTuning() Tuning {
	const oneSec = 976
	return Tuning{
		OneSec:        oneSec,
		RotationTime:  oneSec*2 - 190,
		Bank90Time:    1800,
		PixelsPer3Sec: 115,
		DriveScale:    0.9,
		BankScale:     0.9,
		TurnBumpMS:    40,
		NoTurnDeg:     5,
		PivotDeg:      20,
	}
}

// MaxHopMS is the longest a single drive leg may run before re-planning.
func (t Tuning) MaxHopMS() int {
	return t.OneSec / 2
}

// RotationMS is the time to pivot through delta degrees at half speed.
func (t Tuning) RotationMS(delta int) int {
	return t.RotationTime * angle.Abs(delta) / 360
}

// Compute plans a hop from pose towards target.
func Compute(target track.Point, pose track.Pose, zone track.Zone, tu Tuning) Plan {
	d := vector.Vector{float64(target.X), float64(target.Y)}.
		Sub(vector.Vector{float64(pose.X), float64(pose.Y)})

	driveMS := int(d.Magnitude() * float64(3*tu.OneSec) / float64(tu.PixelsPer3Sec))
	if driveMS > tu.MaxHopMS() {
		driveMS = tu.MaxHopMS()
	}
	driveMS = int(float64(driveMS) * tu.DriveScale)

	desired := HeadingTo(d[0], d[1], int(pose.Heading))
	p := planTurn(desired, pose, zone, tu)
	p.Target = target
	if p.Turn != BankTurn {
		// A banked turn has already moved the kart; re-plan instead of driving.
		p.DriveMS = driveMS
	}
	return p
}

// ComputeHeading plans a turn onto a fixed heading followed by a full hop.
func ComputeHeading(desired int, pose track.Pose, zone track.Zone, tu Tuning) Plan {
	p := planTurn(angle.Normalize(desired), pose, zone, tu)
	p.Target = pose.Point()
	if p.Turn != BankTurn {
		p.DriveMS = int(float64(tu.MaxHopMS()) * tu.DriveScale)
	}
	return p
}

func planTurn(desired int, pose track.Pose, zone track.Zone, tu Tuning) Plan {
	p := Plan{
		Zone:           zone,
		DesiredHeading: desired,
		Delta:          angle.Delta(int(pose.Heading), desired),
	}
	p.Magnitude = angle.Abs(p.Delta)
	if p.Delta < 0 {
		p.Direction = CW
	}

	switch {
	case p.Magnitude < tu.NoTurnDeg:
		p.Turn = NoTurn
	case p.Magnitude < tu.PivotDeg:
		p.Turn = BankTurn
		p.TurnMS = int(float64(tu.Bank90Time/90*p.Magnitude) * tu.BankScale)
	default:
		p.Turn = PivotTurn
		p.TurnMS = tu.RotationMS(p.Delta)
		if zone == track.TopStraight || zone == track.RightStraight {
			p.TurnMS += tu.TurnBumpMS
		}
	}
	return p
}

// HeadingTo returns the heading, in [0, 360), of the vector (dx, dy).  The
// position service measures headings from the -X axis, counter-clockwise
// towards +Y.  A zero vector returns current.
func HeadingTo(dx, dy float64, current int) int {
	if dx == 0 {
		switch {
		case dy > 0:
			return 90
		case dy < 0:
			return 270
		}
		return angle.Normalize(current)
	}

	d := int(math.Atan(math.Abs(dy)/math.Abs(dx)) * 180 / math.Pi)
	switch {
	case dy == 0 && dx > 0:
		d = 180
	case dy == 0:
		d = 0
	case dx < 0 && dy < 0:
		d = -d
	case dx > 0 && dy > 0:
		d = 180 - d
	case dx > 0 && dy < 0:
		d = -180 + d
	}
	return angle.Normalize(d)
}

// Planner samples the kart's pose and plans hops.
type Planner struct {
	locator    track.Locator
	classifier *track.Classifier
	tuning     Tuning
	poster     events.Poster
}

func New(locator track.Locator, classifier *track.Classifier, tuning Tuning, poster events.Poster) *Planner {
	return &Planner{
		locator:    locator,
		classifier: classifier,
		tuning:     tuning,
		poster:     poster,
	}
}

func (p *Planner) Tuning() Tuning {
	return p.tuning
}

// Generate plans a hop to target from the current pose and posts
// PathGenerated.
func (p *Planner) Generate(target track.Point) Plan {
	pose, progress := p.locator.Locate()
	zone := p.classifier.Classify(pose.Point(), progress)
	plan := Compute(target, pose, zone, p.tuning)
	fmt.Printf("PLANNER: From %v in %v: %v\n", pose, zone, plan)
	p.poster.Post(events.Event{Kind: events.PathGenerated})
	return plan
}

// GenerateHeading plans a turn onto a fixed heading and posts PathGenerated.
func (p *Planner) GenerateHeading(desired int) Plan {
	pose, progress := p.locator.Locate()
	zone := p.classifier.Classify(pose.Point(), progress)
	plan := ComputeHeading(desired, pose, zone, p.tuning)
	fmt.Printf("PLANNER: From %v in %v: %v\n", pose, zone, plan)
	p.poster.Post(events.Event{Kind: events.PathGenerated})
	return plan
}
