package track

import "fmt"

// Point is a position on the arena in position service pixels.  Y grows
// towards the bottom of the arena.
type Point struct {
	X uint16 `yaml:"x"`
	Y uint16 `yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Pose is a point plus a heading in [0, 360).
type Pose struct {
	X       uint16 `yaml:"x"`
	Y       uint16 `yaml:"y"`
	Heading uint16 `yaml:"heading"`
}

func (p Pose) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

func (p Pose) String() string {
	return fmt.Sprintf("(%d,%d)@%d", p.X, p.Y, p.Heading)
}

// Progress is the part of the kart's status that gates the decision zones.
type Progress struct {
	ShotComplete     bool
	ObstacleComplete bool
}

type Zone int

const (
	DeadZone Zone = iota
	BottomStraight
	RightStraight
	TopStraight
	LeftStraight
	ShootingDecisionZone
	ObstacleDecisionZone
	// Corner in-zones, only reported when Geometry.CornerZones is set.
	BottomIn
	RightIn
	TopIn
	LeftIn
)

var zoneNames = map[Zone]string{
	DeadZone:             "DeadZone",
	BottomStraight:       "BottomStraight",
	RightStraight:        "RightStraight",
	TopStraight:          "TopStraight",
	LeftStraight:         "LeftStraight",
	ShootingDecisionZone: "ShootingDecisionZone",
	ObstacleDecisionZone: "ObstacleDecisionZone",
	BottomIn:             "BottomIn",
	RightIn:              "RightIn",
	TopIn:                "TopIn",
	LeftIn:               "LeftIn",
}

func (z Zone) String() string {
	if n, ok := zoneNames[z]; ok {
		return n
	}
	return fmt.Sprintf("Zone(%d)", int(z))
}

// IsCornerIn returns true for the four corner in-zones.
func (z Zone) IsCornerIn() bool {
	return z >= BottomIn && z <= LeftIn
}

// NextSection returns the straight that follows z in the direction of
// travel, or DeadZone if z isn't a straight.
func NextSection(z Zone) Zone {
	switch z {
	case BottomStraight:
		return RightStraight
	case RightStraight:
		return TopStraight
	case TopStraight:
		return LeftStraight
	case LeftStraight:
		return BottomStraight
	}
	return DeadZone
}

// Tolerance is the window used by Near.
type Tolerance struct {
	X       uint16 `yaml:"x"`
	Y       uint16 `yaml:"y"`
	Heading uint16 `yaml:"heading"`
}

var DefaultTolerance = Tolerance{X: 30, Y: 50, Heading: 10}

// Near reports whether pose is within tol of target.  A negative
// targetHeading skips the heading check.
func Near(pose Pose, target Point, targetHeading int, tol Tolerance) bool {
	if absDiff(pose.X, target.X) > tol.X || absDiff(pose.Y, target.Y) > tol.Y {
		return false
	}
	if targetHeading < 0 {
		return true
	}
	d := int(pose.Heading) - targetHeading
	if d < 0 {
		d = -d
	}
	if d > 180 {
		d = 360 - d
	}
	return d <= int(tol.Heading)
}

func absDiff(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}

// Locator reports the kart's latest pose and task progress.
type Locator interface {
	Locate() (Pose, Progress)
}
