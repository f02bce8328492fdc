package track

// Geometry describes the arena.  The inner square is bounded by the lines
// X1/X2 and Y1/Y2; each straight is the band outside one side of it.
type Geometry struct {
	X1         uint16 `yaml:"x1"`
	X2         uint16 `yaml:"x2"`
	Y1         uint16 `yaml:"y1"`
	Y2         uint16 `yaml:"y2"`
	CornerSize uint16 `yaml:"cornerSize"`

	// Waypoints at the end of each straight.
	BottomRight Point `yaml:"bottomRight"`
	TopRight    Point `yaml:"topRight"`
	TopLeft     Point `yaml:"topLeft"`
	BottomLeft  Point `yaml:"bottomLeft"`

	ShootingPoint Point `yaml:"shootingPoint"`
	ObstacleEntry Point `yaml:"obstacleEntry"`
	ObstacleExit  Point `yaml:"obstacleExit"`

	ShootingZone Rect `yaml:"shootingZone"`
	ObstacleZone Rect `yaml:"obstacleZone"`

	// CornerZones enables the corner in-zones.
	CornerZones bool `yaml:"cornerZones"`
}

// Rect is an inclusive rectangle.  A zero Max means unbounded on that side.
type Rect struct {
	XMin uint16 `yaml:"xMin"`
	XMax uint16 `yaml:"xMax"`
	YMin uint16 `yaml:"yMin"`
	YMax uint16 `yaml:"yMax"`
}

func (r Rect) Contains(p Point) bool {
	if p.X < r.XMin || p.Y < r.YMin {
		return false
	}
	if r.XMax != 0 && p.X > r.XMax {
		return false
	}
	if r.YMax != 0 && p.Y > r.YMax {
		return false
	}
	return true
}

// DefaultGeometry is the competition arena.
func DefaultGeometry() Geometry {
	return Geometry{
		X1:         115,
		X2:         210,
		Y1:         45,
		Y2:         125,
		CornerSize: 15,

		BottomRight: Point{230, 160},
		TopRight:    Point{230, 17},
		TopLeft:     Point{100, 17},
		BottomLeft:  Point{100, 153},

		ShootingPoint: Point{133, 84},
		ObstacleEntry: Point{181, 140},
		ObstacleExit:  Point{181, 40},

		ShootingZone: Rect{XMax: 130, YMin: 64, YMax: 100},
		ObstacleZone: Rect{XMin: 160, XMax: 181, YMin: 135},
	}
}

// Corner returns the waypoint at the end of the given straight.  ok is false
// for anything that isn't a straight.
func (g *Geometry) Corner(z Zone) (p Point, ok bool) {
	switch z {
	case BottomStraight:
		return g.BottomRight, true
	case RightStraight:
		return g.TopRight, true
	case TopStraight:
		return g.TopLeft, true
	case LeftStraight:
		return g.BottomLeft, true
	}
	return Point{}, false
}
