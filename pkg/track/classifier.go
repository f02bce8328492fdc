package track

// Classifier maps positions to zones.
type Classifier struct {
	g Geometry
}

func NewClassifier(g Geometry) *Classifier {
	return &Classifier{g: g}
}

func (c *Classifier) Geometry() Geometry {
	return c.g
}

// Classify returns the zone containing p.  Decision zones take priority over
// the straights but only while the matching task is outstanding.
func (c *Classifier) Classify(p Point, progress Progress) Zone {
	g := &c.g
	x, y := p.X, p.Y
	cs := g.CornerSize

	switch {
	case g.ShootingZone.Contains(p) && !progress.ShotComplete:
		return ShootingDecisionZone
	case g.ObstacleZone.Contains(p) && !progress.ObstacleComplete:
		return ObstacleDecisionZone
	case (y >= g.Y2 && x <= g.X2) ||
		(between(y, g.Y2-cs, g.Y2) && between(x, g.X1, g.X1+cs)):
		return BottomStraight
	case (y >= g.Y1 && x >= g.X2) ||
		(between(y, g.Y2-cs, g.Y2) && between(x, g.X2-cs, g.X2)):
		return RightStraight
	case (y <= g.Y1 && x >= g.X1) ||
		(between(y, g.Y1, g.Y1+cs) && between(x, g.X2-cs, g.X2)):
		return TopStraight
	case (y <= g.Y2 && x <= g.X1) ||
		(between(y, g.Y1, g.Y1+cs) && between(x, g.X1, g.X1+cs)):
		return LeftStraight
	}

	if g.CornerZones {
		switch {
		case y >= g.Y2-cs:
			return BottomIn
		case x >= g.X2-cs:
			return RightIn
		case y <= g.Y1+cs:
			return TopIn
		case x <= g.X1+cs:
			return LeftIn
		}
	}
	return DeadZone
}

func between(v, lo, hi uint16) bool {
	return v >= lo && v <= hi
}
