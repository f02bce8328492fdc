package track

import "testing"

func expectZone(t *testing.T, c *Classifier, p Point, progress Progress, expected Zone) {
	t.Helper()
	if z := c.Classify(p, progress); z != expected {
		t.Errorf("Classify(%v, %+v) = %v, expected %v", p, progress, z, expected)
	}
}

func TestStraights(t *testing.T) {
	c := NewClassifier(DefaultGeometry())
	done := Progress{ShotComplete: true, ObstacleComplete: true}

	expectZone(t, c, Point{150, 150}, done, BottomStraight)
	expectZone(t, c, Point{230, 100}, done, RightStraight)
	expectZone(t, c, Point{150, 20}, done, TopStraight)
	expectZone(t, c, Point{50, 50}, done, LeftStraight)
	expectZone(t, c, Point{160, 85}, done, DeadZone)
}

func TestCornerExtensions(t *testing.T) {
	c := NewClassifier(DefaultGeometry())
	done := Progress{ShotComplete: true, ObstacleComplete: true}

	expectZone(t, c, Point{120, 115}, done, BottomStraight)
	expectZone(t, c, Point{200, 115}, done, RightStraight)
	expectZone(t, c, Point{200, 50}, done, TopStraight)
	expectZone(t, c, Point{120, 50}, done, LeftStraight)
}

func TestDecisionZonePriority(t *testing.T) {
	c := NewClassifier(DefaultGeometry())

	// Inside both the shooting decision zone and the left straight.
	p := Point{100, 80}
	expectZone(t, c, p, Progress{}, ShootingDecisionZone)
	expectZone(t, c, p, Progress{ShotComplete: true}, LeftStraight)

	// Inside both the obstacle decision zone and the bottom straight.
	p = Point{170, 140}
	expectZone(t, c, p, Progress{}, ObstacleDecisionZone)
	expectZone(t, c, p, Progress{ObstacleComplete: true}, BottomStraight)
	// Obstacle completion doesn't affect the shooting zone and vice versa.
	expectZone(t, c, p, Progress{ShotComplete: true}, ObstacleDecisionZone)
}

func TestCornerInZones(t *testing.T) {
	g := DefaultGeometry()
	done := Progress{ShotComplete: true, ObstacleComplete: true}

	expectZone(t, NewClassifier(g), Point{160, 115}, done, DeadZone)

	g.CornerZones = true
	c := NewClassifier(g)
	expectZone(t, c, Point{160, 115}, done, BottomIn)
	expectZone(t, c, Point{200, 85}, done, RightIn)
	expectZone(t, c, Point{160, 55}, done, TopIn)
	expectZone(t, c, Point{125, 85}, done, LeftIn)
	expectZone(t, c, Point{160, 85}, done, DeadZone)
}

func TestNextSection(t *testing.T) {
	z := BottomStraight
	for _, expected := range []Zone{RightStraight, TopStraight, LeftStraight, BottomStraight} {
		z = NextSection(z)
		if z != expected {
			t.Fatalf("Expected %v, got %v", expected, z)
		}
	}
	for _, z := range []Zone{DeadZone, ShootingDecisionZone, ObstacleDecisionZone, TopIn} {
		if NextSection(z) != DeadZone {
			t.Errorf("NextSection(%v) should be DeadZone", z)
		}
	}
}

func TestCorner(t *testing.T) {
	g := DefaultGeometry()
	if p, ok := g.Corner(LeftStraight); !ok || p != g.BottomLeft {
		t.Errorf("Left straight should lead to bottom left, got %v", p)
	}
	if _, ok := g.Corner(DeadZone); ok {
		t.Errorf("Dead zone has no corner")
	}
}

func TestNear(t *testing.T) {
	target := Point{100, 100}
	if !Near(Pose{X: 125, Y: 60, Heading: 355}, target, 5, DefaultTolerance) {
		t.Errorf("Expected pose to be near target across north")
	}
	if Near(Pose{X: 131, Y: 100}, target, -1, DefaultTolerance) {
		t.Errorf("X out of tolerance")
	}
	if Near(Pose{X: 100, Y: 100, Heading: 90}, target, 70, DefaultTolerance) {
		t.Errorf("Heading out of tolerance")
	}
}
