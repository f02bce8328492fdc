package angle

import "testing"

func TestNormalize(t *testing.T) {
	for _, c := range []struct{ in, out int }{
		{0, 0}, {359, 359}, {360, 0}, {361, 1}, {-1, 359}, {-360, 0}, {-361, 359}, {725, 5},
	} {
		if got := Normalize(c.in); got != c.out {
			t.Errorf("Normalize(%d) = %d, expected %d", c.in, got, c.out)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for theta := -1080; theta <= 1080; theta++ {
		n := Normalize(theta)
		if n < 0 || n >= 360 {
			t.Fatalf("Normalize(%d) = %d out of range", theta, n)
		}
		if Normalize(n) != n {
			t.Fatalf("Normalize not idempotent for %d", theta)
		}
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	for current := 0; current < 360; current += 7 {
		for desired := 0; desired < 360; desired++ {
			d := Delta(current, desired)
			if d <= -180 || d > 180 {
				t.Fatalf("Delta(%d, %d) = %d out of range", current, desired, d)
			}
			if Normalize(current+d) != desired {
				t.Fatalf("Delta(%d, %d) = %d doesn't reach desired", current, desired, d)
			}
		}
	}
}

func TestDeltaAcrossZero(t *testing.T) {
	if d := Delta(358, 2); d != 4 {
		t.Errorf("Delta(358, 2) = %d, expected 4", d)
	}
	if d := Delta(2, 358); d != -4 {
		t.Errorf("Delta(2, 358) = %d, expected -4", d)
	}
	if d := Delta(0, 180); d != 180 {
		t.Errorf("Delta(0, 180) = %d, expected 180", d)
	}
	if d := Delta(180, 0); d != 180 {
		t.Errorf("Delta(180, 0) = %d, expected 180", d)
	}
}
