package pca9685

import (
	"testing"
	"time"
)

func TestPulseToCount(t *testing.T) {
	for _, c := range []struct {
		width    time.Duration
		expected uint16
	}{
		{1500 * time.Microsecond, 307},
		{1000 * time.Microsecond, 204},
		// Clamped.
		{100 * time.Microsecond, 102},
		{5 * time.Millisecond, 511},
	} {
		if got := PulseToCount(c.width); got != c.expected {
			t.Errorf("PulseToCount(%v) = %d, expected %d", c.width, got, c.expected)
		}
	}
}
