package smoother

// WindowSize is the number of heading samples averaged by Heading.
const WindowSize = 5

// Heading is a moving average filter for the heading channel of the position
// service. The raw heading is noisy near north, so samples that straddle
// 0/360 are averaged on a circle rather than on a line.
//
// Heading is not safe for concurrent use; it's owned by the event loop.
type Heading struct {
	// Newest sample first.
	samples [WindowSize]int
	size    int
}

func New() *Heading {
	return &Heading{}
}

// Add pushes a new sample, evicting the oldest once the window is full.
func (h *Heading) Add(deg uint16) {
	copy(h.samples[1:], h.samples[:WindowSize-1])
	h.samples[0] = int(deg)
	if h.size < WindowSize {
		h.size++
	}
}

// Smoothed returns the mean of the window in [0, 360), or -1 if there's no
// data.
func (h *Heading) Smoothed() int {
	if h.size == 0 {
		return -1
	}
	window := h.samples[:h.size]

	var low, high bool
	for _, s := range window {
		if s < 90 {
			low = true
		}
		if s > 270 {
			high = true
		}
	}
	junction := low && high

	sum := 0
	for _, s := range window {
		if junction && s < 180 {
			s += 360
		}
		sum += s
	}
	mean := sum / h.size
	if mean >= 360 {
		mean -= 360
	}
	return mean
}

// Clear empties the window.  Called at the start of every drive leg.
func (h *Heading) Clear() {
	h.size = 0
}

func (h *Heading) Len() int {
	return h.size
}
