package angle

// Headings on the kart are whole degrees. All operations return values in
// range [0, 360) so that results can be compared directly with the headings
// reported by the position service.

// Normalize converts an angle of any magnitude to the range [0, 360).
func Normalize(deg int) int {
	d := deg % 360
	if d < 0 {
		d += 360
	}
	return d
}

// Delta returns the signed minimal rotation, in degrees, that takes current
// to desired. The result is in range (-180, 180]; positive values are
// counter-clockwise.
func Delta(current, desired int) int {
	d := Normalize(desired) - Normalize(current)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// Abs returns the magnitude of a signed delta.
func Abs(deg int) int {
	if deg < 0 {
		return -deg
	}
	return deg
}
