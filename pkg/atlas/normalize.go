package atlas

// Normalize linearly rescales a plane to the 8-bit display range: the
// plane minimum maps to 0 and the maximum to 255. A constant plane has a
// degenerate range and normalizes to all zero rather than dividing by
// zero. The min/max scan and rescale run on the OpenCV backend unless
// built with the purego tag.
func Normalize(p Plane) []uint8 {
	out := make([]uint8, len(p.Pix))
	if len(p.Pix) == 0 {
		return out
	}
	lo, hi := planeRange(p)
	if hi == lo {
		return out
	}
	rescalePlane(p, lo, hi, out)
	return out
}
