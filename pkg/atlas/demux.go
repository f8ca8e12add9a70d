package atlas

// Demux splits a raw multi-tap readout into the requested half of each
// tap and concatenates the halves in tap order. For each tap the signal
// sample occupies the first TapWidth/2 columns of its block and the reset
// sample the last TapWidth/2. The raw width must equal
// TapWidth*(NumTaps+1); the trailing tap width of overscan is never
// copied into the output.
//
// The result is a freshly allocated (Height, NumTaps*TapWidth/2) plane;
// the input is not modified, and no output is produced on a width
// mismatch.
func Demux(raw Plane, layout TapLayout, half Half) (Plane, error) {
	if err := layout.Validate(); err != nil {
		return Plane{}, err
	}
	if raw.Width != layout.RawWidth() {
		return Plane{}, &ShapeMismatchError{
			Op:       "demux",
			Expected: layout.RawWidth(),
			Actual:   raw.Width,
		}
	}

	halfWidth := layout.HalfWidth()
	out := NewPlane(layout.OutWidth(), raw.Height)

	for tap := 0; tap < layout.NumTaps; tap++ {
		srcCol := tap * layout.TapWidth
		if half == Reset {
			srcCol += halfWidth
		}
		dstCol := tap * halfWidth
		for y := 0; y < raw.Height; y++ {
			srcRow := raw.Row(y)
			dstRow := out.Row(y)
			copy(dstRow[dstCol:dstCol+halfWidth], srcRow[srcCol:srcCol+halfWidth])
		}
	}
	return out, nil
}
