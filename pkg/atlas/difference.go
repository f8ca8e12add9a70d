package atlas

// Difference computes the clipped signed difference reset-signal of two
// demultiplexed planes. Each element is clip(reset-signal, -32768, 32767)
// as int16. The planes must have identical shape.
//
// The subtraction walks the image one tap-half block at a time, matching
// the demultiplexer's output blocking; the result is identical to a
// whole-array clipped subtraction.
func Difference(signal, reset Plane, layout TapLayout) (*DifferenceFrame, error) {
	if signal.Width != reset.Width || signal.Height != reset.Height {
		return nil, &ShapeMismatchError{
			Op:       "difference",
			Expected: signal.Width,
			Actual:   reset.Width,
		}
	}

	out := &DifferenceFrame{
		Pix:    make([]int16, signal.Width*signal.Height),
		Width:  signal.Width,
		Height: signal.Height,
	}

	blockWidth := layout.HalfWidth()
	if blockWidth <= 0 || blockWidth > signal.Width {
		blockWidth = signal.Width
	}

	for startCol := 0; startCol < signal.Width; startCol += blockWidth {
		endCol := startCol + blockWidth
		if endCol > signal.Width {
			endCol = signal.Width
		}
		for y := 0; y < signal.Height; y++ {
			off := y * signal.Width
			for x := startCol; x < endCol; x++ {
				d := int32(reset.Pix[off+x]) - int32(signal.Pix[off+x])
				if d < -32768 {
					d = -32768
				} else if d > 32767 {
					d = 32767
				}
				out.Pix[off+x] = int16(d)
			}
		}
	}
	return out, nil
}
