//go:build purego || js

package atlas

import "math"

func planeRange(p Plane) (uint16, uint16) {
	lo := p.Pix[0]
	hi := p.Pix[0]
	for _, v := range p.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func rescalePlane(p Plane, lo, hi uint16, out []uint8) {
	scale := 255.0 / float64(hi-lo)
	for i, v := range p.Pix {
		s := math.Round(float64(v-lo) * scale)
		if s < 0 {
			s = 0
		} else if s > 255 {
			s = 255
		}
		out[i] = uint8(s)
	}
}
