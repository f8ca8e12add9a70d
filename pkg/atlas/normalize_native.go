//go:build !purego && !js

package atlas

import (
	"gocv.io/x/gocv"
)

func planeToMat(p Plane) gocv.Mat {
	m := gocv.NewMatWithSize(p.Height, p.Width, gocv.MatTypeCV16U)
	data, _ := m.DataPtrUint16()
	copy(data, p.Pix)
	return m
}

func planeRange(p Plane) (uint16, uint16) {
	m := planeToMat(p)
	defer m.Close()
	minVal, maxVal, _, _ := gocv.MinMaxIdx(m)
	return uint16(minVal), uint16(maxVal)
}

func rescalePlane(p Plane, lo, hi uint16, out []uint8) {
	m := planeToMat(p)
	defer m.Close()
	alpha := 255.0 / float32(hi-lo)
	beta := -float32(lo) * alpha
	dst := gocv.NewMat()
	defer dst.Close()
	m.ConvertToWithParams(&dst, gocv.MatTypeCV8U, alpha, beta)
	copy(out, dst.ToBytes())
}
