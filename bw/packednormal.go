package bw

import (
	"math"

	"github.com/bigworld-tools/bwexport/geom"
)

// PackNormal quantizes a direction into one u32 with the bit layout
// z[31:22] y[21:11] x[10:0]. X and Y carry 11 signed bits, Z carries 10.
// A degenerate input packs as (0, 0, 1).
func PackNormal(v *geom.Vector3) uint32 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	length := math.Sqrt(x*x + y*y + z*z)
	if length < 1e-4 {
		x, y, z = 0, 0, 1
	} else {
		x = clamp1(x / length)
		y = clamp1(y / length)
		z = clamp1(z / length)
	}
	xp := uint32(int32(math.Round(x*1023))) & 0x7ff
	yp := uint32(int32(math.Round(y*1023))) & 0x7ff
	zp := uint32(int32(math.Round(z*511))) & 0x3ff
	return zp<<22 | yp<<11 | xp
}

// UnpackNormal inverts PackNormal up to quantization error (at most 1/1023
// on x and y, 1/511 on z).
func UnpackNormal(packed uint32) *geom.Vector3 {
	x := signExtend(packed&0x7ff, 11)
	y := signExtend(packed>>11&0x7ff, 11)
	z := signExtend(packed>>22&0x3ff, 10)
	return geom.NewVector3(
		float32(float64(x)/1023),
		float32(float64(y)/1023),
		float32(float64(z)/511),
	)
}

func clamp1(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}
