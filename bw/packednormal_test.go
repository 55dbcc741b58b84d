package bw

import (
	"math"
	"testing"

	"github.com/bigworld-tools/bwexport/geom"
)

func TestPackNormalAxes(t *testing.T) {
	tests := []struct {
		v    *geom.Vector3
		want uint32
	}{
		{geom.NewVector3(1, 0, 0), 1023},
		{geom.NewVector3(0, 1, 0), 1023 << 11},
		{geom.NewVector3(0, 0, 1), 511 << 22},
		{geom.NewVector3(-1, 0, 0), uint32(-1023 & 0x7ff)},
		{geom.NewVector3(0, 0, 0), 511 << 22}, // degenerate packs as +Z
	}
	for _, tt := range tests {
		if got := PackNormal(tt.v); got != tt.want {
			t.Errorf("pack (%v %v %v): %08x want %08x", tt.v.X, tt.v.Y, tt.v.Z, got, tt.want)
		}
	}
}

func TestPackNormalRoundTrip(t *testing.T) {
	dirs := []*geom.Vector3{
		geom.NewVector3(1, 0, 0),
		geom.NewVector3(0.5, 0.5, 0.70710678),
		geom.NewVector3(-0.267, 0.534, -0.801),
		geom.NewVector3(0.1, -0.2, 0.3),
	}
	for _, d := range dirs {
		n := d.Normalize()
		got := UnpackNormal(PackNormal(d))
		if math.Abs(float64(got.X-n.X)) > 1.0/1023 {
			t.Errorf("x error: got %v want %v", got.X, n.X)
		}
		if math.Abs(float64(got.Y-n.Y)) > 1.0/1023 {
			t.Errorf("y error: got %v want %v", got.Y, n.Y)
		}
		if math.Abs(float64(got.Z-n.Z)) > 1.0/511 {
			t.Errorf("z error: got %v want %v", got.Z, n.Z)
		}
	}
}
