package geom

import (
	"testing"
)

func TestAxisConverterPositionRoundTrip(t *testing.T) {
	conv := NewAxisConverter(1)
	v := NewVector3(1, 2, 3)
	mapped := conv.Position(v)
	if mapped.X != 1 || mapped.Y != 3 || mapped.Z != -2 {
		t.Errorf("mapped: %v %v %v", mapped.X, mapped.Y, mapped.Z)
	}
	back := conv.InversePosition(mapped)
	if back.X != v.X || back.Y != v.Y || back.Z != v.Z {
		t.Errorf("round trip: %v %v %v", back.X, back.Y, back.Z)
	}
}

func TestAxisConverterUnitScale(t *testing.T) {
	conv := NewAxisConverter(0.5)
	p := conv.Position(NewVector3(2, 4, 6))
	if p.X != 1 || p.Y != 3 || p.Z != -2 {
		t.Errorf("scaled position: %v %v %v", p.X, p.Y, p.Z)
	}
	// directions never scale
	d := conv.Direction(NewVector3(0, 1, 0))
	if d.X != 0 || d.Y != 0 || d.Z != -1 {
		t.Errorf("direction: %v %v %v", d.X, d.Y, d.Z)
	}
}

func TestAxisConverterQuaternionMatchesMatrix(t *testing.T) {
	conv := NewAxisConverter(1)
	quats := []*Quaternion{
		NewIdentityQuaternion(),
		NewQuaternion(0.5, 0.5, 0.5, 0.5),
		NewQuaternion(0.7071068, 0, 0, 0.7071068),
		NewQuaternion(0.1, -0.2, 0.3, 0.927).Normalize(),
	}
	for _, q := range quats {
		qm := conv.Quaternion(q)
		m := conv.Matrix(NewRotationMatrix4FromQuaternion(q))
		qFromM := NewQuaternionFromMatrix4(m)
		// quaternions are equal up to sign
		if qFromM.Dot(qm) < 0 {
			qFromM = qFromM.Scale(-1)
		}
		if d := qFromM.Sub(qm).Len(); d > 1e-5 {
			t.Errorf("quaternion %v: matrix path differs by %v (%v vs %v)", q, d, qFromM, qm)
		}
	}
}

func TestAxisConverterQuaternionRoundTrip(t *testing.T) {
	conv := NewAxisConverter(1)
	q := NewQuaternion(0.1, 0.2, 0.3, 0.927)
	back := conv.InverseQuaternion(conv.Quaternion(q))
	if back.X != q.X || back.Y != q.Y || back.Z != q.Z || back.W != q.W {
		t.Errorf("round trip: %v", back)
	}
}

func TestAxisConverterMatrixRoundTrip(t *testing.T) {
	conv := NewAxisConverter(2)
	m := NewTRSMatrix4(
		NewVector3(1, 2, 3),
		NewQuaternion(0.5, 0.5, 0.5, 0.5),
		NewVector3(1, 1, 1),
	)
	back := conv.InverseMatrix(conv.Matrix(m))
	for i := range m {
		if d := back[i] - m[i]; d > 1e-5 || d < -1e-5 {
			t.Fatalf("element %d: %v != %v", i, back[i], m[i])
		}
	}
}

func TestAxisConverterScaleVector(t *testing.T) {
	conv := NewAxisConverter(1)
	s := conv.ScaleVector(NewVector3(1, 2, 3))
	if s.X != 1 || s.Y != 3 || s.Z != 2 {
		t.Errorf("scale vector: %v %v %v", s.X, s.Y, s.Z)
	}
}
