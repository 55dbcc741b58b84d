package geom

type Quaternion = Vector4

func NewQuaternion(x, y, z, w float32) *Quaternion {
	return &Quaternion{X: x, Y: y, Z: z, W: w}
}

func NewIdentityQuaternion() *Quaternion {
	return &Quaternion{W: 1}
}

// Returns Hamilton product
func (a *Quaternion) Mul(b *Quaternion) *Quaternion {
	return &Quaternion{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z, // 1
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y, // i
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X, // j
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W, // k
	}
}

// Conjugate. Same as the inverse for unit quaternions.
func (v *Quaternion) Inverse() *Quaternion {
	return &Quaternion{X: -v.X, Y: -v.Y, Z: -v.Z, W: v.W}
}

// Nlerp interpolates on the shortest arc and renormalizes.
func (a *Quaternion) Nlerp(b *Quaternion, t Element) *Quaternion {
	bb := *b
	if a.Dot(b) < 0 {
		bb = Quaternion{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
	}
	return a.Add((&bb).Sub(a).Scale(t)).Normalize()
}

func NewQuaternionFromMatrix4(m *Matrix4) *Quaternion {
	trace := m[0] + m[5] + m[10]
	q := &Quaternion{}
	if trace > 0 {
		s := sqrtf(trace+1) * 2
		q.W = s / 4
		q.X = (m[6] - m[9]) / s
		q.Y = (m[8] - m[2]) / s
		q.Z = (m[1] - m[4]) / s
	} else if m[0] > m[5] && m[0] > m[10] {
		s := sqrtf(1+m[0]-m[5]-m[10]) * 2
		q.W = (m[6] - m[9]) / s
		q.X = s / 4
		q.Y = (m[4] + m[1]) / s
		q.Z = (m[8] + m[2]) / s
	} else if m[5] > m[10] {
		s := sqrtf(1+m[5]-m[0]-m[10]) * 2
		q.W = (m[8] - m[2]) / s
		q.X = (m[4] + m[1]) / s
		q.Y = s / 4
		q.Z = (m[9] + m[6]) / s
	} else {
		s := sqrtf(1+m[10]-m[0]-m[5]) * 2
		q.W = (m[1] - m[4]) / s
		q.X = (m[8] + m[2]) / s
		q.Y = (m[9] + m[6]) / s
		q.Z = s / 4
	}
	return q
}
