package geom

// Conversion between the Z-up authoring basis and the engine's Y-up basis.
//
// The forward map is (x,y,z) -> (x,z,-y). Matrices are remapped by
// conjugation with the basis-change matrix; since that matrix only contains
// 0 and ±1 entries the conversion is exact, and the quaternion form reduces
// to the same component permutation.

// basis-change matrix A: e1 -> e1, e2 -> e3, e3 -> -e2
var axisMatrix = &Matrix4{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

var axisMatrixInv = &Matrix4{
	1, 0, 0, 0,
	0, 0, 1, 0,
	0, -1, 0, 0,
	0, 0, 0, 1,
}

// AxisConverter converts positions, directions, rotations and transforms
// from the Z-up input basis to the engine basis. UnitScale is applied to
// position-like quantities only, exactly once per conversion.
type AxisConverter struct {
	UnitScale Element
}

func NewAxisConverter(unitScale float32) *AxisConverter {
	if unitScale == 0 {
		unitScale = 1
	}
	return &AxisConverter{UnitScale: unitScale}
}

func (c *AxisConverter) Position(v *Vector3) *Vector3 {
	return &Vector3{X: v.X * c.UnitScale, Y: v.Z * c.UnitScale, Z: -v.Y * c.UnitScale}
}

func (c *AxisConverter) InversePosition(v *Vector3) *Vector3 {
	return &Vector3{X: v.X / c.UnitScale, Y: -v.Z / c.UnitScale, Z: v.Y / c.UnitScale}
}

// Direction remaps normals and tangents. Never scaled.
func (c *AxisConverter) Direction(v *Vector3) *Vector3 {
	return &Vector3{X: v.X, Y: v.Z, Z: -v.Y}
}

func (c *AxisConverter) InverseDirection(v *Vector3) *Vector3 {
	return &Vector3{X: v.X, Y: -v.Z, Z: v.Y}
}

// Quaternion conjugates q by the +90 degree rotation about X. For a unit
// quaternion that collapses to permuting the vector part like Direction.
func (c *AxisConverter) Quaternion(q *Quaternion) *Quaternion {
	return &Quaternion{X: q.X, Y: q.Z, Z: -q.Y, W: q.W}
}

func (c *AxisConverter) InverseQuaternion(q *Quaternion) *Quaternion {
	return &Quaternion{X: q.X, Y: -q.Z, Z: q.Y, W: q.W}
}

// ScaleVector remaps a non-uniform scale, which swaps the Y and Z factors.
func (c *AxisConverter) ScaleVector(v *Vector3) *Vector3 {
	return &Vector3{X: v.X, Y: v.Z, Z: v.Y}
}

// Matrix computes A·M·A⁻¹ and applies the unit scale to the translation.
func (c *AxisConverter) Matrix(m *Matrix4) *Matrix4 {
	r := axisMatrix.Mul(m).Mul(axisMatrixInv)
	r[12] *= c.UnitScale
	r[13] *= c.UnitScale
	r[14] *= c.UnitScale
	return r
}

func (c *AxisConverter) InverseMatrix(m *Matrix4) *Matrix4 {
	r := m.Clone()
	r[12] /= c.UnitScale
	r[13] /= c.UnitScale
	r[14] /= c.UnitScale
	return axisMatrixInv.Mul(r).Mul(axisMatrix)
}
