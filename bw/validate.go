package bw

import "fmt"

// ConsistencyError reports input that violates a structural invariant of
// the document model. Exports fail before any bytes are written.
type ConsistencyError struct {
	Subject string
	Detail  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("bw: inconsistent %s: %s", e.Subject, e.Detail)
}

// RangeError reports a value outside its representable range.
type RangeError struct {
	Subject string
	Value   int
	Max     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bw: %s %d exceeds %d", e.Subject, e.Value, e.Max)
}

func consistency(subject, format string, args ...interface{}) error {
	return &ConsistencyError{Subject: subject, Detail: fmt.Sprintf(format, args...)}
}

// ValidateAsset checks the structural invariants of an asset before
// encoding starts.
func ValidateAsset(a *SceneAsset) error {
	if a.Vertices == nil {
		return consistency("vertices", "missing vertex stream")
	}
	if err := validateStream(a.Vertices); err != nil {
		return err
	}
	n := a.Vertices.Count()
	for i, t := range a.Triangles {
		for _, v := range t.Indices {
			if v < 0 || v >= n {
				return consistency("triangles", "triangle %d references vertex %d of %d", i, v, n)
			}
		}
		if t.Material < 0 {
			return consistency("triangles", "triangle %d has negative material slot", i)
		}
	}
	if a.Skeleton != nil {
		if err := ValidateSkeleton(a.Skeleton); err != nil {
			return err
		}
	}
	for _, anim := range a.Animations {
		if err := ValidateAnimation(anim); err != nil {
			return err
		}
	}
	if a.Collision != nil {
		if err := ValidateCollision(a.Collision); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCollision checks the physics proxy: non-empty buffers and every
// triangle referencing an existing position.
func ValidateCollision(c *CollisionMesh) error {
	if len(c.Positions) == 0 || len(c.Triangles) == 0 {
		return consistency("collision", "empty positions or triangles")
	}
	n := len(c.Positions)
	for i, t := range c.Triangles {
		for _, v := range t.Indices {
			if v < 0 || v >= n {
				return consistency("collision", "triangle %d references vertex %d of %d", i, v, n)
			}
		}
	}
	return nil
}

func validateStream(s *VertexStream) error {
	n := s.Count()
	check := func(name string, got int) error {
		if got != 0 && got != n {
			return consistency("vertices", "%s has %d entries, expected 0 or %d", name, got, n)
		}
		return nil
	}
	if err := check("normals", len(s.Normals)); err != nil {
		return err
	}
	if err := check("tangents", len(s.Tangents)); err != nil {
		return err
	}
	if err := check("uv0", len(s.UV0)); err != nil {
		return err
	}
	if err := check("uv1", len(s.UV1)); err != nil {
		return err
	}
	if err := check("colors", len(s.Colors)); err != nil {
		return err
	}
	if err := check("bone indices", len(s.BoneIndices)); err != nil {
		return err
	}
	if err := check("bone weights", len(s.BoneWeights)); err != nil {
		return err
	}
	if len(s.BoneWeights) != len(s.BoneIndices) {
		return consistency("vertices", "bone weights and indices differ in length")
	}
	if s.HasTangents() && !s.HasNormals() {
		return consistency("vertices", "tangents present without normals")
	}
	if len(s.UV1) > 0 && len(s.UV0) == 0 {
		return consistency("vertices", "secondary uv layer present without primary")
	}
	return nil
}

// ValidateSkeleton enforces the arena ordering: every parent index is -1
// or strictly less than the bone's own index, which rules out cycles.
func ValidateSkeleton(s *Skeleton) error {
	for i, b := range s.Bones {
		if b.ParentIndex != -1 && (b.ParentIndex < 0 || b.ParentIndex >= i) {
			return consistency("skeleton", "bone %d (%s) has parent index %d", i, b.Name, b.ParentIndex)
		}
		if b.BindMatrix == nil || b.InverseBindMatrix == nil {
			return consistency("skeleton", "bone %d (%s) is missing a bind matrix", i, b.Name)
		}
	}
	return nil
}

// ValidateAnimation checks that key timestamps are non-decreasing and
// inside [0, duration].
func ValidateAnimation(a *Animation) error {
	duration := a.Duration()
	for _, ch := range a.Channels {
		if err := validateTimes(ch.BoneName, "position", vectorTimes(ch.PositionKeys), duration); err != nil {
			return err
		}
		if err := validateTimes(ch.BoneName, "rotation", rotationTimes(ch.RotationKeys), duration); err != nil {
			return err
		}
		if err := validateTimes(ch.BoneName, "scale", vectorTimes(ch.ScaleKeys), duration); err != nil {
			return err
		}
	}
	return nil
}

func vectorTimes(keys []VectorKey) []float32 {
	times := make([]float32, len(keys))
	for i, k := range keys {
		times[i] = k.Time
	}
	return times
}

func rotationTimes(keys []RotationKey) []float32 {
	times := make([]float32, len(keys))
	for i, k := range keys {
		times[i] = k.Time
	}
	return times
}

func validateTimes(bone, channel string, times []float32, duration float32) error {
	var prev float32
	for i, t := range times {
		if t < 0 || t > duration {
			return consistency("animation", "%s %s key %d at %f outside [0, %f]", bone, channel, i, t, duration)
		}
		if t < prev {
			return consistency("animation", "%s %s key %d at %f before %f", bone, channel, i, t, prev)
		}
		prev = t
	}
	return nil
}

// ValidateGeometry checks the assembled buffers against the vertex count,
// the material table and the group invariants. Every primitive group needs
// its own material descriptor, so the counts must match exactly.
func ValidateGeometry(g *Geometry, vertexCount, materialCount int) error {
	if len(g.Groups) != materialCount {
		return consistency("geometry", "primitive group count %d != material count %d",
			len(g.Groups), materialCount)
	}
	if len(g.Indices)%3 != 0 {
		return consistency("geometry", "index count %d not divisible by 3", len(g.Indices))
	}
	var total uint32
	for i, pg := range g.Groups {
		total += pg.NumPrimitives * 3
		if int(pg.StartVertex)+int(pg.NumVertices) > vertexCount {
			return consistency("geometry", "group %d vertex range %d+%d exceeds %d",
				i, pg.StartVertex, pg.NumVertices, vertexCount)
		}
	}
	if total != uint32(len(g.Indices)) {
		return consistency("geometry", "group primitive sum %d != index count %d", total, len(g.Indices))
	}
	return nil
}
