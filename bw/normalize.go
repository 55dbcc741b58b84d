package bw

import (
	"github.com/bigworld-tools/bwexport/geom"
)

// NormalizeAsset returns a copy of the asset converted into the engine's
// coordinate convention. The input is not mutated, so the conversion runs
// exactly once per export. Unit scale applies to position-like quantities
// only: vertex positions, matrix translations and animation position keys.
func NormalizeAsset(a *SceneAsset, conv *geom.AxisConverter) *SceneAsset {
	out := &SceneAsset{
		Name:       a.Name,
		Triangles:  a.Triangles,
		Materials:  a.Materials,
		Vertices:   normalizeStream(a.Vertices, conv),
		Skeleton:   normalizeSkeleton(a.Skeleton, conv),
		Nodes:      normalizeNodes(a.Nodes, conv),
		Hardpoints: normalizeHardpoints(a.Hardpoints, conv),
		Collision:  normalizeCollision(a.Collision, conv),
	}
	for _, anim := range a.Animations {
		out.Animations = append(out.Animations, normalizeAnimation(anim, conv))
	}
	return out
}

func normalizeStream(s *VertexStream, conv *geom.AxisConverter) *VertexStream {
	if s == nil {
		return nil
	}
	out := &VertexStream{
		UV0:         s.UV0,
		UV1:         s.UV1,
		Colors:      s.Colors,
		BoneIndices: s.BoneIndices,
		BoneWeights: s.BoneWeights,
	}
	for _, p := range s.Positions {
		out.Positions = append(out.Positions, conv.Position(p))
	}
	for _, n := range s.Normals {
		out.Normals = append(out.Normals, conv.Direction(n))
	}
	for _, t := range s.Tangents {
		d := conv.Direction(geom.NewVector3(t.X, t.Y, t.Z))
		out.Tangents = append(out.Tangents, geom.NewVector4(d.X, d.Y, d.Z, t.W))
	}
	return out
}

func normalizeSkeleton(s *Skeleton, conv *geom.AxisConverter) *Skeleton {
	if s == nil {
		return nil
	}
	out := &Skeleton{}
	for _, b := range s.Bones {
		// The inverse bind pose is recomputed from the converted bind pose
		// so the pair stays exactly inverse after scaling.
		bind := conv.Matrix(b.BindMatrix)
		out.Bones = append(out.Bones, &Bone{
			Name:              b.Name,
			ParentIndex:       b.ParentIndex,
			BindMatrix:        bind,
			InverseBindMatrix: bind.Inverse(),
		})
	}
	return out
}

func normalizeNodes(n *SceneNode, conv *geom.AxisConverter) *SceneNode {
	if n == nil {
		return nil
	}
	out := &SceneNode{Name: n.Name}
	if n.Transform != nil {
		out.Transform = conv.Matrix(n.Transform)
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, normalizeNodes(c, conv))
	}
	return out
}

func normalizeHardpoints(hps []*Hardpoint, conv *geom.AxisConverter) []*Hardpoint {
	var out []*Hardpoint
	for _, hp := range hps {
		m := hp.Matrix
		if m != nil {
			m = conv.Matrix(m)
		}
		out = append(out, &Hardpoint{Name: hp.Name, Type: hp.Type, Bone: hp.Bone, Matrix: m})
	}
	return out
}

func normalizeCollision(c *CollisionMesh, conv *geom.AxisConverter) *CollisionMesh {
	if c == nil {
		return nil
	}
	out := &CollisionMesh{Triangles: c.Triangles}
	for _, p := range c.Positions {
		out.Positions = append(out.Positions, conv.Position(p))
	}
	return out
}

func normalizeAnimation(a *Animation, conv *geom.AxisConverter) *Animation {
	out := &Animation{
		Name:       a.Name,
		FrameStart: a.FrameStart,
		FrameEnd:   a.FrameEnd,
		FPS:        a.FPS,
		CueEvents:  a.CueEvents,
	}
	for _, ch := range a.Channels {
		nch := &Channel{BoneName: ch.BoneName}
		for _, k := range ch.PositionKeys {
			nch.PositionKeys = append(nch.PositionKeys, VectorKey{Time: k.Time, Value: conv.Position(k.Value)})
		}
		for _, k := range ch.RotationKeys {
			nch.RotationKeys = append(nch.RotationKeys, RotationKey{Time: k.Time, Value: conv.Quaternion(k.Value)})
		}
		for _, k := range ch.ScaleKeys {
			nch.ScaleKeys = append(nch.ScaleKeys, VectorKey{Time: k.Time, Value: conv.ScaleVector(k.Value)})
		}
		out.Channels = append(out.Channels, nch)
	}
	return out
}
