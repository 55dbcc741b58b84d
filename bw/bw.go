// Package bw holds the engine-neutral scene document and the encoders for
// the asset file formats: geometry (.primitives), render description
// (.visual), scene node (.model), skeleton and animation files.
package bw

import (
	"github.com/bigworld-tools/bwexport/geom"
)

// SceneAsset is the input to one export call. It is read-only during
// encoding; the caller owns it and may not mutate it until the export
// returns.
type SceneAsset struct {
	Name       string
	Vertices   *VertexStream
	Triangles  []Triangle
	Materials  []*Material
	Skeleton   *Skeleton
	Animations []*Animation
	Nodes      *SceneNode
	Hardpoints []*Hardpoint
	Collision  *CollisionMesh
}

// CollisionMesh is the physics proxy of an asset: bare positions and
// triangles, usually far coarser than the render mesh. Material slots
// group the triangles the same way the render geometry does.
type CollisionMesh struct {
	Positions []*geom.Vector3
	Triangles []Triangle
}

// PrefabInstance places one exported object inside a prefab group. Role
// names the object; the matrix is the instance's world transform.
type PrefabInstance struct {
	Role    string
	Visible bool
	Matrix  *geom.Matrix4
}

type PrefabGroup struct {
	Name      string
	Instances []*PrefabInstance
}

// VertexStream holds parallel per-vertex arrays. Every present array has
// length Count(); an entirely absent attribute has length zero.
type VertexStream struct {
	Positions   []*geom.Vector3
	Normals     []*geom.Vector3
	Tangents    []*geom.Vector4 // xyz direction, w bitangent sign
	UV0         []*geom.Vector2
	UV1         []*geom.Vector2
	Colors      []*geom.Vector4
	BoneIndices [][4]int
	BoneWeights [][4]float32
}

func (s *VertexStream) Count() int {
	return len(s.Positions)
}

func (s *VertexStream) HasNormals() bool  { return len(s.Normals) > 0 }
func (s *VertexStream) HasTangents() bool { return len(s.Tangents) > 0 }
func (s *VertexStream) HasColors() bool   { return len(s.Colors) > 0 }
func (s *VertexStream) HasSkin() bool     { return len(s.BoneWeights) > 0 }

// UVLayers reports how many texture coordinate layers are present.
func (s *VertexStream) UVLayers() int {
	n := 0
	if len(s.UV0) > 0 {
		n++
	}
	if len(s.UV1) > 0 {
		n++
	}
	return n
}

// Triangle references three vertices and a material slot.
type Triangle struct {
	Indices  [3]int
	Material int
}

type Material struct {
	Name     string
	Shader   string
	Diffuse  string
	Normal   string
	Specular string
	Opacity  string
	EnvMap   string

	SpecularPower float32
	Alpha         float32
	TwoSided      bool
	Transparent   bool
	SortBias      int
}

// Bone is one record of a skeleton arena. ParentIndex is -1 for roots and
// always less than the bone's own index.
type Bone struct {
	Name              string
	ParentIndex       int
	BindMatrix        *geom.Matrix4
	InverseBindMatrix *geom.Matrix4
}

type Skeleton struct {
	Bones []*Bone
}

// BoneIndex returns the index of the named bone, or -1.
func (s *Skeleton) BoneIndex(name string) int {
	for i, b := range s.Bones {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Hardpoint is a named attachment transform bound to a bone.
type Hardpoint struct {
	Name   string
	Type   string
	Bone   string
	Matrix *geom.Matrix4
}

// TransformKey is one sampled pose of a bone.
type TransformKey struct {
	Time     float32
	Position *geom.Vector3
	Rotation *geom.Quaternion
	Scale    *geom.Vector3
}

// Channel holds the raw key channels of one bone. Channels are sampled at
// a fixed frame rate by the animation encoder; missing channels default to
// the identity transform.
type Channel struct {
	BoneName     string
	PositionKeys []VectorKey
	RotationKeys []RotationKey
	ScaleKeys    []VectorKey
}

type VectorKey struct {
	Time  float32
	Value *geom.Vector3
}

type RotationKey struct {
	Time  float32
	Value *geom.Quaternion
}

// CueEvent is a named marker on the animation timeline.
type CueEvent struct {
	Time  float32
	Label string
	Param string
}

type Animation struct {
	Name       string
	FrameStart int
	FrameEnd   int
	FPS        int
	Channels   []*Channel
	CueEvents  []CueEvent
}

// Duration returns the clip length in seconds.
func (a *Animation) Duration() float32 {
	if a.FPS <= 0 {
		return 0
	}
	return float32(a.FrameEnd-a.FrameStart) / float32(a.FPS)
}

// SceneNode is one element of the exported node hierarchy.
type SceneNode struct {
	Name      string
	Transform *geom.Matrix4
	Children  []*SceneNode
}

// NewSceneAsset returns an empty asset with an identity root node.
func NewSceneAsset(name string) *SceneAsset {
	return &SceneAsset{
		Name:     name,
		Vertices: &VertexStream{},
		Nodes:    &SceneNode{Name: "Scene Root", Transform: geom.NewMatrix4()},
	}
}
