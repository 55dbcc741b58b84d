package converter

import (
	"math"
	"strings"

	"github.com/bigworld-tools/bwexport/bw"
	"github.com/bigworld-tools/bwexport/geom"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const hardpointPrefix = "HP_"

type GLTFToBWOption struct {
	FPS int // frame rate stamped on converted animations. Default: 30
}

type gltfToBW struct {
	options     *GLTFToBWOption
	jointToBone map[uint32]int // node index -> bone index
}

func NewGLTFToBWConverter(options *GLTFToBWOption) *gltfToBW {
	if options == nil {
		options = &GLTFToBWOption{}
	}
	if options.FPS == 0 {
		options.FPS = 30
	}
	return &gltfToBW{
		options:     options,
		jointToBone: map[uint32]int{},
	}
}

func nodeMatrix(n *gltf.Node) *geom.Matrix4 {
	if n.MatrixOrDefault() != gltf.DefaultMatrix {
		return geom.NewMatrix4FromSlice(n.Matrix[:])
	}
	t := geom.NewVector3FromArray(n.Translation)
	r := geom.NewQuaternion(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3])
	if n.Rotation == [4]float32{} {
		r = geom.NewIdentityQuaternion()
	}
	s := geom.NewVector3FromArray(n.Scale)
	if n.Scale == [3]float32{} {
		s = geom.NewVector3(1, 1, 1)
	}
	return geom.NewTRSMatrix4(t, r, s)
}

func (c *gltfToBW) convertMaterial(src *gltf.Document, m *gltf.Material) *bw.Material {
	mat := &bw.Material{
		Name:          m.Name,
		Shader:        "shaders/std_effects/lightonly.fx",
		Alpha:         1,
		SpecularPower: 32,
		TwoSided:      m.DoubleSided,
		Transparent:   m.AlphaMode == gltf.AlphaBlend,
	}
	textureURI := func(t *gltf.TextureInfo) string {
		if t == nil || src.Textures[t.Index].Source == nil {
			return ""
		}
		return src.Images[*src.Textures[t.Index].Source].URI
	}
	if m.PBRMetallicRoughness != nil {
		col := m.PBRMetallicRoughness.BaseColorFactorOrDefault()
		mat.Alpha = col[3]
		mat.Diffuse = textureURI(m.PBRMetallicRoughness.BaseColorTexture)
		mat.Specular = textureURI(m.PBRMetallicRoughness.MetallicRoughnessTexture)
		mat.SpecularPower = (1 - m.PBRMetallicRoughness.RoughnessFactorOrDefault()) * 128
	}
	if m.NormalTexture != nil && m.NormalTexture.Index != nil {
		mat.Normal = textureURI(&gltf.TextureInfo{Index: *m.NormalTexture.Index})
		mat.Shader = "shaders/std_effects/normalmap.fx"
	}
	if mat.Transparent {
		mat.Opacity = mat.Diffuse
		mat.Shader = "shaders/std_effects/lightonly_alpha.fx"
	}
	return mat
}

// streamLayout records which vertex attributes appear anywhere in the
// document, so primitives missing an attribute can be padded and the
// exported stream stays rectangular.
type streamLayout struct {
	normals  bool
	tangents bool
	uv0      bool
	uv1      bool
	colors   bool
	skin     bool
}

func (c *gltfToBW) scanLayout(src *gltf.Document) *streamLayout {
	layout := &streamLayout{}
	for _, n := range src.Nodes {
		if n.Mesh == nil {
			continue
		}
		for _, p := range src.Meshes[*n.Mesh].Primitives {
			if _, ok := p.Attributes["NORMAL"]; ok {
				layout.normals = true
			}
			if _, ok := p.Attributes["TANGENT"]; ok {
				layout.tangents = true
			}
			if _, ok := p.Attributes["TEXCOORD_0"]; ok {
				layout.uv0 = true
			}
			if _, ok := p.Attributes["TEXCOORD_1"]; ok {
				layout.uv1 = true
			}
			if _, ok := p.Attributes["COLOR_0"]; ok {
				layout.colors = true
			}
			if _, ok := p.Attributes["JOINTS_0"]; ok && n.Skin != nil {
				layout.skin = true
			}
		}
	}
	return layout
}

func (c *gltfToBW) convertPrimitive(src *gltf.Document, p *gltf.Primitive, skin *gltf.Skin, world *geom.Matrix4, layout *streamLayout, asset *bw.SceneAsset) error {
	if p.Mode != gltf.PrimitiveTriangles {
		return nil
	}
	stream := asset.Vertices
	base := stream.Count()

	a, ok := p.Attributes["POSITION"]
	if !ok {
		return nil
	}
	pos, err := modeler.ReadPosition(src, src.Accessors[a], [][3]float32{})
	if err != nil {
		return errors.Wrap(err, "read positions")
	}
	bake := skin == nil
	for _, v := range pos {
		pt := geom.NewVector3(v[0], v[1], v[2])
		if bake {
			pt = world.ApplyTo(pt)
		}
		stream.Positions = append(stream.Positions, pt)
	}
	count := len(pos)

	if layout.normals {
		var normals [][3]float32
		if a, ok := p.Attributes["NORMAL"]; ok {
			if normals, err = modeler.ReadNormal(src, src.Accessors[a], [][3]float32{}); err != nil {
				return errors.Wrap(err, "read normals")
			}
		}
		for i := 0; i < count; i++ {
			n := geom.NewVector3(0, 1, 0)
			if i < len(normals) {
				n = geom.NewVector3(normals[i][0], normals[i][1], normals[i][2])
				if bake {
					n = world.ApplyToDirection(n)
				}
			}
			stream.Normals = append(stream.Normals, n)
		}
	}
	if layout.tangents {
		var tangents [][4]float32
		if a, ok := p.Attributes["TANGENT"]; ok {
			if tangents, err = modeler.ReadTangent(src, src.Accessors[a], [][4]float32{}); err != nil {
				return errors.Wrap(err, "read tangents")
			}
		}
		for i := 0; i < count; i++ {
			t := geom.NewVector4(1, 0, 0, 1)
			if i < len(tangents) {
				d := geom.NewVector3(tangents[i][0], tangents[i][1], tangents[i][2])
				if bake {
					d = world.ApplyToDirection(d)
				}
				t = geom.NewVector4(d.X, d.Y, d.Z, tangents[i][3])
			}
			stream.Tangents = append(stream.Tangents, t)
		}
	}
	if layout.uv0 {
		stream.UV0, err = c.appendTexCoords(src, p, "TEXCOORD_0", stream.UV0, count)
		if err != nil {
			return err
		}
	}
	if layout.uv1 {
		stream.UV1, err = c.appendTexCoords(src, p, "TEXCOORD_1", stream.UV1, count)
		if err != nil {
			return err
		}
	}
	if layout.colors {
		var colors [][4]uint8
		if a, ok := p.Attributes["COLOR_0"]; ok {
			if colors, err = modeler.ReadColor(src, src.Accessors[a], [][4]uint8{}); err != nil {
				return errors.Wrap(err, "read colors")
			}
		}
		for i := 0; i < count; i++ {
			col := geom.NewVector4(1, 1, 1, 1)
			if i < len(colors) {
				col = geom.NewVector4(
					float32(colors[i][0])/255,
					float32(colors[i][1])/255,
					float32(colors[i][2])/255,
					float32(colors[i][3])/255)
			}
			stream.Colors = append(stream.Colors, col)
		}
	}
	if layout.skin {
		if err := c.appendSkin(src, p, skin, count, stream); err != nil {
			return err
		}
	}

	var indices []uint32
	if p.Indices != nil {
		if indices, err = modeler.ReadIndices(src, src.Accessors[*p.Indices], []uint32{}); err != nil {
			return errors.Wrap(err, "read indices")
		}
	} else {
		for i := 0; i < count; i++ {
			indices = append(indices, uint32(i))
		}
	}
	material := 0
	if p.Material != nil {
		material = int(*p.Material)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		asset.Triangles = append(asset.Triangles, bw.Triangle{
			Indices:  [3]int{base + int(indices[i]), base + int(indices[i+1]), base + int(indices[i+2])},
			Material: material,
		})
	}
	return nil
}

func (c *gltfToBW) appendTexCoords(src *gltf.Document, p *gltf.Primitive, attr string, dst []*geom.Vector2, count int) ([]*geom.Vector2, error) {
	var uv [][2]float32
	if a, ok := p.Attributes[attr]; ok {
		var err error
		if uv, err = modeler.ReadTextureCoord(src, src.Accessors[a], [][2]float32{}); err != nil {
			return nil, errors.Wrapf(err, "read %s", attr)
		}
	}
	for i := 0; i < count; i++ {
		t := geom.NewVector2(0, 0)
		if i < len(uv) {
			t = geom.NewVector2(uv[i][0], uv[i][1])
		}
		dst = append(dst, t)
	}
	return dst, nil
}

func (c *gltfToBW) appendSkin(src *gltf.Document, p *gltf.Primitive, skin *gltf.Skin, count int, stream *bw.VertexStream) error {
	var joints [][4]uint16
	var weights [][4]float32
	if skin != nil {
		if a, ok := p.Attributes["JOINTS_0"]; ok {
			var err error
			if joints, err = modeler.ReadJoints(src, src.Accessors[a], [][4]uint16{}); err != nil {
				return errors.Wrap(err, "read joints")
			}
		}
		if a, ok := p.Attributes["WEIGHTS_0"]; ok {
			var err error
			if weights, err = modeler.ReadWeights(src, src.Accessors[a], [][4]float32{}); err != nil {
				return errors.Wrap(err, "read weights")
			}
		}
	}
	for i := 0; i < count; i++ {
		var bones [4]int
		var w [4]float32
		if i < len(joints) && i < len(weights) {
			for k := 0; k < 4; k++ {
				bone, ok := c.jointToBone[skin.Joints[joints[i][k]]]
				if !ok {
					bone = 0
				}
				bones[k] = bone
				w[k] = weights[i][k]
			}
		}
		stream.BoneIndices = append(stream.BoneIndices, bones)
		stream.BoneWeights = append(stream.BoneWeights, w)
	}
	return nil
}

// convertSkeleton flattens the joint nodes of every skin into one bone
// arena. Bones are appended in tree order so a parent always precedes its
// children.
func (c *gltfToBW) convertSkeleton(src *gltf.Document, roots []uint32) (*bw.Skeleton, error) {
	jointNodes := map[uint32]bool{}
	for _, skin := range src.Skins {
		for _, j := range skin.Joints {
			jointNodes[j] = true
		}
	}
	if len(jointNodes) == 0 {
		return nil, nil
	}

	skeleton := &bw.Skeleton{}
	var walk func(node uint32, parentBone int, world *geom.Matrix4)
	walk = func(node uint32, parentBone int, world *geom.Matrix4) {
		n := src.Nodes[node]
		world = world.Mul(nodeMatrix(n))
		bone := parentBone
		if jointNodes[node] {
			bone = len(skeleton.Bones)
			c.jointToBone[node] = bone
			skeleton.Bones = append(skeleton.Bones, &bw.Bone{
				Name:              n.Name,
				ParentIndex:       parentBone,
				BindMatrix:        world,
				InverseBindMatrix: world.Inverse(),
			})
		}
		for _, child := range n.Children {
			walk(child, bone, world)
		}
	}
	for _, root := range roots {
		walk(root, -1, geom.NewMatrix4())
	}

	// Inverse bind matrices from the document override the ones derived
	// from the node tree.
	for _, skin := range src.Skins {
		if skin.InverseBindMatrices == nil {
			continue
		}
		raw, err := modeler.ReadAccessor(src, src.Accessors[*skin.InverseBindMatrices], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read inverse bind matrices")
		}
		mats, ok := raw.([][4][4]float32)
		if !ok {
			return nil, errors.Errorf("unexpected inverse bind accessor type %T", raw)
		}
		for i, j := range skin.Joints {
			bone, exist := c.jointToBone[j]
			if !exist || i >= len(mats) {
				continue
			}
			ibm := geom.NewMatrix4()
			for col := 0; col < 4; col++ {
				for row := 0; row < 4; row++ {
					ibm[col*4+row] = mats[i][col][row]
				}
			}
			skeleton.Bones[bone].InverseBindMatrix = ibm
			skeleton.Bones[bone].BindMatrix = ibm.Inverse()
		}
	}
	return skeleton, nil
}

func (c *gltfToBW) convertHardpoints(src *gltf.Document, roots []uint32) []*bw.Hardpoint {
	var hardpoints []*bw.Hardpoint
	var walk func(node uint32, parentJoint string)
	walk = func(node uint32, parentJoint string) {
		n := src.Nodes[node]
		joint := parentJoint
		if _, ok := c.jointToBone[node]; ok {
			joint = n.Name
		}
		if strings.HasPrefix(n.Name, hardpointPrefix) {
			hardpoints = append(hardpoints, &bw.Hardpoint{
				Name:   strings.TrimPrefix(n.Name, hardpointPrefix),
				Type:   "HardPoint",
				Bone:   parentJoint,
				Matrix: nodeMatrix(n),
			})
		}
		for _, child := range n.Children {
			walk(child, joint)
		}
	}
	for _, root := range roots {
		walk(root, "")
	}
	return hardpoints
}

func (c *gltfToBW) convertNodes(src *gltf.Document, roots []uint32) *bw.SceneNode {
	sceneRoot := &bw.SceneNode{Name: "Scene Root", Transform: geom.NewMatrix4()}
	var walk func(node uint32, parent *bw.SceneNode)
	walk = func(node uint32, parent *bw.SceneNode) {
		n := src.Nodes[node]
		if strings.HasPrefix(n.Name, hardpointPrefix) {
			return
		}
		sn := &bw.SceneNode{Name: n.Name, Transform: nodeMatrix(n)}
		parent.Children = append(parent.Children, sn)
		for _, child := range n.Children {
			walk(child, sn)
		}
	}
	for _, root := range roots {
		walk(root, sceneRoot)
	}
	return sceneRoot
}

func (c *gltfToBW) convertAnimation(src *gltf.Document, a *gltf.Animation) (*bw.Animation, error) {
	anim := &bw.Animation{Name: a.Name, FPS: c.options.FPS}
	channels := map[string]*bw.Channel{}
	var order []string
	channelFor := func(bone string) *bw.Channel {
		if ch, ok := channels[bone]; ok {
			return ch
		}
		ch := &bw.Channel{BoneName: bone}
		channels[bone] = ch
		order = append(order, bone)
		return ch
	}

	var maxTime float32
	for _, channel := range a.Channels {
		if channel.Target.Node == nil || channel.Sampler == nil {
			continue
		}
		if _, ok := c.jointToBone[*channel.Target.Node]; !ok {
			continue
		}
		sampler := a.Samplers[*channel.Sampler]

		rawTimes, err := modeler.ReadAccessor(src, src.Accessors[*sampler.Input], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read animation input")
		}
		times, ok := rawTimes.([]float32)
		if !ok {
			return nil, errors.Errorf("unexpected animation input type %T", rawTimes)
		}
		for _, t := range times {
			if t > maxTime {
				maxTime = t
			}
		}
		rawValues, err := modeler.ReadAccessor(src, src.Accessors[*sampler.Output], nil)
		if err != nil {
			return nil, errors.Wrap(err, "read animation output")
		}

		// Cubic spline samplers carry in-tangent, value, out-tangent
		// triples; only the value element is kept.
		pick := func(i, n int) int {
			if n == 3*len(times) {
				return i*3 + 1
			}
			return i
		}

		ch := channelFor(src.Nodes[*channel.Target.Node].Name)
		switch channel.Target.Path {
		case gltf.TRSTranslation:
			values, ok := rawValues.([][3]float32)
			if !ok {
				return nil, errors.Errorf("unexpected translation output type %T", rawValues)
			}
			for i, t := range times {
				v := values[pick(i, len(values))]
				ch.PositionKeys = append(ch.PositionKeys, bw.VectorKey{Time: t, Value: geom.NewVector3(v[0], v[1], v[2])})
			}
		case gltf.TRSRotation:
			values, ok := rawValues.([][4]float32)
			if !ok {
				return nil, errors.Errorf("unexpected rotation output type %T", rawValues)
			}
			for i, t := range times {
				v := values[pick(i, len(values))]
				ch.RotationKeys = append(ch.RotationKeys, bw.RotationKey{Time: t, Value: geom.NewQuaternion(v[0], v[1], v[2], v[3])})
			}
		case gltf.TRSScale:
			values, ok := rawValues.([][3]float32)
			if !ok {
				return nil, errors.Errorf("unexpected scale output type %T", rawValues)
			}
			for i, t := range times {
				v := values[pick(i, len(values))]
				ch.ScaleKeys = append(ch.ScaleKeys, bw.VectorKey{Time: t, Value: geom.NewVector3(v[0], v[1], v[2])})
			}
		}
	}
	for _, bone := range order {
		anim.Channels = append(anim.Channels, channels[bone])
	}
	anim.FrameEnd = int(math.Ceil(float64(maxTime) * float64(anim.FPS)))
	return anim, nil
}

func (c *gltfToBW) sceneRoots(src *gltf.Document) []uint32 {
	if src.Scene != nil {
		return src.Scenes[*src.Scene].Nodes
	}
	if len(src.Scenes) > 0 {
		return src.Scenes[0].Nodes
	}
	var roots []uint32
	child := map[uint32]bool{}
	for _, n := range src.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	for i := range src.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

func (c *gltfToBW) Convert(src *gltf.Document, name string) (*bw.SceneAsset, error) {
	asset := bw.NewSceneAsset(name)
	roots := c.sceneRoots(src)

	for _, mat := range src.Materials {
		asset.Materials = append(asset.Materials, c.convertMaterial(src, mat))
	}
	if len(asset.Materials) == 0 {
		asset.Materials = append(asset.Materials, &bw.Material{
			Name:   name,
			Shader: "shaders/std_effects/lightonly.fx",
			Alpha:  1,
		})
	}

	skeleton, err := c.convertSkeleton(src, roots)
	if err != nil {
		return nil, err
	}
	asset.Skeleton = skeleton
	asset.Hardpoints = c.convertHardpoints(src, roots)
	asset.Nodes = c.convertNodes(src, roots)

	layout := c.scanLayout(src)
	var walk func(node uint32, world *geom.Matrix4) error
	walk = func(node uint32, world *geom.Matrix4) error {
		n := src.Nodes[node]
		world = world.Mul(nodeMatrix(n))
		if n.Mesh != nil {
			var skin *gltf.Skin
			if n.Skin != nil {
				skin = src.Skins[*n.Skin]
			}
			for _, p := range src.Meshes[*n.Mesh].Primitives {
				if err := c.convertPrimitive(src, p, skin, world, layout, asset); err != nil {
					return errors.Wrapf(err, "mesh %q", src.Meshes[*n.Mesh].Name)
				}
			}
		}
		for _, child := range n.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := walk(root, geom.NewMatrix4()); err != nil {
			return nil, err
		}
	}

	for _, a := range src.Animations {
		anim, err := c.convertAnimation(src, a)
		if err != nil {
			return nil, errors.Wrapf(err, "animation %q", a.Name)
		}
		asset.Animations = append(asset.Animations, anim)
	}
	return asset, nil
}
