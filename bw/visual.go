package bw

import (
	"strconv"

	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

// BuildVisual builds the render-description tree: the node hierarchy, one
// renderSet referencing the geometry file sections, one primitiveGroup
// with its material block per primitive group, and the bounding box.
// primitivesName is the geometry file name without extension, lower-cased
// like every cross-file reference.
func BuildVisual(asset *SceneAsset, g *Geometry, fileName, primitivesName string) *datasection.Node {
	root := datasection.NewNode(NormalizeName(fileName))

	if asset.Nodes != nil {
		root.Children = append(root.Children, buildNodeTree(asset.Nodes))
	}

	primRef := ResourcePath(primitivesName) + ".primitives"
	rs := root.AddChild("renderSet")
	rs.Add("treatAsWorldSpaceObject", datasection.Bool(false))
	if asset.Skeleton != nil {
		for _, b := range asset.Skeleton.Bones {
			rs.Add("node", datasection.String(NormalizeName(b.Name)))
		}
	} else if asset.Nodes != nil {
		rs.Add("node", datasection.String(NormalizeName(asset.Nodes.Name)))
	}
	geo := rs.AddChild("geometry")
	geo.Add("vertices", datasection.String(primRef+"/vertices"))
	geo.Add("primitive", datasection.String(primRef+"/indices"))
	for i := range g.Groups {
		pgNode := geo.Add("primitiveGroup", datasection.Int(int64(i)))
		var mat *Material
		if i < len(asset.Materials) {
			mat = asset.Materials[i]
		}
		pgNode.Children = append(pgNode.Children, buildMaterial(mat))
	}

	min, max := boundingBox(asset.Vertices)
	bb := root.AddChild("boundingBox")
	bb.Add("min", datasection.Floats(min.X, min.Y, min.Z))
	bb.Add("max", datasection.Floats(max.X, max.Y, max.Z))
	return root
}

func buildNodeTree(n *SceneNode) *datasection.Node {
	node := datasection.NewNode("node")
	node.Add("identifier", datasection.String(NormalizeName(n.Name)))
	m := n.Transform
	if m == nil {
		m = geom.NewMatrix4()
	}
	node.Children = append(node.Children, matrixNode("transform", m))
	for _, c := range n.Children {
		node.Children = append(node.Children, buildNodeTree(c))
	}
	return node
}

// matrixNode writes the three basis rows and the translation row of an
// affine transform, matching the binary flatten order.
func matrixNode(tag string, m *geom.Matrix4) *datasection.Node {
	var a [16]geom.Element
	m.ToArray(a[:])
	node := datasection.NewNode(tag)
	for r := 0; r < 4; r++ {
		node.Add("row"+strconv.Itoa(r),
			datasection.Floats(a[r*4], a[r*4+1], a[r*4+2]))
	}
	return node
}

func buildMaterial(m *Material) *datasection.Node {
	node := datasection.NewNode("material")
	if m == nil {
		node.Add("identifier", datasection.String("default"))
		node.Add("fx", datasection.String("shaders/std_effects/lightonly.fx"))
		return node
	}
	node.Add("identifier", datasection.String(NormalizeName(m.Name)))
	shader := m.Shader
	if shader == "" {
		shader = "shaders/std_effects/lightonly.fx"
	}
	node.Add("fx", datasection.String(ResourcePath(shader)))

	addTexture(node, "diffuseMap", m.Diffuse)
	addTexture(node, "normalMap", m.Normal)
	addTexture(node, "specularMap", m.Specular)
	addTexture(node, "opacityMap", m.Opacity)
	addTexture(node, "envMap", m.EnvMap)

	addFloatProperty(node, "specularPower", m.SpecularPower)
	addFloatProperty(node, "alpha", m.Alpha)
	node.Add("doubleSided", datasection.Bool(m.TwoSided))
	if m.Transparent {
		node.Add("transparent", datasection.Bool(true))
	}
	if m.SortBias != 0 {
		node.Add("sortBias", datasection.Int(int64(m.SortBias)))
	}
	return node
}

func addTexture(mat *datasection.Node, property, path string) {
	if path == "" {
		return
	}
	p := mat.Add("property", datasection.String(property))
	p.Add("Texture", datasection.String(TexturePath(path)))
}

func addFloatProperty(mat *datasection.Node, property string, v float32) {
	p := mat.Add("property", datasection.String(property))
	p.Add("Float", datasection.Float(v))
}

func boundingBox(s *VertexStream) (*geom.Vector3, *geom.Vector3) {
	if s == nil || len(s.Positions) == 0 {
		return geom.NewVector3(0, 0, 0), geom.NewVector3(0, 0, 0)
	}
	min := *s.Positions[0]
	max := *s.Positions[0]
	for _, p := range s.Positions[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return &min, &max
}
