package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
)

// BuildModel builds the scene-node tree that ties the other output files
// together: the visual reference (nodefull when a skeleton is present,
// nodeless otherwise), per-group material names, the visibility box and
// one animation block plus a matching action per exported clip. All file
// references are relative
// and lower-cased; the extension is implied by the referencing tag.
func BuildModel(asset *SceneAsset, g *Geometry, fileName, visualName string) *datasection.Node {
	root := datasection.NewNode(NormalizeName(fileName))

	visualRef := ResourcePath(visualName)
	if asset.Skeleton != nil {
		root.Add("nodefullVisual", datasection.String(visualRef))
	} else {
		root.Add("nodelessVisual", datasection.String(visualRef))
	}

	for i := range g.Groups {
		name := "default"
		if i < len(asset.Materials) && asset.Materials[i] != nil {
			name = NormalizeName(asset.Materials[i].Name)
		}
		root.Add("materialNames", datasection.String(name))
	}

	min, max := boundingBox(asset.Vertices)
	vb := root.AddChild("visibilityBox")
	vb.Add("min", datasection.Floats(min.X, min.Y, min.Z))
	vb.Add("max", datasection.Floats(max.X, max.Y, max.Z))

	extent := max.Sub(min).Len()
	root.Add("extent", datasection.Float(extent))
	root.Add("batched", datasection.Bool(true))
	root.Add("dpvsOccluder", datasection.Bool(asset.Skeleton == nil))

	for _, anim := range asset.Animations {
		a := root.AddChild("animation")
		a.Add("name", datasection.String(NormalizeName(anim.Name)))
		a.Add("nodes", datasection.String(ResourcePath(anim.Name)))
		a.Add("frameRate", datasection.Int(int64(animFPS(anim))))
		a.Add("firstFrame", datasection.Int(int64(anim.FrameStart)))
		a.Add("lastFrame", datasection.Int(int64(anim.FrameEnd)))
	}

	for _, anim := range asset.Animations {
		act := root.AddChild("action")
		act.Add("name", datasection.String(NormalizeName(anim.Name)))
		act.Add("animation", datasection.String(NormalizeName(anim.Name)))
		act.Add("blended", datasection.Bool(true))
	}

	for _, hp := range asset.Hardpoints {
		root.Add("hardPoint", datasection.String("HP_"+NormalizeName(hp.Name)))
	}
	return root
}

func animFPS(a *Animation) int {
	if a.FPS > 0 {
		return a.FPS
	}
	return 30
}
