package exporter

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/bigworld-tools/bwexport/bw"
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
	"github.com/pkg/errors"
)

// Composer writes the full file set for one asset: geometry, render
// description, model description, and skeleton and animation files when
// the asset carries them. Each file is written through its own stream;
// a failed write removes the partial file before the error is returned.
type Composer struct {
	settings *Settings
	audit    *AuditLog
	manifest *Manifest
}

func NewComposer(settings *Settings, audit *AuditLog, manifest *Manifest) *Composer {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Composer{settings: settings, audit: audit, manifest: manifest}
}

// Export validates, normalizes and writes one asset. It returns the paths
// of the files written. On error no partial file is left behind, but files
// completed before the failing one stay on disk.
func (c *Composer) Export(asset *bw.SceneAsset) ([]string, error) {
	name := asset.Name
	if err := bw.ValidateAsset(asset); err != nil {
		c.audit.Error(CodeGeoDegenerate, err.Error(), name)
		return nil, err
	}

	conv := geom.NewAxisConverter(c.settings.UnitScale)
	norm := bw.NormalizeAsset(asset, conv)

	g := bw.AssembleGeometry(norm.Triangles, c.settings.FlipWinding)
	if err := bw.ValidateGeometry(g, norm.Vertices.Count(), len(norm.Materials)); err != nil {
		code := CodeGeoDegenerate
		if len(g.Groups) != len(norm.Materials) {
			code = CodeMatMissingSlot
		}
		c.audit.Error(code, err.Error(), name)
		return nil, err
	}

	resourceID := bw.ResourcePath(name)
	var written []string
	add := func(path, file, fileType string, deps []string) {
		written = append(written, path)
		if c.manifest != nil {
			c.manifest.Add(file, fileType, path, deps)
		}
		c.audit.Info("wrote "+path, name)
	}

	primitivesPath := c.outPath(resourceID + ".primitives")
	if err := c.writePrimitives(primitivesPath, norm, g, name); err != nil {
		return written, err
	}
	add(primitivesPath, resourceID+".primitives", "primitives", nil)

	if norm.Skeleton != nil {
		skeletonPath := c.outPath(resourceID + ".skeleton")
		if err := c.writeSkeleton(skeletonPath, norm); err != nil {
			return written, err
		}
		add(skeletonPath, resourceID+".skeleton", "skeleton", nil)
	}

	if norm.Collision != nil {
		collisionPath := c.outPath(resourceID + ".collision")
		if err := c.writeCollision(collisionPath, norm.Collision, resourceID); err != nil {
			return written, err
		}
		add(collisionPath, resourceID+".collision", "collision", nil)
	}

	var animDeps []string
	for _, anim := range norm.Animations {
		if err := bw.ValidateAnimation(anim); err != nil {
			c.audit.Error(CodeAnmKeyOrder, err.Error(), name)
			return written, err
		}
		animID := bw.ResourcePath(anim.Name)
		if animID == "" {
			animID = resourceID + "_emptyanim"
		}
		animPath := c.outPath(animID + ".animation")
		if err := c.writeAnimation(animPath, anim); err != nil {
			return written, err
		}
		add(animPath, animID, "animation", nil)
		animDeps = append(animDeps, animID)
	}

	visualPath := c.outPath(resourceID + ".visual")
	visual := bw.BuildVisual(norm, g, resourceID, resourceID+".primitives")
	if err := c.writeSection(visualPath, visual); err != nil {
		return written, err
	}
	add(visualPath, resourceID, "visual", []string{resourceID + ".primitives"})

	modelPath := c.outPath(resourceID + ".model")
	model := bw.BuildModel(norm, g, resourceID, resourceID)
	if err := c.writeSection(modelPath, model); err != nil {
		return written, err
	}
	add(modelPath, resourceID+".model", "model", append([]string{resourceID}, animDeps...))

	return written, nil
}

func (c *Composer) outPath(name string) string {
	return filepath.Join(c.settings.OutputDir, filepath.FromSlash(name))
}

func (c *Composer) writePrimitives(path string, asset *bw.SceneAsset, g *bw.Geometry, object string) error {
	return c.writeBinFile(path, func(w *datasection.BinSectionWriter) error {
		warnings, err := bw.WritePrimitives(w, asset.Vertices, g)
		for _, warn := range warnings {
			c.audit.Warning(CodeBoneRange, warn, object)
		}
		return err
	})
}

func (c *Composer) writeCollision(path string, mesh *bw.CollisionMesh, name string) error {
	return c.writeBinFile(path, func(w *datasection.BinSectionWriter) error {
		return bw.WriteCollision(w, mesh, name, c.settings.FlipWinding)
	})
}

// ExportPrefab writes a prefab file placing previously exported objects.
// Instance transforms are normalized like node transforms; each instance
// role is recorded as a model dependency in the manifest.
func (c *Composer) ExportPrefab(name string, groups []*bw.PrefabGroup) (string, error) {
	conv := geom.NewAxisConverter(c.settings.UnitScale)
	norm := make([]*bw.PrefabGroup, 0, len(groups))
	var deps []string
	seen := map[string]bool{}
	for _, g := range groups {
		ng := &bw.PrefabGroup{Name: g.Name}
		for _, inst := range g.Instances {
			ni := &bw.PrefabInstance{Role: inst.Role, Visible: inst.Visible}
			if inst.Matrix != nil {
				ni.Matrix = conv.Matrix(inst.Matrix)
			}
			ng.Instances = append(ng.Instances, ni)
			dep := bw.ResourcePath(inst.Role) + ".model"
			if !seen[dep] {
				seen[dep] = true
				deps = append(deps, dep)
			}
		}
		norm = append(norm, ng)
	}

	resourceID := bw.ResourcePath(name)
	path := c.outPath(resourceID + ".prefab")
	err := c.writeBinFile(path, func(w *datasection.BinSectionWriter) error {
		return bw.WritePrefabs(w, norm)
	})
	if err != nil {
		return "", err
	}
	if c.manifest != nil {
		c.manifest.Add(resourceID+".prefab", "prefab", path, deps)
	}
	c.audit.Info("wrote "+path, name)
	return path, nil
}

func (c *Composer) writeSkeleton(path string, asset *bw.SceneAsset) error {
	return c.writeBinFile(path, func(w *datasection.BinSectionWriter) error {
		return bw.WriteSkeleton(w, asset.Skeleton, asset.Hardpoints)
	})
}

func (c *Composer) writeAnimation(path string, anim *bw.Animation) error {
	return c.writeBinFile(path, func(w *datasection.BinSectionWriter) error {
		return bw.WriteAnimation(w, anim)
	})
}

func (c *Composer) writeBinFile(path string, fn func(w *datasection.BinSectionWriter) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IoError{Path: path, Err: err}
	}
	w, err := datasection.CreateBinSection(path, datasection.DefaultRegistry())
	if err != nil {
		return &IoError{Path: path, Err: err}
	}
	if err := fn(w); err != nil {
		w.Abort()
		os.Remove(path)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}

// writeSection writes a node tree as a text section, or as a packed
// binary section when the settings ask for it.
func (c *Composer) writeSection(path string, root *datasection.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IoError{Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &IoError{Path: path, Err: err}
	}
	bufw := bufio.NewWriter(f)
	if c.settings.BinarySections {
		err = datasection.WritePackedSection(bufw, root)
	} else {
		err = datasection.WriteTextSection(bufw, root)
	}
	if err == nil {
		err = bufw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
