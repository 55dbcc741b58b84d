package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bigworld-tools/bwexport/bw"
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

func quietAudit() *AuditLog {
	return NewAuditLog(LoggingSettings{}, false)
}

func staticAsset(name string) *bw.SceneAsset {
	a := bw.NewSceneAsset(name)
	a.Vertices.Positions = []*geom.Vector3{
		geom.NewVector3(0, 0, 0), geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0),
	}
	a.Vertices.Normals = []*geom.Vector3{
		geom.NewVector3(0, 0, 1), geom.NewVector3(0, 0, 1), geom.NewVector3(0, 0, 1),
	}
	a.Vertices.UV0 = []*geom.Vector2{
		geom.NewVector2(0, 0), geom.NewVector2(1, 0), geom.NewVector2(0, 1),
	}
	a.Triangles = []bw.Triangle{{Indices: [3]int{0, 1, 2}}}
	a.Materials = []*bw.Material{{Name: "body", Shader: "shaders/std_effects/lightonly.fx", Alpha: 1}}
	return a
}

func characterAsset(name string) *bw.SceneAsset {
	a := staticAsset(name)
	a.Vertices.BoneIndices = [][4]int{{0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}}
	a.Vertices.BoneWeights = [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0.5, 0, 0}}
	root := geom.NewMatrix4()
	arm := geom.NewTranslateMatrix4(0, 1, 0)
	a.Skeleton = &bw.Skeleton{Bones: []*bw.Bone{
		{Name: "root", ParentIndex: -1, BindMatrix: root, InverseBindMatrix: root.Inverse()},
		{Name: "arm", ParentIndex: 0, BindMatrix: arm, InverseBindMatrix: arm.Inverse()},
	}}
	a.Animations = []*bw.Animation{{
		Name: "walk", FrameStart: 0, FrameEnd: 30, FPS: 30,
		Channels: []*bw.Channel{{
			BoneName: "arm",
			PositionKeys: []bw.VectorKey{
				{Time: 0, Value: geom.NewVector3(0, 1, 0)},
				{Time: 1, Value: geom.NewVector3(0, 2, 0)},
			},
		}},
	}}
	return a
}

func TestComposerExportStatic(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir

	composer := NewComposer(settings, quietAudit(), NewManifest())
	written, err := composer.Export(staticAsset("crate"))
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 3 {
		t.Fatalf("written files: %v", written)
	}
	for _, name := range []string{"crate.primitives", "crate.visual", "crate.model"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	prim, err := datasection.ReadBinSectionFile(filepath.Join(dir, "crate.primitives"))
	if err != nil {
		t.Fatal(err)
	}
	if len(prim.Tags) != 2 || prim.Tags[0] != "vertices" || prim.Tags[1] != "indices" {
		t.Fatalf("primitives sections: %v", prim.Tags)
	}

	visual, err := os.ReadFile(filepath.Join(dir, "crate.visual"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(visual), "<crate>") {
		t.Fatalf("visual root tag: %q", string(visual[:20]))
	}
	model, err := os.ReadFile(filepath.Join(dir, "crate.model"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(model), "<nodelessVisual>\tcrate\t</nodelessVisual>") {
		t.Fatalf("model visual reference missing:\n%s", model)
	}
}

func TestComposerExportCharacter(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir

	manifest := NewManifest()
	composer := NewComposer(settings, quietAudit(), manifest)
	written, err := composer.Export(characterAsset("hero"))
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 5 {
		t.Fatalf("written files: %v", written)
	}

	skel, err := datasection.ReadBinSectionFile(filepath.Join(dir, "hero.skeleton"))
	if err != nil {
		t.Fatal(err)
	}
	if len(skel.Tags) != 2 || skel.Tags[0] != "skeleton" || skel.Tags[1] != "hardpoints" {
		t.Fatalf("skeleton sections: %v", skel.Tags)
	}

	anim, err := datasection.ReadBinSectionFile(filepath.Join(dir, "walk.animation"))
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Tags) != 2 || anim.Tags[0] != "animation" || anim.Tags[1] != "cuetrack" {
		t.Fatalf("animation sections: %v", anim.Tags)
	}

	model, err := os.ReadFile(filepath.Join(dir, "hero.model"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(model), "<nodefullVisual>\thero\t</nodefullVisual>") {
		t.Fatalf("model should reference a nodefull visual:\n%s", model)
	}

	if errs := manifest.ValidateDependencies(); len(errs) != 0 {
		t.Fatalf("dependency errors: %v", errs)
	}
}

func TestComposerExportBinarySections(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir
	settings.BinarySections = true

	composer := NewComposer(settings, quietAudit(), NewManifest())
	if _, err := composer.Export(staticAsset("crate")); err != nil {
		t.Fatal(err)
	}
	visual, err := os.ReadFile(filepath.Join(dir, "crate.visual"))
	if err != nil {
		t.Fatal(err)
	}
	if len(visual) < 4 || visual[0] != 0x45 || visual[1] != 0x4e || visual[2] != 0xa1 || visual[3] != 0x62 {
		t.Fatalf("packed section magic: % x", visual[:4])
	}
}

func TestComposerRejectsInvalidAsset(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir

	asset := staticAsset("broken")
	asset.Triangles[0].Indices[2] = 99

	composer := NewComposer(settings, quietAudit(), NewManifest())
	if _, err := composer.Export(asset); err == nil {
		t.Fatal("expected validation error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed export left files: %v", entries)
	}
}

func TestComposerExportCollision(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir

	asset := staticAsset("crate")
	asset.Collision = &bw.CollisionMesh{
		Positions: []*geom.Vector3{
			geom.NewVector3(0, 0, 0), geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0),
		},
		Triangles: []bw.Triangle{{Indices: [3]int{0, 1, 2}}},
	}

	manifest := NewManifest()
	composer := NewComposer(settings, quietAudit(), manifest)
	written, err := composer.Export(asset)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 4 {
		t.Fatalf("written files: %v", written)
	}

	f, err := datasection.ReadBinSectionFile(filepath.Join(dir, "crate.collision"))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Tags) != 5 || f.Tags[0] != "collision" || f.Tags[1] != "collision_mesh" {
		t.Fatalf("collision sections: %v", f.Tags)
	}

	found := false
	for _, e := range manifest.Entries {
		if e.File == "crate.collision" && e.Type == "collision" {
			found = true
		}
	}
	if !found {
		t.Error("collision file missing from manifest")
	}
}

func TestComposerRejectsMaterialCountMismatch(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir

	// Two material slots referenced, one descriptor supplied.
	asset := staticAsset("crate")
	asset.Triangles = append(asset.Triangles, bw.Triangle{Indices: [3]int{0, 2, 1}, Material: 1})

	composer := NewComposer(settings, quietAudit(), NewManifest())
	_, err := composer.Export(asset)
	if err == nil {
		t.Fatal("material count mismatch accepted")
	}
	var cerr *bw.ConsistencyError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type %T, want ConsistencyError", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed export left files: %v", entries)
	}
}

func TestComposerUnitScale(t *testing.T) {
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.OutputDir = dir
	settings.UnitScale = 100

	composer := NewComposer(settings, quietAudit(), NewManifest())
	if _, err := composer.Export(staticAsset("crate")); err != nil {
		t.Fatal(err)
	}
	visual, err := os.ReadFile(filepath.Join(dir, "crate.visual"))
	if err != nil {
		t.Fatal(err)
	}
	// (1,0,0) scaled by 100 shows up in the bounding box.
	if !strings.Contains(string(visual), "100.000000") {
		t.Fatalf("unit scale not applied:\n%s", visual)
	}
}
