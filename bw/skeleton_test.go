package bw

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

func twoBoneSkeleton() *Skeleton {
	rootBind := geom.NewMatrix4()
	childBind := geom.NewTranslateMatrix4(0, 1, 0)
	return &Skeleton{Bones: []*Bone{
		{Name: "A", ParentIndex: -1, BindMatrix: rootBind, InverseBindMatrix: rootBind.Inverse()},
		{Name: "B", ParentIndex: 0, BindMatrix: childBind, InverseBindMatrix: childBind.Inverse()},
	}}
}

func TestWriteSkeletonTwoBones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.skeleton")
	w, err := datasection.CreateBinSection(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSkeleton(w, twoBoneSkeleton(), nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := datasection.ReadBinSectionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sb, ok := f.Section("skeleton")
	if !ok {
		t.Fatal("skeleton section missing")
	}
	if got := binary.LittleEndian.Uint32(sb); got != SkeletonVersion {
		t.Errorf("version: %d", got)
	}
	if got := binary.LittleEndian.Uint32(sb[4:]); got != 2 {
		t.Fatalf("bone count: %d", got)
	}

	boneSize := NameFieldLen + 4 + 64 + 64
	bone0 := sb[8:]
	if !bytes.HasPrefix(bone0, []byte("A\x00")) {
		t.Errorf("bone 0 name: %q", bone0[:4])
	}
	if got := int32(binary.LittleEndian.Uint32(bone0[NameFieldLen:])); got != -1 {
		t.Errorf("bone 0 parent: %d", got)
	}
	bone1 := sb[8+boneSize:]
	if !bytes.HasPrefix(bone1, []byte("B\x00")) {
		t.Errorf("bone 1 name: %q", bone1[:4])
	}
	if got := int32(binary.LittleEndian.Uint32(bone1[NameFieldLen:])); got != 0 {
		t.Errorf("bone 1 parent: %d", got)
	}

	// bone 1 bind pose row-major: translation row is (0, 1, 0, 1)
	bind := bone1[NameFieldLen+4:]
	ty := math.Float32frombits(binary.LittleEndian.Uint32(bind[13*4:]))
	if ty != 1 {
		t.Errorf("bone 1 bind translation y: %v", ty)
	}
	// inverse bind undoes it
	inv := bone1[NameFieldLen+4+64:]
	ity := math.Float32frombits(binary.LittleEndian.Uint32(inv[13*4:]))
	if ity != -1 {
		t.Errorf("bone 1 inverse bind translation y: %v", ity)
	}

	hp, ok := f.Section("hardpoints")
	if !ok {
		t.Fatal("hardpoints section missing")
	}
	if got := binary.LittleEndian.Uint32(hp); got != 0 {
		t.Errorf("hardpoint count: %d", got)
	}
}

func TestWriteSkeletonEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.skeleton")
	w, err := datasection.CreateBinSection(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteSkeleton(w, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f, err := datasection.ReadBinSectionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sb, _ := f.Section("skeleton")
	if got := binary.LittleEndian.Uint32(sb[4:]); got != 0 {
		t.Errorf("bone count: %d", got)
	}
}
