package bw

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

func quadCollision() *CollisionMesh {
	return &CollisionMesh{
		Positions: []*geom.Vector3{
			geom.NewVector3(0, 0, 0),
			geom.NewVector3(1, 0, 0),
			geom.NewVector3(1, 1, 0),
			geom.NewVector3(0, 1, 0),
		},
		Triangles: []Triangle{tri(0, 1, 2, 0), tri(0, 2, 3, 1)},
	}
}

func TestWriteCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.collision")
	w, err := datasection.CreateBinSection(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteCollision(w, quadCollision(), "crate", false); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := datasection.ReadBinSectionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"collision", "collision_mesh", "collision_groups", "collision_bsp", "collision_convex"}
	if len(f.Tags) != len(want) {
		t.Fatalf("sections: %v", f.Tags)
	}
	for i, tag := range want {
		if f.Tags[i] != tag {
			t.Fatalf("section %d: %s, want %s", i, f.Tags[i], tag)
		}
	}

	hb, _ := f.Section("collision")
	if got := binary.LittleEndian.Uint32(hb); got != CollisionVersion {
		t.Errorf("version: %d", got)
	}
	if !bytes.HasPrefix(hb[4:], []byte("crate\x00")) {
		t.Errorf("header name: %q", hb[4:20])
	}

	mb, _ := f.Section("collision_mesh")
	if got := binary.LittleEndian.Uint32(mb); got != 4 {
		t.Errorf("vertex count: %d", got)
	}
	if got := binary.LittleEndian.Uint32(mb[4:]); got != 6 {
		t.Errorf("index count: %d", got)
	}
	// 4 positions of 12 bytes, then 6 u16 indices
	idx := mb[8+4*12:]
	if got := binary.LittleEndian.Uint16(idx[4:]); got != 2 {
		t.Errorf("third index: %d", got)
	}

	gb, _ := f.Section("collision_groups")
	if got := binary.LittleEndian.Uint32(gb); got != 2 {
		t.Errorf("group count: %d", got)
	}
	if got := binary.LittleEndian.Uint32(gb[4+8:]); got != 3 {
		t.Errorf("second group start: %d", got)
	}

	bsp, _ := f.Section("collision_bsp")
	if len(bsp) != 8 || binary.LittleEndian.Uint64(bsp) != 0 {
		t.Errorf("bsp placeholder: %v", bsp)
	}
}

func TestValidateCollision(t *testing.T) {
	c := quadCollision()
	if err := ValidateCollision(c); err != nil {
		t.Fatal(err)
	}
	c.Triangles[1].Indices[2] = 9
	if err := ValidateCollision(c); err == nil {
		t.Error("out of range collision index accepted")
	}
	if err := ValidateCollision(&CollisionMesh{}); err == nil {
		t.Error("empty collision mesh accepted")
	}
}
