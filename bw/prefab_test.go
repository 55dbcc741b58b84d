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

func TestWritePrefabs(t *testing.T) {
	groups := []*PrefabGroup{{
		Name: "camp",
		Instances: []*PrefabInstance{
			{Role: "crate", Visible: true, Matrix: geom.NewTranslateMatrix4(2, 0, 0)},
			{Role: "barrel", Visible: false},
		},
	}}

	path := filepath.Join(t.TempDir(), "camp.prefab")
	w, err := datasection.CreateBinSection(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := WritePrefabs(w, groups); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := datasection.ReadBinSectionFile(path)
	if err != nil {
		t.Fatal(err)
	}
	pb, ok := f.Section("prefab")
	if !ok {
		t.Fatal("prefab section missing")
	}

	if got := binary.LittleEndian.Uint32(pb); got != 1 {
		t.Fatalf("group count: %d", got)
	}
	if !bytes.HasPrefix(pb[4:], []byte("camp\x00")) {
		t.Errorf("group name: %q", pb[4:12])
	}
	body := pb[4+NameFieldLen:]
	if got := binary.LittleEndian.Uint32(body); got != 2 {
		t.Fatalf("instance count: %d", got)
	}

	// first instance: role, flags, row-major matrix
	inst := body[4:]
	if !bytes.HasPrefix(inst, []byte("crate\x00")) {
		t.Errorf("role: %q", inst[:8])
	}
	if inst[RoleFieldLen] != 1 {
		t.Errorf("visible flag: %d", inst[RoleFieldLen])
	}
	mat := inst[RoleFieldLen+6:]
	tx := math.Float32frombits(binary.LittleEndian.Uint32(mat[3*4:]))
	if tx != 2 {
		t.Errorf("row 0 translation column: %f", tx)
	}

	second := inst[RoleFieldLen+6+16*4:]
	if !bytes.HasPrefix(second, []byte("barrel\x00")) {
		t.Errorf("second role: %q", second[:8])
	}
	if second[RoleFieldLen] != 0 {
		t.Errorf("hidden instance flag: %d", second[RoleFieldLen])
	}
	// nil matrix falls back to identity
	m00 := math.Float32frombits(binary.LittleEndian.Uint32(second[RoleFieldLen+6:]))
	if m00 != 1 {
		t.Errorf("identity fallback: %f", m00)
	}
}
