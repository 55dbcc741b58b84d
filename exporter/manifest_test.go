package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManifestSave(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "crate.primitives")
	if err := os.WriteFile(data, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManifest()
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	m.Add("crate.primitives", "primitives", data, nil)
	m.Add("crate", "visual", filepath.Join(dir, "missing.visual"), []string{"crate.primitives"})

	path := filepath.Join(dir, "manifest.json")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Manifest
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Version != 1 || decoded.Generated != "2024-03-01 12:00:00" {
		t.Fatalf("header: %+v", decoded)
	}
	if len(decoded.Entries) != 2 {
		t.Fatalf("entries: %+v", decoded.Entries)
	}
	// md5 of "payload"
	if decoded.Entries[0].Hash != "321c3cf486ed509164edec1e1981fec8" {
		t.Fatalf("hash: %q", decoded.Entries[0].Hash)
	}
	if decoded.Entries[1].Hash != "" {
		t.Fatalf("missing file should have empty hash, got %q", decoded.Entries[1].Hash)
	}
	if decoded.Entries[1].Dependencies[0] != "crate.primitives" {
		t.Fatalf("dependencies: %v", decoded.Entries[1].Dependencies)
	}
}

func TestManifestValidateDependencies(t *testing.T) {
	m := NewManifest()
	m.Add("crate", "visual", "", []string{"crate.primitives"})
	errs := m.ValidateDependencies()
	if len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
	dep, ok := errs[0].(*DependencyError)
	if !ok || dep.File != "crate" || dep.Dependency != "crate.primitives" {
		t.Fatalf("error: %#v", errs[0])
	}

	m.Add("crate.primitives", "primitives", "", nil)
	if errs := m.ValidateDependencies(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
