package exporter

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

const manifestVersion = 1

// ManifestEntry describes one exported file. Paths are relative to the
// resource root, posix-separated, without extension for resource kinds the
// engine references by bare id.
type ManifestEntry struct {
	File         string   `json:"file"`
	Type         string   `json:"type"`
	Dependencies []string `json:"dependencies"`
	Hash         string   `json:"hash"`
	Timestamp    string   `json:"timestamp"`
}

// Manifest accumulates the entries of one export run and writes
// manifest.json. It also validates that every recorded dependency is
// itself part of the run.
type Manifest struct {
	Version   int             `json:"version"`
	Generated string          `json:"generated"`
	Entries   []ManifestEntry `json:"entries"`

	now func() time.Time
}

func NewManifest() *Manifest {
	return &Manifest{Version: manifestVersion, now: time.Now}
}

// Add records an exported file. diskPath is hashed if the file exists;
// file is the root-relative reference recorded in the manifest.
func (m *Manifest) Add(file, fileType, diskPath string, dependencies []string) {
	hash := ""
	if data, err := os.ReadFile(diskPath); err == nil {
		sum := md5.Sum(data)
		hash = hex.EncodeToString(sum[:])
	}
	if dependencies == nil {
		dependencies = []string{}
	}
	m.Entries = append(m.Entries, ManifestEntry{
		File:         file,
		Type:         fileType,
		Dependencies: dependencies,
		Hash:         hash,
		Timestamp:    m.now().Format("2006-01-02 15:04:05"),
	})
}

// ValidateDependencies reports every dependency that is not an entry of
// this manifest.
func (m *Manifest) ValidateDependencies() []error {
	known := map[string]bool{}
	for _, e := range m.Entries {
		known[e.File] = true
	}
	var errs []error
	for _, e := range m.Entries {
		for _, dep := range e.Dependencies {
			if !known[dep] {
				errs = append(errs, &DependencyError{File: e.File, Dependency: dep})
			}
		}
	}
	return errs
}

// Save writes manifest.json.
func (m *Manifest) Save(path string) error {
	m.Generated = m.now().Format("2006-01-02 15:04:05")
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IoError{Path: path, Err: err}
	}
	return nil
}
