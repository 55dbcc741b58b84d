package exporter

import (
	"path/filepath"

	"github.com/bigworld-tools/bwexport/bw"
)

// BatchResult tallies one batch run. Failed objects never abort the batch
// and are never silently dropped: every attempt lands in exactly one of
// Succeeded or Failed.
type BatchResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Errors    map[string]error // object name -> first error
	Written   []string
}

// Batch exports a list of assets sequentially. A failure is recorded in
// the result and the batch moves on to the next asset. The manifest is
// saved at the end and covers the files that were written.
type Batch struct {
	settings *Settings
	audit    *AuditLog
	manifest *Manifest

	// PrefabName and Prefab optionally add a prefab file grouping the
	// exported objects. Written after the assets so its model
	// dependencies resolve.
	PrefabName string
	Prefab     []*bw.PrefabGroup
}

func NewBatch(settings *Settings, audit *AuditLog) *Batch {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Batch{settings: settings, audit: audit, manifest: NewManifest()}
}

func (b *Batch) Run(assets []*bw.SceneAsset) (*BatchResult, error) {
	result := &BatchResult{Errors: map[string]error{}}
	composer := NewComposer(b.settings, b.audit, b.manifest)

	for _, asset := range assets {
		result.Attempted++
		written, err := composer.Export(asset)
		result.Written = append(result.Written, written...)
		if err != nil {
			result.Failed++
			result.Errors[asset.Name] = err
			b.audit.Error(CodeGeoDegenerate, "export failed: "+err.Error(), asset.Name)
			continue
		}
		result.Succeeded++
	}

	if b.PrefabName != "" && len(b.Prefab) > 0 {
		path, err := composer.ExportPrefab(b.PrefabName, b.Prefab)
		if err != nil {
			return result, err
		}
		result.Written = append(result.Written, path)
	}

	for _, err := range b.manifest.ValidateDependencies() {
		b.audit.Warning(CodeDepMissing, err.Error(), "")
	}

	if b.settings.WriteManifest {
		path := filepath.Join(b.settings.OutputDir, "manifest.json")
		if err := b.manifest.Save(path); err != nil {
			return result, err
		}
		result.Written = append(result.Written, path)
	}
	return result, nil
}
