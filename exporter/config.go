// Package exporter orchestrates the conversion of scene assets into the
// engine's on-disk files: the binary geometry, skeleton and animation
// containers plus the text render and model descriptions, with a manifest
// and an audit log alongside.
package exporter

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Settings holds one export run's configuration.
type Settings struct {
	// RootPath is the resource root. Resource references inside the
	// written files are relative to it.
	RootPath string `yaml:"root_path"`
	// OutputDir receives the exported files. Defaults to RootPath.
	OutputDir string `yaml:"output_dir"`

	UnitScale   float32 `yaml:"unit_scale"`
	FlipWinding bool    `yaml:"flip_winding"`
	FPS         int     `yaml:"fps"`

	// BinarySections switches the render and model descriptions from the
	// text form to the packed binary form.
	BinarySections bool `yaml:"binary_sections"`

	WriteManifest bool `yaml:"write_manifest"`

	Logging LoggingSettings `yaml:"logging"`
}

type LoggingSettings struct {
	Level     string `yaml:"level"`
	AuditFile string `yaml:"audit_file"`
}

// DefaultSettings returns the settings used when no config file is given.
func DefaultSettings() *Settings {
	return &Settings{
		UnitScale:     1,
		FPS:           30,
		WriteManifest: true,
		Logging:       LoggingSettings{Level: "info"},
	}
}

// LoadSettings reads a YAML settings file, merging over the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read settings")
	}
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse settings %s", path)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.RootPath
	}
	return cfg, nil
}

// Save writes the settings to a YAML file.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
