package exporter

import (
	"fmt"
)

// IoError wraps a filesystem failure with the path being written. Encoding
// errors keep their own types (datasection.FormatError, bw.ConsistencyError
// and friends); IoError marks the cases where the data was fine but the
// disk was not.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io: %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// DependencyError reports a manifest entry whose dependency is not part of
// the manifest.
type DependencyError struct {
	File       string
	Dependency string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency: %s requires %s which was not exported", e.File, e.Dependency)
}
