package bw

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName NFC-normalizes a name so equivalent Unicode spellings
// encode to identical bytes in fixed-width fields and text sections.
func NormalizeName(s string) string {
	return norm.NFC.String(s)
}

// ResourcePath normalizes a cross-file reference: forward slashes, lower
// case, no leading separators. All references between the output files are
// relative.
func ResourcePath(s string) string {
	s = strings.ReplaceAll(NormalizeName(s), "\\", "/")
	return strings.TrimLeft(strings.ToLower(s), "/")
}

// TexturePath normalizes a texture reference and forces the .dds
// extension the engine loads.
func TexturePath(s string) string {
	s = ResourcePath(s)
	if i := strings.LastIndex(s, "."); i > strings.LastIndex(s, "/") {
		s = s[:i]
	}
	return s + ".dds"
}
