package bw

import "strings"

// VertexFormatNameLen is the fixed width of the format name field in the
// geometry file header.
const VertexFormatNameLen = 64

// IndexFormatNameLen is the fixed width of the index format name field.
const IndexFormatNameLen = 64

const (
	IndexFormatU16 = "list"
	IndexFormatU32 = "list32"
)

// VertexFormat describes which attributes a vertex record carries.
// The attribute order in the record is always xyz, n, uv, tb, c, iiiww.
type VertexFormat struct {
	Normals  bool
	UVLayers int
	Tangents bool
	Colors   bool
	Skin     bool
}

// FormatOf derives the vertex format from the attributes present in a
// stream.
func FormatOf(s *VertexStream) VertexFormat {
	return VertexFormat{
		Normals:  s.HasNormals(),
		UVLayers: s.UVLayers(),
		Tangents: s.HasTangents(),
		Colors:   s.HasColors(),
		Skin:     s.HasSkin(),
	}
}

// String assembles the attribute-tag string, e.g. "xyznuv" or
// "xyznuvtbiiiww".
func (f VertexFormat) String() string {
	var b strings.Builder
	b.WriteString("xyz")
	if f.Normals {
		b.WriteString("n")
	}
	for i := 0; i < f.UVLayers; i++ {
		b.WriteString("uv")
	}
	if f.Tangents {
		b.WriteString("tb")
	}
	if f.Colors {
		b.WriteString("c")
	}
	if f.Skin {
		b.WriteString("iiiww")
	}
	return b.String()
}

// Stride returns the byte size of one vertex record. Normals shrink to a
// packed u32 when tangents are present; the skin tail is three index bytes
// plus two weight bytes with the third weight implicit.
func (f VertexFormat) Stride() int {
	stride := 12
	if f.Normals {
		if f.Tangents {
			stride += 4
		} else {
			stride += 12
		}
	}
	stride += 8 * f.UVLayers
	if f.Tangents {
		stride += 8
	}
	if f.Colors {
		stride += 16
	}
	if f.Skin {
		stride += 5
	}
	return stride
}

// ParseVertexFormat recovers the presence flags from an attribute-tag
// string, ignoring any trailing padding.
func ParseVertexFormat(s string) VertexFormat {
	s = strings.TrimRight(s, "\x00")
	return VertexFormat{
		Normals:  strings.Contains(s, "n"),
		UVLayers: strings.Count(s, "uv"),
		Tangents: strings.Contains(s, "tb"),
		Colors:   strings.Contains(s, "c"),
		Skin:     strings.Contains(s, "iiiww"),
	}
}
