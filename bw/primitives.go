package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

// WritePrimitives writes the vertices and indices sections of a geometry
// file. The vertex records are interleaved in the fixed attribute order;
// when tangents are present, normal, tangent and binormal are each packed
// into one u32 and the binormal is derived as cross(normal, tangent)
// scaled by the bitangent sign.
func WritePrimitives(w *datasection.BinSectionWriter, stream *VertexStream, g *Geometry) ([]string, error) {
	format := FormatOf(stream)
	var warnings []string

	if err := w.Begin("vertices"); err != nil {
		return nil, err
	}
	if err := w.WriteStringFixed(format.String(), VertexFormatNameLen); err != nil {
		return nil, err
	}
	if err := w.WriteU32(uint32(stream.Count())); err != nil {
		return nil, err
	}
	for i := 0; i < stream.Count(); i++ {
		vw, err := writeVertex(w, stream, format, i)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, vw...)
	}
	if err := w.End("vertices"); err != nil {
		return nil, err
	}

	if err := w.Begin("indices"); err != nil {
		return nil, err
	}
	if err := w.WriteStringFixed(g.IndexFormat, IndexFormatNameLen); err != nil {
		return nil, err
	}
	if err := w.WriteU32(uint32(len(g.Indices))); err != nil {
		return nil, err
	}
	if err := w.WriteU32(uint32(len(g.Groups))); err != nil {
		return nil, err
	}
	wide := g.IndexFormat == IndexFormatU32
	for _, idx := range g.Indices {
		if wide {
			if err := w.WriteU32(idx); err != nil {
				return nil, err
			}
		} else {
			if idx > 0xffff {
				return nil, &RangeError{Subject: "index", Value: int(idx), Max: 0xffff}
			}
			if err := w.WriteU16(uint16(idx)); err != nil {
				return nil, err
			}
		}
	}
	for _, pg := range g.Groups {
		w.WriteU32(pg.StartIndex)
		w.WriteU32(pg.NumPrimitives)
		w.WriteU32(pg.StartVertex)
		if err := w.WriteU32(pg.NumVertices); err != nil {
			return nil, err
		}
	}
	if err := w.End("indices"); err != nil {
		return nil, err
	}
	return warnings, nil
}

func writeVertex(w *datasection.BinSectionWriter, s *VertexStream, f VertexFormat, i int) ([]string, error) {
	p := s.Positions[i]
	w.WriteF32(p.X)
	w.WriteF32(p.Y)
	w.WriteF32(p.Z)

	if f.Normals {
		n := s.Normals[i]
		if f.Tangents {
			w.WriteU32(PackNormal(n))
		} else {
			w.WriteF32(n.X)
			w.WriteF32(n.Y)
			w.WriteF32(n.Z)
		}
	}
	if f.UVLayers >= 1 {
		uv := s.UV0[i]
		w.WriteF32(uv.X)
		w.WriteF32(uv.Y)
	}
	if f.UVLayers >= 2 {
		uv := s.UV1[i]
		w.WriteF32(uv.X)
		w.WriteF32(uv.Y)
	}
	if f.Tangents {
		t := s.Tangents[i]
		tangent := geom.NewVector3(t.X, t.Y, t.Z)
		w.WriteU32(PackNormal(tangent))
		binormal := s.Normals[i].Cross(tangent).Scale(t.W)
		w.WriteU32(PackNormal(binormal))
	}
	if f.Colors {
		c := s.Colors[i]
		w.WriteF32(c.X)
		w.WriteF32(c.Y)
		w.WriteF32(c.Z)
		w.WriteF32(c.W)
	}
	if !f.Skin {
		return nil, nil
	}
	sb, warnings := EncodeSkin(s.BoneIndices[i], s.BoneWeights[i])
	if err := w.WriteBytes([]byte{
		sb.Indices[0], sb.Indices[1], sb.Indices[2],
		sb.Weights[0], sb.Weights[1],
	}); err != nil {
		return nil, err
	}
	return warnings, nil
}
