package bw

import (
	"sort"
)

// PrimitiveGroup is one contiguous run of triangle indices sharing a
// material slot.
type PrimitiveGroup struct {
	StartIndex    uint32
	NumPrimitives uint32
	StartVertex   uint32
	NumVertices   uint32
}

// Geometry is the assembled index buffer plus its group table, ready for
// the geometry file writer.
type Geometry struct {
	Indices     []uint32
	Groups      []PrimitiveGroup
	IndexFormat string // "list" for u16, "list32" for u32
	Warnings    []string
}

// AssembleGeometry buckets triangles by material slot in ascending order,
// concatenates the buckets into one index buffer and emits one primitive
// group per non-empty bucket. The whole buffer is 16 bit unless any index
// exceeds 65535, in which case it is 32 bit throughout. When flipWinding
// is set the second and third index of every triangle are swapped.
func AssembleGeometry(triangles []Triangle, flipWinding bool) *Geometry {
	maxSlot := -1
	for _, t := range triangles {
		slot := t.Material
		if slot < 0 {
			slot = 0
		}
		if slot > maxSlot {
			maxSlot = slot
		}
	}
	buckets := make([][]Triangle, maxSlot+1)
	for _, t := range triangles {
		slot := t.Material
		if slot < 0 {
			slot = 0
		}
		buckets[slot] = append(buckets[slot], t)
	}

	g := &Geometry{IndexFormat: IndexFormatU16}
	maxIndex := 0
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		start := uint32(len(g.Indices))
		minV, maxV := bucket[0].Indices[0], bucket[0].Indices[0]
		for _, t := range bucket {
			a, b, c := t.Indices[0], t.Indices[1], t.Indices[2]
			if flipWinding {
				b, c = c, b
			}
			g.Indices = append(g.Indices, uint32(a), uint32(b), uint32(c))
			for _, v := range []int{a, b, c} {
				if v < minV {
					minV = v
				}
				if v > maxV {
					maxV = v
				}
			}
		}
		if maxV > maxIndex {
			maxIndex = maxV
		}
		g.Groups = append(g.Groups, PrimitiveGroup{
			StartIndex:    start,
			NumPrimitives: uint32(len(bucket)),
			StartVertex:   uint32(minV),
			NumVertices:   uint32(maxV - minV + 1),
		})
	}
	if maxIndex > 65535 {
		g.IndexFormat = IndexFormatU32
	}
	return g
}

type boneWeight struct {
	index  int
	weight float32
}

// SkinBytes is the five byte skin tail of one vertex: three bone indices
// and the two explicit weights. The third weight is implicit,
// 255 - w0 - w1.
type SkinBytes struct {
	Indices [3]uint8
	Weights [2]uint8
}

// EncodeSkin resolves the per-vertex bone bindings to the compact skin
// tail. Weights are sorted descending, the top three kept and renormalized
// so the three byte weights sum to 255. A vertex with no weight binds
// fully to bone 0. A bone index beyond 255 cannot be represented; the
// binding is remapped to bone 0 and reported through warn.
func EncodeSkin(indices [4]int, weights [4]float32) (SkinBytes, []string) {
	var warnings []string
	var pairs []boneWeight
	for i := 0; i < 4; i++ {
		if weights[i] > 0 {
			idx := indices[i]
			if idx > 255 || idx < 0 {
				rerr := &RangeError{Subject: "bone index", Value: idx, Max: 255}
				warnings = append(warnings, rerr.Error()+", remapped to 0")
				idx = 0
			}
			pairs = append(pairs, boneWeight{index: idx, weight: weights[i]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].weight > pairs[j].weight
	})
	if len(pairs) > 3 {
		pairs = pairs[:3]
	}
	for len(pairs) < 3 {
		pairs = append(pairs, boneWeight{index: 0, weight: 0})
	}

	var total float32
	for _, p := range pairs {
		total += p.weight
	}
	var sb SkinBytes
	for i, p := range pairs {
		sb.Indices[i] = uint8(p.index)
	}
	if total <= 1e-8 {
		sb.Weights[0] = 255
		return sb, warnings
	}
	w0 := uint8(pairs[0].weight/total*255 + 0.5)
	w1 := uint8(pairs[1].weight/total*255 + 0.5)
	if int(w0)+int(w1) > 255 {
		w1 = 255 - w0
	}
	sb.Weights[0] = w0
	sb.Weights[1] = w1
	return sb, warnings
}
