package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

const (
	SkeletonVersion = 3
	NameFieldLen    = 128
	TypeFieldLen    = 64
)

// WriteSkeleton writes the skeleton and hardpoints sections. Bones are
// written in arena order: fixed-width name, parent index (-1 for roots),
// bind pose and inverse bind pose as 16 row-major floats. A nil skeleton
// writes an empty section so downstream parsers never special-case
// absence.
func WriteSkeleton(w *datasection.BinSectionWriter, skel *Skeleton, hardpoints []*Hardpoint) error {
	if err := w.Begin("skeleton"); err != nil {
		return err
	}
	w.WriteU32(SkeletonVersion)
	if skel == nil {
		w.WriteU32(0)
	} else {
		w.WriteU32(uint32(len(skel.Bones)))
		for _, b := range skel.Bones {
			if err := writeBone(w, b); err != nil {
				return err
			}
		}
	}
	w.WriteU32(0)
	if err := w.WriteU8(0); err != nil {
		return err
	}
	if err := w.End("skeleton"); err != nil {
		return err
	}

	if err := w.Begin("hardpoints"); err != nil {
		return err
	}
	w.WriteU32(uint32(len(hardpoints)))
	for _, hp := range hardpoints {
		w.WriteStringFixed(hp.Name, NameFieldLen)
		w.WriteStringFixed(hp.Type, TypeFieldLen)
		w.WriteStringFixed(hp.Bone, NameFieldLen)
		m := hp.Matrix
		if m == nil {
			m = geom.NewMatrix4()
		}
		if err := writeMatrixRowMajor(w, m); err != nil {
			return err
		}
	}
	return w.End("hardpoints")
}

func writeBone(w *datasection.BinSectionWriter, b *Bone) error {
	if err := w.WriteStringFixed(b.Name, NameFieldLen); err != nil {
		return err
	}
	if err := w.WriteI32(int32(b.ParentIndex)); err != nil {
		return err
	}
	if err := writeMatrixRowMajor(w, b.BindMatrix); err != nil {
		return err
	}
	return writeMatrixRowMajor(w, b.InverseBindMatrix)
}

// writeMatrixRowMajor flattens a transform in the engine's row-vector
// layout: the three basis rows first, the translation row last. This is
// the same byte order for every matrix the exporter writes.
func writeMatrixRowMajor(w *datasection.BinSectionWriter, m *geom.Matrix4) error {
	var a [16]geom.Element
	m.ToArray(a[:])
	for _, v := range a {
		if err := w.WriteF32(v); err != nil {
			return err
		}
	}
	return nil
}
