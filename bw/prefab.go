package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
	"github.com/bigworld-tools/bwexport/geom"
)

const RoleFieldLen = 64

// WritePrefabs writes the prefab file: a group count, then per group a
// fixed-width name and its instance records. Each instance carries a
// fixed-width role, a visibility flag with reserved padding, and the
// world transform flattened row-major like the skeleton matrices.
func WritePrefabs(w *datasection.BinSectionWriter, groups []*PrefabGroup) error {
	if err := w.Begin("prefab"); err != nil {
		return err
	}
	if err := w.WriteU32(uint32(len(groups))); err != nil {
		return err
	}
	for _, g := range groups {
		if err := w.WriteStringFixed(g.Name, NameFieldLen); err != nil {
			return err
		}
		if err := w.WriteU32(uint32(len(g.Instances))); err != nil {
			return err
		}
		for _, inst := range g.Instances {
			if err := writeInstance(w, inst); err != nil {
				return err
			}
		}
	}
	if err := w.WriteU32(0); err != nil {
		return err
	}
	return w.End("prefab")
}

func writeInstance(w *datasection.BinSectionWriter, inst *PrefabInstance) error {
	if err := w.WriteStringFixed(inst.Role, RoleFieldLen); err != nil {
		return err
	}
	visible := uint8(0)
	if inst.Visible {
		visible = 1
	}
	w.WriteU8(visible)
	w.WriteU8(0)
	if err := w.WriteU32(0); err != nil {
		return err
	}
	m := inst.Matrix
	if m == nil {
		m = geom.NewMatrix4()
	}
	return writeMatrixRowMajor(w, m)
}
