package bw

import (
	"github.com/bigworld-tools/bwexport/datasection"
)

const CollisionVersion = 3

// WriteCollision writes the physics proxy file. The header carries the
// object name, the mesh section the raw buffers, and the groups section
// one (startIndex, numPrimitives) range per material bucket. The bsp and
// convex sections are reserved: the engine rebuilds both structures on
// load, so they are written with zero counts.
func WriteCollision(w *datasection.BinSectionWriter, c *CollisionMesh, name string, flipWinding bool) error {
	g := AssembleGeometry(c.Triangles, flipWinding)

	if err := w.Begin("collision"); err != nil {
		return err
	}
	w.WriteU32(CollisionVersion)
	w.WriteStringFixed(name, NameFieldLen)
	w.WriteU32(0)
	if err := w.WriteU8(0); err != nil {
		return err
	}
	if err := w.End("collision"); err != nil {
		return err
	}

	if err := w.Begin("collision_mesh"); err != nil {
		return err
	}
	w.WriteU32(uint32(len(c.Positions)))
	w.WriteU32(uint32(len(g.Indices)))
	for _, p := range c.Positions {
		w.WriteF32(p.X)
		w.WriteF32(p.Y)
		if err := w.WriteF32(p.Z); err != nil {
			return err
		}
	}
	wide := g.IndexFormat == IndexFormatU32
	for _, idx := range g.Indices {
		if wide {
			if err := w.WriteU32(idx); err != nil {
				return err
			}
		} else {
			if idx > 0xffff {
				return &RangeError{Subject: "collision index", Value: int(idx), Max: 0xffff}
			}
			if err := w.WriteU16(uint16(idx)); err != nil {
				return err
			}
		}
	}
	if err := w.End("collision_mesh"); err != nil {
		return err
	}

	if err := w.Begin("collision_groups"); err != nil {
		return err
	}
	w.WriteU32(uint32(len(g.Groups)))
	for _, pg := range g.Groups {
		w.WriteU32(pg.StartIndex)
		if err := w.WriteU32(pg.NumPrimitives); err != nil {
			return err
		}
	}
	if err := w.WriteU32(0); err != nil {
		return err
	}
	if err := w.End("collision_groups"); err != nil {
		return err
	}

	for _, tag := range []string{"collision_bsp", "collision_convex"} {
		if err := w.Begin(tag); err != nil {
			return err
		}
		w.WriteU32(0)
		if err := w.WriteU32(0); err != nil {
			return err
		}
		if err := w.End(tag); err != nil {
			return err
		}
	}
	return nil
}
