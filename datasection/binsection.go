// Package datasection implements the engine's section container formats:
// the length-framed binary container (BinSection), the packed binary tree
// container (PackedSection) and the tab-indented text form (XMLSection).
package datasection

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const BinSectionMagic uint32 = 0x42A14E65

// DefaultAlignment is the boundary both section payloads and index-table
// tags are padded to.
const DefaultAlignment = 4

// FormatError reports a bad magic number or an unsupported version on a
// read path.
type FormatError struct {
	Magic   uint32
	Version int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("datasection: bad magic %08x (version %d)", e.Magic, e.Version)
}

// SectionError reports a violation of the section framing protocol:
// an unknown tag, a mismatched End, or a Close with open sections.
type SectionError struct {
	Op  string
	Tag string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("datasection: %s (tag %q)", e.Op, e.Tag)
}

// Registry maps logical section tags onto the numeric ids expected by the
// engine. Writing a section with an unregistered tag is an error.
type Registry struct {
	ids map[string]uint32
}

func NewRegistry() *Registry {
	return &Registry{ids: map[string]uint32{}}
}

// DefaultRegistry covers the section tags of all five output file kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("vertices", 0x1001)
	r.Register("indices", 0x1002)
	r.Register("skeleton", 0x4001)
	r.Register("hardpoints", 0x4002)
	r.Register("animation", 0x5001)
	r.Register("cuetrack", 0x5002)
	r.Register("collision", 0x6001)
	r.Register("collision_mesh", 0x6002)
	r.Register("collision_groups", 0x6003)
	r.Register("collision_bsp", 0x6004)
	r.Register("collision_convex", 0x6005)
	r.Register("prefab", 0x7001)
	return r
}

func (r *Registry) Register(tag string, id uint32) {
	r.ids[tag] = id
}

func (r *Registry) ID(tag string) (uint32, bool) {
	id, ok := r.ids[tag]
	return id, ok
}

type openSection struct {
	tag     string
	sizePos int64
}

type indexEntry struct {
	tag     string
	blobLen uint32
}

// BinSectionWriter writes the length-framed binary container:
// a u32 magic, then per section a u32 id, a u32 size back-patched on End,
// the aligned payload, and finally a trailing index table.
type BinSectionWriter struct {
	w        io.WriteSeeker
	f        *os.File
	registry *Registry
	align    int64
	stack    []openSection
	index    []indexEntry
}

// CreateBinSection creates path and writes the container magic.
func CreateBinSection(path string, registry *Registry) (*BinSectionWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewBinSectionWriter(f, registry)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	w.f = f
	return w, nil
}

func NewBinSectionWriter(w io.WriteSeeker, registry *Registry) (*BinSectionWriter, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	b := &BinSectionWriter{w: w, registry: registry, align: DefaultAlignment}
	if err := b.writeU32(BinSectionMagic); err != nil {
		return nil, err
	}
	return b, nil
}

// SetAlignment overrides the padding boundary. Must be called before the
// first Begin.
func (b *BinSectionWriter) SetAlignment(n int) {
	if n > 0 {
		b.align = int64(n)
	}
}

func (b *BinSectionWriter) write(v interface{}) error {
	return binary.Write(b.w, binary.LittleEndian, v)
}

func (b *BinSectionWriter) writeU8(v uint8) error   { return b.write(&v) }
func (b *BinSectionWriter) writeU16(v uint16) error { return b.write(&v) }
func (b *BinSectionWriter) writeU32(v uint32) error { return b.write(&v) }
func (b *BinSectionWriter) writeI32(v int32) error  { return b.write(&v) }
func (b *BinSectionWriter) writeF32(v float32) error { return b.write(&v) }

func (b *BinSectionWriter) WriteU8(v uint8) error    { return b.writeU8(v) }
func (b *BinSectionWriter) WriteU16(v uint16) error  { return b.writeU16(v) }
func (b *BinSectionWriter) WriteU32(v uint32) error  { return b.writeU32(v) }
func (b *BinSectionWriter) WriteI32(v int32) error   { return b.writeI32(v) }
func (b *BinSectionWriter) WriteF32(v float32) error { return b.writeF32(v) }

func (b *BinSectionWriter) WriteBytes(data []byte) error {
	_, err := b.w.Write(data)
	return err
}

// WriteCString writes a zero-terminated UTF-8 string without length prefix.
func (b *BinSectionWriter) WriteCString(s string) error {
	if _, err := b.w.Write([]byte(s)); err != nil {
		return err
	}
	return b.writeU8(0)
}

// WriteStringFixed truncates or zero-pads s to exactly n bytes.
func (b *BinSectionWriter) WriteStringFixed(s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	return b.WriteBytes(buf)
}

func (b *BinSectionWriter) pos() (int64, error) {
	return b.w.Seek(0, io.SeekCurrent)
}

func (b *BinSectionWriter) pad() error {
	pos, err := b.pos()
	if err != nil {
		return err
	}
	n := (b.align - pos%b.align) % b.align
	if n > 0 {
		return b.WriteBytes(make([]byte, n))
	}
	return nil
}

// Begin writes the section header (numeric id plus a size placeholder),
// aligns the payload start and pushes the section onto the stack.
func (b *BinSectionWriter) Begin(tag string) error {
	id, ok := b.registry.ID(tag)
	if !ok {
		return &SectionError{Op: "unknown tag", Tag: tag}
	}
	if err := b.writeU32(id); err != nil {
		return err
	}
	sizePos, err := b.pos()
	if err != nil {
		return err
	}
	if err := b.writeU32(0); err != nil {
		return err
	}
	if err := b.pad(); err != nil {
		return err
	}
	b.stack = append(b.stack, openSection{tag: tag, sizePos: sizePos})
	return nil
}

// End patches the size field of the innermost open section and pads to the
// alignment boundary. The tag must match the matching Begin.
func (b *BinSectionWriter) End(tag string) error {
	if len(b.stack) == 0 {
		return &SectionError{Op: "end without begin", Tag: tag}
	}
	top := b.stack[len(b.stack)-1]
	if top.tag != tag {
		return &SectionError{Op: "mismatched end, open section is " + top.tag, Tag: tag}
	}
	b.stack = b.stack[:len(b.stack)-1]

	end, err := b.pos()
	if err != nil {
		return err
	}
	size := uint32(end - (top.sizePos + 4))
	if _, err := b.w.Seek(top.sizePos, io.SeekStart); err != nil {
		return err
	}
	if err := b.writeU32(size); err != nil {
		return err
	}
	if _, err := b.w.Seek(end, io.SeekStart); err != nil {
		return err
	}
	if err := b.pad(); err != nil {
		return err
	}
	if len(b.stack) == 0 {
		b.index = append(b.index, indexEntry{tag: tag, blobLen: size})
	}
	return nil
}

// Close writes the trailing index table. It fails if any section is still
// open, leaving the file in an undefined state for the caller to discard.
func (b *BinSectionWriter) Close() error {
	if len(b.stack) > 0 {
		return &SectionError{Op: "unclosed section", Tag: b.stack[len(b.stack)-1].tag}
	}
	start, err := b.pos()
	if err != nil {
		return err
	}
	for _, e := range b.index {
		if err := b.writeU32(e.blobLen); err != nil {
			return err
		}
		// 16 reserved bytes: preload length, version, modification time.
		// Always zero so identical input produces identical files.
		if err := b.WriteBytes(make([]byte, 16)); err != nil {
			return err
		}
		if err := b.writeU32(uint32(len(e.tag))); err != nil {
			return err
		}
		if err := b.WriteBytes([]byte(e.tag)); err != nil {
			return err
		}
		if err := b.pad(); err != nil {
			return err
		}
	}
	end, err := b.pos()
	if err != nil {
		return err
	}
	if err := b.writeU32(uint32(end - start)); err != nil {
		return err
	}
	if b.f != nil {
		return b.f.Close()
	}
	return nil
}

// Abort closes the underlying file without writing the index table. The
// caller is expected to remove the partial file.
func (b *BinSectionWriter) Abort() {
	if b.f != nil {
		b.f.Close()
	}
}
