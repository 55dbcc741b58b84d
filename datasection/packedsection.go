package datasection

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	PackedSectionMagic   uint32 = 0x62A14E45
	PackedSectionVersion uint8  = 1
)

// stringTable deduplicates node tags in first-seen order.
type stringTable struct {
	index map[string]int16
	list  []string
}

func newStringTable() *stringTable {
	return &stringTable{index: map[string]int16{}}
}

func (t *stringTable) add(s string) int16 {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := int16(len(t.list))
	t.index[s] = i
	t.list = append(t.list, s)
	return i
}

func (t *stringTable) collect(n *Node) {
	t.add(n.Tag)
	for _, c := range n.Children {
		t.collect(c)
	}
}

// encodeValue appends the compact binary form of v. Integers use the
// smallest of 0, 1, 2 or 4 bytes that can hold the value, zero encoding
// as the empty blob.
func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case KindNone:
	case KindBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		buf.WriteByte(b)
	case KindInt:
		switch {
		case v.Int == 0:
		case v.Int >= math.MinInt8 && v.Int <= math.MaxInt8:
			buf.WriteByte(byte(int8(v.Int)))
		case v.Int >= math.MinInt16 && v.Int <= math.MaxInt16:
			binary.Write(buf, binary.LittleEndian, int16(v.Int))
		case v.Int >= math.MinInt32 && v.Int <= math.MaxInt32:
			binary.Write(buf, binary.LittleEndian, int32(v.Int))
		default:
			return fmt.Errorf("datasection: integer %d exceeds 32 bits", v.Int)
		}
	case KindFloat:
		binary.Write(buf, binary.LittleEndian, v.Float)
	case KindString:
		buf.WriteString(v.Str)
		buf.WriteByte(0)
	case KindFloats:
		for _, f := range v.Floats {
			binary.Write(buf, binary.LittleEndian, f)
		}
	default:
		return fmt.Errorf("datasection: unsupported value kind %d", v.Kind)
	}
	return nil
}

// encodeNodes writes one tree level: child count, the child-record array of
// (key index i16, data offset i32), then the concatenated blobs. Offsets
// are relative to the start of this level's blob region.
func encodeNodes(buf *bytes.Buffer, nodes []*Node, table *stringTable) error {
	binary.Write(buf, binary.LittleEndian, uint32(len(nodes)))

	var blob bytes.Buffer
	offsets := make([]int32, len(nodes))
	for i, n := range nodes {
		offsets[i] = int32(blob.Len())
		if err := encodeValue(&blob, n.Value); err != nil {
			return err
		}
		if len(n.Children) > 0 {
			if err := encodeNodes(&blob, n.Children, table); err != nil {
				return err
			}
		}
	}
	for i, n := range nodes {
		binary.Write(buf, binary.LittleEndian, table.index[n.Tag])
		binary.Write(buf, binary.LittleEndian, offsets[i])
	}
	_, err := blob.WriteTo(buf)
	return err
}

// WritePackedSection serializes root's children as a packed binary section
// tree. The root tag itself is interned but not written as a record, which
// matches the text form where the root tag is the file name.
func WritePackedSection(w io.Writer, root *Node) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, PackedSectionMagic)
	buf.WriteByte(PackedSectionVersion)

	table := newStringTable()
	for _, c := range root.Children {
		table.collect(c)
	}
	for _, s := range table.list {
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	buf.WriteByte(0)

	if err := encodeNodes(&buf, root.Children, table); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
