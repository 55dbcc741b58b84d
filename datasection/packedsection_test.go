package datasection

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeValueCompactInt(t *testing.T) {
	tests := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{}},
		{1, []byte{1}},
		{-1, []byte{0xff}},
		{127, []byte{127}},
		{128, []byte{128, 0}},
		{-129, []byte{0x7f, 0xff}},
		{32767, []byte{0xff, 0x7f}},
		{32768, []byte{0, 0x80, 0, 0}},
		{-70000, []byte{0x90, 0xee, 0xfe, 0xff}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := encodeValue(&buf, Int(tt.in)); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Bytes(), tt.want) {
			t.Errorf("encode %d: got %v want %v", tt.in, buf.Bytes(), tt.want)
		}
	}
}

func TestWritePackedSection(t *testing.T) {
	root := NewNode("test.model")
	root.Add("nodefullName", String("base"))
	root.Add("scale", Floats(1, 2, 3))

	var buf bytes.Buffer
	if err := WritePackedSection(&buf, root); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if got := binary.LittleEndian.Uint32(data); got != PackedSectionMagic {
		t.Fatalf("magic: %08x", got)
	}
	if data[4] != PackedSectionVersion {
		t.Fatalf("version: %d", data[4])
	}

	// string table: two keys in insertion order plus the empty terminator
	want := append(append([]byte("nodefullName\x00"), []byte("scale\x00")...), 0)
	if !bytes.Equal(data[5:5+len(want)], want) {
		t.Fatalf("string table: %q", data[5:5+len(want)])
	}
	p := 5 + len(want)

	if got := binary.LittleEndian.Uint32(data[p:]); got != 2 {
		t.Fatalf("child count: %d", got)
	}
	p += 4
	// record 0: key 0, offset 0
	if k := int16(binary.LittleEndian.Uint16(data[p:])); k != 0 {
		t.Errorf("key index 0: %d", k)
	}
	if off := int32(binary.LittleEndian.Uint32(data[p+2:])); off != 0 {
		t.Errorf("offset 0: %d", off)
	}
	// record 1: key 1, offset past "base\x00"
	if k := int16(binary.LittleEndian.Uint16(data[p+6:])); k != 1 {
		t.Errorf("key index 1: %d", k)
	}
	if off := int32(binary.LittleEndian.Uint32(data[p+8:])); off != 5 {
		t.Errorf("offset 1: %d", off)
	}
	p += 12

	if got := string(data[p : p+5]); got != "base\x00" {
		t.Errorf("string blob: %q", got)
	}
	for i, want := range []float32{1, 2, 3} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[p+5+i*4:]))
		if got != want {
			t.Errorf("vector[%d]: %v", i, got)
		}
	}
}

func TestWritePackedSectionNested(t *testing.T) {
	root := NewNode("root")
	parent := root.AddChild("renderSet")
	parent.Add("treatAsWorldSpaceObject", Bool(false))

	var buf bytes.Buffer
	if err := WritePackedSection(&buf, root); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	// string table: renderSet, treatAsWorldSpaceObject, terminator
	p := 5 + len("renderSet") + 1 + len("treatAsWorldSpaceObject") + 1 + 1
	if got := binary.LittleEndian.Uint32(data[p:]); got != 1 {
		t.Fatalf("outer child count: %d", got)
	}
	// outer blob holds the nested level: count 1, record, bool byte
	inner := p + 4 + 6
	if got := binary.LittleEndian.Uint32(data[inner:]); got != 1 {
		t.Fatalf("inner child count: %d", got)
	}
	if got := data[len(data)-1]; got != 0 {
		t.Fatalf("bool payload: %d", got)
	}
	if len(data) != inner+4+6+1 {
		t.Fatalf("length: %d", len(data))
	}
}
