package datasection

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the tagged Value union. Typed variants avoid any
// reflection on the encode path.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindFloats
)

// Value is a scalar or float vector carried by a tree node. The zero Value
// is the absent value.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float32
	Str    string
	Floats []float32
}

func None() Value               { return Value{} }
func Bool(v bool) Value         { return Value{Kind: KindBool, Bool: v} }
func Int(v int64) Value         { return Value{Kind: KindInt, Int: v} }
func Float(v float32) Value     { return Value{Kind: KindFloat, Float: v} }
func String(v string) Value     { return Value{Kind: KindString, Str: v} }
func Floats(v ...float32) Value { return Value{Kind: KindFloats, Floats: v} }

// FormatFloat renders v with exactly six decimal digits, the fixed float
// format of the text section form.
func FormatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 6, 32)
}

// Format renders the value the way the text section form spells it.
// Absent values render as the empty string.
func (v Value) Format() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return FormatFloat(v.Float)
	case KindString:
		return v.Str
	case KindFloats:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = FormatFloat(f)
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// Node is one element of a section tree, shared by the packed binary and
// the text serializers.
type Node struct {
	Tag      string
	Value    Value
	Children []*Node
}

func NewNode(tag string) *Node {
	return &Node{Tag: tag}
}

// Add appends a child with the given value and returns it.
func (n *Node) Add(tag string, value Value) *Node {
	c := &Node{Tag: tag, Value: value}
	n.Children = append(n.Children, c)
	return c
}

// AddChild appends a value-less child and returns it.
func (n *Node) AddChild(tag string) *Node {
	return n.Add(tag, None())
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%s, %d children)", n.Tag, len(n.Children))
}
