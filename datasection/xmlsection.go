package datasection

import (
	"bufio"
	"io"
	"strings"
)

// WriteTextSection writes the tab-indented text form of the tree rooted at
// root. The root tag conventionally equals the output file name.
//
// Per node, one tab per depth level:
//
//	<tag>\t<value>\t</tag>      value, no children
//	<tag>\t<value>\n ... </tag> value and children
//	<tag>\n ... </tag>          children only
//	<tag>\t</tag>               empty node
func WriteTextSection(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	if err := writeTextNode(bw, root, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func writeTextNode(w *bufio.Writer, n *Node, depth int) error {
	indent := strings.Repeat("\t", depth)
	value := n.Value.Format()

	if len(n.Children) == 0 {
		line := indent + "<" + n.Tag + ">\t</" + n.Tag + ">\n"
		if value != "" {
			line = indent + "<" + n.Tag + ">\t" + value + "\t</" + n.Tag + ">\n"
		}
		if _, err := w.WriteString(line); err != nil {
			return err
		}
		return nil
	}
	open := indent + "<" + n.Tag + ">"
	if value != "" {
		open += "\t" + value
	}
	if _, err := w.WriteString(open + "\n"); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := writeTextNode(w, c, depth+1); err != nil {
			return err
		}
	}
	_, err := w.WriteString(indent + "</" + n.Tag + ">\n")
	return err
}
