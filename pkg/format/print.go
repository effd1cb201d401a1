package format

import (
	"math"
	"strings"
)

// Indent is the number of spaces per nesting level of wrapped output.
const Indent = 2

// DefaultMaxCol is the line width PrintTree aims for when none is configured.
const DefaultMaxCol = 100

// PrintTree renders node to out, keeping lines within maxCol characters where
// possible. A node that fits is printed on a single line.
func PrintTree(out Output, node Pretty, maxCol int) error {
	printTree(node, out, 0, maxCol)
	return out.Err()
}

// String renders node on a single line of plain text.
func String(node Pretty) string {
	var sb strings.Builder
	out := NewTextOutput(&sb)
	trySingleLine(node, out, math.MaxInt)
	return sb.String()
}

func printTree(node Pretty, out Output, indent, maxCol int) {
	ind := strings.Repeat(" ", indent)

	single := out.NewTempBuffer()
	single.Write(ind)
	if trySingleLine(node, single, maxCol-indent) {
		out.WriteBuffer(single)
		return
	}

	switch n := node.(type) {
	case *PrettyLeaf:
		out.Write(ind)
		out.WriteColored(n.Color, quote(n.S))
	case *PrettyArray:
		out.Write(ind + "[")
		if !printWrappedArray(n.Children, indent+1, out, indent, maxCol) {
			out.Write("\n" + ind)
		}
		out.Write("]")
	case *PrettyNode:
		printTreeObj(n, out, indent, maxCol)
	}
}

// printWrappedArray prints values separated by spaces, moving a value to its
// own lines when it does not fit. It reports whether everything fit on the
// current line.
func printWrappedArray(values []Pretty, prefixLen int, out Output, indent, maxCol int) bool {
	allFit := true
	charsSoFar := prefixLen

	for i, v := range values {
		if i != 0 {
			out.Write(" ")
		}
		single := out.NewTempBuffer()
		if trySingleLine(v, single, maxCol-charsSoFar) {
			out.WriteBuffer(single)
			charsSoFar += single.NumChars()
		} else {
			out.Write("\n")
			printTree(v, out, indent+Indent, maxCol)
			charsSoFar = 0
			allFit = false
		}
	}
	return allFit
}

// printWholeArray prints every value on the current line, or nothing at all.
// Unlike printWrappedArray it never leaves the first element dangling on the
// field's line with the rest wrapped below.
func printWholeArray(values []Pretty, prefixLen int, out Output, maxCol int) bool {
	var pieces []Output
	charsSoFar := prefixLen
	for _, v := range values {
		single := out.NewTempBuffer()
		if !trySingleLine(v, single, maxCol-charsSoFar) {
			return false
		}
		pieces = append(pieces, single)
		charsSoFar += single.NumChars()
	}

	for i, p := range pieces {
		if i != 0 {
			out.Write(" ")
		}
		out.WriteBuffer(p)
	}
	out.Write("]")
	return true
}

func printTreeObj(node *PrettyNode, out Output, indent, maxCol int) {
	ind := strings.Repeat(" ", indent)

	if node.Abbrev {
		prefix := ind + node.Left
		out.Write(prefix)
		prefixLen := len(prefix)
		if node.NodeType != "" {
			out.WriteColored(ColorTypeName, node.NodeType)
			prefixLen += len(node.NodeType)
			if len(node.UnnamedFields) > 0 {
				out.Write(" ")
				prefixLen++
			}
		}

		if !printWrappedArray(node.UnnamedFields, prefixLen, out, indent, maxCol) {
			out.Write("\n" + ind)
		}
		out.Write(node.Right)
		return
	}

	out.Write(ind + node.Left)
	out.WriteColored(ColorTypeName, node.NodeType)
	out.Write("\n")

	ind1 := strings.Repeat(" ", indent+Indent)
	for _, f := range node.Fields {
		if arr, ok := f.Value.(*PrettyArray); ok {
			nameStr := ind1 + f.Name + ": ["
			out.Write(nameStr)
			if !printWholeArray(arr.Children, len(nameStr), out, maxCol) {
				out.Write("\n")
				for _, child := range arr.Children {
					printTree(child, out, indent+2*Indent, maxCol)
					out.Write("\n")
				}
				out.Write(ind1 + "]")
			}
		} else {
			nameStr := ind1 + f.Name + ": "
			out.Write(nameStr)

			// Same line as the field name if it fits, otherwise below it.
			single := out.NewTempBuffer()
			if trySingleLine(f.Value, single, maxCol-len(nameStr)) {
				out.WriteBuffer(single)
			} else {
				out.Write("\n")
				printTree(f.Value, out, indent+2*Indent, maxCol)
			}
		}
		out.Write("\n")
	}

	out.Write(ind + node.Right)
}

// trySingleLine prints node on one line. It reports false when the line grows
// beyond maxChars, in which case out must be discarded.
func trySingleLine(node Pretty, out Output, maxChars int) bool {
	switch n := node.(type) {
	case *PrettyLeaf:
		out.WriteColored(n.Color, quote(n.S))

	case *PrettyArray:
		out.Write("[")
		for i, child := range n.Children {
			if i != 0 {
				out.Write(" ")
			}
			if !trySingleLine(child, out, maxChars) {
				return false
			}
		}
		out.Write("]")

	case *PrettyNode:
		return trySingleLineObj(n, out, maxChars)
	}

	return out.NumChars() <= maxChars
}

func trySingleLineObj(node *PrettyNode, out Output, maxChars int) bool {
	out.Write(node.Left)
	if node.Abbrev {
		if node.NodeType != "" {
			out.WriteColored(ColorTypeName, node.NodeType)
			if len(node.UnnamedFields) > 0 {
				out.Write(" ")
			}
		}
		for i, v := range node.UnnamedFields {
			if i != 0 {
				out.Write(" ")
			}
			if !trySingleLine(v, out, maxChars) {
				return false
			}
		}
	} else {
		out.WriteColored(ColorTypeName, node.NodeType)
		for _, f := range node.Fields {
			out.Write(" " + f.Name + ":")
			if !trySingleLine(f.Value, out, maxChars) {
				return false
			}
		}
	}
	out.Write(node.Right)
	return out.NumChars() <= maxChars
}
