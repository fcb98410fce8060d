package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Node is one entry of a rendered tree. Label is printed as-is and Detail,
// when set, is dimmed after it.
type Node struct {
	Label    string
	Detail   string
	Children []*Node
}

// Add appends a child and returns it
func (n *Node) Add(label, detail string) *Node {
	child := &Node{Label: label, Detail: detail}
	n.Children = append(n.Children, child)
	return child
}

// RenderTree writes root and its descendants with box-drawing guides:
//
//	MarioPartyData (enum)
//	├── Mario Party → MarioParty
//	│   └── player_name: String
//	└── Mario Party 2 → MarioParty2
func RenderTree(w io.Writer, root *Node, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		dim.DisableColor()
	}

	bold.Fprint(w, root.Label)
	if root.Detail != "" {
		dim.Fprintf(w, " %s", root.Detail)
	}
	fmt.Fprintln(w)

	renderChildren(w, root.Children, "", dim)
}

func renderChildren(w io.Writer, children []*Node, prefix string, dim *color.Color) {
	for i, child := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}

		dim.Fprint(w, prefix+branch)
		fmt.Fprint(w, child.Label)
		if child.Detail != "" {
			dim.Fprintf(w, " %s", child.Detail)
		}
		fmt.Fprintln(w)

		renderChildren(w, child.Children, prefix+indent, dim)
	}
}
