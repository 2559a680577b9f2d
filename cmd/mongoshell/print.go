package main

import (
	"fmt"
	"strings"

	"github.com/felixdotgo/mongoshell/internal/bsontree"
)

// printTree renders a result tree the way a mongosh console would: one
// document per root, fields indented under their parent, scalars showing
// their shell-formatted value.
func printTree(roots []*bsontree.Node) {
	for i, root := range roots {
		if len(roots) > 1 {
			fmt.Printf("// %d\n", i)
		}
		printNode(root, 0)
	}
	if len(roots) == 0 {
		fmt.Println("// no results")
	}
}

func printNode(n *bsontree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if !n.IsContainer() {
		fmt.Printf("%s%s: %s\n", indent, n.DisplayKey, n.Display)
		return
	}
	fmt.Printf("%s%s: %s {\n", indent, n.DisplayKey, n.TypeLabel)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
	fmt.Printf("%s}\n", indent)
}
