package filter

import (
	"fmt"
	"strings"
)

// TraversalState describes where a Walk callback is in the tree.
type TraversalState int

const (
	// TraversalStateNone is reported for leaves.
	TraversalStateNone TraversalState = iota

	// TraversalStateEnter is reported before a group's children.
	TraversalStateEnter

	// TraversalStateExit is reported after a group's children.
	TraversalStateExit
)

// Walk visits node and its descendants in pre-order. Groups are reported
// twice, once on enter and once on exit. Nil nodes, typed or not, are
// skipped.
func Walk(node Node, f func(Node, TraversalState)) {
	if isNil(node) {
		return
	}
	switch n := node.(type) {
	case *Group:
		f(n, TraversalStateEnter)
		for _, child := range n.children {
			Walk(child, f)
		}
		f(n, TraversalStateExit)
	default:
		f(node, TraversalStateNone)
	}
}

func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *Group:
		return n == nil
	case *Condition:
		return n == nil
	}
	return false
}

// Format renders the tree as an indented outline, one node per line.
func Format(node Node) string {
	var sb strings.Builder
	depth := 0

	Walk(node, func(n Node, state TraversalState) {
		switch state {
		case TraversalStateEnter:
			g := n.(*Group)
			fmt.Fprintf(&sb, "%s%s %s {\n", indent(depth), g.conjunction, g.name)
			depth++
		case TraversalStateExit:
			depth--
			fmt.Fprintf(&sb, "%s}\n", indent(depth))
		default:
			c := n.(*Condition)
			fmt.Fprintf(&sb, "%s%s %s", indent(depth), c.path, c.op)
			if len(c.values) > 0 {
				fmt.Fprintf(&sb, " [%s]", strings.Join(c.values, ", "))
			}
			fmt.Fprintf(&sb, " (%s)\n", c.name)
		}
	})

	return sb.String()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
