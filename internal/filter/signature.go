package filter

import "github.com/roach88/sieve/internal/ir"

// Signature returns the structural signature of a tree: a content hash of
// its shape, covering operator, path and value count of every condition
// and the conjunction nesting of every group. Raw values and node names are
// not part of the shape, so trees that differ only in the operands they
// compare against share a signature.
func Signature(node Node) string {
	return ir.MustHash(ir.DomainSignature, shape(node))
}

func shape(node Node) ir.Value {
	if isNil(node) {
		return ir.Null{}
	}
	switch n := node.(type) {
	case *Condition:
		return ir.Object{
			"op":     ir.String(n.op.String()),
			"path":   ir.String(n.path),
			"values": ir.Int(len(n.values)),
		}
	case *Group:
		children := make(ir.List, len(n.children))
		for i, child := range n.children {
			children[i] = shape(child)
		}
		return ir.Object{
			"conjunction": ir.String(n.conjunction.String()),
			"children":    children,
		}
	default:
		return ir.Null{}
	}
}
