package predicate

import (
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/schema"
)

// containsMode is how Contains and NotContains are dispatched, decided once
// from the member's declared shape.
type containsMode int

const (
	containsNone containsMode = iota
	containsMember
	containsSubstring
)

// plan is the value-independent part of a compiled tree: paths resolved to
// member index chains, coercion targets and operator dispatch. Plans are
// what the cache holds; operands are bound to a plan on every Compile.
type plan struct {
	group       bool
	conjunction filter.Conjunction
	children    []*plan

	op       filter.Operator
	path     schema.Path
	resolved bool
	leaf     schema.Member
	contains containsMode
}

func buildPlan(node filter.Node, typ *schema.Type) *plan {
	switch n := node.(type) {
	case *filter.Group:
		children := n.Children()
		p := &plan{
			group:       true,
			conjunction: n.Conjunction(),
			children:    make([]*plan, len(children)),
		}
		for i, child := range children {
			p.children[i] = buildPlan(child, typ)
		}
		return p

	case *filter.Condition:
		p := &plan{op: n.Operator()}
		path, ok := typ.Resolve(n.Path())
		if !ok {
			return p
		}
		p.path = path
		p.resolved = true
		p.leaf = path.Leaf()

		switch {
		case p.leaf.Multi:
			p.contains = containsMember
		case p.leaf.Kind == ir.KindString:
			p.contains = containsSubstring
		}
		return p
	}

	return &plan{}
}
