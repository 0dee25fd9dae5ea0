package filter

import "slices"

// Node is a filter tree node.
//
// This is a sealed interface: only Condition and Group implement it, so
// consumers can type switch exhaustively.
type Node interface {
	// Name is unique across the tree.
	Name() string

	// MemberOf names the enclosing group; empty for roots.
	MemberOf() string

	filterNode()
}

// Condition is a leaf test: path + operator + values.
//
// Conditions are immutable after construction.
type Condition struct {
	name     string
	path     string
	op       Operator
	values   []string
	memberOf string
}

// NewCondition creates a Condition. Values are copied; they are dropped for
// IsNull and IsNotNull.
func NewCondition(name, path string, op Operator, values []string, memberOf string) *Condition {
	c := &Condition{
		name:     name,
		path:     path,
		op:       op,
		memberOf: memberOf,
	}
	if !op.Valueless() && len(values) > 0 {
		c.values = slices.Clone(values)
	}
	return c
}

func (c *Condition) Name() string       { return c.name }
func (c *Condition) MemberOf() string   { return c.memberOf }
func (c *Condition) Path() string       { return c.path }
func (c *Condition) Operator() Operator { return c.op }

// Values returns a copy of the raw value tokens.
func (c *Condition) Values() []string { return slices.Clone(c.values) }

func (*Condition) filterNode() {}

// Group combines its children under a Conjunction.
type Group struct {
	name        string
	conjunction Conjunction
	memberOf    string
	children    []Node
}

// NewGroup creates a Group. The children slice is copied.
func NewGroup(name string, conj Conjunction, memberOf string, children ...Node) *Group {
	g := &Group{
		name:        name,
		conjunction: conj,
		memberOf:    memberOf,
	}
	if len(children) > 0 {
		g.children = slices.Clone(children)
	}
	return g
}

func (g *Group) Name() string              { return g.name }
func (g *Group) MemberOf() string          { return g.memberOf }
func (g *Group) Conjunction() Conjunction { return g.conjunction }

// Children returns a copy of the ordered child list.
func (g *Group) Children() []Node { return slices.Clone(g.children) }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

func (*Group) filterNode() {}

// Conditions returns every leaf under node in pre-order.
func Conditions(node Node) []*Condition {
	var out []*Condition
	Walk(node, func(n Node, _ TraversalState) {
		if c, ok := n.(*Condition); ok {
			out = append(out, c)
		}
	})
	return out
}
