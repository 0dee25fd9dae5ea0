package filter

import (
	"encoding/json"
	"fmt"
)

// jsonNode is the wire shape of both node kinds, discriminated by Type.
type jsonNode struct {
	Type        string       `json:"type"`
	Name        string       `json:"name"`
	MemberOf    string       `json:"memberOf,omitempty"`
	Path        string       `json:"path,omitempty"`
	Operator    *Operator    `json:"operator,omitempty"`
	Values      []string     `json:"values,omitempty"`
	Conjunction *Conjunction `json:"conjunction,omitempty"`
	Children    []jsonNode   `json:"children,omitempty"`
}

const (
	typeCondition = "condition"
	typeGroup     = "group"
)

// MarshalJSON implements json.Marshaler.
func (c *Condition) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(c))
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(g))
}

func toJSON(node Node) jsonNode {
	switch n := node.(type) {
	case *Condition:
		op := n.op
		return jsonNode{
			Type:     typeCondition,
			Name:     n.name,
			MemberOf: n.memberOf,
			Path:     n.path,
			Operator: &op,
			Values:   n.values,
		}
	case *Group:
		conj := n.conjunction
		children := make([]jsonNode, len(n.children))
		for i, child := range n.children {
			children[i] = toJSON(child)
		}
		return jsonNode{
			Type:        typeGroup,
			Name:        n.name,
			MemberOf:    n.memberOf,
			Conjunction: &conj,
			Children:    children,
		}
	}
	return jsonNode{}
}

// UnmarshalNode decodes a tree produced by MarshalJSON.
func UnmarshalNode(data []byte) (Node, error) {
	var jn jsonNode
	if err := json.Unmarshal(data, &jn); err != nil {
		return nil, fmt.Errorf("decode filter node: %w", err)
	}
	return fromJSON(jn)
}

func fromJSON(jn jsonNode) (Node, error) {
	switch jn.Type {
	case typeCondition:
		op := EqualTo
		if jn.Operator != nil {
			op = *jn.Operator
		}
		return NewCondition(jn.Name, jn.Path, op, jn.Values, jn.MemberOf), nil
	case typeGroup:
		conj := And
		if jn.Conjunction != nil {
			conj = *jn.Conjunction
		}
		children := make([]Node, 0, len(jn.Children))
		for _, cj := range jn.Children {
			child, err := fromJSON(cj)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return NewGroup(jn.Name, conj, jn.MemberOf, children...), nil
	default:
		return nil, fmt.Errorf("unknown node type %q in %q", jn.Type, jn.Name)
	}
}
