package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureIgnoresOperandValues(t *testing.T) {
	a := Parse("filter[age][between]=1,5&filter[name]=Bob")
	b := Parse("filter[age][between]=10,50&filter[name]=Alice")

	assert.Equal(t, Signature(a), Signature(b))
	assert.Len(t, Signature(a), 64)
}

func TestSignatureDistinguishesShape(t *testing.T) {
	base := Signature(Parse("filter[age][gt]=1"))

	testCases := []struct {
		name  string
		query string
	}{
		{"operator", "filter[age][lt]=1"},
		{"path", "filter[years][gt]=1"},
		{"value count", "filter[age][in]=1,2"},
		{"conjunction", "filter[age][gt][or]=1"},
		{"extra child", "filter[age][gt]=1&filter[x]=1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotEqual(t, base, Signature(Parse(tc.query)))
		})
	}
}

func TestSignatureOrderMatters(t *testing.T) {
	a := Parse("filter[a]=1&filter[b]=2")
	b := Parse("filter[b]=2&filter[a]=1")
	assert.NotEqual(t, Signature(a), Signature(b))
}

func TestWalk(t *testing.T) {
	tree := Parse("filter[g][group][conjunction]=or&filter[g][0][a]=1&filter[b]=2")

	var events []string
	Walk(tree, func(n Node, state TraversalState) {
		switch state {
		case TraversalStateEnter:
			events = append(events, "enter "+n.Name())
		case TraversalStateExit:
			events = append(events, "exit "+n.Name())
		default:
			events = append(events, n.Name())
		}
	})

	assert.Equal(t, []string{"enter root", "enter g", "a-0", "exit g", "b-0", "exit root"}, events)

	var names []string
	for _, c := range Conditions(tree) {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a-0", "b-0"}, names)

	Walk(nil, func(Node, TraversalState) { t.Fatal("nil tree must not be visited") })
}

func TestValidate(t *testing.T) {
	res := Validate(Parse("filter[a]=1"))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Warnings)

	res = Validate(Parse("filter[age][between]=1&filter[tag][in]=&filter[name][regex]=(&filter[e][group][memberOf]=root2&filter[root2][group][conjunction]=and"))
	assert.False(t, res.Valid)
	assert.Equal(t, []string{
		"condition \"age-0\": Between needs exactly two values, got 1",
		"condition \"tag-0\": In has an empty value list",
		"condition \"name-0\": invalid pattern: error parsing regexp: missing closing ): `(`",
		"group \"e\" has no children",
	}, res.Warnings)

	assert.False(t, Validate(nil).Valid)
}

func TestTypedNilNodes(t *testing.T) {
	for _, node := range []Node{(*Group)(nil), (*Condition)(nil)} {
		res := Validate(node)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"nil filter tree"}, res.Warnings)
		assert.Empty(t, Format(node))
		assert.Equal(t, Signature(nil), Signature(node))
	}
}
