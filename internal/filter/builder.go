package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/grammar"
)

// DefaultRootName names the synthesized group that wraps multiple roots.
const DefaultRootName = "root"

// Parser turns query text into a filter tree.
//
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	matcher  *grammar.Matcher
	rootName string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMatcher replaces the default pattern matcher.
func WithMatcher(m *grammar.Matcher) ParserOption {
	return func(p *Parser) {
		if m != nil {
			p.matcher = m
		}
	}
}

// WithRootName renames the synthesized root group.
func WithRootName(name string) ParserOption {
	return func(p *Parser) {
		if name = strings.TrimSpace(name); name != "" {
			p.rootName = name
		}
	}
}

// NewParser creates a Parser over the default grammar unless overridden.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		matcher:  grammar.NewMatcher(),
		rootName: DefaultRootName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses text with the default parser.
func Parse(text string) *Group {
	return defaultParser.Parse(text)
}

// Parse extracts the filter records from text and assembles them into a
// tree. It never fails: input that matches nothing yields an empty root
// group.
func (p *Parser) Parse(text string) *Group {
	return p.Build(p.matcher.Filters(text))
}

// ParseContext is Parse with a caller-supplied matching deadline.
func (p *Parser) ParseContext(ctx context.Context, text string) *Group {
	return p.Build(p.matcher.FiltersContext(ctx, text))
}

// arenaNode is a node under construction. Nodes reference their parent by
// index into the arena, never by pointer.
type arenaNode struct {
	group    bool
	name     string
	memberOf string

	path   string
	op     Operator
	values []string

	conjunction    Conjunction
	conjunctionSet bool

	parent   int
	children []int
}

// assembly holds the arena for one Build call.
type assembly struct {
	nodes  []*arenaNode
	groups map[string]int // group name -> arena index
	names  map[string]int // every node name -> arena index

	// before places each synthesized group ahead of the first node that
	// referenced it.
	before map[int][]int
}

// Build assembles token records into a tree.
//
// Records are bucketed by normalized path in first-seen order and named
// "<path>-<index>", where index counts records per path; the ordinal a
// record carries from the query is not used. Membership is resolved in two passes: first every
// record is turned into a node and referenced group names are collected,
// then groups that were referenced but never declared are synthesized.
// Nodes on a membership cycle are dropped with a warning.
//
// A single root group is returned as is; otherwise all roots are wrapped
// in a root group with conjunction And.
func (p *Parser) Build(records []grammar.Record) *Group {
	a := &assembly{
		groups: make(map[string]int),
		names:  make(map[string]int),
		before: make(map[int][]int),
	}

	// Pass 1: bucket by path, build nodes, merge group declarations.
	var order []string
	byPath := make(map[string][]grammar.Record)
	for _, rec := range records {
		path := rec.JoinedPath()
		if path == "" {
			continue
		}
		if _, seen := byPath[path]; !seen {
			order = append(order, path)
		}
		byPath[path] = append(byPath[path], rec)
	}

	for _, path := range order {
		index := 0
		for _, rec := range byPath[path] {
			if rec.IsGroup() {
				a.declareGroup(path, rec)
				continue
			}
			a.addCondition(path, index, rec)
			index++
		}
	}

	// Pass 2: backfill referenced but undeclared groups.
	a.backfill()

	a.link()
	dropped := a.detachCycles()

	var roots []int
	for _, i := range a.order() {
		n := a.nodes[i]
		if dropped[i] {
			continue
		}
		if n.parent < 0 {
			roots = append(roots, i)
			continue
		}
		parent := a.nodes[n.parent]
		parent.children = append(parent.children, i)
	}

	if len(roots) == 1 && a.nodes[roots[0]].group {
		return a.materialize(roots[0]).(*Group)
	}

	children := make([]Node, 0, len(roots))
	for _, i := range roots {
		children = append(children, a.materialize(i))
	}
	return NewGroup(p.rootName, And, "", children...)
}

func (a *assembly) add(n *arenaNode) int {
	n.parent = -1
	a.nodes = append(a.nodes, n)
	i := len(a.nodes) - 1
	if _, taken := a.names[n.name]; !taken {
		a.names[n.name] = i
	}
	return i
}

func (a *assembly) declareGroup(name string, rec grammar.Record) {
	i, ok := a.groups[name]
	if !ok {
		i = a.add(&arenaNode{group: true, name: name})
		a.groups[name] = i
	}
	n := a.nodes[i]

	if !n.conjunctionSet && rec.Conjunction != "" {
		if conj, ok := ParseConjunction(rec.Conjunction); ok {
			n.conjunction = conj
			n.conjunctionSet = true
		}
	}
	if n.memberOf == "" && rec.MemberOf != "" {
		n.memberOf = strings.TrimSpace(rec.MemberOf)
	}
}

func (a *assembly) addCondition(path string, index int, rec grammar.Record) {
	op := ParseOperator(rec.Operator)

	var values []string
	switch {
	case op.Valueless():
	case op.MultiValued():
		for _, v := range strings.Split(rec.Value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	default:
		values = []string{rec.Value}
	}

	a.add(&arenaNode{
		name:     fmt.Sprintf("%s-%d", path, index),
		memberOf: resolveMemberOf(path, rec),
		path:     path,
		op:       op,
		values:   values,
	})
}

// resolveMemberOf applies the membership rules: an explicit capture wins,
// then an explicit conjunction implies "<path>-<conjunction>-group", else
// the node is a root.
func resolveMemberOf(path string, rec grammar.Record) string {
	if m := strings.TrimSpace(rec.MemberOf); m != "" {
		return m
	}
	if conj, ok := ParseConjunction(rec.Conjunction); ok {
		return fmt.Sprintf("%s-%s-group", path, strings.ToLower(conj.String()))
	}
	return ""
}

// backfill synthesizes a group for every referenced name that has no
// declaration. A name ending in "-or-group" yields an Or group. Names that
// collide with a condition are left alone; their members become roots.
func (a *assembly) backfill() {
	var referenced []string
	firstRef := make(map[string]int)
	for i, n := range a.nodes {
		if n.memberOf == "" {
			continue
		}
		if _, seen := firstRef[n.memberOf]; seen {
			continue
		}
		firstRef[n.memberOf] = i
		referenced = append(referenced, n.memberOf)
	}

	for _, name := range referenced {
		if _, declared := a.groups[name]; declared {
			continue
		}
		if _, taken := a.names[name]; taken {
			continue
		}
		conj := And
		if strings.HasSuffix(strings.ToLower(name), "-or-group") {
			conj = Or
		}
		gi := a.add(&arenaNode{group: true, name: name, conjunction: conj})
		a.groups[name] = gi
		a.before[firstRef[name]] = append(a.before[firstRef[name]], gi)
	}
}

// order returns arena indices in tree order: declared nodes in first-seen
// order with synthesized groups spliced in ahead of their first member.
func (a *assembly) order() []int {
	out := make([]int, 0, len(a.nodes))
	synthesized := make(map[int]bool)
	for _, gis := range a.before {
		for _, gi := range gis {
			synthesized[gi] = true
		}
	}
	for i := range a.nodes {
		if synthesized[i] {
			continue
		}
		out = append(out, a.before[i]...)
		out = append(out, i)
	}
	return out
}

// link sets each node's parent to the group it is a member of, if any.
func (a *assembly) link() {
	for _, n := range a.nodes {
		if n.memberOf == "" {
			continue
		}
		if gi, ok := a.groups[n.memberOf]; ok {
			n.parent = gi
		}
	}
}

func (a *assembly) materialize(i int) Node {
	n := a.nodes[i]
	if !n.group {
		return NewCondition(n.name, n.path, n.op, n.values, n.memberOf)
	}
	children := make([]Node, 0, len(n.children))
	for _, ci := range n.children {
		children = append(children, a.materialize(ci))
	}
	return NewGroup(n.name, n.conjunction, n.memberOf, children...)
}
