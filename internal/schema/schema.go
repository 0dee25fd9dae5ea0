package schema

import (
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/sieve/internal/ir"
)

// Source says how member values are read from an element.
type Source int

const (
	// SourceStruct elements are Go struct values (or pointers to them).
	SourceStruct Source = iota

	// SourceRecord elements are map[string]any records, as decoded from
	// YAML or JSON.
	SourceRecord
)

// Member describes one named member of an element type.
type Member struct {
	Name string

	// Kind is the member's value kind. For multi-valued members it is the
	// kind of the elements.
	Kind ir.Kind

	// Enum lists declared names in ordinal order when Kind is KindEnum.
	Enum []string

	// Multi is true for lists, slices, arrays and sets.
	Multi bool

	// Nullable is true when the member may be absent or nil.
	Nullable bool

	// Elem is the nested type of a struct-valued member.
	Elem *Type

	field int // struct field index, SourceStruct only
}

// Target returns the coercion target for values compared against m.
func (m Member) Target() ir.Target {
	return ir.Target{Kind: m.Kind, Enum: m.Enum}
}

// Type is the member layout of an element type, built once and shared.
//
// Member names are interned to indices at construction; a dotted path is
// resolved to a chain of indices before anything is evaluated.
type Type struct {
	name    string
	id      string
	source  Source
	members []Member
	exact   map[string]int
	folded  map[string]int
}

func newType(name, id string, source Source) *Type {
	return &Type{
		name:   name,
		id:     id,
		source: source,
		exact:  make(map[string]int),
		folded: make(map[string]int),
	}
}

// addMember appends m. The first member wins both lookups when names
// collide.
func (t *Type) addMember(m Member) {
	i := len(t.members)
	t.members = append(t.members, m)
	if _, ok := t.exact[m.Name]; !ok {
		t.exact[m.Name] = i
	}
	key := fold(m.Name)
	if _, ok := t.folded[key]; !ok {
		t.folded[key] = i
	}
}

// fold applies Unicode case folding. Casers are stateful, so one is made
// per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Name returns the type's display name.
func (t *Type) Name() string { return t.name }

// ID returns a stable identity for the type, used as a cache key.
func (t *Type) ID() string { return t.id }

// Source returns how elements of this type are read.
func (t *Type) Source() Source { return t.source }

// Members returns the members in declaration order.
func (t *Type) Members() []Member {
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// Member returns the member at index i.
func (t *Type) Member(i int) Member { return t.members[i] }

// Lookup finds a member by name, case-insensitively. When several members
// fold to the same name the first declared wins.
func (t *Type) Lookup(name string) (int, bool) {
	i, ok := t.folded[fold(name)]
	return i, ok
}

// LookupExact finds a member by its exact declared name.
func (t *Type) LookupExact(name string) (int, bool) {
	i, ok := t.exact[name]
	return i, ok
}

// Path is a dotted member path resolved to a chain of member indices.
type Path struct {
	root  *Type
	steps []int
}

// Resolve resolves a dotted path case-insensitively. It fails when any
// segment names no member or an intermediate member is not a nested type.
func (t *Type) Resolve(path string) (Path, bool) {
	return t.resolve(path, (*Type).Lookup)
}

// ResolveExact is Resolve with exact, case-sensitive member names.
func (t *Type) ResolveExact(path string) (Path, bool) {
	return t.resolve(path, (*Type).LookupExact)
}

func (t *Type) resolve(path string, lookup func(*Type, string) (int, bool)) (Path, bool) {
	p := Path{root: t}
	cur := t
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			continue
		}
		if cur == nil {
			return Path{}, false
		}
		i, ok := lookup(cur, seg)
		if !ok {
			return Path{}, false
		}
		p.steps = append(p.steps, i)
		m := cur.members[i]
		if m.Multi {
			cur = nil
		} else {
			cur = m.Elem
		}
	}
	if len(p.steps) == 0 {
		return Path{}, false
	}
	return p, true
}

// Leaf returns the member the path ends at.
func (p Path) Leaf() Member {
	t := p.root
	var m Member
	for _, step := range p.steps {
		m = t.members[step]
		t = m.Elem
	}
	return m
}

// Names returns the declared member names along the path.
func (p Path) Names() []string {
	names := make([]string, 0, len(p.steps))
	t := p.root
	for _, step := range p.steps {
		m := t.members[step]
		names = append(names, m.Name)
		t = m.Elem
	}
	return names
}

// String returns the dotted declared path.
func (p Path) String() string {
	return strings.Join(p.Names(), ".")
}

// Get reads the member value at the end of the path. It reports false when
// the element or any intermediate member is absent (nil pointer, nil
// interface, missing key). An absent or nil leaf is returned as nil with
// true. Get never panics on a well-formed Path.
func (p Path) Get(elem any) (any, bool) {
	cur := elem
	t := p.root
	for _, step := range p.steps {
		if t == nil {
			return nil, false
		}
		m := t.members[step]

		var ok bool
		switch t.source {
		case SourceRecord:
			cur, ok = recordField(cur, m.Name)
		default:
			cur, ok = structField(cur, m.field)
		}
		if !ok {
			return nil, false
		}
		t = m.Elem
	}
	return cur, true
}

// recordField reads name from a record. A missing key reads as nil.
func recordField(v any, name string) (any, bool) {
	switch rec := v.(type) {
	case map[string]any:
		return rec[name], true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, true
	}
	return val.Interface(), true
}

// structField reads field i from a struct or pointer to struct. Nil
// pointers, maps, slices and interfaces in the field read as nil.
func structField(v any, field int) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || field >= rv.NumField() {
		return nil, false
	}
	f := rv.Field(field)
	switch f.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if f.IsNil() {
			return nil, true
		}
	}
	return f.Interface(), true
}

// String renders the layout, one member per line, for diagnostics.
func (t *Type) String() string {
	var sb strings.Builder
	t.describe(&sb, 0, map[*Type]bool{})
	return sb.String()
}

func (t *Type) describe(sb *strings.Builder, depth int, seen map[*Type]bool) {
	seen[t] = true
	for _, m := range t.members {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(m.Name)
		sb.WriteString(": ")
		if m.Multi {
			sb.WriteString("[]")
		}
		sb.WriteString(m.Kind.String())
		if len(m.Enum) > 0 {
			fmt.Fprintf(sb, "(%s)", strings.Join(m.Enum, "|"))
		}
		if m.Nullable {
			sb.WriteString("?")
		}
		sb.WriteString("\n")
		if m.Elem != nil && !m.Multi && !seen[m.Elem] {
			m.Elem.describe(sb, depth+1, seen)
		}
	}
	delete(seen, t)
}
