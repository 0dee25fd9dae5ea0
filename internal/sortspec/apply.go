package sortspec

import (
	"slices"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/schema"
)

// key is one resolved directive of a comparator chain.
type key struct {
	path      schema.Path
	target    ir.Target
	direction Direction
}

// Resolve keeps the directives whose field resolves against typ, matching
// member names case-insensitively. Unresolvable directives contribute
// nothing.
func Resolve(typ *schema.Type, dirs []Directive) []Directive {
	out := make([]Directive, 0, len(dirs))
	for _, d := range dirs {
		if _, ok := typ.Resolve(d.Field); ok {
			out = append(out, d)
		}
	}
	return out
}

func resolveKeys(typ *schema.Type, dirs []Directive) []key {
	var keys []key
	for _, d := range dirs {
		path, ok := typ.Resolve(d.Field)
		if !ok {
			continue
		}
		keys = append(keys, key{path: path, target: path.Leaf().Target(), direction: d.Direction})
	}
	return keys
}

// Apply orders items by the directives that resolve against T. When none
// resolve, items itself is returned. Otherwise a sorted copy is returned;
// the sort is stable and items is not modified.
func Apply[T any](items []T, dirs []Directive) []T {
	return apply(items, schema.For[T](), dirs)
}

// ApplySchema is Apply for records described by typ.
func ApplySchema(items []any, typ *schema.Type, dirs []Directive) []any {
	if typ == nil {
		return items
	}
	return apply(items, typ, dirs)
}

func apply[T any](items []T, typ *schema.Type, dirs []Directive) []T {
	keys := resolveKeys(typ, dirs)
	if len(keys) == 0 {
		return items
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, comparator[T](keys))
	return sorted
}

// comparator chains keys into one comparison function: the first key
// decides unless it ties, then the next, and so on.
func comparator[T any](keys []key) func(a, b T) int {
	return func(a, b T) int {
		for _, k := range keys {
			if c := k.compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
}

// compare orders two elements by this key. Absent values sort before
// present ones when ascending. Values that have no order between them
// tie.
func (k key) compare(a, b any) int {
	va, okA := k.read(a)
	vb, okB := k.read(b)

	var c int
	switch {
	case !okA && !okB:
		c = 0
	case !okA:
		c = -1
	case !okB:
		c = 1
	default:
		c, _ = ir.Compare(va, vb)
	}

	if k.direction == Descending {
		return -c
	}
	return c
}

func (k key) read(elem any) (ir.Value, bool) {
	raw, ok := k.path.Get(elem)
	if !ok || raw == nil {
		return nil, false
	}
	v, ok := ir.FromAny(raw, k.target)
	if !ok || ir.IsNull(v) {
		return nil, false
	}
	return v, true
}
