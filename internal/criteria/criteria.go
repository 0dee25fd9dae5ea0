package criteria

import (
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/predicate"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/sortspec"
)

// Queryable is a deferred query that accepts criteria and stays
// composable.
type Queryable interface {
	Where(node filter.Node) Queryable
	OrderBy(dirs []sortspec.Directive) Queryable
}

// Filter returns the items that satisfy node, in their original order. A
// nil node returns items unchanged.
func Filter[T any](items []T, node filter.Node) []T {
	p, err := predicate.Compile[T](node)
	if err != nil {
		return items
	}
	return FilterWith(items, p)
}

// FilterWith returns the items that satisfy an already compiled predicate.
func FilterWith[T any](items []T, p predicate.Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if p.Evaluate(item) {
			out = append(out, item)
		}
	}
	return out
}

// FilterRecords is Filter for records described by typ.
func FilterRecords(items []any, typ *schema.Type, node filter.Node) ([]any, error) {
	p, err := predicate.CompileSchema(node, typ)
	if err != nil {
		return nil, err
	}
	return FilterWith(items, p), nil
}

// FilterQuery narrows q by node. A nil node or nil q returns q unchanged.
func FilterQuery(q Queryable, node filter.Node) Queryable {
	if q == nil || node == nil {
		return q
	}
	return q.Where(node)
}

// Sort orders items by dirs. When no directive resolves against T the
// input slice itself is returned.
func Sort[T any](items []T, dirs []sortspec.Directive) []T {
	return sortspec.Apply(items, dirs)
}

// SortRecords is Sort for records described by typ.
func SortRecords(items []any, typ *schema.Type, dirs []sortspec.Directive) []any {
	return sortspec.ApplySchema(items, typ, dirs)
}

// SortQuery orders q by dirs. Implementations return q itself when no
// directive resolves.
func SortQuery(q Queryable, dirs []sortspec.Directive) Queryable {
	if q == nil || len(dirs) == 0 {
		return q
	}
	return q.OrderBy(dirs)
}
