package querysql

import (
	"errors"
	"slices"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/sortspec"
)

// ErrNoCollection is returned when compiling a Query without a collection.
var ErrNoCollection = errors.New("querysql: no collection")

// ErrNoSchema is returned when compiling a Query without a record schema.
var ErrNoSchema = errors.New("querysql: no schema")

// Query is a deferred SELECT over one collection. It is immutable: Where
// and OrderBy return new queries.
type Query struct {
	collection string
	typ        *schema.Type
	where      []filter.Node
	order      []sortspec.Directive
}

var _ criteria.Queryable = (*Query)(nil)

// New starts a query over every document of collection, described by typ.
func New(collection string, typ *schema.Type) *Query {
	return &Query{collection: collection, typ: typ}
}

// Collection returns the collection the query reads.
func (q *Query) Collection() string { return q.collection }

// Schema returns the record schema paths resolve against.
func (q *Query) Schema() *schema.Type { return q.typ }

// Where narrows the query. Repeated calls are combined with AND.
func (q *Query) Where(node filter.Node) criteria.Queryable {
	if node == nil {
		return q
	}
	next := *q
	next.where = append(slices.Clip(q.where), node)
	return &next
}

// OrderBy replaces the ordering. Field names must match declared member
// names exactly. Directives that do not resolve are skipped; when none
// resolve q itself is returned.
func (q *Query) OrderBy(dirs []sortspec.Directive) criteria.Queryable {
	if q.typ == nil {
		return q
	}
	var resolved []sortspec.Directive
	for _, d := range dirs {
		if _, ok := q.typ.ResolveExact(d.Field); ok {
			resolved = append(resolved, d)
		}
	}
	if len(resolved) == 0 {
		return q
	}
	next := *q
	next.order = resolved
	return &next
}

// Directives returns the resolved ordering.
func (q *Query) Directives() []sortspec.Directive {
	return slices.Clone(q.order)
}

// Compile renders the query as SQL with positional parameters.
func (q *Query) Compile() (string, []any, error) {
	if q.collection == "" {
		return "", nil, ErrNoCollection
	}
	if q.typ == nil {
		return "", nil, ErrNoSchema
	}
	return newCompiler(q.typ).compile(q)
}
