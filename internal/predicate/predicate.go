package predicate

import (
	"errors"
	"log/slog"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/schema"
)

// ErrNilTree is returned when there is nothing to compile.
var ErrNilTree = errors.New("predicate: nil filter tree")

// ErrNilSchema is returned by CompileSchema without a layout.
var ErrNilSchema = errors.New("predicate: nil schema")

// Predicate is a compiled, type-specialized filter tree.
//
// Evaluate never panics and never reports an error: paths that do not
// resolve, absent intermediate members and operands that cannot be coerced
// all make the affected condition false. A Predicate is safe for
// concurrent use.
type Predicate[T any] struct {
	eval      evaluator
	signature string
}

// Evaluate reports whether v satisfies the tree. The zero Predicate matches
// nothing.
func (p Predicate[T]) Evaluate(v T) (matched bool) {
	if p.eval == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("predicate evaluation recovered", "panic", r)
			matched = false
		}
	}()
	return p.eval(v)
}

// Func returns Evaluate as a plain function, for slices.DeleteFunc and
// friends.
func (p Predicate[T]) Func() func(T) bool {
	return p.Evaluate
}

// Signature returns the structural signature of the compiled tree.
func (p Predicate[T]) Signature() string {
	return p.signature
}

// Compile specializes a filter tree to the Go type T. Member names in
// paths match T's exported fields case-insensitively.
func Compile[T any](node filter.Node) (Predicate[T], error) {
	if node == nil {
		return Predicate[T]{}, ErrNilTree
	}
	typ := schema.For[T]()
	sig := filter.Signature(node)
	return Predicate[T]{
		eval:      bind(planFor(typ, sig, node), node),
		signature: sig,
	}, nil
}

// CompileSchema specializes a filter tree to records described by typ.
func CompileSchema(node filter.Node, typ *schema.Type) (Predicate[any], error) {
	if node == nil {
		return Predicate[any]{}, ErrNilTree
	}
	if typ == nil {
		return Predicate[any]{}, ErrNilSchema
	}
	sig := filter.Signature(node)
	return Predicate[any]{
		eval:      bind(planFor(typ, sig, node), node),
		signature: sig,
	}, nil
}

// Plans are cached process-wide by (type identity, structural signature)
// and never evicted. Concurrent misses for one key are collapsed.
var (
	plans  = cache.New(cache.NoExpiration, 0)
	flight singleflight.Group
)

func planFor(typ *schema.Type, sig string, node filter.Node) *plan {
	key := typ.ID() + "|" + sig
	if p, ok := plans.Get(key); ok {
		return p.(*plan)
	}

	p, _, _ := flight.Do(key, func() (any, error) {
		if p, ok := plans.Get(key); ok {
			return p, nil
		}
		built := buildPlan(node, typ)
		plans.Set(key, built, cache.NoExpiration)
		slog.Debug("compiled filter plan",
			"type", typ.ID(),
			"signature", sig)
		return built, nil
	})
	return p.(*plan)
}

// CacheSize returns the number of cached plans.
func CacheSize() int {
	return plans.ItemCount()
}
