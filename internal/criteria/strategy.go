package criteria

import (
	"slices"
	"strings"
	"sync"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/sortspec"
)

// Strategy parses raw parameter text into a T.
type Strategy[T any] struct {
	parse func(text string) T
	empty func(T) bool
}

// NewStrategy wraps a parse function. empty reports when a parsed result
// holds nothing; TryParse fails for such results.
func NewStrategy[T any](parse func(string) T, empty func(T) bool) Strategy[T] {
	return Strategy[T]{parse: parse, empty: empty}
}

// Parse parses text. It never fails.
func (s Strategy[T]) Parse(text string) T {
	return s.parse(text)
}

// TryParse parses text and reports false, with the zero T, when the result
// is empty.
func (s Strategy[T]) TryParse(text string) (T, bool) {
	v := s.parse(text)
	if s.empty != nil && s.empty(v) {
		var zero T
		return zero, false
	}
	return v, true
}

// FilterStrategy parses filter trees with p.
func FilterStrategy(p *filter.Parser) Strategy[*filter.Group] {
	return NewStrategy(p.Parse, func(g *filter.Group) bool {
		return g == nil || g.Len() == 0
	})
}

// SortStrategy parses sort directives with p.
func SortStrategy(p *sortspec.Parser) Strategy[[]sortspec.Directive] {
	return NewStrategy(p.Parse, func(dirs []sortspec.Directive) bool {
		return len(dirs) == 0
	})
}

// Registry dispatches raw query text to a parse strategy by parameter
// name. Names match case-insensitively. A Registry is safe for concurrent
// use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]func(string) (any, bool)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]func(string) (any, bool))}
}

// Register adds s under name, replacing any earlier strategy.
func Register[T any](r *Registry, name string, s Strategy[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[strings.ToLower(name)] = func(text string) (any, bool) {
		return s.TryParse(text)
	}
}

// DefaultRegistry registers the filter and sort strategies of m under the
// grammar's parameter keys.
func DefaultRegistry(m *grammar.Matcher, rootName string) *Registry {
	if m == nil {
		m = grammar.NewMatcher()
	}
	settings := grammar.DefaultSettings()
	if d, ok := m.Grammar().(*grammar.Default); ok {
		settings = d.Settings()
	}

	r := NewRegistry()
	Register(r, settings.FilterKey, FilterStrategy(filter.NewParser(filter.WithMatcher(m), filter.WithRootName(rootName))))
	Register(r, settings.SortKey, SortStrategy(sortspec.NewParser(m)))
	return r
}

// Names returns the registered parameter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse runs the strategy registered under name. It reports false when no
// strategy is registered or the result is empty.
func (r *Registry) Parse(name, text string) (any, bool) {
	r.mu.RLock()
	parse, ok := r.strategies[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return parse(text)
}
