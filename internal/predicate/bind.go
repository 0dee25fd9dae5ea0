package predicate

import (
	"regexp"
	"strings"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/ir"
)

// evaluator tests one element.
type evaluator func(elem any) bool

func never(any) bool { return false }

// bind attaches the operands of node to a plan of the same shape.
func bind(p *plan, node filter.Node) evaluator {
	switch n := node.(type) {
	case *filter.Group:
		children := n.Children()
		if !p.group || len(children) != len(p.children) {
			return never
		}
		evals := make([]evaluator, len(children))
		for i, child := range children {
			evals[i] = bind(p.children[i], child)
		}
		if p.conjunction == filter.Or {
			return anyOf(evals)
		}
		return allOf(evals)

	case *filter.Condition:
		if p.group || !p.resolved {
			return never
		}
		return bindCondition(p, n.Values())
	}
	return never
}

func allOf(evals []evaluator) evaluator {
	return func(elem any) bool {
		for _, e := range evals {
			if !e(elem) {
				return false
			}
		}
		return true
	}
}

func anyOf(evals []evaluator) evaluator {
	return func(elem any) bool {
		for _, e := range evals {
			if e(elem) {
				return true
			}
		}
		return false
	}
}

// memberReader reads the leaf member of p from an element. It reports
// false when an intermediate member is absent or the leaf holds a value
// that cannot be read as the member's kind. An absent leaf reads as ir.Null.
func memberReader(p *plan) func(elem any) (ir.Value, bool) {
	target := p.leaf.Target()
	return func(elem any) (ir.Value, bool) {
		raw, ok := p.path.Get(elem)
		if !ok {
			return nil, false
		}
		if raw == nil {
			return ir.Null{}, true
		}
		v, ok := ir.FromAny(raw, target)
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}
}

func bindCondition(p *plan, values []string) evaluator {
	read := memberReader(p)

	switch p.op {
	case filter.IsNull, filter.IsNotNull:
		wantNull := p.op == filter.IsNull
		return func(elem any) bool {
			raw, ok := p.path.Get(elem)
			if !ok {
				return false
			}
			return (raw == nil) == wantNull
		}

	case filter.EqualTo, filter.NotEqualTo:
		want, ok := operand(p, values, true)
		if !ok {
			return never
		}
		negate := p.op == filter.NotEqualTo
		return func(elem any) bool {
			m, ok := read(elem)
			if !ok {
				return false
			}
			return ir.Equal(m, want) != negate
		}

	case filter.GreaterThan, filter.GreaterThanOrEqualTo, filter.LessThan, filter.LessThanOrEqualTo:
		want, ok := operand(p, values, false)
		if !ok || p.leaf.Multi || !ir.Ordered(want.Kind()) {
			return never
		}
		accept := relation(p.op)
		return func(elem any) bool {
			m, ok := read(elem)
			if !ok {
				return false
			}
			c, ok := ir.Compare(m, want)
			return ok && accept(c)
		}

	case filter.Between, filter.NotBetween:
		return bindRange(p, values, read)

	case filter.In, filter.NotIn:
		return bindIn(p, values, read)

	case filter.Contains, filter.NotContains:
		return bindContains(p, values, read)

	case filter.StartsWith, filter.EndsWith:
		if len(values) != 1 || p.contains != containsSubstring {
			return never
		}
		affix := values[0]
		test := strings.HasPrefix
		if p.op == filter.EndsWith {
			test = strings.HasSuffix
		}
		return func(elem any) bool {
			m, ok := read(elem)
			s, isString := m.(ir.String)
			return ok && isString && test(string(s), affix)
		}

	case filter.Regex:
		if len(values) != 1 || p.contains != containsSubstring {
			return never
		}
		re, err := regexp.Compile(values[0])
		if err != nil {
			return never
		}
		return func(elem any) bool {
			m, ok := read(elem)
			s, isString := m.(ir.String)
			return ok && isString && re.MatchString(string(s))
		}
	}

	return never
}

func relation(op filter.Operator) func(int) bool {
	switch op {
	case filter.GreaterThan:
		return func(c int) bool { return c > 0 }
	case filter.GreaterThanOrEqualTo:
		return func(c int) bool { return c >= 0 }
	case filter.LessThan:
		return func(c int) bool { return c < 0 }
	default:
		return func(c int) bool { return c <= 0 }
	}
}

// bindRange binds the exclusive range operators over ordered kinds:
//
//	Between:    low < m < high
//	NotBetween: m <= low || m >= high
func bindRange(p *plan, values []string, read func(any) (ir.Value, bool)) evaluator {
	if len(values) < 2 || p.leaf.Multi {
		return never
	}
	low, err := coerce(values[0], p.leaf.Target())
	if err != nil {
		return never
	}
	high, err := coerce(values[1], p.leaf.Target())
	if err != nil {
		return never
	}
	if !ir.Ordered(low.Kind()) || !ir.Ordered(high.Kind()) {
		return never
	}

	outside := p.op == filter.NotBetween
	return func(elem any) bool {
		m, ok := read(elem)
		if !ok {
			return false
		}
		cl, ok := ir.Compare(m, low)
		if !ok {
			return false
		}
		ch, ok := ir.Compare(m, high)
		if !ok {
			return false
		}
		if outside {
			return cl <= 0 || ch >= 0
		}
		return cl > 0 && ch < 0
	}
}

func bindIn(p *plan, values []string, read func(any) (ir.Value, bool)) evaluator {
	negate := p.op == filter.NotIn

	set := make([]ir.Value, 0, len(values))
	for _, raw := range values {
		v, err := coerceNullable(raw, p)
		if err != nil {
			if negate {
				return never
			}
			continue
		}
		set = append(set, v)
	}

	return func(elem any) bool {
		m, ok := read(elem)
		if !ok {
			return false
		}
		found := false
		for _, v := range set {
			if ir.Equal(m, v) {
				found = true
				break
			}
		}
		return found != negate
	}
}

func bindContains(p *plan, values []string, read func(any) (ir.Value, bool)) evaluator {
	if len(values) != 1 {
		return never
	}
	negate := p.op == filter.NotContains

	switch p.contains {
	case containsMember:
		want, err := coerce(values[0], p.leaf.Target())
		if err != nil {
			return never
		}
		return func(elem any) bool {
			m, ok := read(elem)
			list, isList := m.(ir.List)
			if !ok || !isList {
				return false
			}
			for _, item := range list {
				if ir.Equal(item, want) {
					return !negate
				}
			}
			return negate
		}

	case containsSubstring:
		needle := values[0]
		return func(elem any) bool {
			m, ok := read(elem)
			s, isString := m.(ir.String)
			if !ok || !isString {
				return false
			}
			return strings.Contains(string(s), needle) != negate
		}
	}

	return never
}

// operand coerces the single operand of a comparison. When allowNull is
// set, the literal "null" against a nullable member means ir.Null.
func operand(p *plan, values []string, allowNull bool) (ir.Value, bool) {
	if len(values) != 1 {
		return nil, false
	}
	if allowNull {
		v, err := coerceNullable(values[0], p)
		return v, err == nil
	}
	v, err := coerce(values[0], p.leaf.Target())
	return v, err == nil
}

func coerceNullable(raw string, p *plan) (ir.Value, error) {
	if p.leaf.Nullable && strings.EqualFold(strings.TrimSpace(raw), "null") {
		return ir.Null{}, nil
	}
	return coerce(raw, p.leaf.Target())
}

// coerce converts a raw operand to the member's kind. Members of dynamic
// kind (interface fields, untyped CUE values) infer one from the token.
func coerce(raw string, t ir.Target) (ir.Value, error) {
	if t.Kind == ir.KindInvalid {
		return ir.Infer(raw), nil
	}
	return ir.Coerce(raw, t)
}
