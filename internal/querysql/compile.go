package querysql

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/sortspec"
)

const (
	sqlTrue  = "1"
	sqlFalse = "0"
)

// compiler accumulates positional parameters while rendering one query.
// Fragments must be rendered in the order they appear in the final SQL.
type compiler struct {
	typ    *schema.Type
	params []any
}

func newCompiler(typ *schema.Type) *compiler {
	return &compiler{typ: typ}
}

func (c *compiler) bind(v any) string {
	c.params = append(c.params, v)
	return "?"
}

func (c *compiler) compile(q *Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, doc FROM documents WHERE collection = ")
	sb.WriteString(c.bind(q.collection))

	for _, node := range q.where {
		sb.WriteString(" AND ")
		sb.WriteString(c.node(node))
	}

	sb.WriteString(" ORDER BY ")
	for _, d := range q.order {
		key, ok := c.sortKey(d)
		if !ok {
			continue
		}
		sb.WriteString(key)
		sb.WriteString(", ")
	}
	// Ties always fall back to insertion order.
	sb.WriteString("id ASC")

	return sb.String(), c.params, nil
}

func (c *compiler) node(n filter.Node) string {
	switch n := n.(type) {
	case *filter.Group:
		children := n.Children()
		if len(children) == 0 {
			if n.Conjunction() == filter.Or {
				return sqlFalse
			}
			return sqlTrue
		}
		parts := make([]string, len(children))
		for i, child := range children {
			parts[i] = c.node(child)
		}
		sep := " AND "
		if n.Conjunction() == filter.Or {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")"

	case *filter.Condition:
		col, ok := c.column(n.Path())
		if !ok {
			return sqlFalse
		}
		return c.condition(col, n.Operator(), n.Values())
	}
	return sqlFalse
}

// column is a resolved member path.
type column struct {
	path    string // quoted JSON path literal, e.g. '$."address"."city"'
	parents []string
	leaf    schema.Member
}

func (c *compiler) column(path string) (column, bool) {
	p, ok := c.typ.Resolve(path)
	if !ok {
		return column{}, false
	}
	names := p.Names()
	for _, name := range names {
		if strings.ContainsAny(name, `"`) {
			return column{}, false
		}
	}
	col := column{path: jsonPath(names), leaf: p.Leaf()}
	for i := 1; i < len(names); i++ {
		col.parents = append(col.parents, jsonPath(names[:i]))
	}
	return col, true
}

func jsonPath(names []string) string {
	var sb strings.Builder
	sb.WriteString("$")
	for _, name := range names {
		sb.WriteString(`."`)
		sb.WriteString(name)
		sb.WriteString(`"`)
	}
	return "'" + strings.ReplaceAll(sb.String(), "'", "''") + "'"
}

func (col column) jsonType() string {
	return "json_type(doc, " + col.path + ")"
}

func (col column) raw() string {
	return "json_extract(doc, " + col.path + ")"
}

// isNull holds when the leaf is missing or JSON null.
func (col column) isNull() string {
	return "COALESCE(" + col.jsonType() + ", 'null') = 'null'"
}

// reachable holds when every intermediate member is an object.
func (col column) reachable() string {
	if len(col.parents) == 0 {
		return ""
	}
	guards := make([]string, len(col.parents))
	for i, p := range col.parents {
		guards[i] = "json_type(doc, " + p + ") = 'object'"
	}
	return strings.Join(guards, " AND ")
}

// typed holds when the leaf holds a JSON value of the member's kind. For
// members of dynamic kind the operand's kind decides.
func (col column) typed(operand ir.Value) string {
	kind := col.leaf.Kind
	if col.leaf.Multi {
		return col.jsonType() + " = 'array'"
	}
	if kind == ir.KindInvalid && operand != nil {
		kind = operand.Kind()
	}
	switch kind {
	case ir.KindInt, ir.KindUint, ir.KindFloat:
		return col.jsonType() + " IN ('integer', 'real')"
	case ir.KindString, ir.KindEnum, ir.KindIdentifier, ir.KindDateTime:
		return col.jsonType() + " = 'text'"
	case ir.KindBool:
		return col.jsonType() + " IN ('true', 'false')"
	}
	return not(col.isNull())
}

// expr renders the comparable form of a JSON value of kind k.
func (c *compiler) expr(value string, m schema.Member) string {
	switch m.Kind {
	case ir.KindIdentifier:
		return "lower(" + value + ")"
	case ir.KindDateTime:
		return "julianday(" + value + ")"
	case ir.KindEnum:
		if len(m.Enum) == 0 {
			return value
		}
		var sb strings.Builder
		sb.WriteString("CASE lower(" + value + ")")
		for i, name := range m.Enum {
			fmt.Fprintf(&sb, " WHEN %s THEN %d", c.bind(strings.ToLower(name)), i)
		}
		sb.WriteString(" END")
		return sb.String()
	}
	return value
}

// operand binds a coerced value in the form expr compares against.
func (c *compiler) operand(v ir.Value) string {
	switch v := v.(type) {
	case ir.String:
		return c.bind(string(v))
	case ir.Int:
		return c.bind(int64(v))
	case ir.Uint:
		if v > math.MaxInt64 {
			return c.bind(float64(v))
		}
		return c.bind(int64(v))
	case ir.Float:
		return c.bind(float64(v))
	case ir.Bool:
		return c.bind(bool(v))
	case ir.Identifier:
		return c.bind(uuid.UUID(v).String())
	case ir.DateTime:
		return "julianday(" + c.bind(formatTime(v.Time())) + ")"
	case ir.EnumName:
		return c.bind(v.Ordinal)
	}
	return c.bind(nil)
}

func and(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return sqlTrue
	case 1:
		return kept[0]
	}
	return "(" + strings.Join(kept, " AND ") + ")"
}

func not(s string) string {
	return "NOT (" + s + ")"
}

func or(a, b string) string {
	return "(" + a + " OR " + b + ")"
}

func (c *compiler) coerce(col column, raw string) (ir.Value, bool) {
	t := col.leaf.Target()
	if t.Kind == ir.KindInvalid {
		return ir.Infer(raw), true
	}
	v, err := ir.Coerce(raw, t)
	return v, err == nil
}

func (c *compiler) coerceNullable(col column, raw string) (ir.Value, bool) {
	if col.leaf.Nullable && strings.EqualFold(strings.TrimSpace(raw), "null") {
		return ir.Null{}, true
	}
	return c.coerce(col, raw)
}

func (c *compiler) condition(col column, op filter.Operator, values []string) string {
	reach := col.reachable()

	switch op {
	case filter.IsNull:
		return and(reach, col.isNull())
	case filter.IsNotNull:
		return and(reach, not(col.isNull()))

	case filter.EqualTo, filter.NotEqualTo:
		if len(values) != 1 {
			return sqlFalse
		}
		want, ok := c.coerceNullable(col, values[0])
		if !ok {
			return sqlFalse
		}
		if ir.IsNull(want) {
			if op == filter.EqualTo {
				return and(reach, col.isNull())
			}
			return and(reach, col.typed(nil))
		}
		typed := col.typed(want)
		if op == filter.EqualTo {
			return and(reach, typed, c.scalarMatch(col, "=", want))
		}
		return and(reach, or(col.isNull(), and(typed, not(c.scalarMatch(col, "=", want)))))

	case filter.GreaterThan, filter.GreaterThanOrEqualTo, filter.LessThan, filter.LessThanOrEqualTo:
		if len(values) != 1 || col.leaf.Multi {
			return sqlFalse
		}
		want, ok := c.coerce(col, values[0])
		if !ok || !ir.Ordered(want.Kind()) {
			return sqlFalse
		}
		return and(reach, col.typed(want), c.scalarMatch(col, relational[op], want))

	case filter.Between, filter.NotBetween:
		if len(values) < 2 || col.leaf.Multi {
			return sqlFalse
		}
		low, okLow := c.coerce(col, values[0])
		high, okHigh := c.coerce(col, values[1])
		if !okLow || !okHigh || !ir.Ordered(low.Kind()) || !ir.Ordered(high.Kind()) {
			return sqlFalse
		}
		typed := col.typed(low)
		if op == filter.Between {
			return and(reach, typed, c.scalarMatch(col, ">", low), c.scalarMatch(col, "<", high))
		}
		return and(reach, typed, or(c.scalarMatch(col, "<=", low), c.scalarMatch(col, ">=", high)))

	case filter.In, filter.NotIn:
		return c.membership(col, op, values)

	case filter.Contains, filter.NotContains:
		if len(values) != 1 {
			return sqlFalse
		}
		negate := op == filter.NotContains
		switch {
		case col.leaf.Multi:
			want, ok := c.coerce(col, values[0])
			if !ok {
				return sqlFalse
			}
			exists := "EXISTS (SELECT 1 FROM json_each(doc, " + col.path + ") WHERE " +
				c.expr("value", col.leaf) + " = " + c.operand(want) + ")"
			if negate {
				exists = not(exists)
			}
			return and(reach, col.typed(nil), exists)
		case col.leaf.Kind == ir.KindString:
			found := " > 0"
			if negate {
				found = " = 0"
			}
			return and(reach, col.typed(nil), "instr("+col.raw()+", "+c.bind(values[0])+")"+found)
		}
		return sqlFalse

	case filter.StartsWith, filter.EndsWith:
		if len(values) != 1 || col.leaf.Multi || col.leaf.Kind != ir.KindString {
			return sqlFalse
		}
		affix := values[0]
		if affix == "" {
			return and(reach, col.typed(nil))
		}
		var test string
		if op == filter.StartsWith {
			test = "substr(" + col.raw() + ", 1, length(" + c.bind(affix) + ")) = " + c.bind(affix)
		} else {
			test = "substr(" + col.raw() + ", -length(" + c.bind(affix) + ")) = " + c.bind(affix)
		}
		return and(reach, col.typed(nil), test)

	case filter.Regex:
		if len(values) != 1 || col.leaf.Multi || col.leaf.Kind != ir.KindString {
			return sqlFalse
		}
		if _, err := regexp.Compile(values[0]); err != nil {
			return sqlFalse
		}
		return and(reach, col.typed(nil), col.raw()+" REGEXP "+c.bind(values[0]))
	}

	return sqlFalse
}

var relational = map[filter.Operator]string{
	filter.GreaterThan:          ">",
	filter.GreaterThanOrEqualTo: ">=",
	filter.LessThan:             "<",
	filter.LessThanOrEqualTo:    "<=",
}

// scalarMatch compares the leaf with one operand. Multi-valued leaves never
// equal a scalar.
func (c *compiler) scalarMatch(col column, cmp string, want ir.Value) string {
	if col.leaf.Multi {
		return sqlFalse
	}
	return c.expr(col.raw(), col.leaf) + " " + cmp + " " + c.operand(want)
}

func (c *compiler) membership(col column, op filter.Operator, values []string) string {
	negate := op == filter.NotIn
	reach := col.reachable()

	var set []ir.Value
	hasNull := false
	for _, raw := range values {
		v, ok := c.coerceNullable(col, raw)
		if !ok {
			if negate {
				return sqlFalse
			}
			continue
		}
		if ir.IsNull(v) {
			hasNull = true
			continue
		}
		set = append(set, v)
	}

	var typed string
	if len(set) > 0 {
		typed = col.typed(set[0])
	} else {
		typed = col.typed(nil)
	}

	var match string
	switch {
	case len(set) == 0:
		match = sqlFalse
	case col.leaf.Multi:
		match = sqlFalse
	default:
		lhs := c.expr(col.raw(), col.leaf)
		items := make([]string, len(set))
		for i, v := range set {
			items[i] = c.operand(v)
		}
		match = lhs + " IN (" + strings.Join(items, ", ") + ")"
	}

	if !negate {
		if hasNull {
			return and(reach, or(col.isNull(), and(typed, match)))
		}
		return and(reach, typed, match)
	}
	if hasNull {
		return and(reach, typed, not(match))
	}
	return and(reach, or(col.isNull(), and(typed, not(match))))
}

// sortKey renders one ORDER BY term. Values that are missing or not of the
// member's kind sort as NULL, which SQLite places first ascending.
func (c *compiler) sortKey(d sortspec.Directive) (string, bool) {
	p, ok := c.typ.ResolveExact(d.Field)
	if !ok {
		return "", false
	}
	names := p.Names()
	for _, name := range names {
		if strings.ContainsAny(name, `"`) {
			return "", false
		}
	}
	col := column{path: jsonPath(names), leaf: p.Leaf()}
	if col.leaf.Multi || !ir.Ordered(col.leaf.Kind) {
		return "", false
	}

	key := "CASE WHEN " + col.typed(nil) + " THEN " + c.expr(col.raw(), col.leaf) + " END"
	if d.Direction == sortspec.Descending {
		return key + " DESC", true
	}
	return key + " ASC", true
}

// formatTime matches the layout bound for DateTime operands.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000")
}
