package filter

import (
	"fmt"
	"strings"
)

// Operator is the closed set of tests a Condition may apply.
//
// If you add an Operator, update the predicate compiler and the SQL adapter
// as well. Go does not enforce exhaustive switches on "enum" types.
type Operator int

const (
	EqualTo Operator = iota
	NotEqualTo
	GreaterThan
	GreaterThanOrEqualTo
	LessThan
	LessThanOrEqualTo
	Contains
	NotContains
	In
	NotIn
	// Between is exclusive: low < member < high.
	Between
	// NotBetween is the complement of Between: member <= low || member >= high.
	NotBetween
	StartsWith
	EndsWith
	Regex
	IsNull
	IsNotNull
)

var operatorNames = [...]string{
	EqualTo:              "EqualTo",
	NotEqualTo:           "NotEqualTo",
	GreaterThan:          "GreaterThan",
	GreaterThanOrEqualTo: "GreaterThanOrEqualTo",
	LessThan:             "LessThan",
	LessThanOrEqualTo:    "LessThanOrEqualTo",
	Contains:             "Contains",
	NotContains:          "NotContains",
	In:                   "In",
	NotIn:                "NotIn",
	Between:              "Between",
	NotBetween:           "NotBetween",
	StartsWith:           "StartsWith",
	EndsWith:             "EndsWith",
	Regex:                "Regex",
	IsNull:               "IsNull",
	IsNotNull:            "IsNotNull",
}

// aliases maps lower-cased operator tokens to operators. Direct enum names
// are matched before this table is consulted.
var aliases = map[string]Operator{
	"eq":          EqualTo,
	"ne":          NotEqualTo,
	"gt":          GreaterThan,
	"ge":          GreaterThanOrEqualTo,
	"gte":         GreaterThanOrEqualTo,
	"lt":          LessThan,
	"le":          LessThanOrEqualTo,
	"lte":         LessThanOrEqualTo,
	"contains":    Contains,
	"notcontains": NotContains,
	"in":          In,
	"notin":       NotIn,
	"between":     Between,
	"notbetween":  NotBetween,
	"startswith":  StartsWith,
	"endswith":    EndsWith,
	"regex":       Regex,
	"null":        IsNull,
	"notnull":     IsNotNull,
}

// Operators returns every operator in declaration order.
func Operators() []Operator {
	ops := make([]Operator, len(operatorNames))
	for i := range operatorNames {
		ops[i] = Operator(i)
	}
	return ops
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// MarshalText encodes the operator as its enum name.
func (o Operator) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(operatorNames) {
		return nil, fmt.Errorf("invalid operator %d", int(o))
	}
	return []byte(operatorNames[o]), nil
}

// UnmarshalText accepts enum names and aliases. Unlike ParseOperator it
// rejects unknown tokens.
func (o *Operator) UnmarshalText(text []byte) error {
	op, ok := LookupOperator(string(text))
	if !ok {
		return fmt.Errorf("unknown operator %q", string(text))
	}
	*o = op
	return nil
}

// LookupOperator resolves a textual operator token. The direct enum name is
// tried first, then the alias table. Matching is case-insensitive and a
// single leading "$" is ignored.
func LookupOperator(token string) (Operator, bool) {
	token = strings.TrimPrefix(strings.TrimSpace(token), "$")
	if token == "" {
		return EqualTo, false
	}
	for i, name := range operatorNames {
		if strings.EqualFold(name, token) {
			return Operator(i), true
		}
	}
	op, ok := aliases[strings.ToLower(token)]
	return op, ok
}

// ParseOperator is LookupOperator with unrecognized tokens defaulting to
// EqualTo.
func ParseOperator(token string) Operator {
	if op, ok := LookupOperator(token); ok {
		return op
	}
	return EqualTo
}

// MultiValued reports whether the operator takes a comma-separated value
// list.
func (o Operator) MultiValued() bool {
	switch o {
	case In, NotIn, Between, NotBetween:
		return true
	}
	return false
}

// Valueless reports whether the operator ignores supplied values.
func (o Operator) Valueless() bool {
	return o == IsNull || o == IsNotNull
}

// Conjunction combines a Group's children.
type Conjunction int

const (
	And Conjunction = iota
	Or
)

func (c Conjunction) String() string {
	if c == Or {
		return "Or"
	}
	return "And"
}

// MarshalText encodes the conjunction as "And" or "Or".
func (c Conjunction) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "and" or "or" in any case.
func (c *Conjunction) UnmarshalText(text []byte) error {
	conj, ok := ParseConjunction(string(text))
	if !ok {
		return fmt.Errorf("unknown conjunction %q", string(text))
	}
	*c = conj
	return nil
}

// ParseConjunction resolves "and" / "or" case-insensitively.
func ParseConjunction(s string) (Conjunction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and":
		return And, true
	case "or":
		return Or, true
	}
	return And, false
}
