package filter

import (
	"fmt"
	"regexp"
)

// ValidationResult lists structural problems found in a tree.
//
// None of these stop a tree from compiling: the affected condition simply
// never matches. They exist so callers can surface likely mistakes.
type ValidationResult struct {
	// Valid is true when no warnings were produced.
	Valid bool

	Warnings []string
}

// Validate inspects a tree for conditions that can never match and groups
// that contribute nothing.
//
// Validate is a pure function with no side effects.
func Validate(node Node) ValidationResult {
	v := &validator{warnings: []string{}}
	if isNil(node) {
		v.addWarning("nil filter tree")
	}

	Walk(node, func(n Node, state TraversalState) {
		switch state {
		case TraversalStateEnter:
			v.validateGroup(n.(*Group))
		case TraversalStateNone:
			v.validateCondition(n.(*Condition))
		}
	})

	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateGroup(g *Group) {
	if len(g.children) == 0 && g.memberOf != "" {
		v.addWarning("group %q has no children", g.name)
	}
}

func (v *validator) validateCondition(c *Condition) {
	switch c.op {
	case Between, NotBetween:
		if len(c.values) != 2 {
			v.addWarning("condition %q: %s needs exactly two values, got %d", c.name, c.op, len(c.values))
		}
	case In, NotIn:
		if len(c.values) == 0 {
			v.addWarning("condition %q: %s has an empty value list", c.name, c.op)
		}
	case Regex:
		if len(c.values) == 1 {
			if _, err := regexp.Compile(c.values[0]); err != nil {
				v.addWarning("condition %q: invalid pattern: %v", c.name, err)
			}
		}
	}
}
