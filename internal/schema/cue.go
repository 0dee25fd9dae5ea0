package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sieve/internal/ir"
)

// Error is a schema compilation error with source position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// attrKey is the CUE attribute that refines a string member's kind:
//
//	id:        string @sieve(identifier)
//	createdAt: string @sieve(datetime)
const attrKey = "sieve"

// FromCUE builds a record layout from a CUE struct, usually a definition
// such as #Person. Optional fields and fields that admit null are
// nullable. A disjunction of string literals is an enum whose ordinals
// follow declaration order.
func FromCUE(v cue.Value) (*Type, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name := ""
	if sels := v.Path().Selectors(); len(sels) > 0 {
		name = strings.TrimPrefix(sels[len(sels)-1].String(), "#")
	}

	t, err := fromStruct(v, name)
	if err != nil {
		return nil, err
	}

	layout, err := layoutOf(t)
	if err != nil {
		return nil, err
	}
	t.id = "cue:" + name + ":" + ir.MustHash(ir.DomainSchema, layout)
	return t, nil
}

func fromStruct(v cue.Value, name string) (*Type, error) {
	if v.IncompleteKind()&cue.StructKind == 0 {
		return nil, &Error{
			Field:   name,
			Message: fmt.Sprintf("expected a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	t := newType(name, "", SourceRecord)

	iter, err := v.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		m, err := memberFromCUE(iter.Value(), label)
		if err != nil {
			return nil, err
		}
		m.Name = label
		if iter.IsOptional() {
			m.Nullable = true
		}
		t.addMember(m)
	}
	return t, nil
}

func memberFromCUE(v cue.Value, field string) (Member, error) {
	var m Member

	kind := v.IncompleteKind()
	if kind&cue.NullKind != 0 {
		m.Nullable = true
		kind &^= cue.NullKind
	}

	switch kind {
	case cue.StringKind:
		m.Kind = ir.KindString
		if names := stringLiterals(v); len(names) > 1 {
			m.Kind = ir.KindEnum
			m.Enum = names
		}
	case cue.IntKind:
		m.Kind = ir.KindInt
	case cue.FloatKind, cue.NumberKind:
		m.Kind = ir.KindFloat
	case cue.BoolKind:
		m.Kind = ir.KindBool
	case cue.ListKind:
		elem, err := memberFromCUE(v.LookupPath(cue.MakePath(cue.AnyIndex)), field)
		if err != nil {
			return m, err
		}
		elem.Multi = true
		elem.Nullable = m.Nullable
		elem.Elem = nil
		return elem, nil
	case cue.StructKind:
		nested, err := fromStruct(v, field)
		if err != nil {
			return m, err
		}
		m.Kind = ir.KindObject
		m.Elem = nested
	case cue.BottomKind:
		// A bare list type such as [...] has no element constraint.
		m.Kind = ir.KindInvalid
	default:
		return m, &Error{
			Field:   field,
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	attr := v.Attribute(attrKey)
	if attr.Err() == nil {
		refined, err := attr.String(0)
		if err != nil {
			return m, formatCUEError(err)
		}
		k := ir.ParseKind(strings.TrimSpace(refined))
		if k == ir.KindInvalid {
			return m, &Error{
				Field:   field,
				Message: fmt.Sprintf("unknown @%s kind %q", attrKey, refined),
				Pos:     v.Pos(),
			}
		}
		m.Kind = k
	}

	return m, nil
}

// stringLiterals returns the members of a disjunction of concrete strings,
// or nil when v is anything else.
func stringLiterals(v cue.Value) []string {
	op, args := v.Expr()
	if op != cue.OrOp {
		return nil
	}
	var names []string
	for _, arg := range args {
		if arg.IncompleteKind() == cue.NullKind {
			continue
		}
		if !arg.IsConcrete() {
			return nil
		}
		s, err := arg.String()
		if err != nil {
			return nil
		}
		names = append(names, s)
	}
	return names
}

// layoutOf encodes the member layout for hashing.
func layoutOf(t *Type) (ir.Value, error) {
	members := make(ir.List, 0, len(t.members))
	for _, m := range t.members {
		obj := ir.Object{
			"name":     ir.String(m.Name),
			"kind":     ir.String(m.Kind.String()),
			"multi":    ir.Bool(m.Multi),
			"nullable": ir.Bool(m.Nullable),
		}
		if len(m.Enum) > 0 {
			names := make(ir.List, len(m.Enum))
			for i, n := range m.Enum {
				names[i] = ir.String(n)
			}
			obj["enum"] = names
		}
		if m.Elem != nil {
			nested, err := layoutOf(m.Elem)
			if err != nil {
				return nil, err
			}
			obj["elem"] = nested
		}
		members = append(members, obj)
	}
	return members, nil
}

// CompileString compiles CUE source and builds the layout of the named
// definition (for example "#Person").
func CompileString(src, definition string) (*Type, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return lookupDefinition(v, definition)
}

// LoadFile loads a single CUE file and builds the layout of the named
// definition.
func LoadFile(path, definition string) (*Type, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{filepath.Base(abs)}, &load.Config{Dir: filepath.Dir(abs)})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", path)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, inst.Err)
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return lookupDefinition(v, definition)
}

func lookupDefinition(v cue.Value, definition string) (*Type, error) {
	if !strings.HasPrefix(definition, "#") {
		definition = "#" + definition
	}
	def := v.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return nil, &Error{
			Field:   definition,
			Message: "definition not found",
			Pos:     v.Pos(),
		}
	}
	return FromCUE(def)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
