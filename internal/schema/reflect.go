package schema

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/sieve/internal/ir"
)

// Enum is implemented by Go types that should be matched by member name.
// EnumNames returns the declared names in ordinal order; it is called on
// the zero value.
type Enum interface {
	EnumNames() []string
}

var (
	registry sync.Map // reflect.Type -> *Type

	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
	enumType = reflect.TypeOf((*Enum)(nil)).Elem()
)

// For returns the layout of T, building it on first use.
func For[T any]() *Type {
	return Of(reflect.TypeOf((*T)(nil)).Elem())
}

// Of returns the layout of a Go type. Pointers are followed to the struct
// they point at. Non-struct types yield a Type with no members.
//
// Layouts are registered once per type and shared; concurrent first calls
// may both build, and the first stored wins.
func Of(rt reflect.Type) *Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if t, ok := registry.Load(rt); ok {
		return t.(*Type)
	}
	t := build(rt, make(map[reflect.Type]*Type))
	actual, _ := registry.LoadOrStore(rt, t)
	return actual.(*Type)
}

func build(rt reflect.Type, building map[reflect.Type]*Type) *Type {
	if t, ok := building[rt]; ok {
		return t
	}
	if t, ok := registry.Load(rt); ok {
		return t.(*Type)
	}

	t := newType(rt.Name(), fmt.Sprintf("go:%s:%s", rt.PkgPath(), rt.String()), SourceStruct)
	building[rt] = t

	if rt.Kind() != reflect.Struct {
		return t
	}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		m := describe(f.Type, building)
		m.Name = f.Name
		m.field = i
		t.addMember(m)
	}
	return t
}

// describe maps a Go field type to a member description.
func describe(ft reflect.Type, building map[reflect.Type]*Type) Member {
	var m Member
	for ft.Kind() == reflect.Pointer {
		m.Nullable = true
		ft = ft.Elem()
	}

	if names, ok := enumNames(ft); ok {
		m.Kind = ir.KindEnum
		m.Enum = names
		return m
	}

	switch ft {
	case timeType:
		m.Kind = ir.KindDateTime
		return m
	case uuidType:
		m.Kind = ir.KindIdentifier
		return m
	}

	switch ft.Kind() {
	case reflect.Slice, reflect.Array:
		elem := describe(ft.Elem(), building)
		elem.Multi = true
		elem.Nullable = m.Nullable || ft.Kind() == reflect.Slice
		elem.Elem = nil
		return elem
	case reflect.Map:
		// Maps act as sets of their keys.
		key := describe(ft.Key(), building)
		key.Multi = true
		key.Nullable = true
		key.Elem = nil
		return key
	case reflect.Interface:
		m.Kind = ir.KindInvalid
		m.Nullable = true
	case reflect.Struct:
		m.Kind = ir.KindObject
		m.Elem = build(ft, building)
	default:
		m.Kind = scalarKind(ft.Kind())
	}
	return m
}

func scalarKind(k reflect.Kind) ir.Kind {
	switch k {
	case reflect.String:
		return ir.KindString
	case reflect.Bool:
		return ir.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ir.KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return ir.KindUint
	case reflect.Float32, reflect.Float64:
		return ir.KindFloat
	}
	return ir.KindInvalid
}

func enumNames(ft reflect.Type) ([]string, bool) {
	switch {
	case ft.Implements(enumType):
		return reflect.Zero(ft).Interface().(Enum).EnumNames(), true
	case reflect.PointerTo(ft).Implements(enumType):
		return reflect.New(ft).Interface().(Enum).EnumNames(), true
	}
	return nil, false
}
