package ir

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
)

// Kind identifies the shape a member value is coerced to.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindIdentifier
	KindDateTime
	KindEnum
	KindList
	KindNull
	KindObject
)

var kindNames = map[Kind]string{
	KindInvalid:    "invalid",
	KindString:     "string",
	KindInt:        "int",
	KindUint:       "uint",
	KindFloat:      "float",
	KindBool:       "bool",
	KindIdentifier: "identifier",
	KindDateTime:   "datetime",
	KindEnum:       "enum",
	KindList:       "list",
	KindNull:       "null",
	KindObject:     "object",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps a kind name back to its Kind. Unknown names yield KindInvalid.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindInvalid
}

// IsNumeric reports whether values of this kind order numerically.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindUint || k == KindFloat
}

// Value is a sealed interface over the member value variants.
// Only Null, String, Int, Uint, Float, Bool, Identifier, DateTime, EnumName,
// List and Object implement it.
type Value interface {
	Kind() Kind
	irValue()
}

// Null is the absent value. Null equals Null.
type Null struct{}

func (Null) irValue()   {}
func (Null) Kind() Kind { return KindNull }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text value, compared ordinally.
type String string

func (String) irValue()   {}
func (String) Kind() Kind { return KindString }

// Int is a signed integer value.
type Int int64

func (Int) irValue()   {}
func (Int) Kind() Kind { return KindInt }

// Uint is an unsigned integer value.
type Uint uint64

func (Uint) irValue()   {}
func (Uint) Kind() Kind { return KindUint }

// Float is a floating point value.
type Float float64

func (Float) irValue()   {}
func (Float) Kind() Kind { return KindFloat }

// Bool is a boolean value. Bools are not ordered.
type Bool bool

func (Bool) irValue()   {}
func (Bool) Kind() Kind { return KindBool }

// Identifier is a GUID-like identifier. Identifiers are not ordered.
type Identifier uuid.UUID

func (Identifier) irValue()   {}
func (Identifier) Kind() Kind { return KindIdentifier }

func (id Identifier) String() string {
	return uuid.UUID(id).String()
}

// MarshalJSON implements json.Marshaler for Identifier.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// DateTime is an instant in time, ordered chronologically.
type DateTime time.Time

func (DateTime) irValue()   {}
func (DateTime) Kind() Kind { return KindDateTime }

// Time returns the underlying time.Time.
func (d DateTime) Time() time.Time {
	return time.Time(d)
}

// MarshalJSON implements json.Marshaler for DateTime.
func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time().UTC().Format(time.RFC3339Nano))
}

// EnumName is a named enumeration member. Ordering follows Ordinal.
type EnumName struct {
	Name    string
	Ordinal int64
}

func (EnumName) irValue()   {}
func (EnumName) Kind() Kind { return KindEnum }

// MarshalJSON implements json.Marshaler for EnumName.
func (e EnumName) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Name)
}

// List is an ordered sequence of values. Lists are not ordered themselves.
type List []Value

func (List) irValue()   {}
func (List) Kind() Kind { return KindList }

// Object is a keyed document. It only appears in canonical documents
// (signatures, schema identities), never as a coerced member value.
type Object map[string]Value

func (Object) irValue()   {}
func (Object) Kind() Kind { return KindObject }

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's native string ordering compares UTF-8 bytes, which differs for
// characters outside the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// IsNull reports whether v is absent: a nil interface or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}
