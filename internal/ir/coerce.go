package ir

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrCoerce is returned when a raw token cannot be represented in the
// requested kind. Use errors.Is to detect it through wrapping.
var ErrCoerce = errors.New("cannot coerce value")

// Target describes the statically resolved type a raw token is coerced to.
type Target struct {
	Kind Kind

	// Enum lists the declared member names of an enumeration in ordinal
	// order. Only consulted when Kind is KindEnum.
	Enum []string
}

// DateTimeLayouts are the layouts accepted for KindDateTime, tried in order.
var DateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts a raw query token into a Value of the target kind.
// It never panics; any failure is reported as an error wrapping ErrCoerce.
func Coerce(raw string, t Target) (Value, error) {
	s := strings.TrimSpace(raw)

	switch t.Kind {
	case KindString:
		// Strings pass through untrimmed.
		return String(raw), nil

	case KindInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, coerceErr(raw, t.Kind, err)
		}
		return Int(n), nil

	case KindUint:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, coerceErr(raw, t.Kind, err)
		}
		return Uint(n), nil

	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, coerceErr(raw, t.Kind, err)
		}
		return Float(f), nil

	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, coerceErr(raw, t.Kind, err)
		}
		return Bool(b), nil

	case KindIdentifier:
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, coerceErr(raw, t.Kind, err)
		}
		return Identifier(id), nil

	case KindDateTime:
		for _, layout := range DateTimeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return DateTime(ts), nil
			}
		}
		return nil, coerceErr(raw, t.Kind, fmt.Errorf("no layout matched"))

	case KindEnum:
		return coerceEnum(s, t.Enum)

	default:
		return nil, coerceErr(raw, t.Kind, fmt.Errorf("unsupported target kind"))
	}
}

// coerceEnum resolves an enum token by declared name (case-insensitive) or
// by ordinal.
func coerceEnum(s string, names []string) (Value, error) {
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return EnumName{Name: name, Ordinal: int64(i)}, nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= 0 && n < int64(len(names)) {
			return EnumName{Name: names[n], Ordinal: n}, nil
		}
		if len(names) == 0 {
			return EnumName{Name: s, Ordinal: n}, nil
		}
	}
	return nil, coerceErr(s, KindEnum, fmt.Errorf("not a declared member"))
}

// Infer gives a raw token with no declared kind the narrowest of Int,
// Float, Bool or String.
func Infer(raw string) Value {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return Bool(b)
	}
	return String(raw)
}

func coerceErr(raw string, k Kind, cause error) error {
	return fmt.Errorf("%w %q to %s: %v", ErrCoerce, raw, k, cause)
}

// FromAny converts a member value read from an element into a Value of the
// target kind. The second return is false when v is absent (nil, nil
// pointer) or cannot be represented in the target kind.
//
// Text values are coerced with Coerce, so records decoded from YAML or JSON
// (where dates and identifiers arrive as strings) compare the same way as
// typed Go fields.
func FromAny(v any, t Target) (Value, bool) {
	if v == nil {
		return Null{}, false
	}
	if val, ok := v.(Value); ok {
		return val, !IsNull(val)
	}

	switch x := v.(type) {
	case string:
		if t.Kind == KindString || t.Kind == KindInvalid {
			return String(x), true
		}
		val, err := Coerce(x, t)
		return val, err == nil
	case time.Time:
		return DateTime(x), true
	case uuid.UUID:
		return Identifier(x), true
	case fmt.Stringer:
		if t.Kind == KindEnum || t.Kind == KindIdentifier {
			val, err := Coerce(x.String(), t)
			if err == nil {
				return val, true
			}
		}
	}

	return fromReflect(reflect.ValueOf(v), t)
}

func fromReflect(rv reflect.Value, t Target) (Value, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null{}, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return FromAny(rv.String(), t)
	case reflect.Bool:
		return Bool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if t.Kind == KindEnum {
			return enumFromOrdinal(n, t.Enum), true
		}
		return Int(n), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if t.Kind == KindEnum && n <= math.MaxInt64 {
			return enumFromOrdinal(int64(n), t.Enum), true
		}
		return Uint(n), true
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}, false
		}
		elem := Target{Kind: t.Kind, Enum: t.Enum}
		list := make(List, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if item, ok := FromAny(rv.Index(i).Interface(), elem); ok {
				list = append(list, item)
			} else {
				list = append(list, Null{})
			}
		}
		return list, true
	case reflect.Map:
		if rv.IsNil() {
			return Null{}, false
		}
		// Sets modelled as map[K]struct{} or map[K]bool contribute their keys.
		elem := Target{Kind: t.Kind, Enum: t.Enum}
		list := make(List, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			if item, ok := FromAny(iter.Key().Interface(), elem); ok {
				list = append(list, item)
			}
		}
		return list, true
	}
	return Null{}, false
}

func enumFromOrdinal(n int64, names []string) EnumName {
	if n >= 0 && n < int64(len(names)) {
		return EnumName{Name: names[n], Ordinal: n}
	}
	return EnumName{Name: strconv.FormatInt(n, 10), Ordinal: n}
}
