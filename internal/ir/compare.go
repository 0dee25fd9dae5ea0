package ir

import (
	"bytes"
	"math"
	"strings"
)

// Equal reports whether a and b hold the same value. Null equals Null and
// nothing else. Numeric kinds compare by numeric value across Int, Uint and
// Float; all other kinds must match exactly.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if a.Kind().IsNumeric() && b.Kind().IsNumeric() {
		c, ok := compareNumeric(a, b)
		return ok && c == 0
	}

	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Identifier:
		y, ok := b.(Identifier)
		return ok && x == y
	case DateTime:
		y, ok := b.(DateTime)
		return ok && x.Time().Equal(y.Time())
	case EnumName:
		switch y := b.(type) {
		case EnumName:
			return x.Ordinal == y.Ordinal && strings.EqualFold(x.Name, y.Name)
		case String:
			return strings.EqualFold(x.Name, string(y))
		}
		return false
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders a relative to b, returning -1, 0 or +1. The second return
// is false when the pair is not comparable: either side is null, the kinds
// differ (numeric kinds are mutually comparable), or the kind has no order
// (Bool, Identifier, List, Object).
func Compare(a, b Value) (int, bool) {
	if IsNull(a) || IsNull(b) {
		return 0, false
	}
	if a.Kind().IsNumeric() && b.Kind().IsNumeric() {
		return compareNumeric(a, b)
	}

	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		if !ok {
			return 0, false
		}
		return strings.Compare(string(x), string(y)), true
	case DateTime:
		y, ok := b.(DateTime)
		if !ok {
			return 0, false
		}
		return x.Time().Compare(y.Time()), true
	case EnumName:
		y, ok := b.(EnumName)
		if !ok {
			return 0, false
		}
		return cmpInt(x.Ordinal, y.Ordinal), true
	case Identifier:
		// Identifiers have no semantic order but sort deterministically.
		y, ok := b.(Identifier)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	}
	return 0, false
}

// Ordered reports whether a Value of kind k supports the relational
// operators (greater/less than and ranges).
func Ordered(k Kind) bool {
	switch k {
	case KindString, KindInt, KindUint, KindFloat, KindDateTime, KindEnum:
		return true
	}
	return false
}

func compareNumeric(a, b Value) (int, bool) {
	switch x := a.(type) {
	case Int:
		switch y := b.(type) {
		case Int:
			return cmpInt(int64(x), int64(y)), true
		case Uint:
			if x < 0 {
				return -1, true
			}
			return cmpUint(uint64(x), uint64(y)), true
		case Float:
			return cmpFloat(float64(x), float64(y))
		}
	case Uint:
		switch y := b.(type) {
		case Uint:
			return cmpUint(uint64(x), uint64(y)), true
		case Int:
			if y < 0 {
				return 1, true
			}
			return cmpUint(uint64(x), uint64(y)), true
		case Float:
			return cmpFloat(float64(x), float64(y))
		}
	case Float:
		switch y := b.(type) {
		case Float:
			return cmpFloat(float64(x), float64(y))
		case Int:
			return cmpFloat(float64(x), float64(y))
		case Uint:
			return cmpFloat(float64(x), float64(y))
		}
	}
	return 0, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) (int, bool) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}
