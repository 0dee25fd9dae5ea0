package ir

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that every variant implements Value.
	var _ Value = Null{}
	var _ Value = String("a")
	var _ Value = Int(1)
	var _ Value = Uint(1)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Identifier(uuid.Nil)
	var _ Value = DateTime(time.Time{})
	var _ Value = EnumName{Name: "Active"}
	var _ Value = List{Int(1)}
	var _ Value = Object{"k": String("v")}
}

func TestKindRoundTrip(t *testing.T) {
	for k, name := range kindNames {
		assert.Equal(t, k, ParseKind(name))
		assert.Equal(t, name, k.String())
	}
	assert.Equal(t, KindInvalid, ParseKind("decimal"))
}

func TestCoerce(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	testCases := []struct {
		name   string
		raw    string
		target Target
		want   Value
	}{
		{"string passes through", " Bob ", Target{Kind: KindString}, String(" Bob ")},
		{"int", "42", Target{Kind: KindInt}, Int(42)},
		{"negative int", "-7", Target{Kind: KindInt}, Int(-7)},
		{"uint", "7", Target{Kind: KindUint}, Uint(7)},
		{"float", "2.5", Target{Kind: KindFloat}, Float(2.5)},
		{"bool", "TRUE", Target{Kind: KindBool}, Bool(true)},
		{"identifier", id.String(), Target{Kind: KindIdentifier}, Identifier(id)},
		{"date", "2024-03-01", Target{Kind: KindDateTime}, DateTime(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{"rfc3339", "2024-03-01T10:00:00Z", Target{Kind: KindDateTime}, DateTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))},
		{"enum by name", "active", Target{Kind: KindEnum, Enum: []string{"Pending", "Active"}}, EnumName{Name: "Active", Ordinal: 1}},
		{"enum by ordinal", "0", Target{Kind: KindEnum, Enum: []string{"Pending", "Active"}}, EnumName{Name: "Pending", Ordinal: 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.raw, tc.target)
			require.NoError(t, err)
			assert.True(t, Equal(tc.want, got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestCoerceFailures(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		target Target
	}{
		{"int from text", "abc", Target{Kind: KindInt}},
		{"uint from negative", "-1", Target{Kind: KindUint}},
		{"bool from text", "maybe", Target{Kind: KindBool}},
		{"identifier from text", "not-a-guid", Target{Kind: KindIdentifier}},
		{"datetime from text", "yesterday", Target{Kind: KindDateTime}},
		{"enum undeclared", "Archived", Target{Kind: KindEnum, Enum: []string{"Pending"}}},
		{"enum ordinal out of range", "5", Target{Kind: KindEnum, Enum: []string{"Pending"}}},
		{"unsupported kind", "x", Target{Kind: KindList}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coerce(tc.raw, tc.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCoerce))
		})
	}
}

func TestInfer(t *testing.T) {
	assert.Equal(t, Int(42), Infer(" 42 "))
	assert.Equal(t, Float(4.5), Infer("4.5"))
	assert.Equal(t, Bool(true), Infer("true"))
	assert.Equal(t, String("Ada "), Infer("Ada "))
}

type status int

func TestFromAny(t *testing.T) {
	name := "Ada"
	var nilPtr *string

	t.Run("pointer is dereferenced", func(t *testing.T) {
		v, ok := FromAny(&name, Target{Kind: KindString})
		require.True(t, ok)
		assert.Equal(t, String("Ada"), v)
	})

	t.Run("nil pointer is absent", func(t *testing.T) {
		v, ok := FromAny(nilPtr, Target{Kind: KindString})
		assert.False(t, ok)
		assert.True(t, IsNull(v))
	})

	t.Run("string coerced to datetime", func(t *testing.T) {
		v, ok := FromAny("2024-01-02", Target{Kind: KindDateTime})
		require.True(t, ok)
		assert.Equal(t, KindDateTime, v.Kind())
	})

	t.Run("int enum uses declared names", func(t *testing.T) {
		v, ok := FromAny(status(1), Target{Kind: KindEnum, Enum: []string{"Pending", "Active"}})
		require.True(t, ok)
		assert.Equal(t, EnumName{Name: "Active", Ordinal: 1}, v)
	})

	t.Run("slice becomes list", func(t *testing.T) {
		v, ok := FromAny([]string{"a", "b"}, Target{Kind: KindString})
		require.True(t, ok)
		assert.Equal(t, List{String("a"), String("b")}, v)
	})

	t.Run("set keys become list", func(t *testing.T) {
		v, ok := FromAny(map[int]struct{}{3: {}}, Target{Kind: KindInt})
		require.True(t, ok)
		assert.Equal(t, List{Int(3)}, v)
	})
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Null{}, nil))
	assert.True(t, Equal(Null{}, Null{}))
	assert.False(t, Equal(Null{}, String("")))
	assert.True(t, Equal(Int(3), Float(3)))
	assert.True(t, Equal(Uint(3), Int(3)))
	assert.False(t, Equal(Int(-1), Uint(1)))
	assert.False(t, Equal(String("3"), Int(3)))
	assert.True(t, Equal(EnumName{Name: "Active", Ordinal: 1}, String("active")))
	assert.True(t, Equal(List{Int(1), String("a")}, List{Int(1), String("a")}))
}

func TestCompare(t *testing.T) {
	c, ok := Compare(Int(1), Float(1.5))
	require.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare(String("b"), String("a"))
	require.True(t, ok)
	assert.Equal(t, 1, c)

	early := DateTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := DateTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	c, ok = Compare(early, late)
	require.True(t, ok)
	assert.Equal(t, -1, c)

	_, ok = Compare(Bool(true), Bool(false))
	assert.False(t, ok, "bools are not ordered")

	_, ok = Compare(Null{}, Int(1))
	assert.False(t, ok, "null is not comparable")

	_, ok = Compare(String("1"), Int(1))
	assert.False(t, ok, "mixed kinds are not comparable")
}

func TestOrdered(t *testing.T) {
	assert.True(t, Ordered(KindInt))
	assert.True(t, Ordered(KindDateTime))
	assert.False(t, Ordered(KindBool))
	assert.False(t, Ordered(KindIdentifier))
	assert.False(t, Ordered(KindList))
}
