package sortspec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/schema"
)

func TestNewDirective(t *testing.T) {
	testCases := []struct {
		token   string
		want    Directive
		wantErr bool
	}{
		{token: "name", want: Asc("name")},
		{token: "-name", want: Desc("name")},
		{token: "--name", want: Desc("name")},
		{token: "---name", want: Desc("name")},
		{token: "  -age ", want: Desc("age")},
		{token: "address.city", want: Asc("address.city")},
		{token: "-", wantErr: true},
		{token: "--", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			got, err := NewDirective(tc.token)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrEmptyField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		want  []Directive
	}{
		{"single", "sort=name", []Directive{Asc("name")}},
		{"double dash", "sort=--name", []Directive{Desc("name")}},
		{"dash only", "sort=-", nil},
		{"mixed", "sort=-age,name", []Directive{Desc("age"), Asc("name")}},
		{"trims and drops empties", "sort= age ,, name ,", []Directive{Asc("age"), Asc("name")}},
		{"first occurrence wins", "sort=age,-age,name", []Directive{Asc("age"), Asc("name")}},
		{"identity is case-sensitive", "sort=age,Age", []Directive{Asc("age"), Asc("Age")}},
		{"repeated parameters", "sort=age&page=2&sort=-name,-age", []Directive{Asc("age"), Desc("name")}},
		{"percent encoded", "sort=-age%2Cname", []Directive{Desc("age"), Asc("name")}},
		{"rejected characters", "sort=name;drop", nil},
		{"no sort", "filter[a]=1", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.query))
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	const query = "sort=-age,name&sort=city"
	assert.Empty(t, cmp.Diff(Parse(query), Parse(query)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "-age,name", Format([]Directive{Desc("age"), Asc("name")}))
	assert.Equal(t, "", Format(nil))
}

type person struct {
	Name string
	Age  int
	City *string
	Seq  int
}

func ptr[T any](v T) *T { return &v }

func seqs(people []person) []int {
	out := make([]int, len(people))
	for i, p := range people {
		out[i] = p.Seq
	}
	return out
}

func people() []person {
	return []person{
		{Name: "cy", Age: 30, City: ptr("Oslo"), Seq: 0},
		{Name: "ada", Age: 36, Seq: 1},
		{Name: "bob", Age: 30, City: ptr("Bergen"), Seq: 2},
		{Name: "dee", Age: 25, City: ptr("Oslo"), Seq: 3},
		{Name: "eve", Age: 30, Seq: 4},
	}
}

func TestApply(t *testing.T) {
	testCases := []struct {
		name string
		dirs []Directive
		want []int
	}{
		{"ascending", []Directive{Asc("name")}, []int{1, 2, 0, 3, 4}},
		{"descending", []Directive{Desc("age")}, []int{1, 0, 2, 4, 3}},
		{"stable on ties", []Directive{Asc("age")}, []int{3, 0, 2, 4, 1}},
		{"secondary key", []Directive{Asc("age"), Desc("name")}, []int{3, 4, 0, 2, 1}},
		{"case-insensitive field", []Directive{Asc("NAME")}, []int{1, 2, 0, 3, 4}},
		{"absent values first ascending", []Directive{Asc("city")}, []int{1, 4, 2, 0, 3}},
		{"absent values last descending", []Directive{Desc("city")}, []int{0, 3, 2, 1, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, seqs(Apply(people(), tc.dirs)))
		})
	}
}

func TestApplySkipsUnresolvableFields(t *testing.T) {
	in := people()
	withGhost := Apply(in, []Directive{Asc("ghost"), Asc("name")})
	alone := Apply(in, []Directive{Asc("name")})
	assert.Equal(t, alone, withGhost)

	assert.Equal(t, []Directive{Asc("name")}, Resolve(schema.For[person](), []Directive{Asc("ghost"), Asc("name")}))
}

func TestApplyPreservesIdentity(t *testing.T) {
	in := people()

	for _, dirs := range [][]Directive{nil, {Asc("ghost")}, {Desc("nope"), Asc("")}} {
		out := Apply(in, dirs)
		require.Len(t, out, len(in))
		assert.Same(t, &in[0], &out[0])
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := people()
	_ = Apply(in, []Directive{Asc("name")})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seqs(in))
}

func TestApplySchema(t *testing.T) {
	typ, err := schema.CompileString(`
#Row: {
	name: string
	score: int
}
`, "#Row")
	require.NoError(t, err)

	rows := []any{
		map[string]any{"name": "b", "score": 2},
		map[string]any{"name": "a", "score": 2},
		map[string]any{"name": "c", "score": 1},
	}

	sorted := ApplySchema(rows, typ, []Directive{Desc("Score"), Asc("name")})
	names := make([]string, len(sorted))
	for i, r := range sorted {
		names[i] = r.(map[string]any)["name"].(string)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	same := ApplySchema(rows, typ, []Directive{Asc("ghost")})
	assert.Same(t, &rows[0], &same[0])
	assert.Same(t, &rows[0], &ApplySchema(rows, nil, []Directive{Asc("name")})[0])
}
