package filter

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/grammar"
)

var cmpNodes = cmp.AllowUnexported(Condition{}, Group{})

func cond(name, path string, op Operator, memberOf string, values ...string) *Condition {
	return NewCondition(name, path, op, values, memberOf)
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		want  *Group
	}{
		{
			name:  "single equality",
			query: "filter[name][$eq]=Bob",
			want: NewGroup("root", And, "",
				cond("name-0", "name", EqualTo, "", "Bob"),
			),
		},
		{
			name:  "nothing matches",
			query: "page=1&size=20",
			want:  NewGroup("root", And, ""),
		},
		{
			name:  "empty text",
			query: "",
			want:  NewGroup("root", And, ""),
		},
		{
			name:  "per-path index in first-seen order",
			query: "filter[a]=1&filter[b]=2&filter[a]=3",
			want: NewGroup("root", And, "",
				cond("a-0", "a", EqualTo, "", "1"),
				cond("a-1", "a", EqualTo, "", "3"),
				cond("b-0", "b", EqualTo, "", "2"),
			),
		},
		{
			name:  "implicit or group is returned directly",
			query: "filter[age][gt][or]=65&filter[age][lt][or]=18",
			want: NewGroup("age-or-group", Or, "",
				cond("age-0", "age", GreaterThan, "age-or-group", "65"),
				cond("age-1", "age", LessThan, "age-or-group", "18"),
			),
		},
		{
			name:  "implicit and group",
			query: "filter[age][gt][AND]=18&filter[name]=Bob",
			want: NewGroup("root", And, "",
				NewGroup("age-and-group", And, "",
					cond("age-0", "age", GreaterThan, "age-and-group", "18"),
				),
				cond("name-0", "name", EqualTo, "", "Bob"),
			),
		},
		{
			name: "explicit group with members",
			query: "filter[adults][group][conjunction]=Or" +
				"&filter[adults][0][age][gte]=18" +
				"&filter[adults][1][name][eq]=Bob" +
				"&filter[city]=Oslo",
			want: NewGroup("root", And, "",
				NewGroup("adults", Or, "",
					cond("age-0", "age", GreaterThanOrEqualTo, "adults", "18"),
					cond("name-0", "name", EqualTo, "adults", "Bob"),
				),
				cond("city-0", "city", EqualTo, "", "Oslo"),
			),
		},
		{
			name: "member ordinals do not reorder or rename",
			query: "filter[g][group][conjunction]=or" +
				"&filter[g][1][address][city]=Oslo" +
				"&filter[g][0][address][city]=Bergen",
			want: NewGroup("g", Or, "",
				cond("address.city-0", "address.city", EqualTo, "g", "Oslo"),
				cond("address.city-1", "address.city", EqualTo, "g", "Bergen"),
			),
		},
		{
			name: "nested group backfills undeclared parent",
			query: "filter[inner][group][memberOf]=outer" +
				"&filter[inner][0][a]=1" +
				"&filter[outer][0][b]=2",
			want: NewGroup("outer", And, "",
				NewGroup("inner", And, "outer",
					cond("a-0", "a", EqualTo, "inner", "1"),
				),
				cond("b-0", "b", EqualTo, "outer", "2"),
			),
		},
		{
			name:  "explicit memberOf with or suffix infers Or",
			query: "filter[a][eq][and][mine-or-group]=1&filter[b][eq][and][mine-or-group]=2",
			want: NewGroup("mine-or-group", Or, "",
				cond("a-0", "a", EqualTo, "mine-or-group", "1"),
				cond("b-0", "b", EqualTo, "mine-or-group", "2"),
			),
		},
		{
			name:  "multi-valued operators split on comma",
			query: "filter[age][between]=18, 65&filter[tag][in]=a,,b",
			want: NewGroup("root", And, "",
				cond("age-0", "age", Between, "", "18", "65"),
				cond("tag-0", "tag", In, "", "a", "b"),
			),
		},
		{
			name:  "single-valued operators keep commas",
			query: "filter[name][contains]=a,b",
			want: NewGroup("root", And, "",
				cond("name-0", "name", Contains, "", "a,b"),
			),
		},
		{
			name:  "null operators drop values",
			query: "filter[deletedAt][null]=anything",
			want: NewGroup("root", And, "",
				cond("deletedAt-0", "deletedAt", IsNull, ""),
			),
		},
		{
			name:  "dotted paths normalize",
			query: "filter[.address..city.]=Oslo&filter[address.city]=Bergen",
			want: NewGroup("root", And, "",
				cond("address.city-0", "address.city", EqualTo, "", "Oslo"),
				cond("address.city-1", "address.city", EqualTo, "", "Bergen"),
			),
		},
		{
			name:  "unknown operator defaults to equality",
			query: "filter[name][$like]=Bob",
			want: NewGroup("root", And, "",
				cond("name-0", "name", EqualTo, "", "Bob"),
			),
		},
		{
			name:  "bracket segments join into one path",
			query: "filter[Address][City][eq]=London&filter[address.city][ne]=Oslo",
			want: NewGroup("root", And, "",
				cond("Address.City-0", "Address.City", EqualTo, "", "London"),
				cond("address.city-0", "address.city", NotEqualTo, "", "Oslo"),
			),
		},
		{
			name:  "unknown trailing segment is part of the path",
			query: "filter[name][like]=Bob",
			want: NewGroup("root", And, "",
				cond("name.like-0", "name.like", EqualTo, "", "Bob"),
			),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.query)
			if diff := cmp.Diff(tc.want, got, cmpNodes); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestParseCycles(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		want  *Group
	}{
		{
			name: "two groups referencing each other are dropped with their members",
			query: "filter[g1][group][memberOf]=g2" +
				"&filter[g2][group][memberOf]=g1" +
				"&filter[g1][0][x]=1" +
				"&filter[y]=2",
			want: NewGroup("root", And, "",
				cond("y-0", "y", EqualTo, "", "2"),
			),
		},
		{
			name:  "self reference",
			query: "filter[g][group][memberOf]=g&filter[g][0][x]=1&filter[z]=1",
			want: NewGroup("root", And, "",
				cond("z-0", "z", EqualTo, "", "1"),
			),
		},
		{
			name: "healthy branch survives next to a cycle",
			query: "filter[a][group][memberOf]=b" +
				"&filter[b][group][memberOf]=a" +
				"&filter[ok][group][conjunction]=or" +
				"&filter[ok][0][n]=1",
			want: NewGroup("ok", Or, "",
				cond("n-0", "n", EqualTo, "ok", "1"),
			),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.query)
			if diff := cmp.Diff(tc.want, got, cmpNodes); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestMemberOfNamingAConditionKeepsMemberAtRoot(t *testing.T) {
	got := Parse("filter[a]=1&filter[b][eq][and][a-0]=2")

	want := NewGroup("root", And, "",
		cond("a-0", "a", EqualTo, "", "1"),
		cond("b-0", "b", EqualTo, "a-0", "2"),
	)
	assert.Empty(t, cmp.Diff(want, got, cmpNodes))
}

func TestRepeatedGroupDeclarationsMerge(t *testing.T) {
	got := Parse("filter[g][group][memberOf]=outer&filter[g][group][conjunction]=or&filter[g][0][x]=1")

	outer := got
	require.Equal(t, "outer", outer.Name())
	require.Equal(t, 1, outer.Len())

	g, ok := outer.Children()[0].(*Group)
	require.True(t, ok)
	assert.Equal(t, "g", g.Name())
	assert.Equal(t, Or, g.Conjunction())
	assert.Equal(t, "outer", g.MemberOf())
}

func TestParseIsIdempotent(t *testing.T) {
	query := "filter[adults][group][conjunction]=Or&filter[adults][0][age][gte]=18&filter[name][in]=a,b&filter[x][lt][or]=3"

	first := Parse(query)
	second := Parse(query)

	assert.Empty(t, cmp.Diff(first, second, cmpNodes))
	assert.Equal(t, Signature(first), Signature(second))
}

func TestParserOptions(t *testing.T) {
	m := grammar.NewMatcher(grammar.WithGrammar(grammar.NewDefault(grammar.Settings{FilterKey: "where"})))
	p := NewParser(WithMatcher(m), WithRootName("all"))

	got := p.Parse("where[a]=1&filter[b]=2")
	want := NewGroup("all", And, "", cond("a-0", "a", EqualTo, "", "1"))
	assert.Empty(t, cmp.Diff(want, got, cmpNodes))

	assert.Equal(t, "root", NewParser(WithRootName("  ")).Parse("").Name())
}

func TestBuildSkipsEmptyPaths(t *testing.T) {
	got := NewParser().Build([]grammar.Record{
		{Path: []string{".."}, Value: "x"},
		{Path: []string{"a"}, Value: "1"},
	})
	want := NewGroup("root", And, "", cond("a-0", "a", EqualTo, "", "1"))
	assert.Empty(t, cmp.Diff(want, got, cmpNodes))
}

func TestNodesAreImmutable(t *testing.T) {
	values := []string{"a", "b"}
	c := NewCondition("x-0", "x", In, values, "")
	values[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, c.Values())

	got := c.Values()
	got[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, c.Values())

	g := NewGroup("g", And, "", c)
	children := g.Children()
	children[0] = nil
	assert.Equal(t, c, g.Children()[0])
}

func TestParseGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tree := Parse("filter[adults][group][conjunction]=Or" +
		"&filter[adults][0][age][gte]=18" +
		"&filter[adults][1][tags][in]=staff,admin" +
		"&filter[deletedAt][null]=")

	data, err := json.MarshalIndent(tree, "", "  ")
	require.NoError(t, err)
	g.Assert(t, "adults_tree", data)

	g.Assert(t, "adults_outline", []byte(Format(tree)))
}

func TestJSONRoundTrip(t *testing.T) {
	tree := Parse("filter[g][group][conjunction]=or&filter[g][0][a][between]=1,2&filter[b][notnull]=")

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	back, err := UnmarshalNode(data)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(Node(tree), back, cmpNodes))

	_, err = UnmarshalNode([]byte(`{"type":"bogus","name":"x"}`))
	assert.Error(t, err)
	_, err = UnmarshalNode([]byte(`{"type":"condition","name":"x","operator":"nope"}`))
	assert.Error(t, err)
}
