package grammar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilters(t *testing.T) {
	m := NewMatcher()

	testCases := []struct {
		name  string
		query string
		want  []Record
	}{
		{
			name:  "path and operator",
			query: "filter[name][$eq]=Bob",
			want:  []Record{{Path: []string{"name"}, Operator: "$eq", Value: "Bob", Index: "0"}},
		},
		{
			name:  "bare path is implicit equality",
			query: "filter[name]=Bob",
			want:  []Record{{Path: []string{"name"}, Value: "Bob", Index: "0"}},
		},
		{
			name:  "explicit conjunction",
			query: "filter[age][gt][or]=30",
			want:  []Record{{Path: []string{"age"}, Operator: "gt", Value: "30", Conjunction: "or", Index: "0"}},
		},
		{
			name:  "explicit conjunction and memberOf",
			query: "filter[age][gt][or][adults]=30",
			want: []Record{{
				Path: []string{"age"}, Operator: "gt", Value: "30",
				Conjunction: "or", MemberOf: "adults", Index: "0",
			}},
		},
		{
			name:  "group declaration",
			query: "filter[adults][group][conjunction]=Or",
			want:  []Record{{Path: []string{"adults"}, NodeType: NodeGroup, Conjunction: "Or", Value: "Or", Index: "0"}},
		},
		{
			name:  "nested group declaration",
			query: "filter[inner][group][memberOf]=outer",
			want:  []Record{{Path: []string{"inner"}, NodeType: NodeGroup, MemberOf: "outer", Value: "outer", Index: "0"}},
		},
		{
			name:  "group member",
			query: "filter[adults][1][age][gte]=18",
			want:  []Record{{Path: []string{"age"}, Operator: "gte", Value: "18", MemberOf: "adults", Index: "1"}},
		},
		{
			name:  "multiple parameters keep order",
			query: "?filter[a]=1&sort=a&filter[b][lt]=2",
			want: []Record{
				{Path: []string{"a"}, Value: "1", Index: "0"},
				{Path: []string{"b"}, Operator: "lt", Value: "2", Index: "0"},
			},
		},
		{
			name:  "percent encoded",
			query: "filter%5Bname%5D%5Bcontains%5D=Ada%20L",
			want:  []Record{{Path: []string{"name"}, Operator: "contains", Value: "Ada L", Index: "0"}},
		},
		{
			name:  "nested bracket path",
			query: "filter[Address][City][eq]=London",
			want:  []Record{{Path: []string{"Address", "City"}, Operator: "eq", Value: "London", Index: "0"}},
		},
		{
			name:  "nested bracket path without operator",
			query: "filter[address][city]=Oslo",
			want:  []Record{{Path: []string{"address", "city"}, Value: "Oslo", Index: "0"}},
		},
		{
			name:  "nested bracket path with conjunction and memberOf",
			query: "filter[a][b][c][gte][or][g]=1",
			want: []Record{{
				Path: []string{"a", "b", "c"}, Operator: "gte", Value: "1",
				Conjunction: "or", MemberOf: "g", Index: "0",
			}},
		},
		{
			name:  "nested bracket path in group member",
			query: "filter[adults][0][address][city][$eq]=Oslo",
			want:  []Record{{Path: []string{"address", "city"}, Operator: "$eq", Value: "Oslo", MemberOf: "adults", Index: "0"}},
		},
		{
			name:  "dollar prefix marks an unknown operator",
			query: "filter[name][$like]=Bob",
			want:  []Record{{Path: []string{"name"}, Operator: "$like", Value: "Bob", Index: "0"}},
		},
		{
			name:  "conjunction without operator",
			query: "filter[age][or]=30",
			want:  []Record{{Path: []string{"age"}, Value: "30", Conjunction: "or", Index: "0"}},
		},
		{
			name:  "fully percent encoded",
			query: "filter%5BName%5D%5B%24eq%5D%3DBob%26filter%5BAge%5D%3D3",
			want: []Record{
				{Path: []string{"Name"}, Operator: "$eq", Value: "Bob", Index: "0"},
				{Path: []string{"Age"}, Value: "3", Index: "0"},
			},
		},
		{
			name:  "fully percent encoded decodes once",
			query: "%3Ffilter%5Bname%5D%3D100%2525",
			want:  []Record{{Path: []string{"name"}, Value: "100%25", Index: "0"}},
		},
		{
			name:  "no matches",
			query: "page=2&size=10",
			want:  nil,
		},
		{
			name:  "empty path is ignored",
			query: "filter[...]=x",
			want:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Filters(tc.query))
		})
	}
}

func TestJoinedPathStripsEmptySegments(t *testing.T) {
	assert.Equal(t, "Name", Record{Path: []string{"Name..."}}.JoinedPath())
	assert.Equal(t, "Name", Record{Path: []string{"...Name"}}.JoinedPath())
	assert.Equal(t, "Address.City", Record{Path: []string{".Address..City."}}.JoinedPath())
}

func TestSorts(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, []string{"-age,name", "city"}, m.Sorts("sort=-age,name&filter[a]=1&sort=city"))
	assert.Equal(t, []string{"first name"}, m.Sorts("sort=first%20name"))
	assert.Nil(t, m.Sorts("sort=name;drop"), "disallowed characters reject the parameter")
	assert.Nil(t, m.Sorts("filter[a]=1"))
}

func TestIsOperatorToken(t *testing.T) {
	for _, tok := range []string{"eq", "GTE", "$eq", "$anything", "EqualTo", "isnotnull", " in "} {
		assert.True(t, IsOperatorToken(tok), tok)
	}
	for _, tok := range []string{"city", "like", "", "0"} {
		assert.False(t, IsOperatorToken(tok), tok)
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "a+b", Decode("a+b"), "no triplet means no unescaping")
	assert.Equal(t, "a b[", Decode("a+b%5B"))
	assert.Equal(t, "100%", Decode("100%"), "lone percent is kept")
	assert.Equal(t, "%zz%41", Decode("%zz%41"), "invalid escapes keep the input")
}

func TestFiltersTimeoutYieldsNoMatches(t *testing.T) {
	m := NewMatcher()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, m.FiltersContext(ctx, "filter[a]=1&filter[b]=2"))
	assert.Nil(t, m.SortsContext(ctx, "sort=a"))
}

func TestCustomSettings(t *testing.T) {
	m := NewMatcher(
		WithGrammar(NewDefault(Settings{FilterKey: "where", SortKey: "order", GroupKeyword: "set"})),
		WithTimeout(time.Second),
	)

	recs := m.Filters("where[g][set][conjunction]=or&where[g][0][x][eq]=1&filter[y]=2")
	require.Len(t, recs, 2)
	assert.True(t, recs[0].IsGroup())
	assert.Equal(t, "g", recs[1].MemberOf)

	assert.Equal(t, []string{"x"}, m.Sorts("order=x&sort=y"))
}

type fixedGrammar struct{}

func (fixedGrammar) MatchFilter(key, value string) (Record, bool) {
	if key != "q" {
		return Record{}, false
	}
	return Record{Path: []string{"text"}, Operator: "contains", Value: value}, true
}

func (fixedGrammar) MatchSort(key, value string) (string, bool) {
	return "", false
}

func TestPluggableGrammar(t *testing.T) {
	m := NewMatcher(WithGrammar(fixedGrammar{}))

	recs := m.Filters("q=hello&filter[a]=1")
	require.Len(t, recs, 1)
	assert.Equal(t, "text", recs[0].JoinedPath())
	assert.Equal(t, "hello", recs[0].Value)
}
