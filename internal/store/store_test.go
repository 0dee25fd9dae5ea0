package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/sortspec"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const personCUE = `
#Person: {
	name:   string
	age:    int
	status: "active" | "suspended"
	tags?: [...string]
	joined?: string @sieve(datetime)
	address?: {
		city: string
	}
}
`

func personSchema(t *testing.T) *schema.Type {
	t.Helper()
	typ, err := schema.CompileString(personCUE, "#Person")
	require.NoError(t, err)
	return typ
}

func people() []any {
	return []any{
		map[string]any{"name": "Ada", "age": 36, "status": "active", "tags": []any{"vip", "early"}, "joined": "2024-03-01", "address": map[string]any{"city": "London"}},
		map[string]any{"name": "Bob", "age": 17, "status": "suspended", "tags": []any{}, "joined": "2023-01-15"},
		map[string]any{"name": "Cy", "age": 52, "status": "active", "joined": "2022-07-30T10:00:00Z", "address": nil},
		map[string]any{"name": "Dee", "age": 36, "status": "ACTIVE", "tags": []any{"vip"}, "address": map[string]any{"city": "Oslo"}},
	}
}

func names(records []any) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.(map[string]any)["name"].(string)
	}
	return out
}

func loadPeople(t *testing.T) (*Store, *schema.Type) {
	t.Helper()
	s := createTestStore(t)
	typ := personSchema(t)
	require.NoError(t, s.Load(context.Background(), "people", typ, people()))
	return s, typ
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.NoError(t, s2.verifyPragma("user_version", "1"))
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	typ := personSchema(t)

	require.NoError(t, s.CreateCollection(ctx, "people", typ))
	require.NoError(t, s.CreateCollection(ctx, "people", typ), "same schema is a no-op")

	other, err := schema.CompileString("#Other: {x: int}", "#Other")
	require.NoError(t, err)
	assert.ErrorIs(t, s.CreateCollection(ctx, "people", other), ErrSchemaMismatch)

	_, err = s.Insert(ctx, "ghosts", map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	ids, err := s.Insert(ctx, "people", people()...)
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	n, err := s.Count(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRoundTripNumbers(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	typ, err := schema.CompileString("#N: {i: int, f: number}", "#N")
	require.NoError(t, err)
	require.NoError(t, s.Load(ctx, "n", typ, []any{map[string]any{"i": 3, "f": 2.5}}))

	docs, err := s.Find(ctx, querysql.New("n", typ))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, map[string]any{"i": int64(3), "f": 2.5}, docs[0].Data)
}

// TestFindMatchesInMemory runs each filter both in SQL and in memory and
// expects the same records.
func TestFindMatchesInMemory(t *testing.T) {
	s, typ := loadPeople(t)
	ctx := context.Background()

	testCases := []struct {
		query string
		want  []string
	}{
		{"filter[age][gte]=36", []string{"Ada", "Cy", "Dee"}},
		{"filter[age][between]=17,52", []string{"Ada", "Dee"}},
		{"filter[age][notbetween]=17,52", []string{"Bob", "Cy"}},
		{"filter[status]=active", []string{"Ada", "Cy", "Dee"}},
		{"filter[status][gt]=active", []string{"Bob"}},
		{"filter[tags][contains]=vip", []string{"Ada", "Dee"}},
		{"filter[tags][notcontains]=vip", []string{"Bob"}},
		{"filter[name][startswith]=D", []string{"Dee"}},
		{"filter[name][endswith]=y", []string{"Cy"}},
		{"filter[name][contains]=o", []string{"Bob"}},
		{"filter[name][regex]=^[AB]", []string{"Ada", "Bob"}},
		{"filter[joined][lt]=2024-01-01", []string{"Bob", "Cy"}},
		{"filter[address.city]=Oslo", []string{"Dee"}},
		{"filter[address][null]=", []string{"Bob", "Cy"}},
		{"filter[address.city][ne]=London", []string{"Dee"}},
		{"filter[name][in]=Bob,Cy", []string{"Bob", "Cy"}},
		{"filter[age][notin]=36", []string{"Bob", "Cy"}},
		{"filter[name][ne]=Ada", []string{"Bob", "Cy", "Dee"}},
		{"filter[g][group][conjunction]=or&filter[g][0][age][lt]=18&filter[g][1][name]=Dee", []string{"Bob", "Dee"}},
		{"filter[ghost]=1", []string{}},
		{"filter[age]=old", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			tree := filter.Parse(tc.query)

			docs, err := s.Find(ctx, criteria.FilterQuery(querysql.New("people", typ), tree).(*querysql.Query))
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(Records(docs)), "sql")

			inMemory, err := criteria.FilterRecords(people(), typ, tree)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(inMemory), "in memory")
		})
	}
}

func TestFindOrdersLikeInMemory(t *testing.T) {
	s, typ := loadPeople(t)
	ctx := context.Background()

	testCases := []struct {
		sort string
		want []string
	}{
		{"sort=-age,name", []string{"Cy", "Ada", "Dee", "Bob"}},
		{"sort=joined", []string{"Dee", "Cy", "Bob", "Ada"}},
		{"sort=-joined", []string{"Ada", "Bob", "Cy", "Dee"}},
		{"sort=status", []string{"Ada", "Cy", "Dee", "Bob"}},
	}

	for _, tc := range testCases {
		t.Run(tc.sort, func(t *testing.T) {
			dirs := sortspec.Parse(tc.sort)

			q := criteria.SortQuery(querysql.New("people", typ), dirs).(*querysql.Query)
			docs, err := s.Find(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(Records(docs)), "sql")

			assert.Equal(t, tc.want, names(criteria.SortRecords(people(), typ, dirs)), "in memory")
		})
	}
}

func TestRegexpMatch(t *testing.T) {
	assert.True(t, regexpMatch("^a.c$", "abc"))
	assert.True(t, regexpMatch("^a.c$", []byte("abc")))
	assert.False(t, regexpMatch("^a.c$", "abd"))
	assert.False(t, regexpMatch("(", "("))
	assert.False(t, regexpMatch(".*", nil))
	assert.False(t, regexpMatch(".*", int64(1)))
}
