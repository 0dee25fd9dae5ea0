package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/testutil"
)

const wantAgeSQL = `SELECT id, doc FROM documents WHERE collection = ? AND ` +
	`((json_type(doc, '$."age"') IN ('integer', 'real') AND json_extract(doc, '$."age"') > ?)) ` +
	`ORDER BY id ASC`

func TestSQLCommandText(t *testing.T) {
	schemaPath, _ := testutil.WritePeople(t)

	buf := &bytes.Buffer{}
	cmd := NewSQLCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--schema", schemaPath, "--definition", "Person", "--collection", "people", "filter[age][gt]=30"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, wantAgeSQL+"\nargs: [people 30]\n", buf.String())
}

func TestSQLCommandJSON(t *testing.T) {
	schemaPath, _ := testutil.WritePeople(t)

	buf := &bytes.Buffer{}
	cmd := NewSQLCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--schema", schemaPath, "--definition", "Person", "sort=name"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Data SQLResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Contains(t, resp.Data.SQL, "ORDER BY")
	assert.Contains(t, resp.Data.SQL, "id ASC")
	assert.Equal(t, []any{DefaultCollection}, resp.Data.Args)
}

func TestSQLCommandUnresolvedPathNeverMatches(t *testing.T) {
	schemaPath, _ := testutil.WritePeople(t)

	buf := &bytes.Buffer{}
	cmd := NewSQLCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--schema", schemaPath, "--definition", "Person", "filter[ghost]=1"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "AND (0)")
	assert.Contains(t, buf.String(), "args: [records]")
}
