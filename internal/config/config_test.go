package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/sortspec"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sieve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
filter_key: where
sort_key: order
root_name: all
match_timeout: 2s
log_level: debug
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "where", c.FilterKey)
	assert.Equal(t, "order", c.SortKey)
	assert.Equal(t, "all", c.RootName)
	assert.Equal(t, "group", c.GroupKeyword)
	assert.Equal(t, 2*time.Second, c.MatchTimeout)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "match_timeout: 2s\n")
	t.Setenv("SIEVE_MATCH_TIMEOUT", "250ms")
	t.Setenv("SIEVE_SORT_KEY", "order")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, c.MatchTimeout)
	assert.Equal(t, "order", c.SortKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateReportsEverything(t *testing.T) {
	c := Default()
	c.FilterKey = "bad key"
	c.RootName = " "
	c.DefaultIndex = "first"
	c.MatchTimeout = 0
	c.LogLevel = "loud"

	err := c.Validate()
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 5)
}

func TestValidateSameKeys(t *testing.T) {
	c := Default()
	c.SortKey = "FILTER"
	assert.ErrorContains(t, c.Validate(), "filter_key and sort_key")
}

func TestBuiltParsersFollowSettings(t *testing.T) {
	c := Default()
	c.FilterKey = "where"
	c.SortKey = "order"
	c.RootName = "all"

	tree := c.FilterParser().Parse("where[a]=1&where[b]=2&filter[c]=3")
	assert.Equal(t, "all", tree.Name())
	assert.Equal(t, 2, tree.Len())

	assert.Equal(t, []sortspec.Directive{sortspec.Desc("a")}, c.SortParser().Parse("order=-a&sort=b"))

	v, ok := c.Registry().Parse("where", "where[a]=1")
	require.True(t, ok)
	assert.IsType(t, &filter.Group{}, v)
}
