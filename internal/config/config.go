// Package config loads sieve settings from defaults, an optional config
// file and SIEVE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/grammar"
	"github.com/roach88/sieve/internal/sortspec"
)

// EnvPrefix prefixes environment overrides, e.g. SIEVE_MATCH_TIMEOUT.
const EnvPrefix = "SIEVE"

// Config holds the query grammar and runtime settings.
type Config struct {
	FilterKey    string        `mapstructure:"filter_key"`
	SortKey      string        `mapstructure:"sort_key"`
	RootName     string        `mapstructure:"root_name"`
	DefaultIndex string        `mapstructure:"default_index"`
	GroupKeyword string        `mapstructure:"group_keyword"`
	MatchTimeout time.Duration `mapstructure:"match_timeout"`
	LogLevel     string        `mapstructure:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		FilterKey:    grammar.DefaultFilterKey,
		SortKey:      grammar.DefaultSortKey,
		RootName:     filter.DefaultRootName,
		DefaultIndex: grammar.DefaultIndex,
		GroupKeyword: grammar.DefaultGroupKeyword,
		MatchTimeout: grammar.DefaultTimeout,
		LogLevel:     "info",
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("filter_key", d.FilterKey)
	v.SetDefault("sort_key", d.SortKey)
	v.SetDefault("root_name", d.RootName)
	v.SetDefault("default_index", d.DefaultIndex)
	v.SetDefault("group_keyword", d.GroupKeyword)
	v.SetDefault("match_timeout", d.MatchTimeout)
	v.SetDefault("log_level", d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings. An empty path skips the config file; a path that
// does not exist is an error. The result is validated.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded config",
		"file", v.ConfigFileUsed(),
		"filter_key", c.FilterKey,
		"sort_key", c.SortKey,
		"match_timeout", c.MatchTimeout)
	return &c, nil
}

var (
	parameterName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)
	digits        = regexp.MustCompile(`^[0-9]+$`)
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	for _, key := range []struct{ name, value string }{
		{"filter_key", c.FilterKey},
		{"sort_key", c.SortKey},
		{"group_keyword", c.GroupKeyword},
	} {
		if !parameterName.MatchString(key.value) {
			result = multierror.Append(result, fmt.Errorf("%s: %q is not a valid parameter name", key.name, key.value))
		}
	}
	if strings.EqualFold(c.FilterKey, c.SortKey) && c.FilterKey != "" {
		result = multierror.Append(result, fmt.Errorf("filter_key and sort_key are both %q", c.FilterKey))
	}
	if strings.TrimSpace(c.RootName) == "" {
		result = multierror.Append(result, errors.New("root_name: must not be empty"))
	}
	if !digits.MatchString(c.DefaultIndex) {
		result = multierror.Append(result, fmt.Errorf("default_index: %q is not an ordinal", c.DefaultIndex))
	}
	if c.MatchTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("match_timeout: must be positive, got %s", c.MatchTimeout))
	}
	if _, err := c.Level(); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}

	return result.ErrorOrNil()
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// Grammar builds the query grammar the settings describe.
func (c *Config) Grammar() *grammar.Default {
	return grammar.NewDefault(grammar.Settings{
		FilterKey:    c.FilterKey,
		SortKey:      c.SortKey,
		GroupKeyword: c.GroupKeyword,
		DefaultIndex: c.DefaultIndex,
	})
}

// Matcher builds a pattern matcher over Grammar with the configured time
// bound.
func (c *Config) Matcher() *grammar.Matcher {
	return grammar.NewMatcher(
		grammar.WithGrammar(c.Grammar()),
		grammar.WithTimeout(c.MatchTimeout),
	)
}

// FilterParser builds a filter parser.
func (c *Config) FilterParser() *filter.Parser {
	return filter.NewParser(
		filter.WithMatcher(c.Matcher()),
		filter.WithRootName(c.RootName),
	)
}

// SortParser builds a sort parser.
func (c *Config) SortParser() *sortspec.Parser {
	return sortspec.NewParser(c.Matcher())
}

// Registry builds the parse strategy registry.
func (c *Config) Registry() *criteria.Registry {
	return criteria.DefaultRegistry(c.Matcher(), c.RootName)
}
