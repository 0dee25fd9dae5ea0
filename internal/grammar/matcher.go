package grammar

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultTimeout bounds how long a single Matcher call may spend matching.
const DefaultTimeout = 100 * time.Millisecond

var percentTriplet = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)

// Matcher extracts token records from raw query text using a Grammar.
//
// Matching is bounded in time: when the deadline passes mid-scan the call
// returns no matches at all rather than a partial result or an error.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	grammar Grammar
	timeout time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithGrammar replaces the default grammar.
func WithGrammar(g Grammar) Option {
	return func(m *Matcher) {
		if g != nil {
			m.grammar = g
		}
	}
}

// WithTimeout sets the matching time bound. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewMatcher creates a Matcher over the default grammar unless overridden.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		grammar: NewDefault(Settings{}),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Grammar returns the grammar in use.
func (m *Matcher) Grammar() Grammar {
	return m.grammar
}

// Filters returns the filter records found in text, in order of appearance.
func (m *Matcher) Filters(text string) []Record {
	return m.FiltersContext(context.Background(), text)
}

// FiltersContext is Filters under ctx. The matcher's own time bound still
// applies; ctx can only shorten it.
func (m *Matcher) FiltersContext(ctx context.Context, text string) []Record {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var records []Record
	complete := scan(ctx, text, func(key, value string) {
		if rec, ok := m.grammar.MatchFilter(key, value); ok {
			records = append(records, rec)
		}
	})
	if !complete {
		return nil
	}
	return records
}

// Sorts returns the raw field lists of every sort parameter in text, in
// order of appearance.
func (m *Matcher) Sorts(text string) []string {
	return m.SortsContext(context.Background(), text)
}

// SortsContext is Sorts under ctx, with the same time bound as
// FiltersContext.
func (m *Matcher) SortsContext(ctx context.Context, text string) []string {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var lists []string
	complete := scan(ctx, text, func(key, value string) {
		if list, ok := m.grammar.MatchSort(key, value); ok {
			lists = append(lists, list)
		}
	})
	if !complete {
		return nil
	}
	return lists
}

// scan splits text into key/value parameters, decodes each one and hands it
// to visit. It returns false when ctx expired before the scan finished.
//
// Text with no literal "=" but at least one %XX triplet was encoded as a
// whole, separators included. It is unescaped once up front and its
// parameters are not decoded again.
func scan(ctx context.Context, text string, visit func(key, value string)) bool {
	text = strings.TrimSpace(text)
	decode := Decode
	if !strings.Contains(text, "=") && percentTriplet.MatchString(text) {
		text = Decode(text)
		decode = func(s string) string { return s }
	}
	text = strings.TrimPrefix(text, "?")
	if text == "" {
		return true
	}

	for _, param := range strings.Split(text, "&") {
		if err := ctx.Err(); err != nil {
			slog.Warn("query matching timed out; treating as no matches",
				"error", err,
				"length", len(text))
			return false
		}
		if param == "" {
			continue
		}
		key, value, _ := strings.Cut(param, "=")
		visit(decode(key), decode(value))
	}
	return true
}

// Decode percent-decodes s when it contains at least one %XX triplet and
// returns s unchanged otherwise. Invalid escapes leave s unchanged.
func Decode(s string) string {
	if !percentTriplet.MatchString(s) {
		return s
	}
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
