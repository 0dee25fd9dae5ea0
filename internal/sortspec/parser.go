package sortspec

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/roach88/sieve/internal/grammar"
)

// Parser turns the sort parameters of query text into directives.
type Parser struct {
	matcher *grammar.Matcher
}

// NewParser creates a Parser. A nil matcher uses the default grammar.
func NewParser(m *grammar.Matcher) *Parser {
	if m == nil {
		m = grammar.NewMatcher()
	}
	return &Parser{matcher: m}
}

var defaultParser = NewParser(nil)

// Parse parses text with the default grammar.
func Parse(text string) []Directive {
	return defaultParser.Parse(text)
}

// Parse collects the directives of every sort parameter in text. It never
// fails; text without sort parameters yields no directives.
func (p *Parser) Parse(text string) []Directive {
	return ParseLists(p.matcher.Sorts(text))
}

// ParseContext is Parse with a caller-supplied matching deadline.
func (p *Parser) ParseContext(ctx context.Context, text string) []Directive {
	return ParseLists(p.matcher.SortsContext(ctx, text))
}

// ParseLists turns raw comma-separated field lists into directives, in
// order, keeping the first occurrence of each field.
func ParseLists(lists []string) []Directive {
	var dirs []Directive
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, token := range strings.Split(list, ",") {
			if strings.TrimSpace(token) == "" {
				continue
			}
			d, err := NewDirective(token)
			if errors.Is(err, ErrEmptyField) {
				slog.Debug("discarding sort token", "token", token)
				continue
			}
			if seen[d.Field] {
				continue
			}
			seen[d.Field] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
