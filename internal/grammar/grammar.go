package grammar

import (
	"regexp"
	"strings"
)

// Defaults for the built-in query-string grammar.
const (
	DefaultFilterKey    = "filter"
	DefaultSortKey      = "sort"
	DefaultGroupKeyword = "group"
	DefaultIndex        = "0"
)

// Grammar interprets one decoded query parameter at a time.
//
// Implementations are pluggable: the Matcher handles splitting, percent
// decoding and the time bound, and asks the Grammar whether a given
// key/value pair is a filter record or a sort list.
type Grammar interface {
	// MatchFilter returns the record for a filter parameter, or false when
	// the parameter is not a filter.
	MatchFilter(key, value string) (Record, bool)

	// MatchSort returns the raw comma-separated field list of a sort
	// parameter, or false when the parameter is not a sort.
	MatchSort(key, value string) (string, bool)
}

// Settings configures the default grammar.
type Settings struct {
	FilterKey    string
	SortKey      string
	GroupKeyword string
	DefaultIndex string
}

// DefaultSettings returns the settings of the built-in grammar.
func DefaultSettings() Settings {
	return Settings{
		FilterKey:    DefaultFilterKey,
		SortKey:      DefaultSortKey,
		GroupKeyword: DefaultGroupKeyword,
		DefaultIndex: DefaultIndex,
	}
}

// Default is the built-in bracket grammar:
//
//	filter[<path...>]=<value>                                   implicit EqualTo
//	filter[<path...>][<operator>]=<value>
//	filter[<path...>][<operator>][<and|or>]=<value>             explicit conjunction
//	filter[<path...>][<operator>][<and|or>][<group>]=<value>    explicit memberOf
//	filter[<group>][group][conjunction]=<And|Or>                group declaration
//	filter[<group>][group][memberOf]=<parent>                   nested group declaration
//	filter[<group>][<index>][<path...>][<operator>]=<value>     group member
//	sort=<field>[,<field>]*
//
// A path may span several bracket segments ([address][city]) or use dots
// ([address.city]). The segment after the path is read as the operator only
// when it is an operator token or carries a "$" prefix, so
// filter[address][city]=Oslo is an equality test on address.city.
type Default struct {
	settings  Settings
	filterKey *regexp.Regexp
	sortKey   *regexp.Regexp
}

var (
	bracketSegment = regexp.MustCompile(`\[([^\[\]]*)\]`)
	sortFields     = regexp.MustCompile(`^[\p{L}\p{N}._\- ,]*$`)
	ordinal        = regexp.MustCompile(`^[0-9]+$`)
)

// NewDefault builds the default grammar. Empty settings fall back to the
// built-in defaults.
func NewDefault(s Settings) *Default {
	d := DefaultSettings()
	if s.FilterKey != "" {
		d.FilterKey = s.FilterKey
	}
	if s.SortKey != "" {
		d.SortKey = s.SortKey
	}
	if s.GroupKeyword != "" {
		d.GroupKeyword = s.GroupKeyword
	}
	if s.DefaultIndex != "" {
		d.DefaultIndex = s.DefaultIndex
	}

	return &Default{
		settings:  d,
		filterKey: regexp.MustCompile(`^(?i:` + regexp.QuoteMeta(d.FilterKey) + `)((?:\[[^\[\]]*\])+)$`),
		sortKey:   regexp.MustCompile(`^(?i:` + regexp.QuoteMeta(d.SortKey) + `)$`),
	}
}

// Settings returns the effective settings.
func (g *Default) Settings() Settings {
	return g.settings
}

// MatchFilter implements Grammar.
func (g *Default) MatchFilter(key, value string) (Record, bool) {
	m := g.filterKey.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return Record{}, false
	}

	var segs []string
	for _, sm := range bracketSegment.FindAllStringSubmatch(m[1], -1) {
		segs = append(segs, strings.TrimSpace(sm[1]))
	}

	rec := Record{Value: value, Index: g.settings.DefaultIndex}

	switch {
	case len(segs) >= 2 && strings.EqualFold(segs[1], g.settings.GroupKeyword):
		rec.NodeType = NodeGroup
		rec.Path = []string{segs[0]}
		if len(segs) >= 4 && ordinal.MatchString(segs[2]) {
			rec.Index = segs[2]
			segs = append(segs[:2], segs[3:]...)
		}
		attr := "conjunction"
		if len(segs) >= 3 {
			attr = strings.ToLower(segs[2])
		}
		switch attr {
		case "memberof":
			rec.MemberOf = strings.TrimSpace(value)
		default:
			rec.Conjunction = strings.TrimSpace(value)
		}

	case len(segs) >= 3 && ordinal.MatchString(segs[1]):
		rec.MemberOf = segs[0]
		rec.Index = segs[1]
		condition(&rec, segs[2:])

	default:
		condition(&rec, segs)
	}

	if rec.JoinedPath() == "" {
		return Record{}, false
	}
	return rec, true
}

// MatchSort implements Grammar.
func (g *Default) MatchSort(key, value string) (string, bool) {
	if !g.sortKey.MatchString(strings.TrimSpace(key)) {
		return "", false
	}
	if !sortFields.MatchString(value) {
		return "", false
	}
	return value, true
}

// condition fills a condition record from its trailing segments. Captures
// are peeled from the right: an optional conjunction (with the segment after
// it naming the enclosing group), then the operator when the last remaining
// segment is an operator token. Everything left is the path.
func condition(rec *Record, segs []string) {
	switch n := len(segs); {
	case n >= 3 && isConjunction(segs[n-2]):
		rec.Conjunction = segs[n-2]
		rec.MemberOf = segs[n-1]
		segs = segs[:n-2]
	case n >= 2 && isConjunction(segs[n-1]):
		rec.Conjunction = segs[n-1]
		segs = segs[:n-1]
	}

	if n := len(segs); n >= 2 && IsOperatorToken(segs[n-1]) {
		rec.Operator = segs[n-1]
		segs = segs[:n-1]
	}
	rec.Path = segs
}

func isConjunction(s string) bool {
	return strings.EqualFold(s, "and") || strings.EqualFold(s, "or")
}
