package grammar

import "strings"

// Node types a filter record can declare.
const (
	NodeCondition = ""
	NodeGroup     = "group"
)

// Record is one structured token record extracted from a filter parameter.
//
// A record either describes a condition (NodeType == NodeCondition) or an
// explicit group declaration (NodeType == NodeGroup, Path holding the group
// name). Empty fields mean "not captured".
//
// Index is informational. It tells apart declarations such as
// filter[g][0][...] and filter[g][1][...] in the raw query, but tree
// building ignores it: members keep their order of appearance and are
// named from a per-path counter.
type Record struct {
	Path        []string // repeated path-segment captures
	Operator    string   // raw operator token, e.g. "$eq" or "gte"
	Value       string   // raw value blob, already percent-decoded
	Conjunction string   // raw conjunction token ("and" / "or")
	MemberOf    string   // explicit enclosing group name
	NodeType    string   // NodeCondition or NodeGroup
	Index       string   // ordinal for repeated declarations, defaults to "0"
}

// JoinedPath returns the dot-joined path with empty segments removed, so
// "Name..." and "...Name" both normalize to "Name".
func (r Record) JoinedPath() string {
	return JoinPath(r.Path)
}

// IsGroup reports whether the record declares a group.
func (r Record) IsGroup() bool {
	return r.NodeType == NodeGroup
}

// JoinPath joins path segments with "." after splitting any dotted segment
// and dropping empty ones.
func JoinPath(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		for _, p := range strings.Split(seg, ".") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	return strings.Join(parts, ".")
}
