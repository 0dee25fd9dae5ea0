package grammar

import "strings"

// operatorTokens is the lower-cased operator vocabulary: every enum name
// and every alias the filter package resolves.
var operatorTokens = map[string]bool{
	"equalto":              true,
	"notequalto":           true,
	"greaterthan":          true,
	"greaterthanorequalto": true,
	"lessthan":             true,
	"lessthanorequalto":    true,
	"contains":             true,
	"notcontains":          true,
	"in":                   true,
	"notin":                true,
	"between":              true,
	"notbetween":           true,
	"startswith":           true,
	"endswith":             true,
	"regex":                true,
	"isnull":               true,
	"isnotnull":            true,

	"eq":      true,
	"ne":      true,
	"gt":      true,
	"ge":      true,
	"gte":     true,
	"lt":      true,
	"le":      true,
	"lte":     true,
	"null":    true,
	"notnull": true,
}

// IsOperatorToken reports whether seg names an operator. A leading "$"
// always marks an operator slot, even for a token nobody recognizes.
func IsOperatorToken(seg string) bool {
	seg = strings.TrimSpace(seg)
	if strings.HasPrefix(seg, "$") {
		return true
	}
	return operatorTokens[strings.ToLower(seg)]
}
