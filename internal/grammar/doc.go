// Package grammar extracts structured token records from URL-style query
// text.
//
// The Matcher owns the mechanics shared by every grammar: stripping a
// leading "?", splitting parameters on "&", percent-decoding keys and
// values (only when a %XX triplet is present, and up front when the whole
// query was encoded) and bounding the time spent matching. A Grammar decides what a single decoded parameter means.
//
// The default grammar recognizes bracketed filter parameters and
// comma-separated sort parameters:
//
//	filter[name][$eq]=Bob
//	filter[address][city]=Oslo
//	filter[age][between]=18,65
//	filter[adults][group][conjunction]=Or
//	filter[adults][0][age][gte]=18
//	sort=-age,name
package grammar
