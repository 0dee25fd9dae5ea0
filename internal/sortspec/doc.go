// Package sortspec parses sort parameters into ordered directives and
// applies them as a stable multi-key ordering.
//
// A sort parameter holds comma-separated field names. Any number of leading
// dashes marks a field descending:
//
//	sort=-age,name     age descending, then name ascending
//	sort=--age         age descending
//	sort=-             nothing
//
// The first occurrence of a field name wins; later repeats are dropped
// whatever their direction. Field identity is case-sensitive at parse time.
package sortspec
