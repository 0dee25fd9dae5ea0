// Package schema describes the member layout of element types so that
// filter paths and sort fields can be resolved before anything is
// evaluated.
//
// Two kinds of element are supported:
//   - Go structs, described by reflection (For, Of) and registered once per
//     type
//   - map[string]any records, described by a CUE definition (CompileString,
//     LoadFile, FromCUE)
//
// Member names resolve case-insensitively using Unicode case folding;
// ResolveExact is the case-sensitive variant.
package schema
