// Package filter provides the filter tree: Condition leaves and Group
// composites, the operator alias table, and the hierarchy builder that
// assembles token records from the grammar package into a tree.
//
// Assembly happens over an arena of nodes addressed by index. Group
// membership is resolved in two passes (collect referenced group names,
// then backfill the undeclared ones) and membership cycles are detected
// before any recursion, so a malformed query can never loop.
//
// Node is a sealed interface:
//
//	switch n := node.(type) {
//	case *filter.Condition:
//	    // leaf
//	case *filter.Group:
//	    // composite
//	}
//
// Parsing never fails. Text that matches nothing yields an empty root group.
package filter
