// Package predicate compiles filter trees into typed boolean tests.
//
// Compilation happens in two steps. A plan resolves every condition path
// against the element layout to a chain of member indices and fixes the
// operator dispatch (for example whether Contains is a membership or a
// substring test). Operands are then coerced to the member's kind and bound
// to the plan. Nothing is resolved or coerced per evaluated element.
//
// Plans depend only on the tree's structural signature, not on its
// operands, and are cached for the life of the process. The cache has no
// eviction: it grows with the number of distinct (type, tree shape) pairs.
//
// Range operators are exclusive:
//
//	Between:    low <  m <  high
//	NotBetween: m <= low || m >= high
package predicate
