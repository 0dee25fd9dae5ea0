// Package criteria is the boundary between parsed criteria and the
// collections they apply to.
//
// Slices go in and slices come out; a Queryable goes in and a Queryable
// comes out, so a deferred backend (see package querysql) can keep
// composing. Parse strategies let a request-binding layer dispatch raw
// parameter text by name without knowing which parser handles it.
package criteria
