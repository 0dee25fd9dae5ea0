// Package harness runs criteria scenarios as executable contract tests.
//
// A scenario names a record schema, a set of records and a query string.
// The harness parses the query, filters and sorts the records in memory
// and, unless told otherwise, runs the same query through the SQLite
// backend, failing when the two disagree. Assertions then check the
// result.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: adults_by_age
//	description: "Adults, oldest first"
//	schema: people.cue
//	definition: Person
//	query: "filter[age][gte]=18&sort=-age"
//	records:
//	  - {name: Ada, age: 36}
//	  - {name: Bob, age: 17}
//	assertions:
//	  - type: count
//	    count: 1
//	  - type: order
//	    field: name
//	    values: [Ada]
//	  - type: contains
//	    where: {name: Ada}
//	  - type: excludes
//	    where: {name: Bob}
//
// The schema path is relative to the scenario file.
//
// # Assertion Types
//
//   - count: the result holds exactly count records
//   - order: the result's field values, in order, equal values
//   - contains: some record matches every where field
//   - excludes: no record matches every where field
//
// # Backends
//
// backend selects where the query runs: "memory", "sqlite" or "both"
// (the default). With "both", records are compared in order and any
// difference is a failure.
package harness
