// Package store keeps JSON documents in SQLite and runs compiled criteria
// queries against them.
//
// Documents are grouped into named collections. Each collection remembers
// the identity of the schema its documents were written against; writing
// with a different schema is an error.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Connections are opened through a driver that registers a REGEXP function
// backed by Go's regexp package, so compiled Regex conditions run in SQL.
package store
