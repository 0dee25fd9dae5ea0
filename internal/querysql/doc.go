// Package querysql compiles filter trees and sort directives to
// parameterized SQLite over a table of JSON documents.
//
// Every document lives in the documents table:
//
//	documents(id INTEGER PRIMARY KEY, collection TEXT, doc TEXT)
//
// Member paths become json_extract calls against doc. Operands are always
// bound as parameters, never interpolated. Every query ends with a
// deterministic id tiebreak so equal sort keys keep insertion order.
//
// Conditions follow the in-memory predicate semantics: a path that does
// not resolve, an operand that cannot be coerced or an absent intermediate
// object makes the condition false. Regex requires a REGEXP function on
// the connection; package store registers one.
package querysql
