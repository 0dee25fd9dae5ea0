// Package ir provides the value representation shared by the filter,
// predicate and sort packages.
//
// Raw query tokens arrive as text. Before any element is evaluated they are
// coerced once, against the statically known kind of the member they are
// compared with, into a Value. Member values read from elements at
// evaluation time are converted into the same variant so that equality and
// ordering are defined in one place.
//
// This package imports nothing internal. Every other internal package may
// import ir; ir is the foundational layer.
//
// Key design constraints:
//   - Value is sealed: only the types in this package implement it
//   - Coercion happens at compile time, never per evaluated element
//   - Compare reports comparability explicitly instead of panicking
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for content-addressed identities such as structural signatures
package ir
