// Package hostval models the host runtime's value system as a sealed tagged
// variant. The engine never leaks SQLite types across this boundary: every
// row the query facade produces, and every argument the host passes in, is a
// hostval.Value.
//
// The variant distinguishes exactly what the host runtime distinguishes:
// null, undefined, boolean, number (double), string (UTF-8), array (indexed),
// and object (string-keyed). There is no binary type - the engine does not
// support blob columns.
//
// # Canonical serialization
//
// MarshalCanonical produces deterministic JSON for golden snapshots and CLI
// output: object keys are sorted, strings are NFC normalized, and numbers use
// the shortest representation that round-trips. Two structurally equal values
// always serialize to identical bytes.
package hostval
