// Package db implements the storage engine behind the reactive data
// framework: a single-owner SQLite connection layered with the behaviors
// that make the framework correct and fast.
//
// # Architecture
//
// A Database owns three things:
//   - the SQLite connection, opened with WAL journaling
//   - the prepared-statement cache: SQL text -> compiled statement, never
//     evicted, finalized at Close (or torn down by UnsafeResetDatabase,
//     the only schema change that invalidates compiled statements)
//   - the record identity cache: the set of table$id keys whose records the
//     host has already received in materialized form, so the engine can send
//     the id alone on subsequent reads
//
// Mutations go through Batch, which runs inside a single exclusive
// transaction and defers identity-cache deltas until after commit: the cache
// never reflects an uncommitted mutation, and a rollback leaves it
// byte-identical to its pre-batch state.
//
// # Critical Patterns
//
// Reset on all paths:
// Every statement used in a fallible path is reset on every exit - success,
// logical failure, or propagated error - via a scoped guard (stmtGuard).
// A statement whose bind or step failed is reset before the error
// propagates, so the statement cache stays reusable.
//
// Single transaction:
// At most one transaction is open at any time. Transactions begin exclusive;
// the host does not coordinate concurrent writers.
//
// Single-threaded:
// The Database assumes the host serializes all calls through one goroutine.
// No internal locking, no timeouts.
//
// All errors are logged before being returned, so a later failure cannot
// preempt and lose them.
package db
