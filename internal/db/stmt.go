package db

import (
	"fmt"

	"github.com/bvinc/go-sqlite-lite/sqlite3"

	"github.com/roach88/tidepool/internal/hostval"
)

// prepare returns the cached prepared statement for sql, compiling and
// caching it on first use. Cached statements are reset before being handed
// out; they are finalized only at Close.
func (d *Database) prepare(sql string) (*sqlite3.Stmt, error) {
	if stmt, ok := d.stmts[sql]; ok {
		// Statements are reset after use, not before, but resetting here too
		// prevents crashes if a previous caller failed between bind and reset.
		if err := stmt.Reset(); err != nil {
			return nil, d.dbError("Failed to prepare query statement", err)
		}
		return stmt, nil
	}

	stmt, err := d.conn.Prepare(sql)
	if err != nil {
		return nil, d.dbError("Failed to prepare query statement", err)
	}
	if stmt == nil {
		// Prepare returns a nil statement for whitespace-only SQL.
		return nil, d.engineError(ErrCodeDB, fmt.Sprintf("Failed to prepare query statement: no statement in %q", sql))
	}

	d.stmts[sql] = stmt
	return stmt, nil
}

// stmtGuard resets a statement when the enclosing operation exits, on every
// path. The statement cache stays reusable regardless of how the operation
// ended.
type stmtGuard struct {
	stmt *sqlite3.Stmt
}

func (g stmtGuard) reset() {
	// A reset after a failed step reports the step's error again; the
	// original error already propagated.
	_ = g.stmt.Reset()
}

// bindArgs binds an ordered list of host values to the statement's
// placeholders. The statement is reset before any error propagates.
func (d *Database) bindArgs(stmt *sqlite3.Stmt, args hostval.Array) error {
	count := stmt.BindParameterCount()
	if count != len(args) {
		_ = stmt.Reset()
		return d.engineError(ErrCodeArgMismatch,
			fmt.Sprintf("Number of args passed to query (%d) doesn't match number of arg placeholders (%d)", len(args), count))
	}

	native := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil, hostval.Null, hostval.Undefined:
			native[i] = nil
		case hostval.String:
			// Bound text is copied; the host string need not outlive the step.
			native[i] = string(v)
		case hostval.Number:
			native[i] = float64(v)
		case hostval.Bool:
			native[i] = bool(v)
		case hostval.Object:
			_ = stmt.Reset()
			return d.engineError(ErrCodeInvalidArgType, "Invalid argument type (object) for query")
		case hostval.Array:
			_ = stmt.Reset()
			return d.engineError(ErrCodeInvalidArgType, "Invalid argument type (array) for query")
		default:
			_ = stmt.Reset()
			return d.engineError(ErrCodeInvalidArgType, fmt.Sprintf("Invalid argument type (%T) for query", arg))
		}
	}

	if err := stmt.Bind(native...); err != nil {
		_ = stmt.Reset()
		return d.dbError("Failed to bind an argument for query", err)
	}
	return nil
}

// executeQuery prepares sql and binds args, returning the positioned
// statement and a guard that must be deferred by the caller.
func (d *Database) executeQuery(sql string, args hostval.Array) (*sqlite3.Stmt, stmtGuard, error) {
	stmt, err := d.prepare(sql)
	if err != nil {
		return nil, stmtGuard{}, err
	}
	if err := d.bindArgs(stmt, args); err != nil {
		return nil, stmtGuard{}, err
	}
	return stmt, stmtGuard{stmt: stmt}, nil
}

// executeUpdate runs a parameterized mutation to completion. The statement
// must report done on its first step.
func (d *Database) executeUpdate(sql string, args hostval.Array) error {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return err
	}
	defer guard.reset()

	hasRow, err := stmt.Step()
	if err != nil {
		return d.dbError("Failed to execute db update", err)
	}
	if hasRow {
		return d.engineError(ErrCodeDB, "Failed to execute db update - statement returned rows")
	}
	return nil
}

// getRow steps the statement and requires a row.
func (d *Database) getRow(stmt *sqlite3.Stmt) error {
	hasRow, err := stmt.Step()
	if err != nil {
		return d.dbError("Failed to get a row for query", err)
	}
	if !hasRow {
		return d.engineError(ErrCodeDB, "Failed to get a row for query")
	}
	return nil
}

// nextRow steps the statement, reporting whether a row is available.
func (d *Database) nextRow(stmt *sqlite3.Stmt) (bool, error) {
	hasRow, err := stmt.Step()
	if err != nil {
		return false, d.dbError("Failed to get a row for query", err)
	}
	return hasRow, nil
}
