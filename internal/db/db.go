package db

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
)

// Database is a process-local, single-owner handle to one on-disk or
// in-memory SQLite database. It exclusively owns the prepared-statement cache
// and the record identity cache.
//
// A Database and everything it owns are single-threaded: the host must
// serialize all calls through one goroutine. There are no internal workers
// and no timeouts; every operation runs to completion on the caller's
// goroutine.
type Database struct {
	conn   *sqlite3.Conn
	stmts  map[string]*sqlite3.Stmt
	cached map[string]struct{}
	log    *slog.Logger
	closed bool
}

// Option configures a Database at Open time.
type Option func(*options)

type options struct {
	log             *slog.Logger
	memoryTempStore bool
}

// WithLogger sets the logger used for error and diagnostic output. Defaults
// to slog.Default(). The engine keeps no global state of its own.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMemoryTempStore forces `pragma temp_store = memory` on open. Android
// hosts need this: large batches error out with IO errors when SQLite cannot
// find an on-disk temp store inside the app sandbox. Defaults to on for
// android builds, off elsewhere.
func WithMemoryTempStore(enabled bool) Option {
	return func(o *options) {
		o.memoryTempStore = enabled
	}
}

// Open opens (creating if needed) the database at path. The path may be
// ":memory:" for a temporary in-memory database.
//
// WAL journaling is enabled unconditionally. Open fails if any pragma fails.
func Open(path string, opts ...Option) (*Database, error) {
	o := &options{
		log:             slog.Default(),
		memoryTempStore: runtime.GOOS == "android",
	}
	for _, opt := range opts {
		opt(o)
	}

	conn, err := sqlite3.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	d := &Database{
		conn:   conn,
		stmts:  make(map[string]*sqlite3.Stmt),
		cached: make(map[string]struct{}),
		log:    o.log,
	}

	if o.memoryTempStore {
		if err := d.executeMultiple("pragma temp_store = memory;"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("open database %q: %w", path, err)
		}
	}
	if err := d.executeMultiple("pragma journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}

	return d, nil
}

// Close finalizes every cached prepared statement, then closes the
// underlying connection. Close is idempotent.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	for _, stmt := range d.stmts {
		// Finalize errors report the most recent statement failure, which
		// already propagated to the caller; nothing to do with them here.
		_ = stmt.Close()
	}
	d.stmts = make(map[string]*sqlite3.Stmt)

	if err := d.conn.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// dbError builds an ErrCodeDB error for an underlying engine failure, logging
// it before returning so it is not lost if a later failure preempts it.
func (d *Database) dbError(description string, err error) *Error {
	e := &Error{
		Code:    ErrCodeDB,
		Message: description,
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		e.SQLiteCode = se.Code()
	}
	if err != nil {
		e.SQLiteMessage = err.Error()
	}
	d.log.Error("database error", "description", description, "sqlite_code", e.SQLiteCode, "sqlite_message", e.SQLiteMessage)
	return e
}

// engineError logs and returns a non-DB_ERROR engine failure.
func (d *Database) engineError(code ErrorCode, message string) *Error {
	d.log.Error("database error", "code", string(code), "message", message)
	return &Error{Code: code, Message: message}
}

// executeMultiple runs a possibly multi-statement SQL script outside the
// statement cache. Used for pragmas, schema scripts, and migrations.
func (d *Database) executeMultiple(sql string) error {
	if err := d.conn.Exec(sql); err != nil {
		return d.dbError("Failed to execute statements", err)
	}
	return nil
}
