package db

import (
	"fmt"
	"strings"

	"github.com/bvinc/go-sqlite-lite/sqlite3"
)

// UserVersion reads the schema-version counter stored in the database's
// user-version slot.
func (d *Database) UserVersion() (int, error) {
	stmt, guard, err := d.executeQuery("pragma user_version", nil)
	if err != nil {
		return 0, err
	}
	defer guard.reset()

	if err := d.getRow(stmt); err != nil {
		return 0, err
	}

	version, _, err := stmt.ColumnInt(0)
	if err != nil {
		return 0, d.dbError("Failed to read user version", err)
	}
	return version, nil
}

// SetUserVersion writes the schema-version counter. The version is inlined
// into the SQL because the engine does not accept placeholders in this
// pragma; an integer is safe from injection.
func (d *Database) SetUserVersion(version int) error {
	return d.executeUpdate(fmt.Sprintf("pragma user_version = %d", version), nil)
}

// Migrate applies a migration script, moving the user version from
// fromVersion to toVersion atomically.
//
// The stored user version must equal fromVersion; anything else means the
// caller selected the wrong migration set, and the migration fails without
// touching the database.
func (d *Database) Migrate(migrationSQL string, fromVersion, toVersion int) error {
	return d.inTransaction(func() error {
		current, err := d.UserVersion()
		if err != nil {
			return err
		}
		if current != fromVersion {
			return d.engineError(ErrCodeMigrationPrecondition,
				fmt.Sprintf("Incompatible migration set - database is at version %d, migration expects %d", current, fromVersion))
		}

		if err := d.executeMultiple(migrationSQL); err != nil {
			return err
		}
		return d.SetUserVersion(toVersion)
	})
}

// UnsafeResetDatabase destroys every object in the database and installs a
// fresh schema at the given version. The identity cache is wiped; the
// statement cache is torn down, since every cached statement was compiled
// against the old schema.
//
// Vacuum runs outside the transaction - it cannot run inside one.
func (d *Database) UnsafeResetDatabase(schema string, version int) error {
	for _, stmt := range d.stmts {
		_ = stmt.Close()
	}
	d.stmts = make(map[string]*sqlite3.Stmt)

	if err := d.dropAllObjects(); err != nil {
		return err
	}

	if err := d.executeMultiple("vacuum"); err != nil {
		return err
	}

	return d.inTransaction(func() error {
		d.clearCache()

		if err := d.executeMultiple(schema); err != nil {
			return err
		}
		return d.SetUserVersion(version)
	})
}

// dropAllObjects drops every user table and view recorded in sqlite_master.
// Indexes and triggers go away with their tables.
func (d *Database) dropAllObjects() error {
	stmt, err := d.conn.Prepare("select type, name from sqlite_master where type in ('table', 'view') and name not like 'sqlite_%'")
	if err != nil {
		return d.dbError("Failed to enumerate schema objects", err)
	}

	type object struct {
		kind string
		name string
	}
	var objects []object
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			_ = stmt.Close()
			return d.dbError("Failed to enumerate schema objects", err)
		}
		if !hasRow {
			break
		}
		kind, _, err := stmt.ColumnText(0)
		if err != nil {
			_ = stmt.Close()
			return d.dbError("Failed to enumerate schema objects", err)
		}
		name, _, err := stmt.ColumnText(1)
		if err != nil {
			_ = stmt.Close()
			return d.dbError("Failed to enumerate schema objects", err)
		}
		objects = append(objects, object{kind: kind, name: name})
	}
	if err := stmt.Close(); err != nil {
		return d.dbError("Failed to enumerate schema objects", err)
	}

	for _, obj := range objects {
		drop := fmt.Sprintf("drop %s if exists %s", obj.kind, quoteIdentifier(obj.name))
		if err := d.executeMultiple(drop); err != nil {
			return err
		}
	}
	return nil
}

// quoteIdentifier quotes a schema object name for safe interpolation.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
