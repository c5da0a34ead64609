package db

// beginTransaction opens an exclusive transaction. The host does not
// coordinate concurrent writers, so exclusive locking is the simplest
// race-free choice.
func (d *Database) beginTransaction() error {
	if err := d.conn.Exec("begin exclusive transaction"); err != nil {
		return d.dbError("Failed to begin transaction", err)
	}
	return nil
}

// commit commits the open transaction.
func (d *Database) commit() error {
	if err := d.conn.Exec("commit transaction"); err != nil {
		return d.dbError("Failed to commit transaction", err)
	}
	return nil
}

// rollback rolls back the open transaction. Rollback is abnormal: it means a
// bug in the engine or a host-environment issue (such as no free disk space)
// that the framework may not recover from safely, so it logs prominently
// before rolling back.
//
// A rollback failure is logged and swallowed: on some errors (IO, memory)
// the engine rolls the transaction back automatically, and a second rollback
// surfaces a spurious error that would hide the original cause.
func (d *Database) rollback() {
	d.log.Error("sqlite transaction is being rolled back! This is abnormal - it means " +
		"there is either an engine bug or a host issue (e.g. no empty disk space) that " +
		"the framework may be unable to recover from safely. Do investigate!")

	if err := d.conn.Exec("rollback transaction"); err != nil {
		d.log.Error("error while attempting to roll back transaction, probably harmless", "error", err)
	}
}

// inTransaction runs work inside begin exclusive / commit, rolling back and
// re-raising on any failure. Identity-cache deltas tied to the work must be
// applied only after inTransaction returns nil.
func (d *Database) inTransaction(work func() error) error {
	if err := d.beginTransaction(); err != nil {
		return err
	}
	if err := work(); err != nil {
		d.rollback()
		return err
	}
	if err := d.commit(); err != nil {
		d.rollback()
		return err
	}
	return nil
}
