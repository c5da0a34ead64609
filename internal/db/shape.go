package db

import (
	"fmt"

	"github.com/bvinc/go-sqlite-lite/sqlite3"

	"github.com/roach88/tidepool/internal/hostval"
)

// columnValue maps the statement's i-th result column to a host value.
//
// INTEGER widens from int64 to the host's double; precision loss beyond 2^53
// is accepted. BLOB and any custom column types are not supported.
func (d *Database) columnValue(stmt *sqlite3.Stmt, i int) (hostval.Value, error) {
	switch stmt.ColumnType(i) {
	case sqlite3.INTEGER:
		v, _, err := stmt.ColumnInt64(i)
		if err != nil {
			return nil, d.dbError("Failed to read a column value", err)
		}
		return hostval.Number(float64(v)), nil
	case sqlite3.FLOAT:
		v, _, err := stmt.ColumnDouble(i)
		if err != nil {
			return nil, d.dbError("Failed to read a column value", err)
		}
		return hostval.Number(v), nil
	case sqlite3.TEXT:
		v, ok, err := stmt.ColumnText(i)
		if err != nil {
			return nil, d.dbError("Failed to read a column value", err)
		}
		if !ok {
			return hostval.Null{}, nil
		}
		return hostval.String(v), nil
	case sqlite3.NULL:
		return hostval.Null{}, nil
	default:
		return nil, d.engineError(ErrCodeUnsupportedColumnType,
			fmt.Sprintf("Unable to fetch record from database - unsupported column type for column %q (blobs and custom sqlite types are not supported)", stmt.ColumnName(i)))
	}
}

// resultDictionary shapes the current row as a host object keyed by column
// name.
func (d *Database) resultDictionary(stmt *sqlite3.Stmt) (hostval.Object, error) {
	count := stmt.ColumnCount()
	dictionary := make(hostval.Object, count)

	for i := 0; i < count; i++ {
		value, err := d.columnValue(stmt, i)
		if err != nil {
			return nil, err
		}
		dictionary.SetProperty(stmt.ColumnName(i), value)
	}

	return dictionary, nil
}

// resultArray shapes the current row as a positional host array, values in
// column order.
func (d *Database) resultArray(stmt *sqlite3.Stmt) (hostval.Array, error) {
	count := stmt.ColumnCount()
	result := make(hostval.Array, count)

	for i := 0; i < count; i++ {
		value, err := d.columnValue(stmt, i)
		if err != nil {
			return nil, err
		}
		result[i] = value
	}

	return result, nil
}

// resultColumns shapes the statement's column names as a host array, in
// column order.
func (d *Database) resultColumns(stmt *sqlite3.Stmt) hostval.Array {
	count := stmt.ColumnCount()
	columns := make(hostval.Array, count)

	for i := 0; i < count; i++ {
		columns[i] = hostval.String(stmt.ColumnName(i))
	}

	return columns
}
