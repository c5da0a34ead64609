package db

import (
	"fmt"
	"strings"

	"github.com/bvinc/go-sqlite-lite/sqlite3"

	"github.com/roach88/tidepool/internal/hostval"
)

// Find returns the record with the given id from table.
//
// If the record is in the identity cache, its id alone is returned as a host
// string. Otherwise the row is materialized as a dictionary, marked cached,
// and returned. A missing row returns host null.
//
// The table name is interpolated, not bound - acceptable because table names
// originate from trusted schema metadata. Names containing backticks or $
// are rejected defensively.
func (d *Database) Find(table, id string) (hostval.Value, error) {
	if strings.ContainsAny(table, "`$") {
		return nil, d.engineError(ErrCodeDB, fmt.Sprintf("Invalid table name %q", table))
	}

	if d.IsCached(CacheKey(table, id)) {
		return hostval.String(id), nil
	}

	stmt, guard, err := d.executeQuery(
		"select * from `"+table+"` where id == ? limit 1",
		hostval.Array{hostval.String(id)},
	)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	hasRow, err := d.nextRow(stmt)
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return hostval.Null{}, nil
	}

	record, err := d.resultDictionary(stmt)
	if err != nil {
		return nil, err
	}

	d.markAsCached(CacheKey(table, id))
	return record, nil
}

// rowID reads the current row's id: the first column must be named exactly
// "id" and hold a non-null value.
func (d *Database) rowID(stmt *sqlite3.Stmt) (string, error) {
	if stmt.ColumnCount() == 0 || stmt.ColumnName(0) != "id" {
		return "", d.engineError(ErrCodeMissingID, "Failed to get ID of a record - first column is not named id")
	}
	id, ok, err := stmt.ColumnText(0)
	if err != nil {
		return "", d.dbError("Failed to get ID of a record", err)
	}
	if !ok {
		return "", d.engineError(ErrCodeMissingID, "Failed to get ID of a record")
	}
	return id, nil
}

// Query runs sql with args against table. Rows already in the identity cache
// contribute their id string; other rows are materialized as dictionaries
// and marked cached. The result is a host array of mixed strings and
// dictionaries.
func (d *Database) Query(table, sql string, args hostval.Array) (hostval.Array, error) {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	records := hostval.Array{}
	for {
		hasRow, err := d.nextRow(stmt)
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		id, err := d.rowID(stmt)
		if err != nil {
			return nil, err
		}

		if d.IsCached(CacheKey(table, id)) {
			records = append(records, hostval.String(id))
			continue
		}
		record, err := d.resultDictionary(stmt)
		if err != nil {
			return nil, err
		}
		d.markAsCached(CacheKey(table, id))
		records = append(records, record)
	}

	return records, nil
}

// QueryAsArray is Query with positional rows: the first element of the
// returned array is the column header array; subsequent elements are either
// the id string (cached) or the positional array for that row.
func (d *Database) QueryAsArray(table, sql string, args hostval.Array) (hostval.Array, error) {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	results := hostval.Array{}
	for {
		hasRow, err := d.nextRow(stmt)
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		id, err := d.rowID(stmt)
		if err != nil {
			return nil, err
		}

		if len(results) == 0 {
			results = append(results, d.resultColumns(stmt))
		}

		if d.IsCached(CacheKey(table, id)) {
			results = append(results, hostval.String(id))
			continue
		}
		record, err := d.resultArray(stmt)
		if err != nil {
			return nil, err
		}
		d.markAsCached(CacheKey(table, id))
		results = append(results, record)
	}

	return results, nil
}

// QueryIDs runs sql with args and returns a host array of id strings only.
// The first column must be named id and non-null for every row. The identity
// cache is not consulted or updated.
func (d *Database) QueryIDs(sql string, args hostval.Array) (hostval.Array, error) {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	ids := hostval.Array{}
	for {
		hasRow, err := d.nextRow(stmt)
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		id, err := d.rowID(stmt)
		if err != nil {
			return nil, err
		}
		ids = append(ids, hostval.String(id))
	}

	return ids, nil
}

// UnsafeQueryRaw runs sql with args and returns every row as a dictionary,
// with no identity-cache interaction. Used for diagnostics and ad-hoc
// queries.
func (d *Database) UnsafeQueryRaw(sql string, args hostval.Array) (hostval.Array, error) {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	raws := hostval.Array{}
	for {
		hasRow, err := d.nextRow(stmt)
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}

		raw, err := d.resultDictionary(stmt)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}

	return raws, nil
}

// Count runs sql with args, requiring exactly one row with one column, and
// returns the value as an integer host number.
//
// A query producing no rows is an error, not zero - count queries always
// produce a row, so an empty result means the SQL was not a count query.
func (d *Database) Count(sql string, args hostval.Array) (hostval.Value, error) {
	stmt, guard, err := d.executeQuery(sql, args)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	if err := d.getRow(stmt); err != nil {
		return nil, err
	}
	if stmt.ColumnCount() != 1 {
		return nil, d.engineError(ErrCodeDB, "Failed to count - expected exactly one column")
	}

	count, _, err := stmt.ColumnInt(0)
	if err != nil {
		return nil, d.dbError("Failed to count", err)
	}

	hasMore, err := d.nextRow(stmt)
	if err != nil {
		return nil, err
	}
	if hasMore {
		return nil, d.engineError(ErrCodeDB, "Failed to count - expected exactly one row")
	}
	return hostval.Number(float64(count)), nil
}

// GetLocal returns the value stored in local_storage under key, or host null
// if the key is absent or its value is null.
func (d *Database) GetLocal(key string) (hostval.Value, error) {
	stmt, guard, err := d.executeQuery(
		"select value from local_storage where key = ?",
		hostval.Array{hostval.String(key)},
	)
	if err != nil {
		return nil, err
	}
	defer guard.reset()

	hasRow, err := d.nextRow(stmt)
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return hostval.Null{}, nil
	}

	value, ok, err := stmt.ColumnText(0)
	if err != nil {
		return nil, d.dbError("Failed to read local storage value", err)
	}
	if !ok {
		return hostval.Null{}, nil
	}
	return hostval.String(value), nil
}
