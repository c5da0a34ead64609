package db

import (
	"errors"
	"fmt"
)

// Error represents a failure surfaced to the host by the engine.
//
// Error includes structured fields so the host bridge can map failures onto
// host-observable error objects without string matching.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description. For DB_ERROR it identifies
	// the failing phase (prepare / bind / step / exec / config).
	Message string

	// SQLiteCode is the underlying engine's extended result code.
	// Zero unless Code is ErrCodeDB.
	SQLiteCode int

	// SQLiteMessage is the underlying engine's error message.
	// Empty unless Code is ErrCodeDB.
	SQLiteMessage string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeArgMismatch indicates a placeholder/argument count mismatch.
	ErrCodeArgMismatch ErrorCode = "ARG_MISMATCH"

	// ErrCodeInvalidArgType indicates a bind argument that is not one of
	// null, undefined, string, number, boolean.
	ErrCodeInvalidArgType ErrorCode = "INVALID_ARG_TYPE"

	// ErrCodeUnsupportedColumnType indicates a result row with a blob or
	// other unsupported column type.
	ErrCodeUnsupportedColumnType ErrorCode = "UNSUPPORTED_COLUMN_TYPE"

	// ErrCodeMissingID indicates a row whose first column is not a non-null
	// column named id.
	ErrCodeMissingID ErrorCode = "MISSING_ID"

	// ErrCodeMigrationPrecondition indicates the stored user version did not
	// match the migration's fromVersion.
	ErrCodeMigrationPrecondition ErrorCode = "MIGRATION_PRECONDITION"

	// ErrCodeDB indicates any underlying engine failure.
	ErrCodeDB ErrorCode = "DB_ERROR"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code == ErrCodeDB {
		return fmt.Sprintf("%s: %s - sqlite error %d (%s)", e.Code, e.Message, e.SQLiteCode, e.SQLiteMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsArgMismatch returns true if the error is an argument count mismatch.
// Uses errors.As to handle wrapped errors.
func IsArgMismatch(err error) bool {
	return hasCode(err, ErrCodeArgMismatch)
}

// IsInvalidArgType returns true if the error is an invalid bind argument type.
func IsInvalidArgType(err error) bool {
	return hasCode(err, ErrCodeInvalidArgType)
}

// IsUnsupportedColumnType returns true if the error is an unsupported result
// column type.
func IsUnsupportedColumnType(err error) bool {
	return hasCode(err, ErrCodeUnsupportedColumnType)
}

// IsMissingID returns true if the error is a missing or null id column.
func IsMissingID(err error) bool {
	return hasCode(err, ErrCodeMissingID)
}

// IsMigrationPrecondition returns true if the error is a migration version
// precondition failure.
func IsMigrationPrecondition(err error) bool {
	return hasCode(err, ErrCodeMigrationPrecondition)
}

// IsDBError returns true if the error is an underlying engine failure.
func IsDBError(err error) bool {
	return hasCode(err, ErrCodeDB)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
