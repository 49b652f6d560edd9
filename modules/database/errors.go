package database

import (
	"errors"
	"strconv"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SchemaError is returned when a row does not fit the declared schema: an
// unknown column, an empty row or a table name no registered table declares.
type SchemaError struct {
	Table  string
	Column string
	Reason string
}

// Error implements the error interface.
func (e SchemaError) Error() string {
	msg := "schema: table " + strconv.Quote(e.Table)
	if e.Column != "" {
		msg += " column " + strconv.Quote(e.Column)
	}
	return msg + ": " + e.Reason
}

// StorageError is returned when the embedded store fails to open, create a
// table or insert a row.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

// Error implements the error interface.
func (e StorageError) Error() string {
	if e.Table == "" {
		return "storage: " + e.Op + ": " + e.Err.Error()
	}
	return "storage: " + e.Op + " " + strconv.Quote(e.Table) + ": " + e.Err.Error()
}

// Unwrap returns the driver error.
func (e StorageError) Unwrap() error {
	return e.Err
}

// Constraint reports whether the store rejected the statement because of a
// primary key or uniqueness constraint.
func (e StorageError) Constraint() bool {
	var sqliteErr *msqlite.Error
	if errors.As(e.Err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
