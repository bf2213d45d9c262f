// Package repository defines the data access layer and the error values
// shared across repositories. These sentinel values allow handlers and
// services to distinguish failure scenarios without inspecting SQL errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist or is not
// visible to the caller. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// the current state of the row. Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicate wraps MySQL duplicate key violations (error 1062).
var ErrDuplicate = errors.New("duplicate entry")

const mysqlErrDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate key error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}
