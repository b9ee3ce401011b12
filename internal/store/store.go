package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Querier is implemented by both *sql.DB and *sql.Tx, so every store
// function can run standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Constraint violations surfaced by InsertReservation.
var (
	ErrDuplicateToken   = errors.New("reservation token already in use")
	ErrUserNameRequired = errors.New("user name required")
	ErrUnknownItem      = errors.New("item does not exist")
)

// dbTime normalizes a timestamp before it is bound as a query argument.
// Stored times are UTC at second precision so that text comparison in SQL
// matches chronological order.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// constraintError reports whether err is a SQLite constraint failure of the
// given extended code. The message is checked as well because the driver
// does not always report extended codes.
func constraintError(err error, code int, message string) bool {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == code {
		return true
	}
	return err != nil && strings.Contains(err.Error(), message)
}

func isUniqueViolation(err error) bool {
	return constraintError(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE constraint failed")
}

func isUserNameViolation(err error) bool {
	if err == nil || !strings.Contains(err.Error(), "user_name") {
		return false
	}
	return constraintError(err, sqlite3.SQLITE_CONSTRAINT_NOTNULL, "NOT NULL constraint failed") ||
		constraintError(err, sqlite3.SQLITE_CONSTRAINT_CHECK, "CHECK constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintError(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY constraint failed")
}
