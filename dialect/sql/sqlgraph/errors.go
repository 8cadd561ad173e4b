package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by: pq.Error, pgx and some MySQL drivers.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for rendered queries that reference a wrong
// table or column (class 42).
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
	pgAmbiguousColumn = "42702"
)

// MySQL error numbers for the same conditions.
const (
	mysqlNoSuchTable     = 1146
	mysqlBadField        = 1054
	mysqlNonUniqueColumn = 1052
)

// IsReferenceError reports if the error resulted from a query referencing a
// table or column the database cannot resolve.
func IsReferenceError(err error) bool {
	return IsUndefinedTableError(err) ||
		IsUndefinedColumnError(err) ||
		IsAmbiguousColumnError(err)
}

// IsUndefinedTableError reports if the error resulted from a join or FROM
// clause naming a table that does not exist.
func IsUndefinedTableError(err error) bool {
	return classify(err, pgUndefinedTable, mysqlNoSuchTable, func(msg string) bool {
		return containsAny(msg,
			"no such table", // SQLite
			"Error 1146",    // MySQL (string fallback)
		) || strings.Contains(msg, `relation "`) && strings.Contains(msg, "does not exist") && !strings.Contains(msg, "column")
	})
}

// IsUndefinedColumnError reports if the error resulted from a join field or
// selected column that does not exist.
func IsUndefinedColumnError(err error) bool {
	return classify(err, pgUndefinedColumn, mysqlBadField, func(msg string) bool {
		return containsAny(msg,
			"no such column", // SQLite
			"Error 1054",     // MySQL (string fallback)
		) || strings.Contains(msg, "column ") && strings.Contains(msg, "does not exist")
	})
}

// IsAmbiguousColumnError reports if the error resulted from an unqualified
// column that exists in more than one joined table.
func IsAmbiguousColumnError(err error) bool {
	return classify(err, pgAmbiguousColumn, mysqlNonUniqueColumn, func(msg string) bool {
		return containsAny(msg,
			"ambiguous column name", // SQLite
			"Error 1052",            // MySQL (string fallback)
			"is ambiguous",          // Postgres (string fallback)
		)
	})
}

// classify checks the error chain for the given SQLSTATE code or MySQL error
// number, and falls back to matching the error text.
func classify(err error, state string, number uint16, match func(string) bool) bool {
	if err == nil {
		return false
	}
	var pe *pq.Error
	if errors.As(err, &pe) && string(pe.Code) == state {
		return true
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == state {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == number {
		return true
	}
	return match(err.Error())
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
