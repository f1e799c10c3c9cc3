package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite" // also registers the "sqlite" driver
	sqlite3 "modernc.org/sqlite/lib"

	// Registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Driver names a supported database/sql driver
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "pgx"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// ParseDriver validates a configured driver name
func ParseDriver(name string) (Driver, error) {
	switch d := Driver(name); d {
	case DriverSQLite, DriverPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unknown database driver %q (want %q or %q)", name, DriverSQLite, DriverPostgres)
	}
}

// gooseDialect returns the goose dialect name for the driver
func (d Driver) gooseDialect() string {
	if d == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// migrationsDir returns the embedded directory holding the driver's migrations
func (d Driver) migrationsDir() string {
	if d == DriverPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// rebind rewrites ? placeholders into the driver's bind syntax. Queries in
// this package never contain a literal ?.
func (d Driver) rebind(query string) string {
	if d != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation reports whether err is a unique constraint failure
func (d Driver) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
		// Primary code only when extended result codes are off
		return code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}

	return false
}
