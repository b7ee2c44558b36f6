package database

import (
	"fmt"
	"regexp"
)

// Dialect identifies a supported database engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var positional = regexp.MustCompile(`\$(\d+)`)

// Validate reports an error for unsupported engines.
func (d Dialect) Validate() error {
	switch d {
	case Postgres, SQLite:
		return nil
	}
	return fmt.Errorf("invalid driver: %s (must be postgres or sqlite)", d)
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return fmt.Sprintf("?%d", n)
	}
	return fmt.Sprintf("$%d", n)
}

// CaseInsensitiveLike returns the case-insensitive pattern operator.
// SQLite LIKE is already case-insensitive for ASCII.
func (d Dialect) CaseInsensitiveLike() string {
	if d == SQLite {
		return "LIKE"
	}
	return "ILIKE"
}

// Rebind rewrites $N parameters written for Postgres into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	return positional.ReplaceAllString(query, "?$1")
}
