package dbx

import (
	"fmt"
	"regexp"
)

// Dialect captures the few places where PostgreSQL and SQLite queries differ.
// Queries are written once with $N placeholders and rebound per dialect.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

var numbered = regexp.MustCompile(`\$\d+`)

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Rebind rewrites $N placeholders into the dialect's form. Placeholders must
// appear in argument order and must not repeat.
func (d Dialect) Rebind(query string) string {
	if d == SQLite {
		return numbered.ReplaceAllString(query, "?")
	}
	return query
}

// ForUpdate returns the row-locking suffix for SELECTs run inside a
// transaction. SQLite serialises writers on its own.
func (d Dialect) ForUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

// GooseDialect is the name the goose provider expects for the dialect.
func (d Dialect) GooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}
