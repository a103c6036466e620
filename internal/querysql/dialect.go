package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// Placeholder renders the n-th (1-based) parameter.
	Placeholder(n int) string

	// JSONArrayElements renders a table-valued expansion of a JSON array
	// column whose element column is named "value".
	JSONArrayElements(column string) string

	// True renders an always-true boolean expression.
	True() string

	// Operator maps a comparison operator onto one the engine supports.
	Operator(op string) string
}

// Postgres emits $1, $2, ... placeholders and jsonb functions.
var Postgres Dialect = postgresDialect{}

// SQLite emits ?1, ?2, ... placeholders and json_each.
var SQLite Dialect = sqliteDialect{}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) JSONArrayElements(column string) string {
	return "jsonb_array_elements_text(" + column + ")"
}

func (postgresDialect) True() string { return "TRUE" }

func (postgresDialect) Operator(op string) string { return op }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(n int) string { return "?" + strconv.Itoa(n) }

func (sqliteDialect) JSONArrayElements(column string) string {
	return "json_each(" + column + ")"
}

func (sqliteDialect) True() string { return "1" }

// Operator rewrites ILIKE, which SQLite lacks; its LIKE is already
// case-insensitive for ASCII.
func (sqliteDialect) Operator(op string) string {
	switch op {
	case "ILIKE":
		return "LIKE"
	case "NOT ILIKE":
		return "NOT LIKE"
	default:
		return op
	}
}
