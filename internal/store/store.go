package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/querysql"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// Result reports the outcome of a mutation.
type Result interface {
	// Changed returns the number of rows inserted, updated or deleted.
	Changed() int64
}

// Driver runs SQL against one database.
type Driver interface {
	// Query returns every row; an empty result is an empty slice.
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)

	// QueryRow returns the first row, or nil when there is none.
	QueryRow(ctx context.Context, sql string, args ...any) (Row, error)

	// Exec runs a mutating statement.
	Exec(ctx context.Context, sql string, args ...any) (Result, error)

	// Dialect returns the SQL dialect the engine speaks.
	Dialect() querysql.Dialect

	Close() error
}

// Options selects and configures a driver.
type Options struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	// DSN is a file path for SQLite and a connection URL for Postgres.
	DSN string

	// MaxConns caps the Postgres pool; zero keeps the pgx default.
	MaxConns int32
}

// Open opens the driver named in opts.
func Open(ctx context.Context, opts Options) (Driver, error) {
	dialect, err := querysql.DialectByName(opts.Driver)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("open store: empty %s DSN", dialect.Name())
	}

	if dialect == querysql.SQLite {
		db, err := OpenSQLite(opts.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	pg, err := OpenPostgres(ctx, opts.DSN, opts.MaxConns)
	if err != nil {
		return nil, err
	}
	return pg, nil
}
