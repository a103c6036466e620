package table

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sift/internal/condition"
	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/schema"
	"github.com/roach88/sift/internal/store"
	"github.com/roach88/sift/internal/tagquery"
)

var (
	// ErrNotFound is returned by Get and Find when no row matches.
	ErrNotFound = errors.New("row not found")

	// ErrMissingKey is returned when a key-addressed call has no primary key value.
	ErrMissingKey = errors.New("missing primary key value")

	// ErrNoValues is returned by writes given nothing to write.
	ErrNoValues = errors.New("no values to write")

	// ErrMissingFilter is returned by filter-driven writes given no filter.
	ErrMissingFilter = errors.New("missing filter")

	// ErrEmptyWhere is returned by filter-driven writes whose filter
	// compiles to an empty WHERE clause.
	ErrEmptyWhere = errors.New("filter compiled to an empty WHERE clause")
)

// Defaults used when no option overrides them.
const (
	DefaultPageSize = 20
	DefaultMaxRows  = 1000
)

// Key addresses one row: ID is the primary key value and Sub the
// secondary key value for tables that declare one.
type Key struct {
	ID  any
	Sub any
}

// Table runs record operations against one table.
//
// A Table is safe for concurrent use as long as the driver is.
type Table struct {
	schema   *schema.Table
	driver   store.Driver
	compiler *querysql.Compiler
	tags     *tagquery.Parser
	log      logger.LoggerI

	pageSize int
	maxRows  int
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger. Statements are logged at debug level.
func WithLogger(log logger.LoggerI) Option {
	return func(t *Table) {
		if log != nil {
			t.log = log
		}
	}
}

// WithRegistry sets the condition registry used to compile filters.
func WithRegistry(reg *condition.Registry) Option {
	return func(t *Table) {
		if reg != nil {
			t.compiler = querysql.NewCompiler(reg, t.driver.Dialect())
		}
	}
}

// WithTagParser sets the parser used for SearchSpec.Tags.
func WithTagParser(p *tagquery.Parser) Option {
	return func(t *Table) {
		if p != nil {
			t.tags = p
		}
	}
}

// WithPageSize sets the page size used when a spec leaves it at zero.
func WithPageSize(n int) Option {
	return func(t *Table) {
		t.pageSize = n
	}
}

// WithMaxRows caps non-paginated searches without an explicit limit.
// Zero disables the cap.
func WithMaxRows(n int) Option {
	return func(t *Table) {
		t.maxRows = n
	}
}

// New binds a schema to a driver.
func New(s *schema.Table, driver store.Driver, opts ...Option) (*Table, error) {
	if s == nil {
		return nil, fmt.Errorf("table: nil schema")
	}
	if driver == nil {
		return nil, fmt.Errorf("table %s: nil driver", s.Name)
	}

	t := &Table{
		schema:   s,
		driver:   driver,
		compiler: querysql.NewCompiler(nil, driver.Dialect()),
		tags:     tagquery.NewParser(),
		log:      logger.NewNop(),
		pageSize: DefaultPageSize,
		maxRows:  DefaultMaxRows,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With(logger.String("table", s.Name))
	return t, nil
}

// Schema returns the table schema.
func (t *Table) Schema() *schema.Table {
	return t.schema
}

// Compiler returns the compiler used for this table's statements.
func (t *Table) Compiler() *querysql.Compiler {
	return t.compiler
}

func (t *Table) dialect() querysql.Dialect {
	return t.compiler.Dialect
}

// keyWhere renders the key comparison. qualified prefixes the columns
// with the table name for statements that join other tables.
func (t *Table) keyWhere(key Key, qualified bool, p *querysql.Params) (string, error) {
	if key.ID == nil {
		return "", ErrMissingKey
	}
	column := func(name string) string {
		if qualified {
			return t.schema.Name + "." + name
		}
		return name
	}

	d := t.dialect()
	where := column(t.schema.PrimaryKey) + " = " + d.Placeholder(p.Add(key.ID))
	if t.schema.SecondaryKey != "" && key.Sub != nil {
		where += " AND " + column(t.schema.SecondaryKey) + " = " + d.Placeholder(p.Add(key.Sub))
	}
	return where, nil
}

// sortedColumns returns the keys of values, sorted and validated.
func sortedColumns(values map[string]any) ([]string, error) {
	cols := make([]string, 0, len(values))
	for name := range values {
		if err := querysql.ValidateIdentifier(name); err != nil {
			return nil, fmt.Errorf("value column: %w", err)
		}
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols, nil
}

func (t *Table) hydrate(rows []store.Row) []store.Row {
	out := make([]store.Row, len(rows))
	for i, row := range rows {
		out[i] = t.schema.Hydrate(row)
	}
	return out
}

func (t *Table) query(ctx context.Context, sql string, args []any) ([]store.Row, error) {
	t.log.Debug("query", logger.String("sql", sql), logger.Int("args", len(args)))
	rows, err := t.driver.Query(ctx, sql, args...)
	if err != nil {
		t.log.Error("query failed", logger.String("sql", sql), logger.Error(err))
		return nil, fmt.Errorf("%s: %w", t.schema.Name, err)
	}
	return rows, nil
}

func (t *Table) queryRow(ctx context.Context, sql string, args []any) (store.Row, error) {
	t.log.Debug("query row", logger.String("sql", sql), logger.Int("args", len(args)))
	row, err := t.driver.QueryRow(ctx, sql, args...)
	if err != nil {
		t.log.Error("query row failed", logger.String("sql", sql), logger.Error(err))
		return nil, fmt.Errorf("%s: %w", t.schema.Name, err)
	}
	return row, nil
}

func (t *Table) exec(ctx context.Context, sql string, args []any) (int64, error) {
	t.log.Debug("exec", logger.String("sql", sql), logger.Int("args", len(args)))
	res, err := t.driver.Exec(ctx, sql, args...)
	if err != nil {
		t.log.Error("exec failed", logger.String("sql", sql), logger.Error(err))
		return 0, fmt.Errorf("%s: %w", t.schema.Name, err)
	}
	return res.Changed(), nil
}

func joinAnd(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	if len(nonEmpty) == 1 {
		return nonEmpty[0]
	}
	for i, part := range nonEmpty {
		nonEmpty[i] = "(" + part + ")"
	}
	return strings.Join(nonEmpty, " AND ")
}

// noteSelection debug-logs column list entries that are not plain
// columns or calls. They are still emitted as given.
func (t *Table) noteSelection(sel queryir.Selection) {
	list, ok := sel.(queryir.ColumnList)
	if !ok {
		return
	}
	for _, expr := range list {
		if !querysql.IsPlainExpression(strings.TrimSpace(expr)) {
			t.log.Debug("unchecked select expression", logger.String("expr", expr))
		}
	}
}
