package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/schema"
	"github.com/roach88/sift/internal/store"
	"github.com/roach88/sift/internal/table"
)

// ReadOptions holds the flags shared by search and find.
type ReadOptions struct {
	Schema string
	Driver string
	DSN    string

	Tags      TagOptions
	TagQuery  string
	TagColumn string
	Wildcards bool
	Filter    string
	Select    string
	Order     string
	PageSize  int
}

func (r *ReadOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.Schema, "schema", "", "schema file (.yaml, .json or .cue); default SIFT_SCHEMA")
	cmd.Flags().StringVar(&r.Driver, "driver", "", "database driver (sqlite|postgres); default SIFT_DRIVER")
	cmd.Flags().StringVar(&r.DSN, "dsn", "", "database path or URL; default SIFT_DSN")

	r.Tags.bind(cmd)
	cmd.Flags().StringVarP(&r.TagQuery, "tags", "t", "", "tag search expression")
	cmd.Flags().StringVar(&r.TagColumn, "tag-column", "tags", "JSON array column the tag query runs against")
	cmd.Flags().BoolVar(&r.Wildcards, "wildcards", false, "treat * and ? in terms as wildcards")
	cmd.Flags().StringVarP(&r.Filter, "filter", "f", "", "column filter as JSON")
	cmd.Flags().StringVar(&r.Select, "select", "", "select list; default is the schema's")
	cmd.Flags().StringVar(&r.Order, "order", "", "ORDER BY list; default is the schema's")
	cmd.Flags().IntVar(&r.PageSize, "page-size", 0, "rows per page; default SIFT_PAGE_SIZE")
}

// spec builds the search spec described by the flags.
func (r *ReadOptions) spec() (table.SearchSpec, error) {
	spec := table.SearchSpec{
		Order:    r.Order,
		PageSize: r.PageSize,
	}
	if strings.TrimSpace(r.Select) != "" {
		spec.Select = queryir.RawSelect(r.Select)
	}
	if strings.TrimSpace(r.Filter) != "" {
		node, err := queryir.ParseFilter([]byte(r.Filter))
		if err != nil {
			return spec, fmt.Errorf("filter: %w", err)
		}
		spec.Filter = node
	}
	if strings.TrimSpace(r.TagQuery) != "" {
		spec.Tags = &table.TagFilter{Query: r.TagQuery, Column: r.TagColumn, Wildcards: r.Wildcards}
	}
	return spec, nil
}

// session is an opened table and the driver behind it.
type session struct {
	table  *table.Table
	driver store.Driver
}

func (s *session) Close() {
	_ = s.driver.Close()
}

// open loads the schema, connects to the database and binds the named
// table. Errors are reported through formatter.
func (r *ReadOptions) open(ctx context.Context, root *RootOptions, formatter *OutputFormatter, name string) (*session, error) {
	cfg := root.Config

	schemaPath := firstNonEmpty(r.Schema, cfg.Schema)
	if schemaPath == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema, errors.New("no schema file: set --schema or SIFT_SCHEMA"))
	}
	catalog, err := schema.LoadFile(schemaPath)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema, err)
	}
	tableSchema, err := catalog.Table(name)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema, err)
	}

	parser, err := r.Tags.parser(cfg.ParseLimit)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err)
	}

	driverName := firstNonEmpty(r.Driver, root.Dialect, cfg.Driver)
	formatter.VerboseLog("Opening %s database %s", driverName, firstNonEmpty(r.DSN, cfg.DSN))
	driver, err := store.Open(ctx, store.Options{
		Driver:   driverName,
		DSN:      firstNonEmpty(r.DSN, cfg.DSN),
		MaxConns: cfg.PostgresMaxConnections,
	})
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}

	t, err := table.New(tableSchema, driver,
		table.WithLogger(root.Log),
		table.WithTagParser(parser),
		table.WithPageSize(cfg.PageSize),
		table.WithMaxRows(cfg.MaxRows),
	)
	if err != nil {
		_ = driver.Close()
		return nil, formatter.Fail(ExitCommandError, ErrCodeSchema, err)
	}
	return &session{table: t, driver: driver}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// writeRows prints one JSON object per row.
func writeRows(w io.Writer, rows []store.Row) error {
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s\n", data)
	}
	return nil
}
