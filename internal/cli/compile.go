package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/tagquery"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Tags      TagOptions
	Column    string // JSON array column the tag query runs against
	Wildcards bool
	Filter    string // column filter as JSON
	Table     string // when set, emit a full SELECT
	Order     string
}

// CompilationResult is the compiled SQL and its bound parameters.
type CompilationResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`

	// Warnings lists filter constructs that compile to nothing.
	Warnings []string `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [tag-query]",
		Short: "Compile a filter and tag query to SQL",
		Long: `Compile a JSON column filter and/or a tag search expression into one
parameterized boolean expression. The filter is bound first, then the tag
query, so placeholders are numbered in that order.

With --table the expression is wrapped in a full SELECT.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runCompile(opts, query, cmd)
		},
	}

	opts.Tags.bind(cmd)
	cmd.Flags().StringVar(&opts.Column, "column", "tags", "JSON array column for the tag query")
	cmd.Flags().BoolVar(&opts.Wildcards, "wildcards", false, "treat * and ? in terms as wildcards")
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "column filter as JSON")
	cmd.Flags().StringVar(&opts.Table, "table", "", "wrap the expression in SELECT * FROM <table>")
	cmd.Flags().StringVar(&opts.Order, "order", "", "ORDER BY list used with --table")

	return cmd
}

func runCompile(opts *CompileOptions, query string, cmd *cobra.Command) error {
	opts.Setup()
	formatter := opts.formatter(cmd)

	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err)
	}

	result, err := compileExpression(opts, dialect, query)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCompile, err)
	}
	opts.Log.Debug("compiled", logger.String("sql", result.SQL), logger.Int("params", len(result.Params)))

	formatter.VerboseLog("Compiled for %s with %d param(s)", dialect.Name(), len(result.Params))
	for _, w := range result.Warnings {
		formatter.VerboseLog("Warning: %s", w)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return writeCompilation(formatter, dialect, result)
}

func compileExpression(opts *CompileOptions, dialect querysql.Dialect, query string) (*CompilationResult, error) {
	p := querysql.NewParams()
	compiler := querysql.NewCompiler(nil, dialect)

	var where, warnings []string
	if strings.TrimSpace(opts.Filter) != "" {
		node, err := queryir.ParseFilter([]byte(opts.Filter))
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		warnings = queryir.Validate(node).Warnings
		sql, err := compiler.Where(node, p)
		if err != nil {
			return nil, err
		}
		if sql != "" {
			where = append(where, sql)
		}
	}

	if strings.TrimSpace(query) != "" {
		parser, err := opts.Tags.parser(opts.Config.ParseLimit)
		if err != nil {
			return nil, err
		}
		l := tagquery.Lowerer{Dialect: dialect, Column: opts.Column, Wildcards: opts.Wildcards}
		sql, err := l.Lower(parser.Parse(query), p)
		if err != nil {
			return nil, err
		}
		where = append(where, sql)
	}

	expr := ""
	switch len(where) {
	case 0:
	case 1:
		expr = where[0]
	default:
		expr = "(" + where[0] + ") AND (" + where[1] + ")"
	}

	if opts.Table == "" {
		return &CompilationResult{SQL: expr, Params: p.Values(), Warnings: warnings}, nil
	}

	if err := querysql.ValidateIdentifier(opts.Table); err != nil {
		return nil, err
	}
	if err := querysql.ValidateOrder(opts.Order); err != nil {
		return nil, err
	}
	base := querysql.Base{From: opts.Table, Where: expr, Order: opts.Order}
	return &CompilationResult{SQL: base.SQL(), Params: p.Values(), Warnings: warnings}, nil
}

// writeCompilation prints the SQL followed by one line per parameter.
func writeCompilation(formatter *OutputFormatter, dialect querysql.Dialect, result *CompilationResult) error {
	fmt.Fprintf(formatter.Writer, "SQL: %s\n", result.SQL)
	if len(result.Params) == 0 {
		return nil
	}
	fmt.Fprintln(formatter.Writer, "Params:")
	for i, v := range result.Params {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(formatter.Writer, "  %s = %s\n", dialect.Placeholder(i+1), data)
	}
	return nil
}
