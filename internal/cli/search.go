package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/store"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Read     ReadOptions
	Paginate bool
	Page     int
	Limit    int
}

// SearchOutput is the JSON payload of the search command.
type SearchOutput struct {
	Rows  []store.Row `json:"rows"`
	Total int64       `json:"total"`
	Pages int64       `json:"pages"`
	Page  int         `json:"page"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <table>",
		Short: "Search a table with a filter and tag query",
		Long: `Search a table described in the schema file.

Without --paginate at most --limit rows are returned (SIFT_MAX_ROWS when
unset). With --paginate the total is counted first and page --page of
--page-size rows is returned.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, args[0], cmd)
		},
	}

	opts.Read.bind(cmd)
	cmd.Flags().BoolVar(&opts.Paginate, "paginate", false, "count matches and return one page")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number (1-based) with --paginate")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "row cap without --paginate; default SIFT_MAX_ROWS")

	return cmd
}

func runSearch(opts *SearchOptions, name string, cmd *cobra.Command) error {
	opts.Setup()
	formatter := opts.formatter(cmd)

	spec, err := opts.Read.spec()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err)
	}
	spec.Paginate = opts.Paginate
	spec.Page = opts.Page
	spec.Limit = opts.Limit

	sess, err := opts.Read.open(cmd.Context(), opts.RootOptions, formatter, name)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.table.Search(cmd.Context(), spec)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	opts.Log.Info("search", logger.String("table", name), logger.Int("rows", len(res.Rows)), logger.Int64("total", res.Total))

	out := SearchOutput{Rows: res.Rows, Total: res.Total, Pages: res.Pages, Page: res.Page}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprintf(formatter.Writer, "%d row(s), page %d of %d, total %d\n", len(out.Rows), out.Page, out.Pages, out.Total)
	return writeRows(formatter.Writer, out.Rows)
}
