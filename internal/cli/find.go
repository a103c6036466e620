package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/store"
	"github.com/roach88/sift/internal/table"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Read     ReadOptions
	Target   string
	NoSelect bool
}

// FindOutput is the JSON payload of the find command.
type FindOutput struct {
	Position int64     `json:"position"`
	Page     int64     `json:"page"`
	Pages    int64     `json:"pages"`
	Total    int64     `json:"total"`
	Row      store.Row `json:"row,omitempty"`
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <table>",
		Short: "Locate a row's position and page within a search",
		Long: `Rank the rows matching --filter and --tags by --order and report the
position and page of the first one matching --target, in one query.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	opts.Read.bind(cmd)
	cmd.Flags().StringVar(&opts.Target, "target", "", "filter (JSON) picking the row to locate; default the first row")
	cmd.Flags().BoolVar(&opts.NoSelect, "no-select", false, "report the position only, without the row")

	return cmd
}

func runFind(opts *FindOptions, name string, cmd *cobra.Command) error {
	opts.Setup()
	formatter := opts.formatter(cmd)

	search, err := opts.Read.spec()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err)
	}
	spec := table.FindSpec{SearchSpec: search, NoSelect: opts.NoSelect}
	if strings.TrimSpace(opts.Target) != "" {
		if spec.Target, err = queryir.ParseFilter([]byte(opts.Target)); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, fmt.Errorf("target: %w", err))
		}
	}

	sess, err := opts.Read.open(cmd.Context(), opts.RootOptions, formatter, name)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.table.Find(cmd.Context(), spec)
	if errors.Is(err, table.ErrNotFound) {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err)
	}
	opts.Log.Info("find", logger.String("table", name), logger.Int64("position", res.Position))

	out := FindOutput{Position: res.Position, Page: res.Page, Pages: res.Pages, Total: res.Total, Row: res.Row}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	fmt.Fprintf(formatter.Writer, "position %d, page %d of %d, total %d\n", out.Position, out.Page, out.Pages, out.Total)
	if out.Row != nil {
		return writeRows(formatter.Writer, []store.Row{out.Row})
	}
	return nil
}
