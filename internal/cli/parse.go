package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/tagquery"
)

// TagOptions holds the tag parser flags shared by parse, compile, search
// and find.
type TagOptions struct {
	Limit       int // < 0 means the configured SIFT_PARSE_LIMIT
	NoRepeat    bool
	NoShorthand bool
	Specials    []string
}

func (t *TagOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.Limit, "limit-terms", -1, "maximum accepted terms (0 = unlimited; default SIFT_PARSE_LIMIT)")
	cmd.Flags().BoolVar(&t.NoRepeat, "no-repeat", false, "drop repeated top-level terms")
	cmd.Flags().BoolVar(&t.NoShorthand, "no-shorthand", false, "keep a leading '-' literal instead of negating")
	cmd.Flags().StringSliceVar(&t.Specials, "special", nil, "register a key:value special filter key (repeatable)")
}

func (t *TagOptions) parser(defaultLimit int) (*tagquery.Parser, error) {
	limit := t.Limit
	if limit < 0 {
		limit = defaultLimit
	}
	p := tagquery.NewParser(
		tagquery.WithLimit(limit),
		tagquery.WithNoRepeat(t.NoRepeat),
		tagquery.WithShorthand(!t.NoShorthand),
	)
	for _, key := range t.Specials {
		if err := p.RegisterSpecial(strings.TrimSpace(key), nil); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Tags TagOptions
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a tag search expression",
		Long: `Parse a tag search expression and print its structure: the AND-ed
include chunks (OR-groups in parentheses), extracted special filters and
the weighted terms of each modifier.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	opts.Tags.bind(cmd)

	return cmd
}

func runParse(opts *ParseOptions, input string, cmd *cobra.Command) error {
	opts.Setup()
	formatter := opts.formatter(cmd)

	parser, err := opts.Tags.parser(opts.Config.ParseLimit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidInput, err)
	}

	q := parser.Parse(input)
	formatter.VerboseLog("Parsed %d chunk(s), %d special(s)", len(q.Include), len(q.Specials))

	if formatter.Format == "json" {
		return formatter.Success(q)
	}
	writeQuery(formatter.Writer, q)
	return nil
}

// writeQuery prints a parsed query in human-readable form.
func writeQuery(w io.Writer, q tagquery.Query) {
	fmt.Fprintln(w, "include:")
	if len(q.Include) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, chunk := range q.Include {
		if chunk.IsGroup() {
			fmt.Fprintf(w, "  (%s)\n", strings.Join(chunk, " OR "))
		} else {
			fmt.Fprintf(w, "  %s\n", chunk[0])
		}
	}

	if len(q.Specials) > 0 {
		fmt.Fprintln(w, "specials:")
		for _, s := range q.Specials {
			prefix := ""
			if s.Negated {
				prefix = tagquery.Negation
			}
			fmt.Fprintf(w, "  %s%s = %v\n", prefix, s.Key, s.Value)
		}
	}

	names := make([]string, 0, len(q.Modifiers))
	for name, list := range q.Modifiers {
		if len(list) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s:\n", name)
		for _, wt := range q.Modifiers[name] {
			fmt.Fprintf(w, "  %s %s\n", wt.Term, strconv.FormatFloat(wt.Weight, 'f', -1, 64))
		}
	}
}
