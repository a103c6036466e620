package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/config"
	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/querysql"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Dialect string // "postgres" | "sqlite"; empty follows the configured driver
	EnvFile string

	// Config and Log are filled in by Setup; tests may set them directly.
	Config    *config.Config
	Log       logger.LoggerI
	RequestID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sift CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sift",
		Short: "sift - filters and tag queries to SQL",
		Long:  "Compile structured filters and tag search expressions into parameterized SQL, and run them against SQLite or Postgres.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Dialect != "" {
				if _, err := querysql.DialectByName(opts.Dialect); err != nil {
					return err
				}
			}
			opts.Setup()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Log != nil {
				_ = logger.Cleanup(opts.Log)
			}
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Dialect, "dialect", "", "SQL dialect (postgres|sqlite); defaults to SIFT_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load")

	// Add subcommands
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))

	return cmd
}

// Setup loads configuration and builds the logger unless they are
// already set. It is safe to call more than once.
func (o *RootOptions) Setup() {
	if o.Config == nil {
		var cfg config.Config
		if o.EnvFile != "" {
			cfg = config.Load(o.EnvFile)
		} else {
			cfg = config.Load()
		}
		o.Config = &cfg
	}
	if o.RequestID == "" {
		o.RequestID = uuid.NewString()
	}
	if o.Log == nil {
		level := o.Config.Level()
		if o.Verbose {
			level = logger.LevelDebug
		}
		o.Log = logger.NewLogger(o.Config.ServiceName, level).With(logger.String("request_id", o.RequestID))
	}
}

// dialect resolves the --dialect flag, falling back to the configured driver.
func (o *RootOptions) dialect() (querysql.Dialect, error) {
	name := o.Dialect
	if name == "" {
		name = o.Config.Driver
	}
	return querysql.DialectByName(name)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		RequestID: o.RequestID,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
