package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/scriptplan/internal/config"
	"github.com/roach88/scriptplan/internal/ingest"
	"github.com/roach88/scriptplan/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // overrides SCRIPTPLAN_DB

	// Config is loaded from the environment on first use. Tests may set it.
	Config *config.Config

	// Logger defaults to config.SetupLogger on the command's stderr.
	Logger *slog.Logger

	// IDs overrides asset id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs ingest.IDGenerator

	closeLog func() error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the scriptplan CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scriptplan",
		Short: "scriptplan - tracking script migration planner",
		Long: `Plan the migration of legacy storefront tracking scripts.

Ingest classified scripts, infer which scripts must move before which,
and get a dependency-respecting migration order with a priority and a
time estimate per script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $SCRIPTPLAN_DB or scriptplan.db)")

	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewGraphCommand(opts))
	cmd.AddCommand(NewAssetsCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code. Errors
// are reported on stdout as a JSON envelope when --format json is set, and
// on stderr otherwise.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if closeErr := opts.close(); err == nil && closeErr != nil {
		err = WrapExitError(ExitFailure, "failed to close log file", closeErr)
	}
	if err == nil {
		return ExitSuccess
	}

	// Flag and argument errors come from cobra, not from a command.
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		err = WrapExitError(ExitCommandError, "invalid usage", err)
	}

	f := &OutputFormatter{Format: "text", Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == "json" {
		f.Format = "json"
		f.Writer = stdout
	}
	var details any
	if exitErr != nil && exitErr.Err != nil {
		details = exitErr.Err.Error()
	}
	_ = f.Error(errorCode(err), err.Error(), details)

	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func (o *RootOptions) config() config.Config {
	if o.Config == nil {
		cfg := config.Load()
		o.Config = &cfg
	}
	return *o.Config
}

func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	cfg := o.config()
	level := cfg.LogLevel
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger, o.closeLog = config.SetupLogger(cmd.ErrOrStderr(), cfg.LogFile, level)
	return o.Logger
}

func (o *RootOptions) close() error {
	if o.closeLog == nil {
		return nil
	}
	err := o.closeLog()
	o.closeLog = nil
	return err
}

func (o *RootOptions) dbPath() string {
	if o.Database != "" {
		return o.Database
	}
	return o.config().DBPath
}

// openStore opens the configured database, creating it if needed.
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	path := o.dbPath()
	o.logger(cmd).Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(logger *slog.Logger, st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
