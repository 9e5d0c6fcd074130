package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/config"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// EnvFiles are the dotenv files read before INCIMINE_* overrides.
	// Nil means ".env" in the working directory.
	EnvFiles []string

	// Now and RunIDs allow overriding the clock and run ID source (for testing).
	Now    func() time.Time
	RunIDs analysis.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the incimine CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incimine",
		Short: "incimine - incident association-rule mining",
		Long: `Record incidents in SQLite and mine association rules across their
attributes (severity, category, service, root cause, tags, ...) with Apriori.`,
		Version:       model.EngineVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config, then incidents.db)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (.cue, .toml, .yaml)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSetStatusCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// formatter builds the output formatter for cmd.
// Verbose logs go to stderr to avoid corrupting JSON.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on w, at debug level when verbose and
// warnings otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// loadConfig resolves configuration: defaults, then the --config file,
// then the environment, then --db, then each override in order. The
// result is validated before any command does work.
func (o *RootOptions) loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(o.EnvFiles...); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to apply environment", err)
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	for _, apply := range overrides {
		apply(cfg)
	}
	if cfg.Mining.Workers == 0 {
		cfg.Mining.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "configuration rejected", err)
	}
	return cfg, nil
}

// openStore loads config and opens its database.
func (o *RootOptions) openStore(overrides ...func(*config.Config)) (*config.Config, *store.Store, error) {
	cfg, err := o.loadConfig(overrides...)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		e := WrapExitError(ExitCommandError, "failed to open database", err)
		e.ErrCode = ErrCodeDatabase
		return nil, nil, e
	}
	return cfg, st, nil
}

// failure reports err through f and returns it as an ExitError that
// Execute will not print again.
func failure(f *OutputFormatter, err error) error {
	code := ErrorCode(err)
	_ = f.Error(code, err.Error(), nil)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		exitErr = WrapExitError(ExitCommandError, "command failed", err)
	}
	exitErr.reported = true
	return exitErr
}

// Execute runs the root command with ctx and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if !exitErr.reported {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return exitErr.Code
		}
		// cobra usage errors: unknown flags, wrong argument counts
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCommandError
	}
	return ExitSuccess
}
