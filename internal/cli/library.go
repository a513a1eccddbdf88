package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/libris/internal/circulation"
	"github.com/roach88/libris/internal/config"
	"github.com/roach88/libris/internal/store"
)

// envFile is the dotenv file read from the working directory.
const envFile = ".env"

// resolveConfig applies, in order: defaults, the --config file (or
// LIBRIS_CONFIG), LIBRIS_* environment variables, then the --data-dir and
// --journal flags.
func resolveConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, error) {
	env, err := config.ReadEnv(envFile)
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	path := opts.Config
	if path == "" {
		path = env[config.EnvConfig]
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	cfg, err = cfg.WithEnv(env)
	if err != nil {
		return cfg, err
	}

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if f := cmd.Flag("journal"); f != nil && f.Changed {
		cfg.Journal = opts.Journal
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger returns a text logger on the command's stderr.
func newLogger(cmd *cobra.Command, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

// openLibrary resolves configuration, sets up logging and opens the library.
// The caller must Close the returned service.
func openLibrary(opts *RootOptions, cmd *cobra.Command) (*circulation.Service, error) {
	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cmd, cfg.Level())
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
	}

	logger.Debug("opening library",
		"books", cfg.BooksPath(), "members", cfg.MembersPath(), "journal", cfg.JournalPath())
	svc, err := circulation.Open(commandContext(cmd), circulation.Paths{
		Books:   cfg.BooksPath(),
		Members: cfg.MembersPath(),
		Journal: cfg.JournalPath(),
	}, circulation.WithLogger(logger))
	if err != nil {
		if store.IsMalformed(err) {
			return nil, WrapExitError(ExitCommandError, "library tables are malformed", err)
		}
		return nil, WrapExitError(ExitCommandError, "failed to open library", err)
	}
	return svc, nil
}

// closeLibrary closes svc, logging rather than returning a close error.
func closeLibrary(svc *circulation.Service) {
	if err := svc.Close(); err != nil {
		slog.Error("error closing library", "error", err)
	}
}

// commandContext returns the command's context, or Background when run
// outside Execute (as some tests do).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// invalidBookIDMessage is shown when a book id cannot be stored.
const invalidBookIDMessage = "Book ID must not be empty or contain '|'"

// outcomeCode maps a refused transition to its JSON error code.
func outcomeCode(kind circulation.OutcomeKind) string {
	switch kind {
	case circulation.OutcomeMemberNotFound:
		return CodeMemberNotFound
	case circulation.OutcomeBookNotFound:
		return CodeBookNotFound
	case circulation.OutcomeAlreadyBorrowed:
		return CodeAlreadyBorrowed
	case circulation.OutcomeNotBorrowed:
		return CodeNotBorrowed
	default:
		return string(kind)
	}
}

// persistenceError wraps a storage fault from a service call.
func persistenceError(op string, err error) error {
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: failed to save library", op), err)
}
