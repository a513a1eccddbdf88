// Package config resolves where libris keeps its state.
//
// Resolution order: built-in defaults, then an optional CUE config file, then
// LIBRIS_* environment variables (a .env file included), then command-line
// flags (applied by the cli package). The file is unified with a
// closed schema, so unknown fields and wrong types are rejected with CUE's
// positioned error messages.
//
//	// libris.cue
//	data_dir:  "/var/lib/libris"
//	journal:   "circulation.db"
//	log_level: "debug"
//
// Relative table and journal paths are resolved against data_dir.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

const (
	DefaultBooksFile   = "books.csv"
	DefaultMembersFile = "members.csv"
	DefaultJournalFile = "circulation.db"
)

// schema constrains config files. Every field is optional.
const schema = `
close({
	data_dir?:     string & !=""
	books_file?:   string & !=""
	members_file?: string & !=""
	journal?:      string
	log_level?:    "debug" | "info" | "warn" | "error"
})
`

// Config holds the resolved settings.
type Config struct {
	DataDir     string `json:"data_dir"`
	BooksFile   string `json:"books_file"`
	MembersFile string `json:"members_file"`
	// Journal is the journal file name or path. "" disables journaling.
	Journal  string `json:"journal"`
	LogLevel string `json:"log_level"`
}

// Default returns the built-in settings: state in the working directory.
func Default() Config {
	return Config{
		DataDir:     ".",
		BooksFile:   DefaultBooksFile,
		MembersFile: DefaultMembersFile,
		Journal:     DefaultJournalFile,
		LogLevel:    "info",
	}
}

// fileConfig mirrors Config with pointers so absent fields can be told apart
// from empty ones (journal: "" disables the journal).
type fileConfig struct {
	DataDir     *string `json:"data_dir"`
	BooksFile   *string `json:"books_file"`
	MembersFile *string `json:"members_file"`
	Journal     *string `json:"journal"`
	LogLevel    *string `json:"log_level"`
}

// Load reads a CUE config file and applies it over Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates CUE source and applies it over Default().
// filename is used only in error positions.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema, cue.Filename("schema.cue"))
	if err := schemaVal.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	val := ctx.CompileBytes(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	unified := schemaVal.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg := Default()
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.DataDir, fc.DataDir)
	set(&cfg.BooksFile, fc.BooksFile)
	set(&cfg.MembersFile, fc.MembersFile)
	set(&cfg.Journal, fc.Journal)
	set(&cfg.LogLevel, fc.LogLevel)
	return cfg, nil
}

// BooksPath returns the book table path.
func (c Config) BooksPath() string {
	return c.resolve(c.BooksFile)
}

// MembersPath returns the member table path.
func (c Config) MembersPath() string {
	return c.resolve(c.MembersFile)
}

// JournalPath returns the journal path, or "" when journaling is disabled.
func (c Config) JournalPath() string {
	if c.Journal == "" {
		return ""
	}
	return c.resolve(c.Journal)
}

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
