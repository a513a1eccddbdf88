package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, filepath.Join(".", "books.csv"), cfg.BooksPath())
	assert.Equal(t, filepath.Join(".", "members.csv"), cfg.MembersPath())
	assert.Equal(t, filepath.Join(".", "circulation.db"), cfg.JournalPath())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestParse_OverridesDefaults(t *testing.T) {
	src := `
data_dir:  "/srv/library"
books_file: "catalog.csv"
log_level: "debug"
`
	cfg, err := Parse("libris.cue", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "/srv/library/catalog.csv", cfg.BooksPath())
	assert.Equal(t, "/srv/library/members.csv", cfg.MembersPath())
	assert.Equal(t, "/srv/library/circulation.db", cfg.JournalPath())
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParse_EmptyJournalDisables(t *testing.T) {
	cfg, err := Parse("libris.cue", []byte(`journal: ""`))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.JournalPath())
}

func TestParse_AbsolutePathsKept(t *testing.T) {
	cfg, err := Parse("libris.cue", []byte(`
data_dir: "/data"
journal:  "/var/log/libris.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/log/libris.db", cfg.JournalPath())
}

func TestParse_EmptyFile(t *testing.T) {
	cfg, err := Parse("libris.cue", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown field", `books: "x.csv"`},
		{"wrong type", `data_dir: 42`},
		{"bad log level", `log_level: "trace"`},
		{"empty data dir", `data_dir: ""`},
		{"syntax error", `data_dir: "unterminated`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("libris.cue", []byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libris.cue")
	require.NoError(t, os.WriteFile(path, []byte(`members_file: "people.csv"`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "people.csv", cfg.MembersFile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: in}.Level(), in)
	}
}
