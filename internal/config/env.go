package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ReadEnv.
const (
	EnvConfig   = "LIBRIS_CONFIG"
	EnvDataDir  = "LIBRIS_DATA_DIR"
	EnvJournal  = "LIBRIS_JOURNAL"
	EnvLogLevel = "LIBRIS_LOG_LEVEL"
)

const envPrefix = "LIBRIS_"

// ReadEnv collects LIBRIS_* settings from dotenv files and the process
// environment. Later files override earlier ones and the process environment
// overrides every file. Missing files are skipped.
func ReadEnv(files ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range vars {
			if strings.HasPrefix(k, envPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, envPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// WithEnv returns c with the settings in env applied. A present but empty
// LIBRIS_JOURNAL disables the journal; an empty LIBRIS_DATA_DIR is ignored.
func (c Config) WithEnv(env map[string]string) (Config, error) {
	if v := env[EnvDataDir]; v != "" {
		c.DataDir = v
	}
	if v, ok := env[EnvJournal]; ok {
		c.Journal = v
	}
	if v, ok := env[EnvLogLevel]; ok && v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			c.LogLevel = v
		default:
			return c, fmt.Errorf("invalid %s %q: must be debug, info, warn or error", EnvLogLevel, v)
		}
	}
	return c, nil
}
