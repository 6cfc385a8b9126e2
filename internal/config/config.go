// Package config reads process-level configuration from EXPLAIN_-prefixed
// environment variables. Flags layered on top by the CLI take precedence
// over anything read here.
package config

import (
	"os"
	"strconv"
)

const (
	envStorePath     = "EXPLAIN_STORE_PATH"
	envMaxInputBytes = "EXPLAIN_MAX_INPUT_BYTES"
	envDebug         = "EXPLAIN_DEBUG"
)

// DefaultMaxInputBytes caps the length of a single command line.
const DefaultMaxInputBytes = 1000

// Config holds the process-level settings.
type Config struct {
	// StorePath is a file or directory of persisted man-page records.
	StorePath string
	// MaxInputBytes caps the byte length of an Explain input.
	MaxInputBytes int
	// Debug enables verbose diagnostics in the CLI.
	Debug bool
}

// FromEnv builds a Config from the environment, falling back to defaults
// for anything unset or unparsable.
func FromEnv() Config {
	cfg := Config{
		StorePath:     os.Getenv(envStorePath),
		MaxInputBytes: DefaultMaxInputBytes,
	}
	if v := os.Getenv(envMaxInputBytes); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxInputBytes = n
		}
	}
	if v := os.Getenv(envDebug); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	return cfg
}
