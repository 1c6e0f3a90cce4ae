// Package logger builds the process-wide zerolog logger for the gate
// binaries. Console output goes to stderr so result JSON on stdout stays
// machine-readable.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger at the given level. An empty or unknown
// level falls back to info instead of failing startup.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
