// Package logger builds the zerolog logger used throughout the service.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
)

// New returns a logger writing to stderr. During development the output is human readable, in all
// other environments it is one JSON object per line.
func New(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stderr
	if cfg.Primary.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, cfg.Log.Level).With().
		Str("service", "contacts-api").
		Str("env", cfg.Primary.Env).
		Logger()
}

// NewWithWriter returns a logger with the given level writing to out. Unknown levels fall back to
// info.
func NewWithWriter(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
