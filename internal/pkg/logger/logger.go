// Package logger builds the process logger. Development gets human-readable
// console output; every other environment logs JSON.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates the root logger and installs it as zerolog's global and
// context-default logger, so zerolog.Ctx falls back to it outside a request.
func New(env, level string) zerolog.Logger {
	return newWithWriter(os.Stdout, env, level)
}

func newWithWriter(out io.Writer, env, level string) zerolog.Logger {
	w := out
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Logger()

	log.Logger = zl
	zerolog.DefaultContextLogger = &zl
	return zl
}
