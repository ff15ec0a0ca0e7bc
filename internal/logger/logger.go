// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger writing to stderr at the given level. In
// development the output goes through a ConsoleWriter for readability.
func New(env, level string) zerolog.Logger {
	return build(os.Stderr, env, level)
}

func build(w io.Writer, env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	l := zerolog.New(w).With().Timestamp().Logger()
	if strings.EqualFold(env, "development") || strings.EqualFold(env, "dev") {
		l = l.Output(zerolog.ConsoleWriter{Out: w})
	}
	return l.Level(lvl)
}
