package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// levelFor maps the number of -v flags to a log level.
func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity >= 3:
		return zerolog.TraceLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// newLogger returns a console logger writing to w.
func newLogger(w io.Writer, verbosity int) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(levelFor(verbosity)).
		With().
		Timestamp().
		Logger()
}
