// Package logging builds the zerolog logger shared by the CLI, the TUI and
// the HTTP server.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Options selects format and verbosity.
type Options struct {
	Verbose bool
	JSON    bool
	Quiet   bool
}

// New returns a logger writing to w. Console output is the default; JSON
// is for the server under a process supervisor.
func New(w io.Writer, opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case opts.Quiet:
		level = zerolog.WarnLevel
	case opts.Verbose:
		level = zerolog.DebugLevel
	}

	out := w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
