// Package platform implements the three cursor primitives for each terminal
// model: escape sequences over a byte stream (ANSI) and the Windows console
// API (Console).
package platform

import (
	"log/slog"
	"time"

	"github.com/musher-dev/termcursor/internal/observability"
)

// DefaultReplyTimeout bounds how long CursorPos waits for a cursor position
// report on the ANSI backend.
const DefaultReplyTimeout = time.Second

// Backend is the capability set every terminal model provides.
type Backend interface {
	// SetCursorPos moves the cursor to 0-based column x, row y.
	SetCursorPos(x, y int) error
	// CursorPos returns the 0-based column and row of the cursor.
	CursorPos() (x, y int, err error)
	// Clear blanks every cell and moves the cursor to the origin.
	Clear() error
}

// Options configures a backend.
type Options struct {
	// ReplyTimeout bounds the cursor position report read. Zero or less
	// blocks until the terminal answers.
	ReplyTimeout time.Duration

	// Logger receives debug records. Nil discards.
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithReplyTimeout sets Options.ReplyTimeout.
func WithReplyTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReplyTimeout = d
	}
}

// WithLogger sets Options.Logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func buildOptions(opts []Option) Options {
	o := Options{ReplyTimeout: DefaultReplyTimeout}

	for _, opt := range opts {
		opt(&o)
	}

	if o.Logger == nil {
		o.Logger = observability.Discard()
	}

	return o
}
