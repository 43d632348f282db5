package termcursor

import (
	"io"
	"log/slog"
	"strings"
	"time"

	cerrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/observability"
	"github.com/musher-dev/termcursor/internal/platform"
)

// Backend is the set of primitives every terminal model implements.
type Backend = platform.Backend

// DefaultReplyTimeout bounds the wait for a cursor position report.
const DefaultReplyTimeout = platform.DefaultReplyTimeout

// Error is returned by every operation in this package.
type Error = cerrors.Error

// Kind classifies an Error.
type Kind = cerrors.Kind

// Error kinds.
const (
	KindIO       = cerrors.KindIO
	KindParse    = cerrors.KindParse
	KindPlatform = cerrors.KindPlatform
)

// Call names the console API behind a KindPlatform Error.
type Call = cerrors.Call

// Console API calls.
const (
	CallNone                       = cerrors.CallNone
	CallGetStdHandle               = cerrors.CallGetStdHandle
	CallGetConsoleScreenBufferInfo = cerrors.CallGetConsoleScreenBufferInfo
	CallFillConsoleOutputCharacter = cerrors.CallFillConsoleOutputCharacter
	CallFillConsoleOutputAttribute = cerrors.CallFillConsoleOutputAttribute
	CallSetConsoleCursorPosition   = cerrors.CallSetConsoleCursorPosition
)

var (
	ErrIO       = cerrors.ErrIO
	ErrParse    = cerrors.ErrParse
	ErrPlatform = cerrors.ErrPlatform

	// ErrNoReply is wrapped by the I/O error returned when the terminal does
	// not answer a cursor position request in time.
	ErrNoReply = cerrors.ErrNoReply

	// ErrNotTerminal is wrapped by the I/O error returned when the cursor is
	// queried through a regular file or pipe.
	ErrNotTerminal = cerrors.ErrNotTerminal
)

// Terminal applies cursor operations to one backend.
type Terminal struct {
	backend Backend
	logger  *slog.Logger
}

type options struct {
	backend Backend
	in      io.Reader
	out     io.Writer
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithBackend uses b instead of the platform default. Timeout and logger
// options do not apply to it.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithStreams drives the terminal with escape sequences written to out and
// reads cursor position reports from in. A nil in never answers.
func WithStreams(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithTimeout sets how long CursorPos waits for the terminal's report. Zero
// or less waits indefinitely. It has no effect on the Windows console.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sends debug records to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New returns a Terminal. Without WithBackend or WithStreams it targets the
// process's own terminal: the console on Windows, stdin/stdout elsewhere.
func New(opts ...Option) *Terminal {
	o := options{timeout: DefaultReplyTimeout}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = observability.Discard()
	}

	backendOpts := []platform.Option{
		platform.WithReplyTimeout(o.timeout),
		platform.WithLogger(o.logger),
	}

	var backend Backend

	switch {
	case o.backend != nil:
		backend = o.backend
	case o.out != nil:
		in := o.in
		if in == nil {
			in = strings.NewReader("")
		}

		backend = platform.NewANSI(in, o.out, backendOpts...)
	default:
		backend = platform.Default(backendOpts...)
	}

	return &Terminal{backend: backend, logger: o.logger}
}

// Backend returns the backend t drives.
func (t *Terminal) Backend() Backend {
	return t.backend
}

// SetCursorPos moves the cursor to column x, row y.
func (t *Terminal) SetCursorPos(x, y int) error {
	return t.backend.SetCursorPos(x, y)
}

// CursorPos returns the cursor's column and row.
func (t *Terminal) CursorPos() (x, y int, err error) {
	return t.backend.CursorPos()
}

// Clear blanks the screen and moves the cursor to (0, 0).
func (t *Terminal) Clear() error {
	return t.backend.Clear()
}

// Render applies cmds in order and returns the first error unchanged.
// Commands after a failure are not applied.
func (t *Terminal) Render(cmds ...Command) error {
	for i, cmd := range cmds {
		if err := cmd.Apply(t.backend); err != nil {
			t.logger.Debug("render stopped",
				slog.String("command", cmd.String()),
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)

			return err
		}
	}

	return nil
}

// SetCursorPos moves the process terminal's cursor to column x, row y.
func SetCursorPos(x, y int) error {
	return New().SetCursorPos(x, y)
}

// CursorPos returns the process terminal's cursor column and row.
func CursorPos() (x, y int, err error) {
	return New().CursorPos()
}

// Clear blanks the process terminal and moves the cursor to (0, 0).
func Clear() error {
	return New().Clear()
}

// Render applies cmds to the process terminal.
func Render(cmds ...Command) error {
	return New().Render(cmds...)
}
