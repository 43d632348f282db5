package platform

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/musher-dev/termcursor/internal/ansi"
	cerrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/terminal"
)

const (
	opSetCursorPos = "set cursor position"
	opCursorPos    = "get cursor position"
	opClear        = "clear screen"
)

// maxEmptyReads guards against readers that keep returning (0, nil).
const maxEmptyReads = 100

// maxReplyInput bounds everything read for one query, stray input included.
const maxReplyInput = 512

var errReportTooLong = errors.New("cursor position report exceeds maximum length")

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// ANSI drives a VT-compatible terminal through escape sequences written to
// out. Cursor position reports are read from in.
type ANSI struct {
	in   io.Reader
	out  io.Writer
	opts Options
}

var _ Backend = (*ANSI)(nil)

// NewANSI returns an ANSI backend over the given streams.
func NewANSI(in io.Reader, out io.Writer, opts ...Option) *ANSI {
	return &ANSI{
		in:   in,
		out:  out,
		opts: buildOptions(opts),
	}
}

// SetCursorPos writes CUP for column x, row y.
func (a *ANSI) SetCursorPos(x, y int) error {
	if err := a.write(opSetCursorPos, ansi.MoveZero(x, y)); err != nil {
		return err
	}

	a.opts.Logger.Debug("cursor moved", slog.Int("x", x), slog.Int("y", y))

	return nil
}

// Clear erases the screen and homes the cursor.
func (a *ANSI) Clear() error {
	if err := a.write(opClear, ansi.ClearAndHome()); err != nil {
		return err
	}

	a.opts.Logger.Debug("screen cleared")

	return nil
}

// CursorPos sends DSR 6 and parses the terminal's report.
//
// A terminal input is switched to raw mode for the duration of the query so
// the report is neither echoed nor held back by line buffering.
func (a *ANSI) CursorPos() (x, y int, err error) {
	if terminal.IsFile(a.in) && !terminal.IsTerminal(a.in) {
		return 0, 0, cerrors.NotTerminal(opCursorPos)
	}

	restore, err := terminal.MakeRaw(a.in)
	if err != nil {
		return 0, 0, cerrors.IO(opCursorPos, err)
	}
	defer restore()

	// A report left over from an abandoned query would be taken for this one.
	if f, ok := a.in.(*os.File); ok && terminal.IsTerminal(f) {
		if err := discardPending(f); err != nil {
			a.opts.Logger.Debug("pending input not discarded", slog.String("error", err.Error()))
		}
	}

	if err := a.write(opCursorPos, ansi.RequestCursor); err != nil {
		return 0, 0, err
	}

	reply, err := readReport(a.in, a.opts.ReplyTimeout)
	if err != nil {
		return 0, 0, a.replyError(reply, err)
	}

	if i := bytes.LastIndexByte(reply, ansi.Escape); i > 0 {
		a.opts.Logger.Debug("discarded input before cursor report",
			slog.Int("bytes", i),
			slog.String("text", xansi.Strip(string(reply[:i]))),
		)

		reply = reply[i:]
	}

	row, col, err := ansi.ParseCursorReport(reply)
	if err != nil {
		return 0, 0, cerrors.Parse(reply, err)
	}

	x, y = col-1, row-1
	a.opts.Logger.Debug("cursor position reported", slog.Int("x", x), slog.Int("y", y))

	return x, y, nil
}

func (a *ANSI) replyError(partial []byte, err error) error {
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded) && unfinishedReport(partial):
		return cerrors.Parse(partial, err)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return cerrors.NoReply(opCursorPos, err)
	case errors.Is(err, errReportTooLong):
		return cerrors.Parse(partial, err)
	case errors.Is(err, io.EOF) && len(partial) > 0:
		return cerrors.Parse(partial, io.ErrUnexpectedEOF)
	case errors.Is(err, io.EOF):
		return cerrors.NoReply(opCursorPos, io.ErrUnexpectedEOF)
	default:
		return cerrors.IO(opCursorPos, err)
	}
}

func (a *ANSI) write(op, seq string) error {
	if _, err := io.WriteString(a.out, seq); err != nil {
		return cerrors.IO(op, err)
	}

	if f, ok := a.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return cerrors.IO(op, err)
		}
	}

	return nil
}

// readReport reads one byte at a time until an R that closes a
// report-shaped sequence, so that input following the report stays unread.
// Stray bytes ahead of the report, a lone R included, are kept for the
// caller to discard.
func readReport(r io.Reader, timeout time.Duration) ([]byte, error) {
	src, done := newReplySource(r, timeout)
	defer done()

	reply := make([]byte, 0, 16)
	one := make([]byte, 1)
	empty := 0
	start := -1 // index of the last ESC

	for len(reply) < maxReplyInput {
		n, err := src.Read(one)
		if n == 1 {
			reply = append(reply, one[0])
			empty = 0

			switch {
			case one[0] == ansi.Escape:
				start = len(reply) - 1
			case one[0] == ansi.ReportFinal && ansi.EndsReport(reply):
				return reply, nil
			case start >= 0 && len(reply)-start > ansi.MaxReportLen && reportPrefix(reply[start:]):
				return reply[start:], errReportTooLong
			}

			continue
		}

		if err != nil {
			return reply, err
		}

		if empty++; empty > maxEmptyReads {
			return reply, io.ErrNoProgress
		}
	}

	return reply, errReportTooLong
}

// reportPrefix reports whether seq, which starts at an ESC, could still grow
// into a cursor position report.
func reportPrefix(seq []byte) bool {
	if len(seq) < 2 || seq[1] != '[' {
		return false
	}

	for _, c := range seq[2:] {
		if (c < '0' || c > '9') && c != ';' {
			return false
		}
	}

	return true
}

// unfinishedReport reports whether the input read so far ends in the start of
// a cursor position report.
func unfinishedReport(partial []byte) bool {
	i := bytes.LastIndexByte(partial, ansi.Escape)

	return i >= 0 && reportPrefix(partial[i:])
}
