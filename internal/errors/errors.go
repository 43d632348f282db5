// Package errors defines the error taxonomy shared by every cursor backend.
//
// An Error always carries a Kind (I/O, reply parse, platform call). Platform
// errors additionally name the console API Call that failed; the Call is
// CallNone on every other path.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind int

const (
	// KindIO wraps a failed read, write or flush on the terminal stream.
	KindIO Kind = iota + 1
	// KindParse reports a cursor position reply that did not match ESC[row;colR.
	KindParse
	// KindPlatform reports a failed console API call.
	KindPlatform
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindPlatform:
		return "platform"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Call names a Windows console API.
type Call int

const (
	CallNone Call = iota
	CallGetStdHandle
	CallGetConsoleScreenBufferInfo
	CallFillConsoleOutputCharacter
	CallFillConsoleOutputAttribute
	CallSetConsoleCursorPosition
)

func (c Call) String() string {
	switch c {
	case CallNone:
		return ""
	case CallGetStdHandle:
		return "GetStdHandle"
	case CallGetConsoleScreenBufferInfo:
		return "GetConsoleScreenBufferInfo"
	case CallFillConsoleOutputCharacter:
		return "FillConsoleOutputCharacter"
	case CallFillConsoleOutputAttribute:
		return "FillConsoleOutputAttribute"
	case CallSetConsoleCursorPosition:
		return "SetConsoleCursorPosition"
	default:
		return fmt.Sprintf("Call(%d)", int(c))
	}
}

// Sentinels matched by Error.Is against the Kind of an Error.
var (
	ErrIO       = errors.New("terminal i/o failed")
	ErrParse    = errors.New("malformed cursor position report")
	ErrPlatform = errors.New("console api call failed")
)

// Causes produced by the library itself rather than the OS.
var (
	// ErrNoReply means the terminal did not answer a cursor position request
	// before the reply timeout.
	ErrNoReply = errors.New("no cursor position report received")

	// ErrNotTerminal means the input stream is a regular file or pipe and
	// cannot answer a cursor position request.
	ErrNotTerminal = errors.New("input is not a terminal")
)

// Error is the error returned by every cursor operation.
type Error struct {
	// Kind is the failure family.
	Kind Kind

	// Call is the failing console API. CallNone unless Kind is KindPlatform.
	Call Call

	// Op is the operation that failed, e.g. "set cursor position".
	Op string

	// Message is a short human-readable summary.
	Message string

	// Hint carries extra context, such as how much of a clear was applied.
	Hint string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("termcursor: ")

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	if e.Call != CallNone {
		b.WriteString(" (")
		b.WriteString(e.Call.String())
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrParse:
		return e.Kind == KindParse
	case ErrPlatform:
		return e.Kind == KindPlatform
	}

	return false
}

// WithHint adds a hint to the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with Error.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// KindOf returns the Kind of the first Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// --- Constructors ---

// IO wraps a stream failure during op.
func IO(op string, cause error) *Error {
	return &Error{
		Kind:    KindIO,
		Op:      op,
		Message: "terminal i/o failed",
		Cause:   cause,
	}
}

// NoReply reports that no cursor position report arrived. cause is the
// deadline error from the reader, if any.
func NoReply(op string, cause error) *Error {
	wrapped := ErrNoReply
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", ErrNoReply, cause)
	}

	return &Error{
		Kind:    KindIO,
		Op:      op,
		Message: "terminal did not answer",
		Hint:    "the terminal may not support cursor position reports, or output is redirected",
		Cause:   wrapped,
	}
}

// NotTerminal reports a cursor query against a non-interactive input.
func NotTerminal(op string) *Error {
	return &Error{
		Kind:    KindIO,
		Op:      op,
		Message: "cannot query cursor position",
		Hint:    "stdin must be an interactive terminal",
		Cause:   ErrNotTerminal,
	}
}

// Parse reports a malformed cursor position reply.
func Parse(reply []byte, cause error) *Error {
	return &Error{
		Kind:    KindParse,
		Op:      "get cursor position",
		Message: fmt.Sprintf("malformed reply %q", reply),
		Cause:   cause,
	}
}

// Platform reports a failed console API call.
func Platform(op string, call Call, cause error) *Error {
	return &Error{
		Kind:    KindPlatform,
		Call:    call,
		Op:      op,
		Message: "console call failed",
		Cause:   cause,
	}
}
