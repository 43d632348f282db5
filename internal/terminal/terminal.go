// Package terminal provides terminal detection and capabilities.
//
// This package handles:
//   - TTY detection for stdin/stdout
//   - NO_COLOR environment variable support
//   - Raw mode for the duration of a cursor position query
package terminal

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Info holds terminal capability information.
type Info struct {
	IsTTY      bool
	StdinIsTTY bool
	NoColor    bool
	Term       string
	Width      int
	Height     int
	ForceFlag  bool // Set when --no-color flag is used
}

// Detect returns terminal information for the current environment.
func Detect() *Info {
	stdoutFD := int(os.Stdout.Fd())
	isTTY := term.IsTerminal(stdoutFD)

	width, height := 80, 24 // sensible defaults

	if isTTY {
		if w, h, err := term.GetSize(stdoutFD); err == nil {
			width, height = w, h
		}
	}

	// Check NO_COLOR environment variable (https://no-color.org/)
	_, noColor := os.LookupEnv("NO_COLOR")

	termName := os.Getenv("TERM")

	// Treat TERM=dumb as no-color (terminals that don't support escape sequences)
	if termName == "dumb" {
		noColor = true
	}

	return &Info{
		IsTTY:      isTTY,
		StdinIsTTY: term.IsTerminal(int(os.Stdin.Fd())),
		NoColor:    noColor,
		Term:       termName,
		Width:      width,
		Height:     height,
	}
}

// ColorEnabled returns true if colored output should be used.
func (t *Info) ColorEnabled() bool {
	if t.ForceFlag {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// SupportsEscapes returns false for TERM values known not to interpret
// escape sequences.
func (t *Info) SupportsEscapes() bool {
	name := strings.ToLower(strings.TrimSpace(t.Term))
	return name != "" && name != "dumb"
}

// fder is implemented by *os.File and anything else backed by a descriptor.
type fder interface {
	Fd() uintptr
}

// IsFile reports whether v is backed by a file descriptor.
func IsFile(v any) bool {
	_, ok := v.(fder)
	return ok
}

// IsTerminal reports whether v is backed by a terminal file descriptor.
func IsTerminal(v any) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// MakeRaw puts r into raw mode when it is a terminal and returns a function
// that restores the previous state. For anything else it is a no-op.
func MakeRaw(r io.Reader) (restore func(), err error) {
	f, ok := r.(fder)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}, nil
	}

	fd := int(f.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return func() {
		_ = term.Restore(fd, state)
	}, nil
}
