package platform

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cerrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/testutil"
)

func newVirtualANSI(t *testing.T) (*ANSI, *testutil.VirtualTerminal) {
	t.Helper()

	vt := testutil.NewVirtualTerminal(80, 24)

	return NewANSI(vt, vt, WithReplyTimeout(time.Second)), vt
}

func TestANSI_SetCursorPosRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{name: "origin", x: 0, y: 0},
		{name: "column only", x: 42, y: 0},
		{name: "row only", x: 0, y: 17},
		{name: "both", x: 5, y: 10},
		{name: "bottom right", x: 79, y: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, vt := newVirtualANSI(t)

			if err := backend.SetCursorPos(tt.x, tt.y); err != nil {
				t.Fatalf("SetCursorPos() error = %v", err)
			}

			if x, y := vt.Cursor(); x != tt.x || y != tt.y {
				t.Fatalf("terminal cursor = (%d, %d), want (%d, %d)", x, y, tt.x, tt.y)
			}

			x, y, err := backend.CursorPos()
			if err != nil {
				t.Fatalf("CursorPos() error = %v", err)
			}

			if x != tt.x || y != tt.y {
				t.Fatalf("CursorPos() = (%d, %d), want (%d, %d)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestANSI_Sequences(t *testing.T) {
	backend, vt := newVirtualANSI(t)

	if err := backend.SetCursorPos(5, 10); err != nil {
		t.Fatalf("SetCursorPos() error = %v", err)
	}

	if _, _, err := backend.CursorPos(); err != nil {
		t.Fatalf("CursorPos() error = %v", err)
	}

	if err := backend.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if err := backend.SetCursorPos(-2, -7); err != nil {
		t.Fatalf("SetCursorPos(negative) error = %v", err)
	}

	testutil.AssertEscapes(t, vt.Written(), "ansi_sequences.golden")
}

func TestANSI_ClearHomesCursor(t *testing.T) {
	backend, vt := newVirtualANSI(t)

	if _, err := vt.Write([]byte("\x1b[6;10Hhello")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := backend.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got := vt.Screen(); got != "" {
		t.Fatalf("screen after Clear() = %q, want blank", got)
	}

	x, y, err := backend.CursorPos()
	if err != nil {
		t.Fatalf("CursorPos() error = %v", err)
	}

	if x != 0 || y != 0 {
		t.Fatalf("CursorPos() after Clear() = (%d, %d), want (0, 0)", x, y)
	}
}

func TestANSI_MalformedReport(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "non-numeric row", reply: "\x1b[a;1R"},
		{name: "non-numeric column", reply: "\x1b[1;bR"},
		{name: "missing separator", reply: "\x1b[12R"},
		{name: "missing final R", reply: "\x1b[12;4"},
		{name: "no escape", reply: "12;4R"},
		{name: "zero row", reply: "\x1b[0;4R"},
		{name: "runaway report", reply: "\x1b[" + strings.Repeat("1", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, vt := newVirtualANSI(t)
			vt.SetReply(func(int, int) string { return tt.reply })

			x, y, err := backend.CursorPos()
			if !errors.Is(err, cerrors.ErrParse) {
				t.Fatalf("CursorPos() = (%d, %d, %v), want parse error", x, y, err)
			}

			var cursorErr *cerrors.Error
			if !cerrors.As(err, &cursorErr) || cursorErr.Call != cerrors.CallNone {
				t.Fatalf("parse error carries platform call: %#v", cursorErr)
			}
		})
	}
}

func TestANSI_DiscardsInputBeforeReport(t *testing.T) {
	backend, vt := newVirtualANSI(t)

	if err := backend.SetCursorPos(3, 4); err != nil {
		t.Fatalf("SetCursorPos() error = %v", err)
	}

	vt.QueueInput("ab\x1b[A")

	x, y, err := backend.CursorPos()
	if err != nil {
		t.Fatalf("CursorPos() error = %v", err)
	}

	if x != 3 || y != 4 {
		t.Fatalf("CursorPos() = (%d, %d), want (3, 4)", x, y)
	}
}

func TestANSI_StrayInputDoesNotEndQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "lone R", input: "R"},
		{name: "arrow key then R", input: "\x1b[AR"},
		{name: "unfinished sequence", input: "xR\x1b[12;"},
		{name: "text after escape", input: "\x1b[A" + strings.Repeat("typed ", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, vt := newVirtualANSI(t)

			if err := backend.SetCursorPos(4, 7); err != nil {
				t.Fatalf("SetCursorPos() error = %v", err)
			}

			vt.QueueInput(tt.input)

			x, y, err := backend.CursorPos()
			if err != nil {
				t.Fatalf("CursorPos() error = %v", err)
			}

			if x != 4 || y != 7 {
				t.Fatalf("CursorPos() = (%d, %d), want (4, 7)", x, y)
			}

			// The report was consumed, so the next query sees the new position.
			if err := backend.SetCursorPos(10, 2); err != nil {
				t.Fatalf("SetCursorPos() error = %v", err)
			}

			x, y, err = backend.CursorPos()
			if err != nil {
				t.Fatalf("second CursorPos() error = %v", err)
			}

			if x != 10 || y != 2 {
				t.Fatalf("second CursorPos() = (%d, %d), want (10, 2)", x, y)
			}
		})
	}
}

func TestANSI_NoReply(t *testing.T) {
	backend, vt := newVirtualANSI(t)
	vt.Silence()

	_, _, err := backend.CursorPos()
	if !errors.Is(err, cerrors.ErrIO) {
		t.Fatalf("CursorPos() error = %v, want I/O error", err)
	}

	if !errors.Is(err, cerrors.ErrNoReply) {
		t.Fatalf("CursorPos() error = %v, want ErrNoReply", err)
	}

	if vt.Requests() != 1 {
		t.Fatalf("terminal saw %d requests, want 1", vt.Requests())
	}
}

func TestANSI_RegularFileInputIsNotTerminal(t *testing.T) {
	in, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer in.Close()

	var out bytes.Buffer

	backend := NewANSI(in, &out)

	_, _, err = backend.CursorPos()
	if !errors.Is(err, cerrors.ErrNotTerminal) {
		t.Fatalf("CursorPos() error = %v, want ErrNotTerminal", err)
	}

	if out.Len() != 0 {
		t.Fatalf("request written to non-interactive terminal: %q", out.String())
	}
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestANSI_WriteFailures(t *testing.T) {
	writeErr := errors.New("broken pipe")
	backend := NewANSI(strings.NewReader(""), failingWriter{err: writeErr})

	ops := map[string]func() error{
		"SetCursorPos": func() error { return backend.SetCursorPos(1, 1) },
		"Clear":        backend.Clear,
		"CursorPos": func() error {
			_, _, err := backend.CursorPos()
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := op()
			if !errors.Is(err, cerrors.ErrIO) {
				t.Fatalf("%s() error = %v, want I/O error", name, err)
			}

			if !errors.Is(err, writeErr) {
				t.Fatalf("%s() error = %v, want wrapped %v", name, err, writeErr)
			}
		})
	}
}

func TestANSI_FlushesBufferedWriter(t *testing.T) {
	var out bytes.Buffer

	w := bufio.NewWriter(&out)
	backend := NewANSI(strings.NewReader(""), w)

	if err := backend.SetCursorPos(0, 2); err != nil {
		t.Fatalf("SetCursorPos() error = %v", err)
	}

	if got, want := out.String(), "\x1b[3;1H"; got != want {
		t.Fatalf("flushed output = %q, want %q", got, want)
	}
}

// stallReader never produces data and honours read deadlines, like a
// terminal that ignores DSR.
type stallReader struct {
	deadline time.Time
}

func (s *stallReader) SetReadDeadline(t time.Time) error {
	s.deadline = t
	return nil
}

func (s *stallReader) Read([]byte) (int, error) {
	if s.deadline.IsZero() {
		return 0, fmt.Errorf("read without deadline")
	}

	time.Sleep(time.Until(s.deadline))

	return 0, os.ErrDeadlineExceeded
}

func TestANSI_ReplyTimeoutUsesReadDeadline(t *testing.T) {
	in := &stallReader{}
	backend := NewANSI(in, io.Discard, WithReplyTimeout(20*time.Millisecond))

	start := time.Now()
	_, _, err := backend.CursorPos()

	if !errors.Is(err, cerrors.ErrNoReply) {
		t.Fatalf("CursorPos() error = %v, want ErrNoReply", err)
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("CursorPos() took %v with a 20ms timeout", elapsed)
	}

	if !in.deadline.IsZero() {
		t.Fatal("read deadline not cleared after the query")
	}
}
