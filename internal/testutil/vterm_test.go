package testutil

import (
	"errors"
	"io"
	"testing"
)

func TestVirtualTerminal_AnswersCursorRequest(t *testing.T) {
	vt := NewVirtualTerminal(80, 24)

	if _, err := vt.Write([]byte("\x1b[11;6H\x1b[6n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if x, y := vt.Cursor(); x != 5 || y != 10 {
		t.Fatalf("Cursor() = (%d, %d), want (5, 10)", x, y)
	}

	reply, err := io.ReadAll(vt)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if got, want := string(reply), "\x1b[11;6R"; got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}

	if vt.Requests() != 1 {
		t.Fatalf("Requests() = %d, want 1", vt.Requests())
	}
}

func TestVirtualTerminal_Silence(t *testing.T) {
	vt := NewVirtualTerminal(80, 24)
	vt.Silence()

	if _, err := vt.Write([]byte("\x1b[6n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	buf := make([]byte, 8)
	if _, err := vt.Read(buf); !errors.Is(err, io.EOF) {
		t.Fatalf("Read() error = %v, want io.EOF", err)
	}

	vt.Resume()

	if _, err := vt.Write([]byte("\x1b[6n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	n, err := vt.Read(buf)
	if err != nil || string(buf[:n]) != "\x1b[1;1R" {
		t.Fatalf("Read() after Resume() = %q, %v, want the origin report", buf[:n], err)
	}
}

func TestVirtualTerminal_Screen(t *testing.T) {
	vt := NewVirtualTerminal(20, 5)

	if _, err := vt.Write([]byte("\x1b[2;3Hhi")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got, want := vt.Screen(), "\n  hi"; got != want {
		t.Fatalf("Screen() = %q, want %q", got, want)
	}

	if _, err := vt.Write([]byte("\x1b[2J\x1b[H")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := vt.Screen(); got != "" {
		t.Fatalf("Screen() after clear = %q, want empty", got)
	}
}
