package testutil

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/hinshun/vt10x"
)

const cursorRequest = "\x1b[6n"

// VirtualTerminal is an in-memory VT terminal. Bytes written to it are
// interpreted by a vt10x emulator; every cursor position request (ESC[6n)
// queues a report that can be read back from it.
//
// Read returns io.EOF when no report is pending, which models a terminal
// that never answers. The emulator is only touched under mu.
type VirtualTerminal struct {
	mu       sync.Mutex
	vt       vt10x.Terminal
	written  bytes.Buffer
	pending  bytes.Buffer
	silent   bool
	reply    func(x, y int) string
	requests int
}

// NewVirtualTerminal returns a cols x rows terminal with the cursor at the
// origin.
func NewVirtualTerminal(cols, rows int) *VirtualTerminal {
	return &VirtualTerminal{
		vt: vt10x.New(vt10x.WithSize(cols, rows), vt10x.WithWriter(io.Discard)),
	}
}

// Write feeds p to the emulator, answering cursor position requests.
func (v *VirtualTerminal) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.written.Write(p)

	rest := p
	for {
		i := bytes.Index(rest, []byte(cursorRequest))
		if i < 0 {
			break
		}

		if _, err := v.vt.Write(rest[:i]); err != nil {
			return 0, err
		}

		v.answerLocked()
		rest = rest[i+len(cursorRequest):]
	}

	if _, err := v.vt.Write(rest); err != nil {
		return 0, err
	}

	return len(p), nil
}

// Read drains pending reports.
func (v *VirtualTerminal) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pending.Len() == 0 {
		return 0, io.EOF
	}

	return v.pending.Read(p)
}

func (v *VirtualTerminal) answerLocked() {
	v.requests++

	if v.silent {
		return
	}

	x, y := v.cursorLocked()

	if v.reply != nil {
		v.pending.WriteString(v.reply(x, y))
		return
	}

	fmt.Fprintf(&v.pending, "\x1b[%d;%dR", y+1, x+1)
}

func (v *VirtualTerminal) cursorLocked() (x, y int) {
	c := v.vt.Cursor()

	return c.X, c.Y
}

// Cursor returns the emulator's 0-based cursor column and row.
func (v *VirtualTerminal) Cursor() (x, y int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.cursorLocked()
}

// Silence stops the terminal from answering cursor position requests.
func (v *VirtualTerminal) Silence() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.silent = true
}

// Resume undoes Silence.
func (v *VirtualTerminal) Resume() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.silent = false
}

// SetReply replaces the report sent for each request. reply receives the
// 0-based cursor position.
func (v *VirtualTerminal) SetReply(reply func(x, y int) string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.reply = reply
}

// QueueInput appends bytes to the input stream ahead of any report, like
// keystrokes typed while a query is in flight.
func (v *VirtualTerminal) QueueInput(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pending.WriteString(s)
}

// Requests returns how many cursor position requests were received.
func (v *VirtualTerminal) Requests() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.requests
}

// Written returns every byte written to the terminal so far.
func (v *VirtualTerminal) Written() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	return bytes.Clone(v.written.Bytes())
}

// Screen returns the visible text with trailing blanks trimmed from each
// row and trailing empty rows dropped.
func (v *VirtualTerminal) Screen() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	lines := strings.Split(xansi.Strip(v.vt.String()), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \x00")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
