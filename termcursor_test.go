package termcursor

import (
	"errors"
	"fmt"
	"testing"

	cerrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/testutil"
)

func newVirtual(t *testing.T) (*Terminal, *testutil.VirtualTerminal) {
	t.Helper()

	vt := testutil.NewVirtualTerminal(80, 24)

	return New(WithStreams(vt, vt)), vt
}

func assertCursor(t *testing.T, term *Terminal, wantX, wantY int) {
	t.Helper()

	x, y, err := term.CursorPos()
	if err != nil {
		t.Fatalf("CursorPos() error = %v", err)
	}

	if x != wantX || y != wantY {
		t.Fatalf("CursorPos() = (%d, %d), want (%d, %d)", x, y, wantX, wantY)
	}
}

func TestTerminal_SetCursorPosRoundTrip(t *testing.T) {
	for _, y := range []int{0, 1, 12, 23} {
		for _, x := range []int{0, 1, 40, 79} {
			t.Run(fmt.Sprintf("%d,%d", x, y), func(t *testing.T) {
				term, _ := newVirtual(t)

				if err := term.SetCursorPos(x, y); err != nil {
					t.Fatalf("SetCursorPos() error = %v", err)
				}

				assertCursor(t, term, x, y)
			})
		}
	}
}

func TestTerminal_ClearThenCursorPos(t *testing.T) {
	term, _ := newVirtual(t)

	if err := term.SetCursorPos(30, 7); err != nil {
		t.Fatalf("SetCursorPos() error = %v", err)
	}

	if err := term.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	assertCursor(t, term, 0, 0)
}

func TestRender_Relative(t *testing.T) {
	tests := []struct {
		name         string
		dx, dy       int
		wantX, wantY int
	}{
		{name: "zero", dx: 0, dy: 0, wantX: 20, wantY: 10},
		{name: "right and down", dx: 7, dy: 3, wantX: 27, wantY: 13},
		{name: "left and up", dx: -5, dy: -4, wantX: 15, wantY: 6},
		{name: "to origin", dx: -20, dy: -10, wantX: 0, wantY: 0},
		{name: "past left edge", dx: -50, dy: 0, wantX: 0, wantY: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, _ := newVirtual(t)

			if err := term.Render(Goto{X: 20, Y: 10}, Relative{DX: tt.dx, DY: tt.dy}); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			assertCursor(t, term, tt.wantX, tt.wantY)
		})
	}
}

func TestRender_SingleAxisMatchesRelative(t *testing.T) {
	for _, n := range []int{0, 1, 3, 9, 30} {
		cases := []struct {
			cmd  Command
			same Relative
		}{
			{cmd: Left(n), same: Relative{DX: -n}},
			{cmd: Right(n), same: Relative{DX: n}},
			{cmd: Up(n), same: Relative{DY: -n}},
			{cmd: Down(n), same: Relative{DY: n}},
		}

		for _, c := range cases {
			t.Run(c.cmd.String(), func(t *testing.T) {
				got, gotVT := newVirtual(t)
				want, wantVT := newVirtual(t)

				if err := got.Render(Goto{X: 20, Y: 10}, c.cmd); err != nil {
					t.Fatalf("Render(%v) error = %v", c.cmd, err)
				}

				if err := want.Render(Goto{X: 20, Y: 10}, c.same); err != nil {
					t.Fatalf("Render(%v) error = %v", c.same, err)
				}

				gx, gy := gotVT.Cursor()
				wx, wy := wantVT.Cursor()

				if gx != wx || gy != wy {
					t.Fatalf("%v ended at (%d, %d), %v at (%d, %d)", c.cmd, gx, gy, c.same, wx, wy)
				}

				if string(gotVT.Written()) != string(wantVT.Written()) {
					t.Fatalf("%v wrote %q, %v wrote %q", c.cmd, gotVT.Written(), c.same, wantVT.Written())
				}
			})
		}
	}
}

func TestScenario_HomeThenDown(t *testing.T) {
	term, _ := newVirtual(t)

	if err := term.SetCursorPos(5, 10); err != nil {
		t.Fatalf("SetCursorPos(5, 10) error = %v", err)
	}

	if err := term.SetCursorPos(0, 0); err != nil {
		t.Fatalf("SetCursorPos(0, 0) error = %v", err)
	}

	assertCursor(t, term, 0, 0)

	if err := term.Render(Down(3)); err != nil {
		t.Fatalf("Render(Down(3)) error = %v", err)
	}

	assertCursor(t, term, 0, 3)
}

func TestTerminal_MalformedReply(t *testing.T) {
	for _, reply := range []string{"\x1b[12;4", "\x1b[x;4R", "\x1b[12;R"} {
		t.Run(fmt.Sprintf("%q", reply), func(t *testing.T) {
			term, vt := newVirtual(t)
			vt.SetReply(func(int, int) string { return reply })

			_, _, err := term.CursorPos()
			if !errors.Is(err, ErrParse) {
				t.Fatalf("CursorPos() error = %v, want ErrParse", err)
			}

			if err := term.Render(Right(1)); !errors.Is(err, ErrParse) {
				t.Fatalf("Render(Right(1)) error = %v, want ErrParse", err)
			}
		})
	}
}

func TestTerminal_StreamsWithoutInput(t *testing.T) {
	vt := testutil.NewVirtualTerminal(80, 24)
	term := New(WithStreams(nil, vt))

	if err := term.SetCursorPos(2, 2); err != nil {
		t.Fatalf("SetCursorPos() error = %v", err)
	}

	_, _, err := term.CursorPos()
	if !errors.Is(err, ErrNoReply) || !errors.Is(err, ErrIO) {
		t.Fatalf("CursorPos() error = %v, want I/O error wrapping ErrNoReply", err)
	}
}

// recordingBackend logs calls and fails the configured operation.
type recordingBackend struct {
	x, y  int
	calls []string
	fail  map[string]error
}

func (b *recordingBackend) SetCursorPos(x, y int) error {
	b.calls = append(b.calls, fmt.Sprintf("set(%d,%d)", x, y))
	if err := b.fail["set"]; err != nil {
		return err
	}

	b.x, b.y = x, y

	return nil
}

func (b *recordingBackend) CursorPos() (int, int, error) {
	b.calls = append(b.calls, "get")
	if err := b.fail["get"]; err != nil {
		return 0, 0, err
	}

	return b.x, b.y, nil
}

func (b *recordingBackend) Clear() error {
	b.calls = append(b.calls, "clear")
	if err := b.fail["clear"]; err != nil {
		return err
	}

	b.x, b.y = 0, 0

	return nil
}

func TestRender_StopsAtFirstError(t *testing.T) {
	failure := cerrors.Platform("get cursor position", cerrors.CallGetConsoleScreenBufferInfo, errors.New("access denied"))
	backend := &recordingBackend{fail: map[string]error{"get": failure}}
	term := New(WithBackend(backend))

	err := term.Render(Goto{X: 4, Y: 2}, Up(1), ClearScreen{}, Goto{X: 9, Y: 9})
	if err != failure {
		t.Fatalf("Render() error = %v, want the backend's error unchanged", err)
	}

	var cursorErr *Error
	if !errors.As(err, &cursorErr) || cursorErr.Call != CallGetConsoleScreenBufferInfo {
		t.Fatalf("Render() error = %#v, want console call preserved", err)
	}

	want := []string{"set(4,2)", "get"}
	if fmt.Sprint(backend.calls) != fmt.Sprint(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
}

func TestRender_Empty(t *testing.T) {
	backend := &recordingBackend{}

	if err := New(WithBackend(backend)).Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(backend.calls) != 0 {
		t.Fatalf("calls = %v, want none", backend.calls)
	}
}

func TestRender_RelativeWithoutCursorQueryFailsBeforeMoving(t *testing.T) {
	backend := &recordingBackend{x: 3, y: 3, fail: map[string]error{"get": cerrors.NoReply("get cursor position", nil)}}

	err := New(WithBackend(backend)).Render(Left(2))
	if !errors.Is(err, ErrNoReply) {
		t.Fatalf("Render(Left(2)) error = %v, want ErrNoReply", err)
	}

	if backend.x != 3 || backend.y != 3 {
		t.Fatalf("cursor moved to (%d, %d) after failed query", backend.x, backend.y)
	}
}

func TestNew_WithBackend(t *testing.T) {
	backend := &recordingBackend{}
	term := New(WithBackend(backend), WithStreams(nil, nil))

	if term.Backend() != Backend(backend) {
		t.Fatalf("Backend() = %T, want the injected backend", term.Backend())
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{cmd: Goto{X: 5, Y: 10}, want: "Goto(5, 10)"},
		{cmd: Relative{DX: -3, DY: 2}, want: "Relative(-3, 2)"},
		{cmd: Left(4), want: "Left(4)"},
		{cmd: Right(1), want: "Right(1)"},
		{cmd: Up(2), want: "Up(2)"},
		{cmd: Down(3), want: "Down(3)"},
		{cmd: ClearScreen{}, want: "ClearScreen"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.cmd.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}

			if got := fmt.Sprint(tt.cmd); got != tt.want {
				t.Fatalf("fmt.Sprint() = %q, want %q", got, tt.want)
			}
		})
	}
}
