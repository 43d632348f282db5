package termcursor

import "fmt"

// Command is a cursor operation that can be applied to a Backend.
// String describes the command and performs no I/O.
type Command interface {
	Apply(b Backend) error
	fmt.Stringer
}

var (
	_ Command = Goto{}
	_ Command = Relative{}
	_ Command = Left(0)
	_ Command = Right(0)
	_ Command = Up(0)
	_ Command = Down(0)
	_ Command = ClearScreen{}
)

// Goto moves the cursor to column X, row Y.
type Goto struct {
	X, Y int
}

// Apply implements Command.
func (g Goto) Apply(b Backend) error {
	return b.SetCursorPos(g.X, g.Y)
}

func (g Goto) String() string {
	return fmt.Sprintf("Goto(%d, %d)", g.X, g.Y)
}

// Relative moves the cursor by DX columns and DY rows.
//
// The current position is read and the new one written in two separate
// steps, so output produced by anyone else in between is not accounted for.
// Targets before the first row or column stop at the screen edge.
type Relative struct {
	DX, DY int
}

// Apply implements Command.
func (r Relative) Apply(b Backend) error {
	x, y, err := b.CursorPos()
	if err != nil {
		return err
	}

	return b.SetCursorPos(x+r.DX, y+r.DY)
}

func (r Relative) String() string {
	return fmt.Sprintf("Relative(%d, %d)", r.DX, r.DY)
}

// Left moves the cursor n columns left. It is Relative{DX: -n}.
type Left int

// Apply implements Command.
func (n Left) Apply(b Backend) error {
	return Relative{DX: -int(n)}.Apply(b)
}

func (n Left) String() string {
	return fmt.Sprintf("Left(%d)", int(n))
}

// Right moves the cursor n columns right. It is Relative{DX: n}.
type Right int

// Apply implements Command.
func (n Right) Apply(b Backend) error {
	return Relative{DX: int(n)}.Apply(b)
}

func (n Right) String() string {
	return fmt.Sprintf("Right(%d)", int(n))
}

// Up moves the cursor n rows up. It is Relative{DY: -n}.
type Up int

// Apply implements Command.
func (n Up) Apply(b Backend) error {
	return Relative{DY: -int(n)}.Apply(b)
}

func (n Up) String() string {
	return fmt.Sprintf("Up(%d)", int(n))
}

// Down moves the cursor n rows down. It is Relative{DY: n}.
type Down int

// Apply implements Command.
func (n Down) Apply(b Backend) error {
	return Relative{DY: int(n)}.Apply(b)
}

func (n Down) String() string {
	return fmt.Sprintf("Down(%d)", int(n))
}

// ClearScreen blanks the screen and homes the cursor.
type ClearScreen struct{}

// Apply implements Command.
func (ClearScreen) Apply(b Backend) error {
	return b.Clear()
}

func (ClearScreen) String() string {
	return "ClearScreen"
}
