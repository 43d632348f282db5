package platform

import (
	"fmt"
	"log/slog"
	"math"

	cerrors "github.com/musher-dev/termcursor/internal/errors"
)

// Handle is a console output handle.
type Handle uintptr

// Coord is a console cell coordinate.
type Coord struct {
	X, Y int16
}

// ScreenBufferInfo is the subset of CONSOLE_SCREEN_BUFFER_INFO the console
// backend reads.
type ScreenBufferInfo struct {
	Size           Coord
	CursorPosition Coord
	Attributes     uint16
}

// ConsoleAPI is the Windows console surface used by Console. The system
// implementation lives in console_windows.go; tests substitute fakes.
type ConsoleAPI interface {
	GetStdHandle() (Handle, error)
	GetConsoleScreenBufferInfo(h Handle) (ScreenBufferInfo, error)
	SetConsoleCursorPosition(h Handle, pos Coord) error
	FillConsoleOutputCharacter(h Handle, char uint16, length uint32, at Coord) (written uint32, err error)
	FillConsoleOutputAttribute(h Handle, attr uint16, length uint32, at Coord) (written uint32, err error)
}

// Console drives the Windows console screen buffer. The standard output
// handle is looked up again on every call.
type Console struct {
	api  ConsoleAPI
	opts Options
}

var _ Backend = (*Console)(nil)

// NewConsole returns a Console backend over api.
func NewConsole(api ConsoleAPI, opts ...Option) *Console {
	return &Console{
		api:  api,
		opts: buildOptions(opts),
	}
}

// SetCursorPos moves the console cursor. Coordinates are clamped to the
// int16 range the console API accepts.
func (c *Console) SetCursorPos(x, y int) error {
	h, err := c.handle(opSetCursorPos)
	if err != nil {
		return err
	}

	pos := Coord{X: clampInt16(x), Y: clampInt16(y)}
	if err := c.api.SetConsoleCursorPosition(h, pos); err != nil {
		return cerrors.Platform(opSetCursorPos, cerrors.CallSetConsoleCursorPosition, err)
	}

	c.opts.Logger.Debug("cursor moved", slog.Int("x", int(pos.X)), slog.Int("y", int(pos.Y)))

	return nil
}

// CursorPos reads the cursor from the screen buffer info.
func (c *Console) CursorPos() (x, y int, err error) {
	h, err := c.handle(opCursorPos)
	if err != nil {
		return 0, 0, err
	}

	info, err := c.bufferInfo(opCursorPos, h)
	if err != nil {
		return 0, 0, err
	}

	return int(info.CursorPosition.X), int(info.CursorPosition.Y), nil
}

// Clear fills the whole screen buffer with spaces in the current attribute
// and moves the cursor to the origin.
//
// If a step after the character fill fails, the returned error's Hint
// records how many cells were already blanked.
func (c *Console) Clear() error {
	h, err := c.handle(opClear)
	if err != nil {
		return err
	}

	info, err := c.bufferInfo(opClear, h)
	if err != nil {
		return err
	}

	origin := Coord{}
	cells := uint32(max(info.Size.X, 0)) * uint32(max(info.Size.Y, 0))

	blanked, err := c.api.FillConsoleOutputCharacter(h, ' ', cells, origin)
	if err != nil {
		return cerrors.Platform(opClear, cerrors.CallFillConsoleOutputCharacter, err).
			WithHint(fmt.Sprintf("%d of %d cells blanked", blanked, cells))
	}

	if blanked < cells {
		c.opts.Logger.Warn("console character fill was short",
			slog.Uint64("written", uint64(blanked)),
			slog.Uint64("requested", uint64(cells)),
		)
	}

	styled, err := c.api.FillConsoleOutputAttribute(h, info.Attributes, cells, origin)
	if err != nil {
		return cerrors.Platform(opClear, cerrors.CallFillConsoleOutputAttribute, err).
			WithHint(fmt.Sprintf("%d cells blanked, %d of %d attributes reset", blanked, styled, cells))
	}

	if err := c.api.SetConsoleCursorPosition(h, origin); err != nil {
		return cerrors.Platform(opClear, cerrors.CallSetConsoleCursorPosition, err).
			WithHint(fmt.Sprintf("%d cells cleared, cursor not moved to origin", blanked))
	}

	c.opts.Logger.Debug("screen cleared", slog.Uint64("cells", uint64(cells)))

	return nil
}

func (c *Console) handle(op string) (Handle, error) {
	h, err := c.api.GetStdHandle()
	if err != nil {
		return 0, cerrors.Platform(op, cerrors.CallGetStdHandle, err)
	}

	return h, nil
}

func (c *Console) bufferInfo(op string, h Handle) (ScreenBufferInfo, error) {
	info, err := c.api.GetConsoleScreenBufferInfo(h)
	if err != nil {
		return ScreenBufferInfo{}, cerrors.Platform(op, cerrors.CallGetConsoleScreenBufferInfo, err)
	}

	return info, nil
}

func clampInt16(v int) int16 {
	return int16(min(max(v, 0), math.MaxInt16))
}
