//go:build windows

package platform

import (
	"errors"

	"golang.org/x/sys/windows"
)

var errInvalidHandle = errors.New("standard output has no console handle")

// systemConsole calls kernel32 through golang.org/x/sys/windows.
type systemConsole struct{}

var _ ConsoleAPI = systemConsole{}

func (systemConsole) GetStdHandle() (Handle, error) {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return 0, err
	}

	if h == windows.InvalidHandle || h == 0 {
		return 0, errInvalidHandle
	}

	return Handle(h), nil
}

func (systemConsole) GetConsoleScreenBufferInfo(h Handle) (ScreenBufferInfo, error) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(h), &info); err != nil {
		return ScreenBufferInfo{}, err
	}

	return ScreenBufferInfo{
		Size:           Coord{X: info.Size.X, Y: info.Size.Y},
		CursorPosition: Coord{X: info.CursorPosition.X, Y: info.CursorPosition.Y},
		Attributes:     info.Attributes,
	}, nil
}

func (systemConsole) SetConsoleCursorPosition(h Handle, pos Coord) error {
	return windows.SetConsoleCursorPosition(windows.Handle(h), windows.Coord{X: pos.X, Y: pos.Y})
}

func (systemConsole) FillConsoleOutputCharacter(h Handle, char uint16, length uint32, at Coord) (uint32, error) {
	var written uint32
	err := windows.FillConsoleOutputCharacter(windows.Handle(h), char, length, windows.Coord{X: at.X, Y: at.Y}, &written)

	return written, err
}

func (systemConsole) FillConsoleOutputAttribute(h Handle, attr uint16, length uint32, at Coord) (uint32, error) {
	var written uint32
	err := windows.FillConsoleOutputAttribute(windows.Handle(h), attr, length, windows.Coord{X: at.X, Y: at.Y}, &written)

	return written, err
}

// Default returns the console backend for the process's standard output.
func Default(opts ...Option) Backend {
	return NewConsole(systemConsole{}, opts...)
}
