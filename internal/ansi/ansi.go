// Package ansi encodes the cursor control sequences and decodes the cursor
// position report (CPR) a terminal sends back.
package ansi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ANSI escape sequence constants for cursor control.
const (
	Escape        = 0x1b
	ClearScreen   = "\x1b[2J"
	CursorHome    = "\x1b[H"
	MoveTo        = "\x1b[%d;%dH" // row;col (1-indexed)
	RequestCursor = "\x1b[6n"     // DSR 6, answered with ESC [ row ; col R
	ReportFinal   = 'R'
)

// MaxReportLen bounds a cursor position report. Two 10-digit parameters
// plus ESC, '[', ';' and 'R' fit comfortably.
const MaxReportLen = 32

var (
	errReportPrefix = errors.New("missing ESC [ prefix")
	errReportFinal  = errors.New("missing final R")
	errReportParams = errors.New("expected two ';'-separated parameters")
)

// Move returns an ANSI cursor movement sequence for a 1-indexed row and
// column. Values below 1 are sent as 1.
func Move(row, col int) string {
	return fmt.Sprintf(MoveTo, max(row, 1), max(col, 1))
}

// MoveZero returns the movement sequence for a 0-indexed column x and row y.
func MoveZero(x, y int) string {
	return Move(oneBased(y), oneBased(x))
}

// oneBased adds one without wrapping past math.MaxInt.
func oneBased(v int) int {
	if v == math.MaxInt {
		return v
	}

	return v + 1
}

// ClearAndHome erases the whole screen and homes the cursor.
func ClearAndHome() string {
	return ClearScreen + CursorHome
}

// EndsReport reports whether data ends with something shaped like a cursor
// position report: ESC [ digits ; digits R. The values are not checked.
func EndsReport(data []byte) bool {
	i := bytes.LastIndexByte(data, Escape)
	if i < 0 || len(data)-i < 6 || data[i+1] != '[' || data[len(data)-1] != ReportFinal {
		return false
	}

	row, col, ok := bytes.Cut(data[i+2:len(data)-1], []byte{';'})

	return ok && allDigits(row) && allDigits(col)
}

func allDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}

	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// ParseCursorReport parses exactly one report of the form ESC [ row ; col R
// and returns its 1-indexed row and column.
func ParseCursorReport(data []byte) (row, col int, err error) {
	if len(data) < 2 || data[0] != Escape || data[1] != '[' {
		return 0, 0, errReportPrefix
	}

	if data[len(data)-1] != ReportFinal {
		return 0, 0, errReportFinal
	}

	payload := data[2 : len(data)-1] // row;col

	sep := -1

	for i, b := range payload {
		if b == ';' {
			if sep != -1 {
				return 0, 0, errReportParams
			}

			sep = i
		}
	}

	if sep == -1 {
		return 0, 0, errReportParams
	}

	row, err = parseParam(payload[:sep])
	if err != nil {
		return 0, 0, fmt.Errorf("row: %w", err)
	}

	col, err = parseParam(payload[sep+1:])
	if err != nil {
		return 0, 0, fmt.Errorf("column: %w", err)
	}

	return row, col, nil
}

func parseParam(digits []byte) (int, error) {
	if len(digits) == 0 {
		return 0, errors.New("empty parameter")
	}

	if !allDigits(digits) {
		return 0, fmt.Errorf("non-numeric parameter %q", digits)
	}

	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, err
	}

	if n < 1 {
		return 0, fmt.Errorf("parameter %d is not 1-based", n)
	}

	return n, nil
}
