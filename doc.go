// Package termcursor moves, queries and clears the terminal cursor on both
// terminal models in use today: VT-compatible terminals driven by escape
// sequences, and the Windows console driven by its screen buffer API.
//
// The package-level functions act on the process's own terminal:
//
//	if err := termcursor.SetCursorPos(0, 0); err != nil {
//		return err
//	}
//
//	x, y, err := termcursor.CursorPos()
//
// Coordinates are 0-based; x is the column and y the row.
//
// Movements can also be expressed as Command values and applied with
// Render, which stops at the first failure and returns its *Error:
//
//	err := termcursor.Render(termcursor.ClearScreen{}, termcursor.Down(3))
//
// A Terminal binds a backend explicitly. WithStreams drives any
// reader/writer pair with escape sequences, which is how the package is
// tested against in-memory terminals and pseudo-terminals.
//
// # Errors
//
// Every failure is an *Error. Its Kind is KindIO, KindParse or
// KindPlatform, and errors.Is matches the sentinels ErrIO, ErrParse and
// ErrPlatform accordingly. Platform errors also carry the console API Call
// that failed.
//
// # Cursor queries
//
// On VT terminals CursorPos writes a device status request and reads the
// report from the input stream. The read gives up after the reply timeout
// (DefaultReplyTimeout unless WithTimeout says otherwise) with an I/O error
// wrapping ErrNoReply. A timeout of zero or less waits indefinitely.
package termcursor
