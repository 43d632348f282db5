// Package doctor provides diagnostic checks for terminal cursor support.
//
// This package implements a check framework that validates:
//   - Whether stdout and stdin are attached to a terminal
//   - Whether TERM names a terminal that interprets escape sequences
//   - The configuration file
//   - A live cursor position round trip
package doctor

import (
	"context"
	"errors"
	"fmt"
	"time"

	cerrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/terminal"
)

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"` // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Cursor is the part of a terminal the round-trip check drives.
type Cursor interface {
	CursorPos() (x, y int, err error)
	SetCursorPos(x, y int) error
}

// Validator is a loaded configuration.
type Validator interface {
	Validate() error
	File() string
}

// Env is what the default checks inspect.
type Env struct {
	Terminal *terminal.Info
	// Cursor is queried by the round-trip check; nil skips it.
	Cursor Cursor
	// Config is validated; nil skips it.
	Config Validator
	// Console is true when the cursor is driven through the Windows
	// console API instead of escape sequences.
	Console bool
}

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a runner with the default checks for env.
func New(env Env) *Runner {
	r := &Runner{}

	r.AddCheck("Terminal Output", func(context.Context) Result { return checkOutput(env) })
	r.AddCheck("Terminal Input", func(context.Context) Result { return checkInput(env) })
	r.AddCheck("Escape Support", func(context.Context) Result { return checkTerm(env) })
	r.AddCheck("Configuration", func(context.Context) Result { return checkConfig(env) })
	r.AddCheck("Cursor Query", func(context.Context) Result { return checkCursorQuery(env) })

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

func checkOutput(env Env) Result {
	if env.Terminal.IsTTY {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("stdout is a terminal (%dx%d)", env.Terminal.Width, env.Terminal.Height),
		}
	}

	return Result{
		Status:  StatusWarn,
		Message: "stdout is not a terminal",
		Detail:  "Cursor sequences will be written to the redirect target",
	}
}

func checkInput(env Env) Result {
	if env.Console {
		return Result{Status: StatusPass, Message: "not needed for the Windows console"}
	}

	if env.Terminal.StdinIsTTY {
		return Result{Status: StatusPass, Message: "stdin is a terminal"}
	}

	return Result{
		Status:  StatusFail,
		Message: "stdin is not a terminal",
		Detail:  "Cursor position reports are read from stdin; run from an interactive shell",
	}
}

func checkTerm(env Env) Result {
	if env.Console {
		return Result{Status: StatusPass, Message: "Windows console API"}
	}

	if env.Terminal.SupportsEscapes() {
		return Result{Status: StatusPass, Message: "TERM=" + env.Terminal.Term}
	}

	if env.Terminal.Term == "" {
		return Result{
			Status:  StatusWarn,
			Message: "TERM is not set",
			Detail:  "Most terminals set TERM; without it escape support cannot be confirmed",
		}
	}

	return Result{
		Status:  StatusWarn,
		Message: "TERM=" + env.Terminal.Term,
		Detail:  "This terminal type does not interpret escape sequences",
	}
}

func checkConfig(env Env) Result {
	if env.Config == nil {
		return Result{Status: StatusWarn, Message: "not loaded"}
	}

	if err := env.Config.Validate(); err != nil {
		return Result{
			Status:  StatusFail,
			Message: env.Config.File(),
			Detail:  err.Error(),
		}
	}

	return Result{Status: StatusPass, Message: env.Config.File()}
}

func checkCursorQuery(env Env) Result {
	if env.Cursor == nil {
		return Result{Status: StatusWarn, Message: "skipped"}
	}

	if !env.Console && !env.Terminal.StdinIsTTY {
		return Result{Status: StatusWarn, Message: "skipped (stdin is not a terminal)"}
	}

	start := time.Now()

	x, y, err := env.Cursor.CursorPos()
	if err != nil {
		return failedQuery(err)
	}

	// Writing the same position back exercises the move path without
	// disturbing the screen.
	if err := env.Cursor.SetCursorPos(x, y); err != nil {
		return failedQuery(err)
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("cursor at (%d, %d), answered in %dms", x, y, time.Since(start).Milliseconds()),
	}
}

func failedQuery(err error) Result {
	r := Result{Status: StatusFail, Message: err.Error()}

	var cursorErr *cerrors.Error
	if errors.As(err, &cursorErr) {
		r.Message = cursorErr.Message
		r.Detail = cursorErr.Hint

		if cursorErr.Call != cerrors.CallNone {
			r.Message = fmt.Sprintf("%s (%s)", cursorErr.Message, cursorErr.Call)
		}

		if errors.Is(err, cerrors.ErrNoReply) {
			r.Message = "terminal did not answer"
		}
	}

	return r
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		maxNameLen = max(maxNameLen, len(r.Name))
	}

	for _, r := range results {
		width := maxNameLen + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", width, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", width, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", width, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", r.Status.Symbol(), width, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "\u2713" // ✓
	xMark       = "\u2717" // ✗
	warningMark = "\u26A0" // ⚠
)
