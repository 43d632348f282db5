package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitGeneral  = 1  // General error
	ExitConfig   = 2  // Configuration error
	ExitTerminal = 3  // Terminal I/O error
	ExitParse    = 4  // Malformed cursor position report
	ExitPlatform = 5  // Console API failure
	ExitUsage    = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLI creates a new CLIError with the given message and exit code.
func NewCLI(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// WrapCLI wraps an existing error with a CLIError.
func WrapCLI(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// AsCLI is a convenience function for errors.As with CLIError.
func AsCLI(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// HintNegativeArgs explains how to pass negative numbers past flag parsing.
const HintNegativeArgs = "Pass negative values after '--', e.g. 'termcursor move -- -3 0'"

// InvalidCoordinate returns a usage error for a non-integer argument.
func InvalidCoordinate(name, value string) *CLIError {
	return NewCLI(ExitUsage, fmt.Sprintf("Invalid %s: %q is not an integer", name, value)).
		WithHint(HintNegativeArgs)
}

// InvalidConfig returns an error for an unusable configuration value.
func InvalidConfig(key string, cause error) *CLIError {
	return WrapCLI(ExitConfig, fmt.Sprintf("Invalid configuration value for %s", key), cause).
		WithHint("Check the file shown by 'termcursor config path' and TERMCURSOR_* environment variables")
}

// TerminalFailed converts a cursor operation error into a CLIError whose
// exit code reflects the error Kind.
func TerminalFailed(err error) *CLIError {
	var cursorErr *Error
	if !errors.As(err, &cursorErr) {
		return WrapCLI(ExitGeneral, "Terminal operation failed", err)
	}

	switch cursorErr.Kind {
	case KindIO:
		if !errors.Is(err, ErrNoReply) {
			return WrapCLI(ExitTerminal, "Terminal operation failed", err).WithHint(cursorErr.Hint)
		}

		hint := cursorErr.Hint
		if hint == "" {
			hint = "Increase --timeout or run in an interactive terminal"
		}

		return WrapCLI(ExitTerminal, "Terminal did not report the cursor position", err).WithHint(hint)
	case KindParse:
		return WrapCLI(ExitParse, "Terminal sent a malformed cursor position report", err).WithHint(cursorErr.Hint)
	case KindPlatform:
		return WrapCLI(ExitPlatform, fmt.Sprintf("Console call %s failed", cursorErr.Call), err).WithHint(cursorErr.Hint)
	default:
		return WrapCLI(ExitGeneral, "Terminal operation failed", err).WithHint(cursorErr.Hint)
	}
}
