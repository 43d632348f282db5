// Package observability configures structured logging for termcursor.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the configuration for the observability logger.
type Config struct {
	Level       string
	Format      string
	LogFile     string
	StderrMode  string
	StderrIsTTY bool
	SessionID   string
	CommandPath string
	Version     string
	Commit      string

	// Stderr overrides os.Stderr as the stderr sink, for tests.
	Stderr io.Writer
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewLogger creates a structured logger from the given configuration. The
// returned func closes the log file, if any.
//
// Log lines written to an interactive stderr would land on the same screen
// whose cursor is being moved, so in "auto" mode stderr is only used when it
// is not a terminal. With no sink at all the logger discards.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	newHandler, err := handlerFor(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	toStderr, err := shouldEnableStderr(cfg.StderrMode, cfg.StderrIsTTY)
	if err != nil {
		return nil, nil, err
	}

	var sinks []io.Writer

	if toStderr {
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}

		sinks = append(sinks, stderr)
	}

	closeFile := func() error { return nil }

	if path := strings.TrimSpace(cfg.LogFile); path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return nil, nil, err
		}

		sinks = append(sinks, f)
		closeFile = f.Close
	}

	handler := slog.DiscardHandler
	if len(sinks) > 0 {
		handler = newHandler(io.MultiWriter(sinks...), &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler).With(
		slog.String("session.id", cfg.SessionID),
		slog.String("command.path", cfg.CommandPath),
		slog.String("cli.version", cfg.Version),
		slog.String("cli.commit", cfg.Commit),
	)

	return logger, closeFile, nil
}

type handlerFunc func(io.Writer, *slog.HandlerOptions) slog.Handler

func handlerFor(format string) (handlerFunc, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewJSONHandler(w, opts)
		}, nil
	case "text":
		return func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
			return slog.NewTextHandler(w, opts)
		}, nil
	default:
		return nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", format)
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log file directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

func shouldEnableStderr(mode string, stderrIsTTY bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !stderrIsTTY, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --log-stderr value %q (allowed: auto, on, off)", mode)
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}
