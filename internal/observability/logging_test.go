package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "termcursor.log")

	cfg := &Config{
		Level:       "debug",
		Format:      "json",
		LogFile:     logPath,
		StderrMode:  "off",
		SessionID:   "session-test",
		CommandPath: "termcursor pos",
		Version:     "test",
		Commit:      "abc123",
	}

	logger, cleanup, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("cursor position reported", slog.Int("x", 3), slog.Int("y", 4))

	if closeErr := cleanup(); closeErr != nil {
		t.Fatalf("cleanup() error = %v", closeErr)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", logPath, err)
	}

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}

	if record["session.id"] != "session-test" {
		t.Errorf("session.id = %v, want session-test", record["session.id"])
	}

	if record["command.path"] != "termcursor pos" {
		t.Errorf("command.path = %v, want %q", record["command.path"], "termcursor pos")
	}
}

func TestNewLogger_StderrAutoSkipsTTY(t *testing.T) {
	var stderr bytes.Buffer

	logger, _, err := NewLogger(&Config{Level: "info", StderrMode: "auto", StderrIsTTY: true, Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("hidden")

	if stderr.Len() != 0 {
		t.Fatalf("stderr received %q with an interactive stderr in auto mode", stderr.String())
	}

	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("logger without sinks should discard")
	}
}

func TestNewLogger_StderrAutoNonTTY(t *testing.T) {
	var stderr bytes.Buffer

	logger, _, err := NewLogger(&Config{Level: "info", Format: "text", StderrMode: "auto", Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("visible")

	if !strings.Contains(stderr.String(), "msg=visible") {
		t.Fatalf("stderr = %q, want text record", stderr.String())
	}
}

func TestNewLogger_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "level", cfg: Config{Level: "loud"}},
		{name: "format", cfg: Config{Format: "xml", StderrMode: "off"}},
		{name: "stderr mode", cfg: Config{StderrMode: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := NewLogger(&tt.cfg); err == nil {
				t.Fatal("NewLogger() error = nil, want error")
			}
		})
	}
}
