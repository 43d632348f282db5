// Package testutil provides testing utilities for termcursor: golden files
// and an in-memory terminal that answers cursor position requests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// update is a flag to update golden files instead of comparing.
// Usage: go test ./... -update
var update = flag.Bool("update", false, "update golden files")

// AssertGolden compares got against a golden file.
// If the -update flag is set, it writes got to the golden file instead.
// The golden file path is relative to the testdata directory.
func AssertGolden(t testing.TB, got, goldenFile string) {
	t.Helper()

	goldenPath := GoldenPath(goldenFile)

	if *update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("failed to create testdata directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to update golden file %s: %v", goldenPath, err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file %s does not exist; run with -update to create it", goldenPath)
		}
		t.Fatalf("failed to read golden file %s: %v", goldenPath, err)
	}

	if got != string(want) {
		t.Errorf("output mismatch for %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update to refresh golden files", goldenPath, got, string(want))
	}
}

// AssertEscapes compares a raw terminal byte stream against a golden file
// holding one quoted escape sequence per line.
func AssertEscapes(t testing.TB, stream []byte, goldenFile string) {
	t.Helper()
	AssertGolden(t, FormatEscapes(stream), goldenFile)
}

// FormatEscapes splits stream before every ESC and quotes each piece on its
// own line, so golden files stay readable and diffable.
func FormatEscapes(stream []byte) string {
	var b strings.Builder

	for _, piece := range strings.SplitAfter(strings.ReplaceAll(string(stream), "\x1b", "\n\x1b"), "\n") {
		piece = strings.TrimSuffix(piece, "\n")
		if piece == "" {
			continue
		}

		b.WriteString(strconv.Quote(piece))
		b.WriteString("\n")
	}

	return b.String()
}

// GoldenPath returns the full path to a golden file in testdata.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", filename)
}
