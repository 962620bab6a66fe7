package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractMetadata(t *testing.T) {
	chunk := strings.Join([]string{
		"2024-01-15 10:30:45,123 INFO [main] app: starting",
		"2024-01-15 10:30:46,123 ERROR [main] app: db down",
		"2024-01-15 10:30:47,123 WARN [main] app: retrying",
		"2024-01-15 10:30:48,123 FATAL [main] app: giving up",
	}, "\n")

	meta := ExtractMetadata(chunk, "app.log")

	if meta.Filename != "app.log" {
		t.Errorf("expected filename app.log, got %q", meta.Filename)
	}
	if meta.Timestamp != "2024-01-15 10:30:45" {
		t.Errorf("expected 19-char timestamp, got %q", meta.Timestamp)
	}
	if meta.Level != "ERROR" {
		t.Errorf("expected first level keyword ERROR, got %q", meta.Level)
	}
	if meta.ErrorCount != 2 {
		t.Errorf("expected 2 error lines, got %d", meta.ErrorCount)
	}
	if meta.WarnCount != 1 {
		t.Errorf("expected 1 warn line, got %d", meta.WarnCount)
	}
}

func TestExtractMetadata_ScanWindow(t *testing.T) {
	// Errors beyond the first 20 lines are invisible to the scan.
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line %d with nothing notable", i))
	}
	lines = append(lines, "2024-01-15 10:30:45 ERROR late failure")

	meta := ExtractMetadata(strings.Join(lines, "\n"), "late.log")

	if meta.ErrorCount != 0 {
		t.Errorf("expected 0 errors within scan window, got %d", meta.ErrorCount)
	}
	if meta.Timestamp != "" {
		t.Errorf("expected no timestamp within scan window, got %q", meta.Timestamp)
	}
}

func TestExtractMetadata_LevelKeywordsAnywhere(t *testing.T) {
	meta := ExtractMetadata("something went wrong: error while flushing", "x.log")

	if meta.ErrorCount != 1 {
		t.Errorf("expected keyword match to count, got %d", meta.ErrorCount)
	}
	if meta.Level != "ERROR" {
		t.Errorf("expected uppercased level, got %q", meta.Level)
	}
}

func TestExtractMetadata_Empty(t *testing.T) {
	meta := ExtractMetadata("", "empty.log")

	if meta.Timestamp != "" || meta.Level != "" || meta.ErrorCount != 0 || meta.WarnCount != 0 {
		t.Errorf("expected zero metadata, got %+v", meta)
	}
}
