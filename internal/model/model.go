// Package model defines the core data structures used throughout the incident copilot.
package model

import "strings"

// LogFormat identifies the syntax a log file was detected as.
// The set is closed: detection always returns one of these values.
type LogFormat string

const (
	FormatJSON           LogFormat = "json"
	FormatLogfmt         LogFormat = "logfmt"
	FormatSyslog         LogFormat = "syslog"
	FormatJavaStructured LogFormat = "java_structured"
	FormatPlain          LogFormat = "plain"
)

// Field is a structured field that has no dedicated ParsedLine attribute.
type Field struct {
	Key   string
	Value string
}

// ParsedLine is one non-blank input line with whatever fields the
// format-specific parser could extract. Constructed once, never mutated.
type ParsedLine struct {
	// Raw is the original line text, whitespace-trimmed. Always present.
	Raw string

	// Timestamp is the extracted timestamp string, empty if none was found.
	Timestamp string

	// Level is the extracted severity. Regex-based formats yield uppercase
	// values; JSON and logfmt keep the value as written.
	Level string

	Message string
	Logger  string
	Thread  string

	// Extra holds fields not mapped to a named attribute, in source order.
	// Only populated for JSON and logfmt lines.
	Extra []Field
}

// ExtraValue returns the value of the named extra field.
func (p ParsedLine) ExtraValue(key string) (string, bool) {
	for _, f := range p.Extra {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// ChunkMetadata is the running aggregate the structured chunker maintains
// while accumulating lines into a chunk.
type ChunkMetadata struct {
	FirstTimestamp string    `json:"first_timestamp,omitempty"`
	LastTimestamp  string    `json:"last_timestamp,omitempty"`
	ErrorCount     int       `json:"error_count"`
	WarnCount      int       `json:"warn_count"`
	LogFormat      LogFormat `json:"log_format,omitempty"`
}

// Chunk is a contiguous run of raw log lines treated as one retrievable unit.
type Chunk struct {
	// Text is the newline-joined raw lines in original order.
	Text string `json:"text"`

	Metadata ChunkMetadata `json:"metadata"`
}

// StorageMetadata is the storage-facing metadata attached to a chunk's
// payload when it is persisted.
type StorageMetadata struct {
	Filename   string `json:"filename"`
	Timestamp  string `json:"timestamp,omitempty"`
	Level      string `json:"level,omitempty"`
	ErrorCount int    `json:"error_count"`
	WarnCount  int    `json:"warn_count"`
}

// Stats summarizes a whole log file for display.
type Stats struct {
	TotalLines     int       `json:"total_lines"`
	Format         LogFormat `json:"format"`
	ErrorCount     int       `json:"error_count"`
	WarnCount      int       `json:"warn_count"`
	InfoCount      int       `json:"info_count"`
	DebugCount     int       `json:"debug_count"`
	FirstTimestamp string    `json:"first_timestamp,omitempty"`
	LastTimestamp  string    `json:"last_timestamp,omitempty"`
	Loggers        []string  `json:"loggers"`
}

// IsErrorLevel reports whether a level string counts as an error.
// Comparison is case-insensitive.
func IsErrorLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "ERROR", "FATAL", "CRITICAL":
		return true
	}
	return false
}

// IsWarnLevel reports whether a level string counts as a warning.
func IsWarnLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "WARN", "WARNING":
		return true
	}
	return false
}
