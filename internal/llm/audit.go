package llm

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// AuditEntry is one record of an LLM operation.
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Operation  string    `json:"operation"` // "embed" or "chat"
	Provider   string    `json:"provider"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// AuditWriterFactory creates the underlying audit writer.
type AuditWriterFactory func(cfg config.AuditConfig) io.WriteCloser

// AuditOption configures the AuditLogger.
type AuditOption func(*AuditLogger)

// WithAuditWriterFactory sets a custom factory for the audit writer.
// This is primarily used for testing.
func WithAuditWriterFactory(f AuditWriterFactory) AuditOption {
	return func(a *AuditLogger) {
		a.factory = f
	}
}

// AuditLogger records embed/chat operations as JSON lines in a rotating
// file. A disabled logger discards everything.
type AuditLogger struct {
	cfg     config.AuditConfig
	factory AuditWriterFactory
	writer  io.WriteCloser
	mu      sync.Mutex
}

// NewAuditLogger creates an audit logger. The writer is opened lazily on
// the first record so a disabled logger never touches the filesystem.
func NewAuditLogger(cfg config.AuditConfig, opts ...AuditOption) *AuditLogger {
	a := &AuditLogger{cfg: cfg}

	a.factory = func(cfg config.AuditConfig) io.WriteCloser {
		return &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LogEmbed records an embedding operation.
func (a *AuditLogger) LogEmbed(provider string, success bool, duration time.Duration, opErr error) {
	a.log("embed", provider, success, duration, opErr)
}

// LogChat records a chat operation.
func (a *AuditLogger) LogChat(provider string, success bool, duration time.Duration, opErr error) {
	a.log("chat", provider, success, duration, opErr)
}

func (a *AuditLogger) log(operation, provider string, success bool, duration time.Duration, opErr error) {
	if a == nil || !a.cfg.Enabled {
		return
	}

	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		Operation:  operation,
		Provider:   provider,
		Success:    success,
		DurationMS: duration.Milliseconds(),
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.writer == nil {
		a.writer = a.factory(a.cfg)
	}
	_, _ = a.writer.Write(append(data, '\n'))
}

// Close closes the underlying writer if one was opened.
func (a *AuditLogger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.writer == nil {
		return nil
	}
	return a.writer.Close()
}
