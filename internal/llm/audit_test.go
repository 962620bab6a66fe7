package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

type captureWriter struct {
	buf    bytes.Buffer
	closed bool
}

func (w *captureWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *captureWriter) Close() error                { w.closed = true; return nil }

func newTestAudit(enabled bool) (*AuditLogger, *captureWriter) {
	w := &captureWriter{}
	a := NewAuditLogger(
		config.AuditConfig{Enabled: enabled, Path: "unused.log"},
		WithAuditWriterFactory(func(config.AuditConfig) io.WriteCloser { return w }),
	)
	return a, w
}

func TestAuditLogger_RecordsJSONLines(t *testing.T) {
	a, w := newTestAudit(true)

	a.LogEmbed("ollama", true, 120*time.Millisecond, nil)
	a.LogChat("groq", false, 2*time.Second, errors.New("rate limited"))

	lines := strings.Split(strings.TrimSpace(w.buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var first, second AuditEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}

	if first.Operation != "embed" || first.Provider != "ollama" || !first.Success {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if first.DurationMS != 120 {
		t.Errorf("expected 120ms, got %d", first.DurationMS)
	}
	if second.Operation != "chat" || second.Success || second.Error != "rate limited" {
		t.Errorf("unexpected second entry: %+v", second)
	}
}

func TestAuditLogger_DisabledWritesNothing(t *testing.T) {
	a, w := newTestAudit(false)

	a.LogEmbed("ollama", true, time.Millisecond, nil)

	if w.buf.Len() != 0 {
		t.Errorf("disabled logger wrote %d bytes", w.buf.Len())
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if w.closed {
		t.Error("disabled logger must never open the writer")
	}
}

func TestAuditLogger_NilReceiver(t *testing.T) {
	var a *AuditLogger
	// Must not panic.
	a.LogEmbed("ollama", true, time.Millisecond, nil)
	a.LogChat("groq", true, time.Millisecond, nil)
}

func TestAuditLogger_Close(t *testing.T) {
	a, w := newTestAudit(true)

	a.LogChat("ollama", true, time.Millisecond, nil)
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !w.closed {
		t.Error("expected writer to be closed")
	}
}
