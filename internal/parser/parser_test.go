package parser

import (
	"reflect"
	"testing"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

func TestParseLine_JSON(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.ParsedLine
	}{
		{
			name: "standard fields",
			line: `{"timestamp":"2024-01-15T10:30:45Z","level":"ERROR","message":"db down","logger":"app.db","thread":"worker-1"}`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15T10:30:45Z",
				Level:     "ERROR",
				Message:   "db down",
				Logger:    "app.db",
				Thread:    "worker-1",
			},
		},
		{
			name: "synonym fields",
			line: `{"ts":"2024-01-15T10:30:45Z","severity":"warn","msg":"slow query","name":"db","thread_name":"pool-2"}`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15T10:30:45Z",
				Level:     "warn",
				Message:   "slow query",
				Logger:    "db",
				Thread:    "pool-2",
			},
		},
		{
			name: "unknown keys become extras in document order",
			line: `{"msg":"hello","request_id":"abc123","user":"root"}`,
			want: model.ParsedLine{
				Message: "hello",
				Extra: []model.Field{
					{Key: "request_id", Value: "abc123"},
					{Key: "user", Value: "root"},
				},
			},
		},
		{
			name: "non-string values are stringified",
			line: `{"msg":"x","count":3,"ok":true,"ratio":0.5,"gone":null}`,
			want: model.ParsedLine{
				Message: "x",
				Extra: []model.Field{
					{Key: "count", Value: "3"},
					{Key: "ok", Value: "true"},
					{Key: "ratio", Value: "0.5"},
					{Key: "gone", Value: ""},
				},
			},
		},
		{
			name: "nested values keep compact JSON form",
			line: `{"msg":"x","ctx":{"a":1}}`,
			want: model.ParsedLine{
				Message: "x",
				Extra:   []model.Field{{Key: "ctx", Value: `{"a":1}`}},
			},
		},
		{
			name: "duplicate keys keep last value in first position",
			line: `{"level":"info","level":"warn"}`,
			want: model.ParsedLine{Level: "warn"},
		},
		{
			name: "first synonym with a value wins",
			line: `{"timestamp":"","time":"2024-01-15T10:30:45Z","msg":"x"}`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15T10:30:45Z",
				Message:   "x",
			},
		},
		{
			name: "malformed json degrades to message",
			line: `{"level":"info","msg":`,
			want: model.ParsedLine{Message: `{"level":"info","msg":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Raw = tt.line
			got := ParseLine(tt.line, model.FormatJSON)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_Logfmt(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.ParsedLine
	}{
		{
			name: "quoted and bare values",
			line: `time=2024-01-15T10:30:45Z level=error msg="connection failed" component=db retries=3`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15T10:30:45Z",
				Level:     "error",
				Message:   "connection failed",
				Logger:    "db",
				Extra:     []model.Field{{Key: "retries", Value: "3"}},
			},
		},
		{
			name: "keys are lowercased",
			line: `TIME=2024-01-15T10:30:45Z LEVEL=warn MSG=slow`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15T10:30:45Z",
				Level:     "warn",
				Message:   "slow",
			},
		},
		{
			name: "quoted empty value stays empty",
			line: `level=info msg="" caller=main.go`,
			want: model.ParsedLine{
				Level:  "info",
				Logger: "main.go",
			},
		},
		{
			name: "no pairs degrades to empty fields",
			line: `nothing to see here`,
			want: model.ParsedLine{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Raw = tt.line
			got := ParseLine(tt.line, model.FormatLogfmt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_JavaStructured(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.ParsedLine
	}{
		{
			name: "generic java",
			line: `2024-01-15 10:30:45,123 INFO [main] org.apache.kafka.Server: Started server`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15 10:30:45,123",
				Level:     "INFO",
				Thread:    "main",
				Logger:    "org.apache.kafka.Server",
				Message:   "Started server",
			},
		},
		{
			name: "zookeeper thread and logger split on colon",
			line: `2024-01-15 10:30:45,123 - INFO  [main:QuorumPeerConfig@101] - Reading configuration`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15 10:30:45,123",
				Level:     "INFO",
				Thread:    "main",
				Logger:    "QuorumPeerConfig@101",
				Message:   "Reading configuration",
			},
		},
		{
			name: "zookeeper without logger part",
			line: `2024-01-15 10:30:45,123 - WARN  [SyncThread] - fsync took too long`,
			want: model.ParsedLine{
				Timestamp: "2024-01-15 10:30:45,123",
				Level:     "WARN",
				Thread:    "SyncThread",
				Message:   "fsync took too long",
			},
		},
		{
			name: "non-matching line falls back to plain",
			line: `at com.example.Foo.bar(Foo.java:42)`,
			want: model.ParsedLine{
				Message: `at com.example.Foo.bar(Foo.java:42)`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Raw = tt.line
			got := ParseLine(tt.line, model.FormatJavaStructured)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine_Syslog(t *testing.T) {
	line := `Jan 15 10:30:45 myhost sshd[1234]: Accepted password for root`
	got := ParseLine(line, model.FormatSyslog)

	want := model.ParsedLine{
		Raw:       line,
		Timestamp: "Jan 15 10:30:45",
		Logger:    "sshd",
		Message:   "Accepted password for root",
		Extra: []model.Field{
			{Key: "host", Value: "myhost"},
			{Key: "pid", Value: "1234"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseLine() = %+v, want %+v", got, want)
	}
}

func TestParseLine_SyslogWithoutPID(t *testing.T) {
	line := `Jan 15 10:30:46 myhost kernel: Out of memory`
	got := ParseLine(line, model.FormatSyslog)

	if got.Logger != "kernel" {
		t.Errorf("expected logger 'kernel', got %q", got.Logger)
	}
	if pid, ok := got.ExtraValue("pid"); ok {
		t.Errorf("expected no pid extra, got %q", pid)
	}
	if got.Message != "Out of memory" {
		t.Errorf("expected message 'Out of memory', got %q", got.Message)
	}
}

func TestParseLine_Plain(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		wantTimestamp string
		wantLevel     string
	}{
		{
			name:          "timestamp and level anywhere in the line",
			line:          "something failed at 2024-01-15 10:30:45 with error details",
			wantTimestamp: "2024-01-15 10:30:45",
			wantLevel:     "ERROR",
		},
		{
			name:      "level is uppercased",
			line:      "a warning was issued",
			wantLevel: "WARNING",
		},
		{
			name: "bare text",
			line: "nothing structured here at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line, model.FormatPlain)
			if got.Message != tt.line {
				t.Errorf("expected message to be the raw line, got %q", got.Message)
			}
			if got.Timestamp != tt.wantTimestamp {
				t.Errorf("expected timestamp %q, got %q", tt.wantTimestamp, got.Timestamp)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("expected level %q, got %q", tt.wantLevel, got.Level)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	text := `{"level":"info","msg":"one"}

{"level":"error","msg":"two"}
`
	format, parsed := ParseLines(text)

	if format != model.FormatJSON {
		t.Fatalf("expected json format, got %q", format)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 parsed lines, got %d", len(parsed))
	}
	if parsed[0].Message != "one" || parsed[1].Message != "two" {
		t.Errorf("unexpected messages: %q, %q", parsed[0].Message, parsed[1].Message)
	}
}

func TestParseLines_Empty(t *testing.T) {
	format, parsed := ParseLines("   \n \n")
	if format != model.FormatPlain {
		t.Errorf("expected plain format, got %q", format)
	}
	if len(parsed) != 0 {
		t.Errorf("expected no parsed lines, got %d", len(parsed))
	}
}
