package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  model.LogFormat
	}{
		{
			name: "json lines",
			lines: []string{
				`{"level":"info","msg":"started"}`,
				`{"level":"error","msg":"db down"}`,
			},
			want: model.FormatJSON,
		},
		{
			name: "logfmt lines",
			lines: []string{
				`time=2024-01-15T10:30:45Z level=info msg="server started"`,
				`time=2024-01-15T10:30:46Z level=error msg="connection failed" retries=3`,
			},
			want: model.FormatLogfmt,
		},
		{
			name: "generic java",
			lines: []string{
				`2024-01-15 10:30:45,123 INFO [main] org.apache.kafka.Server: Started server`,
				`2024-01-15 10:30:46,456 ERROR [pool-1] org.apache.kafka.Network: Connection reset`,
			},
			want: model.FormatJavaStructured,
		},
		{
			name: "zookeeper style",
			lines: []string{
				`2024-01-15 10:30:45,123 - INFO  [main:QuorumPeerConfig@101] - Reading configuration`,
				`2024-01-15 10:30:46,456 - WARN  [main:QuorumPeer@523] - No server failure will be tolerated`,
			},
			want: model.FormatJavaStructured,
		},
		{
			name: "syslog lines",
			lines: []string{
				`Jan 15 10:30:45 myhost sshd[1234]: Accepted password for root`,
				`Jan 15 10:30:46 myhost kernel: Out of memory`,
			},
			want: model.FormatSyslog,
		},
		{
			name: "majority wins",
			lines: []string{
				`{"level":"info","msg":"one"}`,
				`Jan 15 10:30:45 myhost sshd[1234]: two`,
				`Jan 15 10:30:46 myhost sshd[1234]: three`,
			},
			want: model.FormatSyslog,
		},
		{
			name: "tie resolves to earlier format",
			lines: []string{
				`{"level":"info","msg":"one"}`,
				`Jan 15 10:30:45 myhost sshd[1234]: two`,
			},
			want: model.FormatJSON,
		},
		{
			name:  "unrecognizable lines are plain",
			lines: []string{"something happened", "and then something else"},
			want:  model.FormatPlain,
		},
		{
			name:  "empty sample is plain",
			lines: nil,
			want:  model.FormatPlain,
		},
		{
			name:  "blank lines only is plain",
			lines: []string{"", "   ", "\t"},
			want:  model.FormatPlain,
		},
		{
			name: "blank lines do not consume the sample",
			lines: append(
				[]string{"", "", ""},
				`{"level":"info","msg":"hello"}`,
			),
			want: model.FormatJSON,
		},
		{
			name:  "truncated json does not vote",
			lines: []string{`{"level":"info","msg":`},
			want:  model.FormatPlain,
		},
		{
			name:  "two pairs is not logfmt",
			lines: []string{`level=info msg=started`},
			want:  model.FormatPlain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.lines); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_SampleCap(t *testing.T) {
	// 30 unrecognizable lines fill the sample; the JSON lines after them
	// must not be inspected.
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("noise line %d", i))
	}
	for i := 0; i < 5; i++ {
		lines = append(lines, `{"level":"info","msg":"late"}`)
	}

	if got := DetectFormat(lines); got != model.FormatPlain {
		t.Errorf("DetectFormat() = %q, want %q", got, model.FormatPlain)
	}
}

func TestDetectFormat_Deterministic(t *testing.T) {
	lines := strings.Split(strings.Repeat(`{"msg":"x"}`+"\n"+`level=info msg=y extra=z`+"\n", 10), "\n")

	first := DetectFormat(lines)
	for i := 0; i < 5; i++ {
		if got := DetectFormat(lines); got != first {
			t.Fatalf("detection not deterministic: got %q then %q", first, got)
		}
	}
}
