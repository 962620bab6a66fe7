// Package parser implements log format auto-detection and per-line field
// extraction for the formats commonly seen in production log files:
// JSON (one object per line), logfmt, RFC 3164 syslog, and Java/Hadoop or
// ZooKeeper style structured logs. Anything else is treated as plain text.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

// maxSampleLines caps how many non-blank lines detection inspects.
const maxSampleLines = 30

// minLogfmtPairs is how many key=value tokens a line needs to vote logfmt.
const minLogfmtPairs = 3

var (
	// Java/Hadoop style: TIMESTAMP LEVEL [thread] logger: message
	javaPattern = regexp.MustCompile(
		`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}[,.:]\d{3})\s+` +
			`(INFO|WARN|ERROR|DEBUG|TRACE|FATAL)\s+` +
			`\[([^\]]+)\]\s+` +
			`([a-zA-Z][\w.]+(?::\w+)?)` +
			`[:\s-]*(.*)$`)

	// ZooKeeper style: TIMESTAMP - LEVEL [thread:logger] - message
	zookeeperPattern = regexp.MustCompile(
		`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}[,.:]\d{3})\s*-\s*` +
			`(INFO|WARN|ERROR|DEBUG|TRACE|FATAL)\s+` +
			`\[([^\]]+)\]\s*-\s*(.*)$`)

	// RFC 3164 syslog: Mon DD HH:MM:SS host process[pid]: message
	syslogPattern = regexp.MustCompile(
		`^(\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})\s+` +
			`(\S+)\s+` +
			`([^\[:\s]+)(?:\[(\d+)\])?:\s*(.*)$`)

	logfmtPattern = regexp.MustCompile(`(\w+)=(?:"([^"]*)"|([^\s]*))`)

	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}`)
	levelPattern     = regexp.MustCompile(`(?i)\b(INFO|WARN|WARNING|ERROR|DEBUG|TRACE|FATAL|CRITICAL)\b`)
)

// DetectFormat classifies a sample of lines into exactly one LogFormat.
// At most the first 30 non-blank lines vote; each line votes for the first
// recognizer that matches it. The format with the most votes wins, ties
// resolving in evaluation order (JSON, logfmt, java_structured, syslog).
// A sample with no recognizable lines is plain. Detection is a pure
// function of the sample.
func DetectFormat(sample []string) model.LogFormat {
	var jsonCount, logfmtCount, javaCount, syslogCount int

	seen := 0
	for _, line := range sample {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen >= maxSampleLines {
			break
		}
		seen++

		if strings.HasPrefix(line, "{") && json.Valid([]byte(line)) {
			jsonCount++
			continue
		}

		if len(logfmtPattern.FindAllString(line, minLogfmtPairs)) >= minLogfmtPairs {
			logfmtCount++
			continue
		}

		// ZooKeeper first (dash separators), then generic Java; both vote
		// for the same format.
		if zookeeperPattern.MatchString(line) || javaPattern.MatchString(line) {
			javaCount++
			continue
		}

		if syslogPattern.MatchString(line) {
			syslogCount++
		}
	}

	best := model.FormatPlain
	bestCount := 0
	for _, c := range []struct {
		count  int
		format model.LogFormat
	}{
		{jsonCount, model.FormatJSON},
		{logfmtCount, model.FormatLogfmt},
		{javaCount, model.FormatJavaStructured},
		{syslogCount, model.FormatSyslog},
	} {
		if c.count > bestCount {
			bestCount = c.count
			best = c.format
		}
	}
	return best
}
