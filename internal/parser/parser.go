package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

// synonyms lists, per named attribute, the field keys that may carry it.
// The first key holding a non-empty value wins. Every listed key is a
// "known key" and excluded from the extra fields.
type synonyms struct {
	timestamp []string
	level     []string
	message   []string
	logger    []string
	thread    []string
}

func (s synonyms) knownKeys() map[string]bool {
	known := make(map[string]bool)
	for _, group := range [][]string{s.timestamp, s.level, s.message, s.logger, s.thread} {
		for _, k := range group {
			known[k] = true
		}
	}
	return known
}

// Per-format field dictionaries. These are static constants, not runtime
// state: the closed LogFormat set means each format carries a fixed table.
var (
	jsonSynonyms = synonyms{
		timestamp: []string{"timestamp", "time", "@timestamp", "ts"},
		level:     []string{"level", "severity", "log_level"},
		message:   []string{"message", "msg", "log"},
		logger:    []string{"logger", "name", "source"},
		thread:    []string{"thread", "thread_name"},
	}
	logfmtSynonyms = synonyms{
		timestamp: []string{"time", "timestamp", "ts"},
		level:     []string{"level", "lvl", "severity"},
		message:   []string{"msg", "message"},
		logger:    []string{"logger", "component", "caller"},
	}

	jsonKnownKeys   = jsonSynonyms.knownKeys()
	logfmtKnownKeys = logfmtSynonyms.knownKeys()
)

// ParseLine extracts structured fields from one raw line according to a
// previously detected format. It never fails: any internal parse failure
// degrades to best-effort plain extraction with the raw line as message.
func ParseLine(line string, format model.LogFormat) model.ParsedLine {
	line = strings.TrimSpace(line)

	switch format {
	case model.FormatJSON:
		return parseJSONLine(line)
	case model.FormatLogfmt:
		return parseLogfmtLine(line)
	case model.FormatJavaStructured:
		return parseJavaLine(line)
	case model.FormatSyslog:
		return parseSyslogLine(line)
	default:
		return parsePlainLine(line)
	}
}

// ParseLines detects the format from the leading sample and parses every
// non-blank line, preserving input order.
func ParseLines(text string) (model.LogFormat, []model.ParsedLine) {
	lines := strings.Split(text, "\n")
	format := DetectFormat(lines)

	var parsed []model.ParsedLine
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed = append(parsed, ParseLine(line, format))
	}
	return format, parsed
}

func parseJSONLine(line string) model.ParsedLine {
	p := model.ParsedLine{Raw: line}

	fields, err := decodeOrderedObject(line)
	if err != nil {
		p.Message = line
		return p
	}

	p.Timestamp = firstPresent(fields, jsonSynonyms.timestamp)
	p.Level = firstPresent(fields, jsonSynonyms.level)
	p.Message = firstPresent(fields, jsonSynonyms.message)
	p.Logger = firstPresent(fields, jsonSynonyms.logger)
	p.Thread = firstPresent(fields, jsonSynonyms.thread)

	for _, f := range fields {
		if !jsonKnownKeys[f.Key] {
			p.Extra = append(p.Extra, f)
		}
	}
	return p
}

func parseLogfmtLine(line string) model.ParsedLine {
	p := model.ParsedLine{Raw: line}

	var fields []model.Field
	for _, idx := range logfmtPattern.FindAllStringSubmatchIndex(line, -1) {
		key := strings.ToLower(line[idx[2]:idx[3]])
		var value string
		if idx[4] >= 0 {
			value = line[idx[4]:idx[5]] // quoted, may contain spaces
		} else {
			value = line[idx[6]:idx[7]]
		}
		fields = setField(fields, key, value)
	}

	p.Timestamp = firstPresent(fields, logfmtSynonyms.timestamp)
	p.Level = firstPresent(fields, logfmtSynonyms.level)
	p.Message = firstPresent(fields, logfmtSynonyms.message)
	p.Logger = firstPresent(fields, logfmtSynonyms.logger)

	for _, f := range fields {
		if !logfmtKnownKeys[f.Key] {
			p.Extra = append(p.Extra, f)
		}
	}
	return p
}

func parseJavaLine(line string) model.ParsedLine {
	// ZooKeeper pattern first: the thread token can carry class info like
	// "main:QuorumPeerConfig@101", split on the first colon.
	if m := zookeeperPattern.FindStringSubmatch(line); m != nil {
		p := model.ParsedLine{
			Raw:       line,
			Timestamp: m[1],
			Level:     m[2],
			Message:   m[4],
		}
		if thread, logger, ok := strings.Cut(m[3], ":"); ok {
			p.Thread = thread
			p.Logger = logger
		} else {
			p.Thread = m[3]
		}
		return p
	}

	if m := javaPattern.FindStringSubmatch(line); m != nil {
		return model.ParsedLine{
			Raw:       line,
			Timestamp: m[1],
			Level:     m[2],
			Thread:    m[3],
			Logger:    m[4],
			Message:   m[5],
		}
	}

	return parsePlainLine(line)
}

func parseSyslogLine(line string) model.ParsedLine {
	p := model.ParsedLine{Raw: line}

	m := syslogPattern.FindStringSubmatch(line)
	if m == nil {
		p.Message = line
		return p
	}

	p.Timestamp = m[1]
	p.Extra = append(p.Extra, model.Field{Key: "host", Value: m[2]})
	p.Logger = m[3]
	if m[4] != "" {
		p.Extra = append(p.Extra, model.Field{Key: "pid", Value: m[4]})
	}
	p.Message = m[5]
	return p
}

func parsePlainLine(line string) model.ParsedLine {
	p := model.ParsedLine{Raw: line, Message: line}

	if ts := timestampPattern.FindString(line); ts != "" {
		p.Timestamp = ts
	}
	if m := levelPattern.FindStringSubmatch(line); m != nil {
		p.Level = strings.ToUpper(m[1])
	}
	return p
}

var errNotObject = errors.New("not a JSON object")

// decodeOrderedObject decodes a single-line JSON object into fields that
// preserve document key order. Duplicate keys keep the last value in the
// first key's position.
func decodeOrderedObject(line string) ([]model.Field, error) {
	dec := json.NewDecoder(strings.NewReader(line))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var fields []model.Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotObject
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = setField(fields, key, stringifyValue(value))
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF { // trailing garbage
		return nil, errNotObject
	}
	return fields, nil
}

// setField appends a field, or overwrites the value in place if the key is
// already present.
func setField(fields []model.Field, key, value string) []model.Field {
	for i := range fields {
		if fields[i].Key == key {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, model.Field{Key: key, Value: value})
}

// firstPresent returns the value of the first key in keys that holds a
// non-empty value.
func firstPresent(fields []model.Field, keys []string) string {
	for _, key := range keys {
		for _, f := range fields {
			if f.Key == key && f.Value != "" {
				return f.Value
			}
		}
	}
	return ""
}

// stringifyValue renders a decoded JSON value as a flat string. Nested
// structures keep their compact JSON form.
func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
