// Package stats summarizes whole log files for quick display.
package stats

import (
	"sort"
	"strings"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/parser"
)

// maxLoggers caps the distinct logger names reported.
const maxLoggers = 20

// Extract computes high-level statistics over a whole log file: total
// non-blank line count, detected format, per-level counts, first and last
// timestamps, and the distinct logger names (sorted, capped at 20). It is a
// pure function of the input text.
func Extract(text string) model.Stats {
	format, parsed := parser.ParseLines(text)
	return FromParsed(format, parsed)
}

// FromParsed computes the same statistics over lines already parsed.
func FromParsed(format model.LogFormat, parsed []model.ParsedLine) model.Stats {
	s := model.Stats{
		TotalLines: len(parsed),
		Format:     format,
		Loggers:    []string{},
	}

	loggers := make(map[string]bool)
	for _, p := range parsed {
		level := strings.ToUpper(p.Level)
		switch {
		case model.IsErrorLevel(level):
			s.ErrorCount++
		case model.IsWarnLevel(level):
			s.WarnCount++
		case level == "INFO":
			s.InfoCount++
		case level == "DEBUG" || level == "TRACE":
			s.DebugCount++
		}

		if p.Timestamp != "" {
			if s.FirstTimestamp == "" {
				s.FirstTimestamp = p.Timestamp
			}
			s.LastTimestamp = p.Timestamp
		}

		if p.Logger != "" {
			loggers[p.Logger] = true
		}
	}

	for name := range loggers {
		s.Loggers = append(s.Loggers, name)
	}
	sort.Strings(s.Loggers)
	if len(s.Loggers) > maxLoggers {
		s.Loggers = s.Loggers[:maxLoggers]
	}

	return s
}
