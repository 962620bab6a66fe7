package parser

import (
	"regexp"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

// tracePatterns recognize the request/trace identifiers services commonly
// stamp on log lines. The first pattern that matches a line wins.
var tracePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:request[_-]?id|req[_-]?id|trace[_-]?id|correlation[_-]?id|x-request-id)[=:\s]+([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)(?:transaction|txn|tx)[_-]?(?:id)?[=:\s]+([a-zA-Z0-9_-]+)`),
}

// ExtractTraceIDs finds request/trace IDs so related lines can be grouped
// together. It returns a map of trace ID to the ordered indices of the
// lines that mention it.
func ExtractTraceIDs(lines []model.ParsedLine) map[string][]int {
	traces := make(map[string][]int)
	for idx, line := range lines {
		for _, re := range tracePatterns {
			m := re.FindStringSubmatch(line.Raw)
			if m == nil {
				continue
			}
			traces[m[1]] = append(traces[m[1]], idx)
			break
		}
	}
	return traces
}
