package chunker

import (
	"regexp"
	"strings"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

// metadataScanLines is how many leading lines of a chunk the metadata
// re-scan inspects.
const metadataScanLines = 20

var (
	metaTimestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}`)
	metaLevelPattern     = regexp.MustCompile(`(?i)\b(ERROR|WARN|WARNING|FATAL|CRITICAL)\b`)
)

// ExtractMetadata builds the storage-facing metadata for one chunk by
// re-scanning its first 20 lines with lightweight regexes: the first
// leading timestamp (truncated to 19 characters), the first level keyword
// seen, and per-line error/warn keyword counts within that window. The
// counts can diverge from the chunker's whole-chunk aggregates.
func ExtractMetadata(chunk, filename string) model.StorageMetadata {
	meta := model.StorageMetadata{Filename: filename}

	lines := strings.Split(chunk, "\n")
	if len(lines) > metadataScanLines {
		lines = lines[:metadataScanLines]
	}

	for _, ln := range lines {
		stripped := strings.TrimSpace(ln)

		if meta.Timestamp == "" && metaTimestampPattern.MatchString(stripped) {
			meta.Timestamp = stripped[:19]
		}

		m := metaLevelPattern.FindStringSubmatch(stripped)
		if m == nil {
			continue
		}
		found := strings.ToUpper(m[1])
		if model.IsErrorLevel(found) {
			meta.ErrorCount++
		} else {
			meta.WarnCount++
		}
		if meta.Level == "" {
			meta.Level = found
		}
	}
	return meta
}
