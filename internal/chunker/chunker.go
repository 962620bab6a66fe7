// Package chunker groups log lines into size-bounded, context-preserving
// retrieval units. The structured chunker works over parsed lines and
// carries aggregate metadata; the basic chunker is a plain-text fallback.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/parser"
)

// Defaults for the structured and basic chunkers.
const (
	DefaultMaxLines      = 50
	DefaultMaxChars      = 2000
	DefaultBasicMaxChars = 1000
	DefaultOverlap       = 150
)

// Options controls chunk sizing. Zero values fall back to the defaults.
type Options struct {
	// MaxLines and MaxChars bound structured chunks. A chunk closes as soon
	// as either bound is reached.
	MaxLines int
	MaxChars int

	// BasicMaxChars and Overlap control the basic text chunker.
	BasicMaxChars int
	Overlap       int
}

func (o Options) withDefaults() Options {
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.BasicMaxChars <= 0 {
		o.BasicMaxChars = DefaultBasicMaxChars
	}
	if o.Overlap <= 0 || o.Overlap >= o.BasicMaxChars {
		o.Overlap = DefaultOverlap
	}
	return o
}

// Split chunks a whole log file. Lines are parsed with the detected format
// and grouped by the structured chunker; if nothing parses (empty or
// whitespace-only input) it falls back to basic chunking of the raw text,
// producing chunks with no metadata.
func Split(text string, opts Options) []model.Chunk {
	opts = opts.withDefaults()

	format, parsed := parser.ParseLines(text)
	if len(parsed) == 0 {
		var chunks []model.Chunk
		for _, c := range SplitBasic(text, opts.BasicMaxChars, opts.Overlap) {
			chunks = append(chunks, model.Chunk{Text: c})
		}
		return chunks
	}

	return SplitParsed(format, parsed, opts)
}

// SplitParsed partitions parsed lines into chunks in a single greedy pass.
// A chunk closes at the first line where the accumulated line count reaches
// MaxLines or the accumulated character count reaches MaxChars; closed
// chunks are never re-opened and no chunk is empty. Character counts are
// rune counts over the raw lines, excluding the joining newlines.
//
// A single line alone exceeding MaxChars still comes out as its own
// one-line chunk; it is not split further.
//
// Splitting is purely size bounded. There is no time-gap or error-cluster
// boundary logic.
func SplitParsed(format model.LogFormat, parsed []model.ParsedLine, opts Options) []model.Chunk {
	opts = opts.withDefaults()

	var chunks []model.Chunk
	var lines []string
	chars := 0
	meta := model.ChunkMetadata{LogFormat: format}

	flush := func() {
		if len(lines) == 0 {
			return
		}
		chunks = append(chunks, model.Chunk{
			Text:     strings.Join(lines, "\n"),
			Metadata: meta,
		})
		lines = nil
		chars = 0
		meta = model.ChunkMetadata{LogFormat: format}
	}

	for _, p := range parsed {
		if p.Timestamp != "" {
			if meta.FirstTimestamp == "" {
				meta.FirstTimestamp = p.Timestamp
			}
			meta.LastTimestamp = p.Timestamp
		}

		switch {
		case model.IsErrorLevel(p.Level):
			meta.ErrorCount++
		case model.IsWarnLevel(p.Level):
			meta.WarnCount++
		}

		lines = append(lines, p.Raw)
		chars += utf8.RuneCountInString(p.Raw)

		if len(lines) >= opts.MaxLines || chars >= opts.MaxChars {
			flush()
		}
	}
	flush()

	return chunks
}
