package chunker

import (
	"regexp"
	"strings"
)

var blockBoundaryPattern = regexp.MustCompile(`\n\s*\n`)

// SplitBasic chunks raw text with no metadata. The text is split into
// blocks on blank-line boundaries; a block longer than maxChars is emitted
// as fixed windows advancing by maxChars-overlap, so consecutive windows
// share exactly overlap characters and their union reconstructs the block.
// Windows are rune based so a multibyte character never splits.
func SplitBasic(text string, maxChars, overlap int) []string {
	if maxChars <= 0 {
		maxChars = DefaultBasicMaxChars
	}
	if overlap < 0 || overlap >= maxChars {
		// the cursor must advance every step
		overlap = DefaultOverlap
		if overlap >= maxChars {
			overlap = maxChars / 2
		}
	}

	var chunks []string
	for _, block := range blockBoundaryPattern.Split(strings.TrimSpace(text), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		runes := []rune(block)
		if len(runes) <= maxChars {
			chunks = append(chunks, block)
			continue
		}

		start := 0
		for start < len(runes) {
			end := min(start+maxChars, len(runes))
			chunks = append(chunks, string(runes[start:end]))
			if end == len(runes) {
				break
			}
			start = end - overlap
		}
	}
	return chunks
}
