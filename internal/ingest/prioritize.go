package ingest

import (
	"sort"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
)

// errorWeight makes a single error outweigh any realistic warning count
// inside one chunk when ranking chunks for the storage cap.
const errorWeight = 10

// Prioritize keeps at most limit chunks, preferring those with the most
// errors and warnings. Survivors stay in their original file order.
func Prioritize(chunks []model.Chunk, limit int) []model.Chunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}

	idx := make([]int, len(chunks))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return score(chunks[idx[a]]) > score(chunks[idx[b]])
	})

	keep := idx[:limit]
	sort.Ints(keep)

	out := make([]model.Chunk, 0, limit)
	for _, i := range keep {
		out = append(out, chunks[i])
	}
	return out
}

func score(c model.Chunk) int {
	return c.Metadata.ErrorCount*errorWeight + c.Metadata.WarnCount
}
