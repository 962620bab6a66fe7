// Package ingest runs the full log ingestion pipeline: parse, chunk,
// prioritize, embed, and store.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/chunker"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/embedder"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/llm"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/parser"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/stats"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/vectorstore"
)

// Result summarizes one ingested file.
type Result struct {
	Filename      string           `json:"filename"`
	ChunksCreated int              `json:"chunks_created"`
	Stats         model.Stats      `json:"stats"`
	TraceIDs      map[string][]int `json:"trace_ids"`
}

// Service ties the chunking core to the embedding and storage
// collaborators. It is stateless per call; chunking parameters can be
// swapped at runtime via Reconfigure.
type Service struct {
	mu       sync.RWMutex
	chunking config.ChunkingConfig

	embedder embedder.Embedder
	store    vectorstore.Store
	audit    *llm.AuditLogger
	logger   zerolog.Logger
}

// New creates an ingestion service.
func New(chunking config.ChunkingConfig, emb embedder.Embedder, store vectorstore.Store, audit *llm.AuditLogger, logger zerolog.Logger) *Service {
	return &Service{
		chunking: chunking,
		embedder: emb,
		store:    store,
		audit:    audit,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// Reconfigure replaces the chunking parameters. Ingestions already in
// flight keep the parameters they started with.
func (s *Service) Reconfigure(chunking config.ChunkingConfig) {
	s.mu.Lock()
	s.chunking = chunking
	s.mu.Unlock()
}

func (s *Service) options() (chunker.Options, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opts := chunker.Options{
		MaxLines:      s.chunking.MaxLines,
		MaxChars:      s.chunking.MaxChars,
		BasicMaxChars: s.chunking.BasicMaxChars,
		Overlap:       s.chunking.Overlap,
	}
	return opts, s.chunking.MaxChunks
}

// Chunk runs only the parse and chunk stages, without embedding or
// storage. Used for dry runs.
func (s *Service) Chunk(text string) []model.Chunk {
	opts, _ := s.options()
	return chunker.Split(text, opts)
}

// Ingest chunks text, embeds the surviving chunks, and upserts them into
// the vector store under fresh UUIDs. The returned result carries
// whole-file statistics and trace-ID occurrences regardless of how many
// chunks were stored.
func (s *Service) Ingest(ctx context.Context, filename, text string) (*Result, error) {
	opts, maxChunks := s.options()

	format, parsed := parser.ParseLines(text)

	var chunks []model.Chunk
	if len(parsed) == 0 {
		for _, c := range chunker.SplitBasic(text, opts.BasicMaxChars, opts.Overlap) {
			chunks = append(chunks, model.Chunk{Text: c})
		}
	} else {
		chunks = chunker.SplitParsed(format, parsed, opts)
	}

	chunks = Prioritize(chunks, maxChunks)

	result := &Result{
		Filename: filename,
		Stats:    stats.FromParsed(format, parsed),
		TraceIDs: parser.ExtractTraceIDs(parsed),
	}
	if len(chunks) == 0 {
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	start := time.Now()
	vectors, err := s.embedder.Embed(ctx, texts)
	s.audit.LogEmbed(s.embedder.Provider(), err == nil, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		id := uuid.NewString()
		points[i] = vectorstore.Point{
			ID:      id,
			Vector:  vectors[i],
			Payload: chunkPayload(id, filename, c),
		}
	}

	created, err := s.store.Upsert(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}
	result.ChunksCreated = created

	s.logger.Info().
		Str("filename", filename).
		Int("chunks", created).
		Str("format", string(format)).
		Msg("file ingested")

	return result, nil
}

// chunkPayload builds the document persisted alongside a chunk's vector.
// Per-chunk level counts come from the scan-window extractor; the chunker's
// aggregate timestamps ride along under their own keys.
func chunkPayload(id, filename string, c model.Chunk) map[string]any {
	meta := chunker.ExtractMetadata(c.Text, filename)

	payload := map[string]any{
		"chunk_id":    id,
		"text":        c.Text,
		"filename":    meta.Filename,
		"error_count": meta.ErrorCount,
		"warn_count":  meta.WarnCount,
	}
	if meta.Timestamp != "" {
		payload["timestamp"] = meta.Timestamp
	}
	if meta.Level != "" {
		payload["level"] = meta.Level
	}
	if c.Metadata.LogFormat != "" {
		payload["log_format"] = string(c.Metadata.LogFormat)
	}
	if c.Metadata.FirstTimestamp != "" {
		payload["first_timestamp"] = c.Metadata.FirstTimestamp
	}
	if c.Metadata.LastTimestamp != "" {
		payload["last_timestamp"] = c.Metadata.LastTimestamp
	}
	return payload
}
