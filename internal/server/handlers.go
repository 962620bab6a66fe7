package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/llm"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/storage"
)

const defaultTopK = 6

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// EvidenceItem cites one retrieved chunk in an analysis answer.
type EvidenceItem struct {
	ChunkID  string `json:"chunk_id"`
	Filename string `json:"filename"`
	Quote    string `json:"quote"`
}

// AnalyzeResponse is the body of a successful POST /analyze.
type AnalyzeResponse struct {
	Summary           string         `json:"summary"`
	ProbableRootCause string         `json:"probable_root_cause"`
	Confidence        string         `json:"confidence"`
	Evidence          []EvidenceItem `json:"evidence"`
	NextSteps         []string       `json:"next_steps"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleIngest(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file upload")
	}

	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "opening upload: "+err.Error())
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "reading upload: "+err.Error())
	}

	filename := fh.Filename
	if filename == "" {
		filename = "upload.log"
	}

	if s.deps.Uploads != nil {
		if _, err := s.deps.Uploads.Save(filename, content); err != nil {
			s.logger.Warn().Err(err).Str("filename", storage.SafeName(filename)).Msg("upload not persisted")
		}
	}

	// Invalid UTF-8 is replaced rather than rejected; log files are messy.
	text := strings.ToValidUTF8(string(content), "�")

	result, err := s.deps.Ingester.Ingest(c.Request().Context(), filename, text)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", storage.SafeName(filename)).Msg("ingest failed")
		return echo.NewHTTPError(http.StatusBadGateway, "ingest failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	if req.TopK <= 0 {
		req.TopK = defaultTopK
	}

	ctx := c.Request().Context()

	start := time.Now()
	vectors, err := s.deps.Embedder.Embed(ctx, []string{req.Question})
	s.deps.Audit.LogEmbed(s.deps.Embedder.Provider(), err == nil, time.Since(start), err)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "embedding question: "+err.Error())
	}

	hits, err := s.deps.Store.Search(ctx, vectors[0], req.TopK)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "searching chunks: "+err.Error())
	}

	blocks := make([]string, 0, len(hits))
	items := make([]EvidenceItem, 0, len(hits))
	for _, h := range hits {
		chunkID := payloadString(h.Payload, "chunk_id")
		if chunkID == "" {
			chunkID = h.ID
		}
		filename := payloadString(h.Payload, "filename")
		text := payloadString(h.Payload, "text")

		blocks = append(blocks, llm.EvidenceBlock(chunkID, filename, text))
		items = append(items, EvidenceItem{
			ChunkID:  chunkID,
			Filename: filename,
			Quote:    llm.Quote(text),
		})
	}

	start = time.Now()
	raw, err := s.deps.Chat.Chat(ctx, llm.SystemPrompt, llm.BuildAnalysisPrompt(req.Question, blocks))
	s.deps.Audit.LogChat(s.deps.Chat.Provider(), err == nil, time.Since(start), err)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "generating analysis: "+err.Error())
	}

	return c.JSON(http.StatusOK, AnalyzeResponse{
		Summary:           strings.TrimSpace(raw),
		ProbableRootCause: "See summary above.",
		Confidence:        llm.InferConfidence(raw),
		Evidence:          items,
		NextSteps:         llm.DefaultNextSteps(),
	})
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	v, ok := payload[key].(string)
	if !ok {
		return ""
	}
	return v
}
