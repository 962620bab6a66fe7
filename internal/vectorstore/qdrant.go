package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// QdrantStore talks to a Qdrant instance over its REST API.
type QdrantStore struct {
	cfg     config.QdrantStoreConfig
	client  HTTPDoer
	mu      sync.Mutex
	ensured bool
}

// QdrantOption configures a QdrantStore.
type QdrantOption func(*QdrantStore)

// WithQdrantHTTPClient sets a custom HTTP client for testing.
func WithQdrantHTTPClient(client HTTPDoer) QdrantOption {
	return func(q *QdrantStore) {
		q.client = client
	}
}

// NewQdrantStore creates a new Qdrant-backed store.
func NewQdrantStore(cfg config.QdrantStoreConfig, opts ...QdrantOption) *QdrantStore {
	q := &QdrantStore{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the backend identifier.
func (q *QdrantStore) Name() string {
	return "qdrant"
}

// Start is a no-op: the collection is created lazily on the first upsert,
// when the vector size is known.
func (q *QdrantStore) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op: requests are synchronous, nothing is buffered.
func (q *QdrantStore) Stop(ctx context.Context) error {
	return nil
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type qdrantUpsertRequest struct {
	Points []qdrantPoint `json:"points"`
}

type qdrantSearchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type qdrantSearchResponse struct {
	Result []struct {
		ID      string         `json:"id"`
		Score   float32        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Upsert writes points to the collection, creating it on first use with
// the points' vector size and cosine distance.
func (q *QdrantStore) Upsert(ctx context.Context, points []Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	if err := q.ensureCollection(ctx, len(points[0].Vector)); err != nil {
		return 0, err
	}

	req := qdrantUpsertRequest{Points: make([]qdrantPoint, 0, len(points))}
	for _, p := range points {
		req.Points = append(req.Points, qdrantPoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload})
	}

	url := fmt.Sprintf("%s/collections/%s/points", q.cfg.URL, q.cfg.Collection)
	if err := q.do(ctx, http.MethodPut, url, req, nil); err != nil {
		return 0, err
	}
	return len(points), nil
}

// Search returns the topK closest points with their payloads.
func (q *QdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	req := qdrantSearchRequest{Vector: vector, Limit: topK, WithPayload: true}

	var resp qdrantSearchResponse
	url := fmt.Sprintf("%s/collections/%s/points/search", q.cfg.URL, q.cfg.Collection)
	if err := q.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, Hit{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

// ensureCollection creates the collection once if it does not exist.
func (q *QdrantStore) ensureCollection(ctx context.Context, vectorSize int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ensured {
		return nil
	}

	url := fmt.Sprintf("%s/collections/%s", q.cfg.URL, q.cfg.Collection)
	err := q.do(ctx, http.MethodGet, url, nil, nil)
	if err == nil {
		q.ensured = true
		return nil
	}

	create := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	if err := q.do(ctx, http.MethodPut, url, create, nil); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	q.ensured = true
	return nil
}

// do sends one JSON request and optionally decodes the response body.
func (q *QdrantStore) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("qdrant %s %s failed with status %d: %s", method, url, resp.StatusCode, data)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
