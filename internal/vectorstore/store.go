// Package vectorstore persists chunk embeddings and serves similarity
// search over them.
package vectorstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// Point is one embedded chunk ready for persistence.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Hit is one similarity search result.
type Hit struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// Store defines the contract for chunk vector storage backends.
type Store interface {
	// Start initializes the backend (connections, collections, indexers).
	// Called once before Upsert or Search.
	Start(ctx context.Context) error

	// Upsert persists points and returns how many were accepted.
	// Must be safe to call concurrently.
	Upsert(ctx context.Context, points []Point) (int, error)

	// Search returns the topK closest points to the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]Hit, error)

	// Stop gracefully shuts down the backend, flushing buffered writes.
	Stop(ctx context.Context) error

	// Name returns a unique identifier for this backend.
	Name() string
}

// HTTPDoer abstracts HTTP client operations for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPDoer = (*http.Client)(nil)

// New builds the configured backend.
func New(cfg config.VectorStoreConfig) (Store, error) {
	switch cfg.Backend {
	case "qdrant":
		return NewQdrantStore(cfg.Qdrant), nil
	case "elasticsearch":
		return NewElasticsearchStore(cfg.Elasticsearch), nil
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.Backend)
	}
}
