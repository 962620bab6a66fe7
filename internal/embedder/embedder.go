// Package embedder turns chunk text into embedding vectors.
package embedder

import (
	"context"
	"net/http"
)

// Embedder generates embedding vectors for a batch of texts.
// Implementations must return one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Provider() string
}

// HTTPDoer abstracts HTTP client operations for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Ensure http.Client implements HTTPDoer.
var _ HTTPDoer = (*http.Client)(nil)
