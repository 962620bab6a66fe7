package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// vectorField is the document field holding the chunk embedding.
const vectorField = "embedding"

// IndexerFactory creates a new BulkIndexer.
type IndexerFactory func(cfg config.ElasticsearchStoreConfig) (esutil.BulkIndexer, error)

// SearchFunc runs a search request body against the index and returns the
// raw response body.
type SearchFunc func(ctx context.Context, index string, body io.Reader) (io.ReadCloser, error)

// ElasticsearchOption configures the ElasticsearchStore.
type ElasticsearchOption func(*ElasticsearchStore)

// WithIndexerFactory sets a custom factory for creating the BulkIndexer.
// This is primarily used for testing to inject a mock indexer.
func WithIndexerFactory(f IndexerFactory) ElasticsearchOption {
	return func(e *ElasticsearchStore) {
		e.factory = f
	}
}

// WithSearchFunc sets a custom search transport for testing.
func WithSearchFunc(f SearchFunc) ElasticsearchOption {
	return func(e *ElasticsearchStore) {
		e.search = f
	}
}

// ElasticsearchStore persists chunk vectors in a dense_vector index and
// serves kNN search over it.
type ElasticsearchStore struct {
	cfg     config.ElasticsearchStoreConfig
	factory IndexerFactory
	search  SearchFunc
	indexer esutil.BulkIndexer
	mu      sync.Mutex
}

// NewElasticsearchStore creates a new Elasticsearch-backed store.
func NewElasticsearchStore(cfg config.ElasticsearchStoreConfig, opts ...ElasticsearchOption) *ElasticsearchStore {
	e := &ElasticsearchStore{
		cfg: cfg,
	}

	// Default factory creates real client and indexer
	e.factory = func(cfg config.ElasticsearchStoreConfig) (esutil.BulkIndexer, error) {
		client, err := newClient(cfg)
		if err != nil {
			return nil, err
		}

		return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Client:        client,
			Index:         cfg.Index,
			NumWorkers:    2,
			FlushBytes:    5e+6, // 5MB
			FlushInterval: cfg.FlushInterval,
		})
	}

	e.search = func(ctx context.Context, index string, body io.Reader) (io.ReadCloser, error) {
		client, err := newClient(cfg)
		if err != nil {
			return nil, err
		}
		res, err := client.Search(
			client.Search.WithContext(ctx),
			client.Search.WithIndex(index),
			client.Search.WithBody(body),
		)
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			defer res.Body.Close()
			data, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
			return nil, fmt.Errorf("elasticsearch search failed: %s: %s", res.Status(), data)
		}
		return res.Body, nil
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func newClient(cfg config.ElasticsearchStoreConfig) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	return client, nil
}

// Name returns the backend identifier.
func (e *ElasticsearchStore) Name() string {
	return "elasticsearch"
}

// Start bootstraps the index mapping and the bulk indexer. The embedding
// field's dims are inferred by Elasticsearch from the first document.
func (e *ElasticsearchStore) Start(ctx context.Context) error {
	client, err := newClient(e.cfg)
	if err == nil {
		mapping := fmt.Sprintf(`{
			"mappings": {
				"properties": {
					%q: {"type": "dense_vector", "index": true, "similarity": "cosine"}
				}
			}
		}`, vectorField)

		// Ignore "already exists"; anything else surfaces on first write.
		res, createErr := client.Indices.Create(
			e.cfg.Index,
			client.Indices.Create.WithContext(ctx),
			client.Indices.Create.WithBody(strings.NewReader(mapping)),
		)
		if createErr == nil {
			res.Body.Close()
		}
	}

	indexer, err := e.factory(e.cfg)
	if err != nil {
		return err
	}
	e.indexer = indexer
	return nil
}

// Stop flushes and closes the bulk indexer.
func (e *ElasticsearchStore) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexer != nil {
		return e.indexer.Close(ctx)
	}
	return nil
}

// Upsert adds points to the bulk indexer.
func (e *ElasticsearchStore) Upsert(ctx context.Context, points []Point) (int, error) {
	for _, p := range points {
		doc := make(map[string]any, len(p.Payload)+1)
		for k, v := range p.Payload {
			doc[k] = v
		}
		doc[vectorField] = p.Vector

		data, err := json.Marshal(doc)
		if err != nil {
			return 0, err
		}

		err = e.indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: p.ID,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				// Log failure but don't block
			},
		})
		if err != nil {
			return 0, err
		}
	}
	return len(points), nil
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float32        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a kNN query and returns the topK closest chunks.
func (e *ElasticsearchStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	query := map[string]any{
		"knn": map[string]any{
			"field":          vectorField,
			"query_vector":   vector,
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"size": topK,
		"_source": map[string]any{
			"excludes": []string{vectorField},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	respBody, err := e.search(ctx, e.cfg.Index, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var resp esSearchResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Payload: h.Source})
	}
	return hits, nil
}
