package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/internal/types"
)

type QdrantConfig struct {
	// Endpoint is the Qdrant REST address, either host:port or a full URL.
	Endpoint  string
	APIKey    string
	VectorDim int
	BatchSize int
	Timeout   time.Duration
}

// QdrantStore talks to the Qdrant REST API. Collections are only ever created
// and written to, never dropped or mutated.
type QdrantStore struct {
	config  QdrantConfig
	baseURL string
	client  *http.Client
}

func NewQdrantWithConfig(config QdrantConfig) (*QdrantStore, error) {
	if config.Endpoint == "" {
		config.Endpoint = "localhost:6333"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	baseURL := config.Endpoint
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &QdrantStore{
		config:  config,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

type qdrantPoint struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

type qdrantSearchHit struct {
	ID      interface{}            `json:"id"`
	Score   float32                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// CollectionExists checks whether the named collection is present. A 404 from
// the collection info endpoint means absent; anything besides 200/404 or a
// transport failure means the store is unavailable.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	resp, err := s.do(ctx, http.MethodGet, "/collections/"+collection, nil)
	if err != nil {
		return false, &types.StoreUnavailableError{Endpoint: s.config.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &types.StoreUnavailableError{
			Endpoint: s.config.Endpoint,
			Err:      fmt.Errorf("unexpected status %d checking collection %s", resp.StatusCode, collection),
		}
	}
}

// CreateCollection creates a new collection with cosine distance vectors of
// the given dimension.
func (s *QdrantStore) CreateCollection(ctx context.Context, collection string, dim int) error {
	if dim == 0 {
		dim = s.config.VectorDim
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dim,
			"distance": "Cosine",
		},
	}

	resp, err := s.do(ctx, http.MethodPut, "/collections/"+collection, body)
	if err != nil {
		return &types.StoreUnavailableError{Endpoint: s.config.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to create collection %s: %s", collection, readError(resp))
	}

	return nil
}

// Store upserts one point per chunk, in batches. A failure mid-write is
// returned as is; a partially populated collection is not reconciled.
func (s *QdrantStore) Store(ctx context.Context, collection string, docs []models.ProcessedDocument) error {
	var points []qdrantPoint
	for _, doc := range docs {
		if len(doc.Chunks) != len(doc.Embeddings) {
			return fmt.Errorf("document %s has %d chunks but %d embeddings", doc.ID, len(doc.Chunks), len(doc.Embeddings))
		}

		for i, chunk := range doc.Chunks {
			points = append(points, qdrantPoint{
				ID:     uuid.NewString(),
				Vector: doc.Embeddings[i],
				Payload: map[string]interface{}{
					"doc_id":      fmt.Sprintf("%s_%d", doc.ID, i),
					"path":        doc.Path,
					"title":       doc.Title,
					"content":     chunk,
					"chunk_index": i,
					"metadata":    doc.Metadata,
				},
			})
		}
	}

	for i := 0; i < len(points); i += s.config.BatchSize {
		end := i + s.config.BatchSize
		if end > len(points) {
			end = len(points)
		}

		body := map[string]interface{}{"points": points[i:end]}
		resp, err := s.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", body)
		if err != nil {
			return &types.StoreUnavailableError{Endpoint: s.config.Endpoint, Err: err}
		}

		status := resp.StatusCode
		errText := ""
		if status != http.StatusOK {
			errText = readError(resp)
		}
		resp.Body.Close()

		if status != http.StatusOK {
			return fmt.Errorf("failed to write points to collection %s: %s", collection, errText)
		}
	}

	return nil
}

// Query returns the top-k nearest documents to the given embedding.
func (s *QdrantStore) Query(ctx context.Context, collection string, embedding []float32, limit int) ([]models.Document, error) {
	body := map[string]interface{}{
		"vector":       embedding,
		"limit":        limit,
		"with_payload": true,
	}

	resp, err := s.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, &types.StoreUnavailableError{Endpoint: s.config.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to query collection %s: %s", collection, readError(resp))
	}

	var result struct {
		Result []qdrantSearchHit `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]models.Document, 0, len(result.Result))
	for _, hit := range result.Result {
		doc := models.Document{
			ID:      stringPayload(hit.Payload, "doc_id"),
			Path:    stringPayload(hit.Payload, "path"),
			Title:   stringPayload(hit.Payload, "title"),
			Content: stringPayload(hit.Payload, "content"),
		}
		if metadata, ok := hit.Payload["metadata"].(map[string]interface{}); ok {
			doc.Metadata = metadata
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *QdrantStore) Close() {}

func (s *QdrantStore) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("api-key", s.config.APIKey)
	}

	return s.client.Do(req)
}

func readError(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}

func stringPayload(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
