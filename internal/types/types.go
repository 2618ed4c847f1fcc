package types

import (
	"context"

	"github.com/xhad/rag/internal/models"
)

// Core interfaces

// DocumentSource reads the corpus into a list of documents.
type DocumentSource interface {
	Load(ctx context.Context) ([]models.Document, error)
}

// Processor splits documents into chunks ready for embedding.
type Processor interface {
	Process(docs []models.Document) ([]models.ProcessedDocument, error)
}

// Embedder computes fixed-dimension vectors for text.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is a remote store of named vector collections. Implementations
// must never delete or mutate an existing collection.
type VectorStore interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	CreateCollection(ctx context.Context, collection string, dim int) error
	Store(ctx context.Context, collection string, docs []models.ProcessedDocument) error
	Query(ctx context.Context, collection string, embedding []float32, limit int) ([]models.Document, error)
	Close()
}

// ChatModel generates an answer conditioned on retrieved context documents.
type ChatModel interface {
	Answer(ctx context.Context, query string, docs []models.Document) (string, error)
}
