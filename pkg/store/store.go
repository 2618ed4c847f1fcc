package store

import (
	"fmt"

	"github.com/xhad/rag/internal/types"
)

type StoreConfig struct {
	// Driver selects the backend: "qdrant" or "pgvector".
	Driver     string
	Endpoint   string // Qdrant REST endpoint, host:port or URL
	ConnString string // PostgreSQL connection string for pgvector
	VectorDim  int
	BatchSize  int
}

// New builds the vector store backend selected by the configuration.
func New(config StoreConfig) (types.VectorStore, error) {
	switch config.Driver {
	case "", "qdrant":
		return NewQdrantWithConfig(QdrantConfig{
			Endpoint:  config.Endpoint,
			VectorDim: config.VectorDim,
			BatchSize: config.BatchSize,
		})
	case "pgvector":
		return NewPgVectorWithConfig(PgVectorConfig{
			ConnString: config.ConnString,
			VectorDim:  config.VectorDim,
			BatchSize:  config.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown vector store driver: %s", config.Driver)
	}
}
