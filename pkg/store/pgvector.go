package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/internal/types"
)

type PgVectorConfig struct {
	ConnString string
	VectorDim  int
	BatchSize  int
}

// PgVectorStore keeps one table per collection in PostgreSQL with the
// pgvector extension. Embeddings are supplied by the caller.
type PgVectorStore struct {
	config PgVectorConfig
	pool   *pgxpool.Pool
}

func NewPgVectorWithConfig(config PgVectorConfig) (*PgVectorStore, error) {
	if config.VectorDim == 0 {
		config.VectorDim = 1536
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	return &PgVectorStore{
		config: config,
		pool:   pool,
	}, nil
}

// CollectionExists reports whether the collection's table is present.
func (vs *PgVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var regclass *string
	err := vs.pool.QueryRow(ctx, "SELECT to_regclass($1)::text", collection).Scan(&regclass)
	if err != nil {
		return false, &types.StoreUnavailableError{Endpoint: vs.config.ConnString, Err: err}
	}
	return regclass != nil, nil
}

// CreateCollection enables the pgvector extension and creates the collection
// table with its similarity index.
func (vs *PgVectorStore) CreateCollection(ctx context.Context, collection string, dim int) error {
	if dim == 0 {
		dim = vs.config.VectorDim
	}

	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return &types.StoreUnavailableError{Endpoint: vs.config.ConnString, Err: fmt.Errorf("failed to create vector extension: %v", err)}
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			title TEXT,
			content TEXT,
			chunk_index INTEGER,
			embedding vector(%d),
			metadata JSONB
		)`, collection, dim)

	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		collection, collection)

	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Store inserts one row per chunk inside a transaction.
func (vs *PgVectorStore) Store(ctx context.Context, collection string, docs []models.ProcessedDocument) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return &types.StoreUnavailableError{Endpoint: vs.config.ConnString, Err: fmt.Errorf("failed to begin transaction: %v", err)}
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, path, title, content, chunk_index, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		collection)

	for _, doc := range docs {
		if len(doc.Chunks) != len(doc.Embeddings) {
			return fmt.Errorf("document %s has %d chunks but %d embeddings", doc.ID, len(doc.Chunks), len(doc.Embeddings))
		}

		cleanTitle := sanitizeUTF8(doc.Title)

		for i, chunk := range doc.Chunks {
			id := fmt.Sprintf("%s_%d", doc.ID, i)

			_, err = tx.Exec(ctx, stmt,
				id,
				doc.Path,
				cleanTitle,
				sanitizeUTF8(chunk),
				i,
				pgvector.NewVector(doc.Embeddings[i]),
				doc.Metadata,
			)
			if err != nil {
				return fmt.Errorf("failed to insert document: %v", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the top-k nearest documents to the given embedding.
func (vs *PgVectorStore) Query(ctx context.Context, collection string, embedding []float32, limit int) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, path, title, content, metadata
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		collection)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID,
			&doc.Path,
			&doc.Title,
			&doc.Content,
			&doc.Metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (vs *PgVectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
