// Package rag implements the index-provisioning workflow: attach to an
// existing vector collection, or create and populate one from the local
// corpus, then answer queries against it.
package rag

import (
	"context"
	"fmt"

	"github.com/xhad/rag/internal/logger"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/internal/types"
)

type ProvisionerConfig struct {
	// APIKey is the generation-API credential. Checked before any store
	// access happens.
	APIKey    string
	VectorDim int
	TopK      int

	Source    types.DocumentSource
	Processor types.Processor
	Embedder  types.Embedder
	Store     types.VectorStore
	Chat      types.ChatModel
	Logger    *logger.Logger
}

// Provisioner either creates and populates a vector collection from the
// corpus, or attaches to an existing one without re-indexing.
type Provisioner struct {
	config ProvisionerConfig
}

func NewWithConfig(config ProvisionerConfig) (*Provisioner, error) {
	if config.TopK == 0 {
		config.TopK = 3
	}
	if config.Source == nil || config.Processor == nil || config.Embedder == nil ||
		config.Store == nil || config.Chat == nil {
		return nil, fmt.Errorf("provisioner requires a source, processor, embedder, store and chat model")
	}

	return &Provisioner{config: config}, nil
}

// Provision returns an index handle bound to the named collection. When the
// collection is absent it reads the corpus, embeds it and writes a new
// collection first. There are no retries; a write failure after the
// collection is created may leave it partially populated.
func (p *Provisioner) Provision(ctx context.Context, collection string) (*Index, error) {
	if collection == "" {
		return nil, &types.ConfigError{
			Field:  "store.collection",
			Reason: "collection name must not be empty",
		}
	}
	if p.config.APIKey == "" {
		return nil, &types.ConfigError{
			Field:  "llm.api_key",
			Reason: "OPENAI_API_KEY is required",
		}
	}

	exists, err := p.config.Store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}

	if exists {
		p.logInfo("Collection %s exists, attaching without re-indexing", collection)
	} else {
		p.logInfo("Collection %s does not exist, creating new index...", collection)
		if err := p.populate(ctx, collection); err != nil {
			return nil, err
		}
		p.logInfo("Vector embeddings written to collection %s", collection)
	}

	return &Index{
		collection: collection,
		store:      p.config.Store,
		embedder:   p.config.Embedder,
		chat:       p.config.Chat,
		topK:       p.config.TopK,
	}, nil
}

func (p *Provisioner) populate(ctx context.Context, collection string) error {
	docs, err := p.config.Source.Load(ctx)
	if err != nil {
		return err
	}
	p.logInfo("Loaded %d documents", len(docs))

	processed, err := p.config.Processor.Process(docs)
	if err != nil {
		return fmt.Errorf("failed to process documents: %w", err)
	}

	// Embed every chunk in one pass, then hand the vectors back to their
	// documents by position.
	var texts []string
	for _, doc := range processed {
		texts = append(texts, doc.Chunks...)
	}

	embeddings, err := p.config.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(embeddings) != len(texts) {
		return fmt.Errorf("embedded %d chunks, expected %d", len(embeddings), len(texts))
	}

	offset := 0
	for i := range processed {
		n := len(processed[i].Chunks)
		processed[i].Embeddings = embeddings[offset : offset+n]
		offset += n
	}

	if err := p.config.Store.CreateCollection(ctx, collection, p.config.VectorDim); err != nil {
		return err
	}

	return p.config.Store.Store(ctx, collection, processed)
}

func (p *Provisioner) logInfo(format string, v ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(format, v...)
	}
}

// Index is a handle bound to one provisioned collection.
type Index struct {
	collection string
	store      types.VectorStore
	embedder   types.Embedder
	chat       types.ChatModel
	topK       int
}

// Collection returns the name of the collection the handle is bound to.
func (idx *Index) Collection() string { return idx.collection }

// Query embeds the question, retrieves the top-k nearest chunks and asks the
// chat model for an answer conditioned on them. Single synchronous call, no
// retry policy.
func (idx *Index) Query(ctx context.Context, text string) (*models.Answer, error) {
	embedding, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	docs, err := idx.store.Query(ctx, idx.collection, embedding, idx.topK)
	if err != nil {
		return nil, err
	}

	answer, err := idx.chat.Answer(ctx, text, docs)
	if err != nil {
		return nil, err
	}

	return &models.Answer{Text: answer, Sources: docs}, nil
}
