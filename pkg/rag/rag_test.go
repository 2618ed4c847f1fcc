package rag_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/internal/types"
	"github.com/xhad/rag/pkg/loader"
	"github.com/xhad/rag/pkg/rag"
)

type fakeSource struct {
	loadCalls int
	docs      []models.Document
	err       error
}

func (f *fakeSource) Load(ctx context.Context) ([]models.Document, error) {
	f.loadCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeProcessor struct{}

func (fakeProcessor) Process(docs []models.Document) ([]models.ProcessedDocument, error) {
	processed := make([]models.ProcessedDocument, 0, len(docs))
	for _, doc := range docs {
		processed = append(processed, models.ProcessedDocument{
			Document: doc,
			Chunks:   []string{doc.Content},
		})
	}
	return processed, nil
}

type fakeEmbedder struct {
	embedCalls int
	queryCalls int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = []float32{1, 0, 0}
	}
	return embeddings, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queryCalls++
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	collections  map[string][]models.ProcessedDocument
	existsCalls  int
	createCalls  int
	storeCalls   int
	queriedLimit int
	existsErr    error
	storeErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: map[string][]models.ProcessedDocument{}}
}

func (f *fakeStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.collections[collection]
	return ok, nil
}

func (f *fakeStore) CreateCollection(ctx context.Context, collection string, dim int) error {
	f.createCalls++
	f.collections[collection] = nil
	return nil
}

func (f *fakeStore) Store(ctx context.Context, collection string, docs []models.ProcessedDocument) error {
	f.storeCalls++
	if f.storeErr != nil {
		return f.storeErr
	}
	f.collections[collection] = append(f.collections[collection], docs...)
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, embedding []float32, limit int) ([]models.Document, error) {
	f.queriedLimit = limit
	var docs []models.Document
	for _, stored := range f.collections[collection] {
		for i, chunk := range stored.Chunks {
			docs = append(docs, models.Document{
				ID:      fmt.Sprintf("%s_%d", stored.ID, i),
				Path:    stored.Path,
				Content: chunk,
			})
			if len(docs) == limit {
				return docs, nil
			}
		}
	}
	return docs, nil
}

func (f *fakeStore) Close() {}

type fakeChat struct{}

func (fakeChat) Answer(ctx context.Context, query string, docs []models.Document) (string, error) {
	if len(docs) == 0 {
		return "no context retrieved", nil
	}
	return fmt.Sprintf("answer using %q", docs[0].Content), nil
}

func testConfig(source types.DocumentSource, store types.VectorStore) rag.ProvisionerConfig {
	return rag.ProvisionerConfig{
		APIKey:    "test-key",
		VectorDim: 3,
		Source:    source,
		Processor: fakeProcessor{},
		Embedder:  &fakeEmbedder{},
		Store:     store,
		Chat:      fakeChat{},
	}
}

func corpus() []models.Document {
	return []models.Document{
		{ID: "a.txt_0", Path: "pdfData/a.txt", Content: "the author writes verse"},
		{ID: "b.txt_0", Path: "pdfData/b.txt", Content: "the author was born in 1970"},
	}
}

func TestProvisionCreatesMissingCollection(t *testing.T) {
	source := &fakeSource{docs: corpus()}
	store := newFakeStore()

	p, err := rag.NewWithConfig(testConfig(source, store))
	require.NoError(t, err)

	index, err := p.Provision(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, index)

	exists, err := store.CollectionExists(context.Background(), "demo")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, source.loadCalls)
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, store.storeCalls)

	answer, err := index.Query(context.Background(), "who is the author?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.Contains(t, answer.Text, "the author")
	assert.NotEmpty(t, answer.Sources)
}

func TestProvisionAttachesToExistingCollection(t *testing.T) {
	source := &fakeSource{docs: corpus()}
	store := newFakeStore()
	store.collections["demo"] = nil

	p, err := rag.NewWithConfig(testConfig(source, store))
	require.NoError(t, err)

	index, err := p.Provision(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, index)

	assert.Equal(t, 0, source.loadCalls)
	assert.Equal(t, 0, store.createCalls)
	assert.Equal(t, 0, store.storeCalls)
}

func TestProvisionTwiceIndexesOnce(t *testing.T) {
	source := &fakeSource{docs: corpus()}
	store := newFakeStore()

	p, err := rag.NewWithConfig(testConfig(source, store))
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), "demo")
	require.NoError(t, err)
	_, err = p.Provision(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, 1, source.loadCalls)
	assert.Equal(t, 1, store.storeCalls)
}

func TestProvisionMissingDataDir(t *testing.T) {
	store := newFakeStore()
	source := loader.New("testdata/does-not-exist")

	p, err := rag.NewWithConfig(testConfig(source, store))
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), "demo")
	require.Error(t, err)

	var cfgErr *types.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0, store.createCalls)
	assert.Equal(t, 0, store.storeCalls)
}

func TestProvisionMissingCredential(t *testing.T) {
	source := &fakeSource{docs: corpus()}
	store := newFakeStore()

	cfg := testConfig(source, store)
	cfg.APIKey = ""

	p, err := rag.NewWithConfig(cfg)
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), "demo")
	require.Error(t, err)

	var cfgErr *types.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	// The credential check must happen before any store access.
	assert.Equal(t, 0, store.existsCalls)
	assert.Equal(t, 0, source.loadCalls)
}

func TestProvisionEmptyCollectionName(t *testing.T) {
	store := newFakeStore()

	p, err := rag.NewWithConfig(testConfig(&fakeSource{}, store))
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), "")
	require.Error(t, err)

	var cfgErr *types.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0, store.existsCalls)
}

func TestProvisionStoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.existsErr = &types.StoreUnavailableError{
		Endpoint: "localhost:6333",
		Err:      errors.New("connection refused"),
	}

	p, err := rag.NewWithConfig(testConfig(&fakeSource{docs: corpus()}, store))
	require.NoError(t, err)

	_, err = p.Provision(context.Background(), "demo")
	require.Error(t, err)

	var storeErr *types.StoreUnavailableError
	assert.True(t, errors.As(err, &storeErr))
}

func TestQueryUsesConfiguredTopK(t *testing.T) {
	source := &fakeSource{docs: corpus()}
	store := newFakeStore()

	p, err := rag.NewWithConfig(testConfig(source, store))
	require.NoError(t, err)

	index, err := p.Provision(context.Background(), "demo")
	require.NoError(t, err)

	_, err = index.Query(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, 3, store.queriedLimit)
}

func TestNewWithConfigRequiresCollaborators(t *testing.T) {
	_, err := rag.NewWithConfig(rag.ProvisionerConfig{APIKey: "test-key"})
	assert.Error(t, err)
}
