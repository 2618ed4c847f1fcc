package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/pkg/store"
)

// TestQdrantIntegration runs the provisioning cycle against a real Qdrant
// instance. Requires Docker; skipped in short mode.
func TestQdrantIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "qdrant/qdrant:v1.12.4",
			ExposedPorts: []string{"6333/tcp"},
			WaitingFor:   wait.ForListeningPort("6333/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	s, err := store.NewQdrantWithConfig(store.QdrantConfig{Endpoint: endpoint, VectorDim: 3})
	require.NoError(t, err)
	defer s.Close()

	exists, err := s.CollectionExists(ctx, "demo")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateCollection(ctx, "demo", 3))

	exists, err = s.CollectionExists(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, exists)

	docs := []models.ProcessedDocument{
		{
			Document: models.Document{ID: "a.txt_0", Path: "pdfData/a.txt", Title: "a.txt"},
			Chunks:   []string{"the author writes verse", "the author was born in 1970"},
			Embeddings: [][]float32{
				{1, 0, 0},
				{0, 1, 0},
			},
		},
	}
	require.NoError(t, s.Store(ctx, "demo", docs))

	results, err := s.Query(ctx, "demo", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "the author writes verse", results[0].Content)
	assert.Equal(t, "pdfData/a.txt", results[0].Path)
}
