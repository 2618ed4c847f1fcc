package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Keep the ambient environment from overriding file values.
	t.Setenv("QDRANT_HOST", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RAG_COLLECTION", "")
	t.Setenv("RAG_DATA_DIR", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
store:
  driver: "qdrant"
  endpoint: "qdrant.internal:6333"
  collection: "docs"
  vector_dim: 768
  batch_size: 50
  top_k: 5

llm:
  api_key: "sk-test"
  model: "gpt-4"
  embedding_model: "text-embedding-3-small"
  max_tokens: 1000
  temperature: 0.5

corpus:
  data_dir: "corpus"

log:
  file: "test.log"
  debug: true
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "qdrant", config.Store.Driver)
	assert.Equal(t, "qdrant.internal:6333", config.Store.Endpoint)
	assert.Equal(t, "docs", config.Store.Collection)
	assert.Equal(t, 768, config.Store.VectorDim)
	assert.Equal(t, 5, config.Store.TopK)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
	assert.Equal(t, "gpt-4", config.LLM.Model)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "corpus", config.Corpus.DataDir)
	assert.Equal(t, "test.log", config.Log.File)
	assert.True(t, config.Log.Debug)
}

func TestDefaults(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	assert.Equal(t, "qdrant", config.Store.Driver)
	assert.Equal(t, "localhost:6333", config.Store.Endpoint)
	assert.Equal(t, DefaultCollection, config.Store.Collection)
	assert.Equal(t, 3, config.Store.TopK)
	assert.Equal(t, DefaultDataDir, config.Corpus.DataDir)
	assert.Equal(t, DefaultLogFile, config.Log.File)
	assert.Equal(t, "gpt-3.5-turbo", config.LLM.Model)
	assert.Equal(t, "text-embedding-ada-002", config.LLM.EmbeddingModel)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("QDRANT_HOST", "env-qdrant:6333")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("RAG_COLLECTION", "env_collection")
	t.Setenv("RAG_DATA_DIR", "envData")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "env-qdrant:6333", config.Store.Endpoint)
	assert.Equal(t, "sk-env", config.LLM.APIKey)
	assert.Equal(t, "env_collection", config.Store.Collection)
	assert.Equal(t, "envData", config.Corpus.DataDir)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		config := &Config{}
		applyDefaults(config)
		config.LLM.APIKey = "sk-test"
		return config
	}

	t.Run("valid config", func(t *testing.T) {
		errors := valid().Validate()
		assert.Empty(t, errors)
	})

	t.Run("missing api key", func(t *testing.T) {
		config := valid()
		config.LLM.APIKey = ""

		errors := config.Validate()
		require.Len(t, errors, 1)
		assert.Equal(t, "llm.api_key", errors[0].Field)
	})

	t.Run("invalid store driver", func(t *testing.T) {
		config := valid()
		config.Store.Driver = "chroma"

		errors := config.Validate()
		require.Len(t, errors, 1)
		assert.Equal(t, "store.driver", errors[0].Field)
	})

	t.Run("pgvector requires conn string", func(t *testing.T) {
		config := valid()
		config.Store.Driver = "pgvector"

		errors := config.Validate()
		require.Len(t, errors, 1)
		assert.Equal(t, "store.conn_string", errors[0].Field)
	})

	t.Run("invalid numeric ranges", func(t *testing.T) {
		config := valid()
		config.LLM.MaxTokens = 5000
		config.LLM.Temperature = 3.0
		config.Store.VectorDim = -1
		config.Store.TopK = 0

		errors := config.Validate()
		assert.Len(t, errors, 4)
	})
}
