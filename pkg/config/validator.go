package config

import (
	"net/url"

	"github.com/xhad/rag/internal/types"
)

// Validate checks the configuration before any component is constructed.
// A missing API key must be caught here, before any network access happens.
func (c *Config) Validate() []*types.ConfigError {
	var errors []*types.ConfigError

	if c.LLM.APIKey == "" {
		errors = append(errors, &types.ConfigError{
			Field:  "llm.api_key",
			Reason: "OPENAI_API_KEY is required",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, &types.ConfigError{
			Field:  "llm.max_tokens",
			Reason: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, &types.ConfigError{
			Field:  "llm.temperature",
			Reason: "temperature must be between 0 and 2",
		})
	}

	if c.LLM.RateLimit <= 0 {
		errors = append(errors, &types.ConfigError{
			Field:  "llm.rate_limit",
			Reason: "rate_limit must be positive",
		})
	}

	switch c.Store.Driver {
	case "qdrant":
		if c.Store.Endpoint == "" {
			errors = append(errors, &types.ConfigError{
				Field:  "store.endpoint",
				Reason: "vector store endpoint is required",
			})
		}
	case "pgvector":
		if c.Store.ConnString == "" {
			errors = append(errors, &types.ConfigError{
				Field:  "store.conn_string",
				Reason: "PostgreSQL connection string is required",
			})
		} else if _, err := url.Parse(c.Store.ConnString); err != nil {
			errors = append(errors, &types.ConfigError{
				Field:  "store.conn_string",
				Reason: "invalid connection string",
			})
		}
	default:
		errors = append(errors, &types.ConfigError{
			Field:  "store.driver",
			Reason: "driver must be qdrant or pgvector",
		})
	}

	if c.Store.Collection == "" {
		errors = append(errors, &types.ConfigError{
			Field:  "store.collection",
			Reason: "collection name is required",
		})
	}

	if c.Store.VectorDim < 1 {
		errors = append(errors, &types.ConfigError{
			Field:  "store.vector_dim",
			Reason: "vector_dim must be positive",
		})
	}

	if c.Store.BatchSize < 1 {
		errors = append(errors, &types.ConfigError{
			Field:  "store.batch_size",
			Reason: "batch_size must be positive",
		})
	}

	if c.Store.TopK < 1 {
		errors = append(errors, &types.ConfigError{
			Field:  "store.top_k",
			Reason: "top_k must be positive",
		})
	}

	if c.Corpus.DataDir == "" {
		errors = append(errors, &types.ConfigError{
			Field:  "corpus.data_dir",
			Reason: "data directory is required",
		})
	}

	return errors
}
