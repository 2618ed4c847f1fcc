package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassesSurviveWrapping(t *testing.T) {
	cause := errors.New("connection refused")

	wrapped := fmt.Errorf("provisioning failed: %w", &StoreUnavailableError{
		Endpoint: "localhost:6333",
		Err:      cause,
	})

	var storeErr *StoreUnavailableError
	assert.True(t, errors.As(wrapped, &storeErr))
	assert.Equal(t, "localhost:6333", storeErr.Endpoint)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorMessages(t *testing.T) {
	cfgErr := &ConfigError{Field: "llm.api_key", Reason: "OPENAI_API_KEY is required"}
	assert.Contains(t, cfgErr.Error(), "llm.api_key")
	assert.Contains(t, cfgErr.Error(), "OPENAI_API_KEY is required")

	loadErr := &DocumentLoadError{Dir: "pdfData", Err: errors.New("no documents found")}
	assert.Contains(t, loadErr.Error(), "pdfData")
	assert.Contains(t, loadErr.Error(), "no documents found")
}
