package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/xhad/rag/internal/models"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
}

// ChatEngine generates answers conditioned on retrieved context documents.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "gpt-3.5-turbo"
	}
	if config.Temperature <= 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant with access to the following document excerpts. Answer questions based on this context."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "Context:\n%s\nQuestion: %s"
	}

	model, err := openai.New(
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    model,
	}, nil
}

// Answer generates a response based on the query and context documents.
func (ce *ChatEngine) Answer(ctx context.Context, query string, docs []models.Document) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, ce.BuildPrompt(query, docs)),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}

// BuildPrompt renders the context template with the retrieved documents.
func (ce *ChatEngine) BuildPrompt(query string, docs []models.Document) string {
	var contextBuilder strings.Builder
	for _, doc := range docs {
		contextBuilder.WriteString(fmt.Sprintf("Source: %s\n%s\n\n", doc.Path, doc.Content))
	}

	return fmt.Sprintf(ce.config.ContextTemplate, contextBuilder.String(), query)
}

// FormatSources formats the distinct sources for citation.
func FormatSources(docs []models.Document) string {
	var sources []string
	seen := make(map[string]bool)

	for _, doc := range docs {
		if !seen[doc.Path] {
			sources = append(sources, doc.Path)
			seen[doc.Path] = true
		}
	}

	if len(sources) == 0 {
		return ""
	}

	return fmt.Sprintf("Sources:\n%s", strings.Join(sources, "\n"))
}
