package processor

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"github.com/xhad/rag/internal/models"
)

type ProcessorConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	MinChunkLength int
}

// Processor splits document content into overlapping chunks sized for the
// embedding model.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.MinChunkLength == 0 {
		config.MinChunkLength = 10
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)

	return Processor{
		config:   config,
		splitter: splitter,
	}
}

func (p *Processor) Process(docs []models.Document) ([]models.ProcessedDocument, error) {
	var processed []models.ProcessedDocument

	for _, doc := range docs {
		cleaned := cleanText(doc.Content)
		if cleaned == "" {
			continue
		}

		chunks, err := p.splitter.SplitText(cleaned)
		if err != nil {
			return nil, fmt.Errorf("failed to split document %s: %w", doc.ID, err)
		}

		kept := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			if len(chunk) >= p.config.MinChunkLength {
				kept = append(kept, chunk)
			}
		}
		if len(kept) == 0 {
			continue
		}

		processed = append(processed, models.ProcessedDocument{
			Document: doc,
			Chunks:   kept,
		})
	}

	return processed, nil
}

func cleanText(text string) string {
	// Collapse runs of whitespace; page extractors leave plenty behind.
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
