package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/xhad/rag/internal/models"
	"github.com/xhad/rag/internal/types"
)

type LoaderConfig struct {
	// Dir is the corpus directory. Every regular file under it is read.
	Dir        string
	OnProgress func(path string) // Progress callback, invoked per file
}

// DirectoryLoader reads all files under a directory into documents. PDF files
// are parsed page by page; everything else is treated as plain text.
type DirectoryLoader struct {
	config LoaderConfig
}

func NewWithConfig(config LoaderConfig) *DirectoryLoader {
	return &DirectoryLoader{config: config}
}

func New(dir string) *DirectoryLoader {
	return NewWithConfig(LoaderConfig{Dir: dir})
}

// Load reads the corpus directory. A missing or non-directory path is a
// configuration error; a read failure on any file is a document load error.
func (l *DirectoryLoader) Load(ctx context.Context) ([]models.Document, error) {
	info, err := os.Stat(l.config.Dir)
	if err != nil || !info.IsDir() {
		return nil, &types.ConfigError{
			Field:  "corpus.data_dir",
			Reason: fmt.Sprintf("data directory %s does not exist or is not a directory", l.config.Dir),
		}
	}

	entries, err := os.ReadDir(l.config.Dir)
	if err != nil {
		return nil, &types.DocumentLoadError{Dir: l.config.Dir, Err: err}
	}

	var docs []models.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(l.config.Dir, entry.Name())
		pages, err := l.loadFile(ctx, path)
		if err != nil {
			return nil, &types.DocumentLoadError{Dir: l.config.Dir, Err: err}
		}

		for i, page := range pages {
			metadata := map[string]interface{}{"source": path}
			for k, v := range page.Metadata {
				metadata[k] = v
			}

			docs = append(docs, models.Document{
				ID:       fmt.Sprintf("%s_%d", entry.Name(), i),
				Path:     path,
				Title:    entry.Name(),
				Content:  page.PageContent,
				Metadata: metadata,
			})
		}

		if l.config.OnProgress != nil {
			l.config.OnProgress(path)
		}
	}

	if len(docs) == 0 {
		return nil, &types.DocumentLoadError{
			Dir: l.config.Dir,
			Err: fmt.Errorf("no documents found"),
		}
	}

	return docs, nil
}

func (l *DirectoryLoader) loadFile(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		return documentloaders.NewPDF(f, info.Size()).Load(ctx)
	}

	return documentloaders.NewText(f).Load(ctx)
}
