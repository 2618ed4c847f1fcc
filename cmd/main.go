package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/rag/internal/logger"
	"github.com/xhad/rag/pkg/config"
	"github.com/xhad/rag/pkg/llm"
	"github.com/xhad/rag/pkg/loader"
	"github.com/xhad/rag/pkg/processor"
	"github.com/xhad/rag/pkg/rag"
	"github.com/xhad/rag/pkg/store"
	"github.com/xhad/rag/server"
)

// defaultQuery is executed when no -query flag is given.
const defaultQuery = "write a poem about the author"

func main() {
	var (
		configPath string
		query      string
		dataDir    string
		collection string
		serveAddr  string
		debug      bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&query, "query", defaultQuery, "Query to run against the index")
	flag.StringVar(&dataDir, "data-dir", "", "Directory holding the document corpus")
	flag.StringVar(&collection, "collection", "", "Vector collection name")
	flag.StringVar(&serveAddr, "serve", "", "Serve queries over websocket at this address instead of running one query")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	// Environment files are optional; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if dataDir != "" {
		cfg.Corpus.DataDir = dataDir
	}
	if collection != "" {
		cfg.Store.Collection = collection
	}
	if debug {
		cfg.Log.Debug = true
	}

	log, err := logger.New(logger.Config{
		File:  cfg.Log.File,
		Debug: cfg.Log.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Error("%v", e)
		}
		os.Exit(1)
	}

	if err := run(cfg, log, query, serveAddr); err != nil {
		log.Error("Application failed: %v", err)
		os.Exit(1)
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(cfg *config.Config, log *logger.Logger, query, serveAddr string) error {
	ctx := context.Background()

	vectorStore, err := store.New(store.StoreConfig{
		Driver:     cfg.Store.Driver,
		Endpoint:   cfg.Store.Endpoint,
		ConnString: cfg.Store.ConnString,
		VectorDim:  cfg.Store.VectorDim,
		BatchSize:  cfg.Store.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.EmbeddingModel,
		BatchSize: cfg.Store.BatchSize,
		RateLimit: cfg.LLM.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{})

	loadingBar := getSpinner(" Reading corpus...")
	source := loader.NewWithConfig(loader.LoaderConfig{
		Dir: cfg.Corpus.DataDir,
		OnProgress: func(path string) {
			loadingBar.Add(1)
			loadingBar.Describe(color.CyanString(" Reading corpus... %s", path))
		},
	})

	provisioner, err := rag.NewWithConfig(rag.ProvisionerConfig{
		APIKey:    cfg.LLM.APIKey,
		VectorDim: cfg.Store.VectorDim,
		TopK:      cfg.Store.TopK,
		Source:    source,
		Processor: &proc,
		Embedder:  embedder,
		Store:     vectorStore,
		Chat:      chatEngine,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	index, err := provisioner.Provision(ctx, cfg.Store.Collection)
	loadingBar.Finish()
	if err != nil {
		return err
	}

	if serveAddr != "" {
		return server.NewWSServer(index, log).Start(serveAddr)
	}

	querySpinner := getSpinner(" Generating response...")
	answer, err := index.Query(ctx, query)
	querySpinner.Finish()
	fmt.Print("\n")
	if err != nil {
		return err
	}

	log.Info("Query response: %s", answer.Text)

	color.Cyan("%s\n", answer.Text)
	if sources := llm.FormatSources(answer.Sources); sources != "" {
		color.Blue("%s\n", sources)
	}

	return nil
}
