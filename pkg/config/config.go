package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultCollection is the collection holding the indexed corpus.
	DefaultCollection = "first_test_pdf_rag"
	// DefaultDataDir is the directory read when provisioning a new collection.
	DefaultDataDir = "pdfData"
	// DefaultLogFile receives a copy of all log output.
	DefaultLogFile = "rag_system.log"
)

type Config struct {
	Store struct {
		Driver     string `yaml:"driver"`
		Endpoint   string `yaml:"endpoint"`
		ConnString string `yaml:"conn_string"`
		Collection string `yaml:"collection"`
		VectorDim  int    `yaml:"vector_dim"`
		BatchSize  int    `yaml:"batch_size"`
		TopK       int    `yaml:"top_k"`
	} `yaml:"store"`

	LLM struct {
		APIKey         string  `yaml:"api_key"`
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
		RateLimit      float64 `yaml:"rate_limit"`
	} `yaml:"llm"`

	Corpus struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"corpus"`

	Log struct {
		File  string `yaml:"file"`
		Debug bool   `yaml:"debug"`
	} `yaml:"log"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/rag/config.yaml"),
			"/etc/rag/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Store.Driver == "" {
		config.Store.Driver = "qdrant"
	}
	if config.Store.Endpoint == "" {
		config.Store.Endpoint = "localhost:6333"
	}
	if config.Store.Collection == "" {
		config.Store.Collection = DefaultCollection
	}
	if config.Store.VectorDim == 0 {
		config.Store.VectorDim = 1536
	}
	if config.Store.BatchSize == 0 {
		config.Store.BatchSize = 100
	}
	if config.Store.TopK == 0 {
		config.Store.TopK = 3
	}

	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-3.5-turbo"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.RateLimit == 0 {
		config.LLM.RateLimit = 2.0
	}

	if config.Corpus.DataDir == "" {
		config.Corpus.DataDir = DefaultDataDir
	}

	if config.Log.File == "" {
		config.Log.File = DefaultLogFile
	}
}

func mergeWithEnv(config *Config) {
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		config.Store.Endpoint = host
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Store.ConnString = dbURL
	}
	if collection := os.Getenv("RAG_COLLECTION"); collection != "" {
		config.Store.Collection = collection
	}
	if dataDir := os.Getenv("RAG_DATA_DIR"); dataDir != "" {
		config.Corpus.DataDir = dataDir
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
}
