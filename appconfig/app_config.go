package appconfig

import (
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	AnthropicModel      string  `env:"ANTHROPIC-MODEL" ini:"anthropic_model"`
	EmbeddingModel      string  `env:"EMBEDDING-MODEL" ini:"embedding_model"`
	DocsFolder          string  `env:"DOCS-FOLDER" ini:"docs_folder"`
	HTTPPort            string  `env:"HTTP-PORT" ini:"http_port"`
	ChunkSize           int     `env:"CHUNK-SIZE" ini:"chunk_size"`
	ChunkOverlap        int     `env:"CHUNK-OVERLAP" ini:"chunk_overlap"`
	MaxResults          int     `env:"MAX-RESULTS" ini:"max_results"`
	MaxHistory          int     `env:"MAX-HISTORY" ini:"max_history"`
	TitleMatchThreshold float64 `env:"TITLE-MATCH-THRESHOLD" ini:"title_match_threshold"`
}

// Defaults returns the configuration used when config.ini carries no
// overrides. Chunk and history sizes mirror the values the course corpus
// was tuned with.
func Defaults() *AppConfig {
	return &AppConfig{
		AnthropicModel:      "claude-sonnet-4-20250514",
		EmbeddingModel:      "nomic-embed-text",
		DocsFolder:          "./docs",
		HTTPPort:            ":8000",
		ChunkSize:           800,
		ChunkOverlap:        100,
		MaxResults:          5,
		MaxHistory:          2,
		TitleMatchThreshold: 0.3,
	}
}

// Validate rejects configurations that would corrupt chunking or search.
func (c *AppConfig) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be >= 1, got %d", c.MaxResults)
	}
	if c.ChunkSize < 100 {
		return fmt.Errorf("chunk_size must be >= 100, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must satisfy 0 <= overlap < chunk_size, got %d", c.ChunkOverlap)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("max_history must be >= 0, got %d", c.MaxHistory)
	}
	if c.TitleMatchThreshold < 0 || c.TitleMatchThreshold > 1 {
		return fmt.Errorf("title_match_threshold must be within [0, 1], got %f", c.TitleMatchThreshold)
	}
	return nil
}
