package llm

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// Embedder is the similarity capability: text in, fixed-dimensionality
// vector out. Implementations must be deterministic for identical input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OllamaEmbedder computes embeddings with a local Ollama model.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

func NewOllamaEmbedder(client *api.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}
