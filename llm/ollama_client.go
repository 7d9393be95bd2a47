package llm

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// OllamaClient runs inference against a local Ollama server. Useful for
// offline development against tool-capable local models.
type OllamaClient struct {
	client *api.Client
	model  string
}

func NewOllamaClient(client *api.Client, model string) LLMClient {
	return &OllamaClient{client: client, model: model}
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (c *OllamaClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.0,
		maxTokens:   800,
	}

	for _, opt := range opts {
		opt(&settings)
	}

	chatMessages := make([]api.Message, 0, len(messages)+1)
	if settings.system != "" {
		chatMessages = append(chatMessages, api.Message{Role: "system", Content: settings.system})
	}
	for _, msg := range messages {
		chatMessages = append(chatMessages, api.Message{Role: msg.Role, Content: msg.Content})
	}

	stream := false
	request := &api.ChatRequest{
		Model:    settings.model,
		Messages: chatMessages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if len(settings.tools) > 0 && toolCallback != nil {
		request.Tools = settings.tools
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, request, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return fmt.Errorf("ollama chat failed: %w", err)
	}

	if len(response.Message.ToolCalls) > 0 && toolCallback != nil {
		return toolCallback(response.Message.ToolCalls)
	}

	if contentCallback != nil && response.Message.Content != "" {
		return contentCallback(response.Message.Content)
	}
	return nil
}
