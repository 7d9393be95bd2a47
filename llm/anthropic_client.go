package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ollama/ollama/api"
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func NewAnthropicClient(model string) LLMClient {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		// Providers are designed for dependency injection.
		// If the API key is not set, we log a fatal error.
		logger.Fatal("ANTHROPIC_API_KEY environment variable is not set")
		return nil
	}

	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        "https://api.anthropic.com/v1/messages",
		model:      model,
	}
}

func (c *AnthropicClient) GetModel() string {
	return c.model
}

func (c *AnthropicClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (c *AnthropicClient) GenerateInferenceWithTools(
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

	request := anthropicRequest{
		Model:       settings.model,
		MaxTokens:   settings.maxTokens,
		Temperature: settings.temperature,
		System:      settings.system,
	}

	// Anthropic carries the system prompt as a top-level field, not a
	// message role.
	for _, msg := range messages {
		if msg.Role == "system" {
			if request.System == "" {
				request.System = msg.Content
			}
			continue
		}
		request.Messages = append(request.Messages, Message{Role: msg.Role, Content: msg.Content})
	}

	if len(settings.tools) > 0 && toolCallback != nil {
		request.Tools = convertToolsToAnthropicFormat(settings.tools)
		request.ToolChoice = &anthropicToolChoice{Type: "auto"}
	}

	return c.makeRequest(ctx, request, contentCallback, toolCallback)
}

func (c *AnthropicClient) makeRequest(
	ctx context.Context,
	request anthropicRequest,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Content) == 0 {
		return fmt.Errorf("no content in response")
	}

	// Tool use requests take precedence over any accompanying text.
	if response.StopReason == "tool_use" && toolCallback != nil {
		var toolCalls []api.ToolCall
		for _, block := range response.Content {
			if block.Type != "tool_use" {
				continue
			}
			toolCalls = append(toolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      block.Name,
					Arguments: block.Input,
				},
			})
		}
		if len(toolCalls) > 0 {
			return toolCallback(toolCalls)
		}
	}

	if contentCallback == nil {
		return nil
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			return contentCallback(block.Text)
		}
	}
	return fmt.Errorf("no text content in response")
}

// convertToolsToAnthropicFormat converts Ollama tool schemas to Anthropic's
// input_schema format.
func convertToolsToAnthropicFormat(tools []api.Tool) []anthropicTool {
	out := make([]anthropicTool, len(tools))
	for i, tool := range tools {
		out[i] = anthropicTool{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			InputSchema: map[string]any{
				"type":       tool.Function.Parameters.Type,
				"properties": tool.Function.Parameters.Properties,
				"required":   tool.Function.Parameters.Required,
			},
		}
	}
	return out
}

// Anthropic API types
type anthropicRequest struct {
	Model       string               `json:"model"`
	MaxTokens   int                  `json:"max_tokens"`
	Messages    []Message            `json:"messages"`
	System      string               `json:"system,omitempty"`
	Temperature float64              `json:"temperature"`
	Tools       []anthropicTool      `json:"tools,omitempty"`
	ToolChoice  *anthropicToolChoice `json:"tool_choice,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Role       string             `json:"role"`
	StopReason string             `json:"stop_reason"`
}

type anthropicContent struct {
	Type  string                        `json:"type"`
	Text  string                        `json:"text,omitempty"`
	ID    string                        `json:"id,omitempty"`
	Name  string                        `json:"name,omitempty"`
	Input api.ToolCallFunctionArguments `json:"input,omitempty"`
}
