package llm

import (
	"context"

	"github.com/ollama/ollama/api"
)

// LLMClient abstracts the generative model capability: given a
// conversation and optionally a set of callable tools, it yields either a
// final text answer (contentCallback) or tool invocation requests
// (toolCallback), never both for the same call.
type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	// GenerateInferenceWithTools advertises the given tool schemas to the
	// model. When the model requests tool use, toolCallback receives the
	// parsed calls and contentCallback is not invoked.
	GenerateInferenceWithTools(
		ctx context.Context,
		messages []Message,
		contentCallback func(chunk string) error,
		toolCallback func(toolCalls []api.ToolCall) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model       string     // model name
	temperature float64    // randomness (0.0 to 1.0)
	maxTokens   int        // maximum tokens to generate
	system      string     // system prompt
	tools       []api.Tool // tools to advertise for tool calling
}

type LLMOption func(*LLMSettings)

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

func WithTools(tools []api.Tool) LLMOption {
	return func(s *LLMSettings) { s.tools = tools }
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content

	// IsToolResult marks user-role messages carrying a tool's output back
	// to the model. Such messages are not counted as conversation turns by
	// the session window.
	IsToolResult bool `json:"isToolResult,omitempty"`
}
