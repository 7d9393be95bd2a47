package tools

import (
	"context"
	"slices"

	"github.com/ollama/ollama/api"
)

// Source attributes a tool result back to its human-readable origin.
type Source struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Tool is a capability the generative model can invoke. Execute returns
// model-facing text; failures are reported as explanatory text, never as
// errors, so the model can always respond.
type Tool interface {
	Definition() api.Tool
	Execute(ctx context.Context, args api.ToolCallFunctionArguments) string

	// LastSources returns the attributions recorded by the most recent
	// Execute call. Valid until the next call overwrites them.
	LastSources() []Source
	ResetSources()
}

// ToolBuilder assembles an api.Tool schema.
type ToolBuilder struct {
	tool api.Tool
}

func NewToolBuilder(name, description string) *ToolBuilder {
	b := &ToolBuilder{
		tool: api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        name,
				Description: description,
			},
		},
	}

	b.tool.Function.Parameters.Type = "object"
	b.tool.Function.Parameters.Properties = make(map[string]api.ToolProperty, 4)
	return b
}

func (b *ToolBuilder) StringParam(name, desc string, required bool) *ToolBuilder {
	b.setProp(name, api.ToolProperty{
		Type:        api.PropertyType{"string"},
		Description: desc,
	}, required)
	return b
}

func (b *ToolBuilder) IntParam(name, desc string, required bool) *ToolBuilder {
	b.setProp(name, api.ToolProperty{
		Type:        api.PropertyType{"integer"},
		Description: desc,
	}, required)
	return b
}

func (b *ToolBuilder) Build() api.Tool {
	return b.tool
}

func (b *ToolBuilder) setProp(name string, p api.ToolProperty, required bool) {
	b.tool.Function.Parameters.Properties[name] = p
	if required {
		req := b.tool.Function.Parameters.Required
		if !slices.Contains(req, name) {
			b.tool.Function.Parameters.Required = append(req, name)
		}
	}
}

// stringArg extracts a string argument, tolerating absent keys.
func stringArg(args api.ToolCallFunctionArguments, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg extracts an integer argument. JSON numbers arrive as float64.
func intArg(args api.ToolCallFunctionArguments, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
