package tools

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// ToolManager registers tools, advertises their schemas, and dispatches
// model-requested invocations by name. Construct one per query: source
// attribution is single-flight state, read once by the orchestrator before
// the next invocation overwrites it.
type ToolManager struct {
	tools map[string]Tool
	order []string
}

func NewToolManager(ts ...Tool) *ToolManager {
	m := &ToolManager{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		m.Register(t)
	}
	return m
}

func (m *ToolManager) Register(t Tool) {
	name := t.Definition().Function.Name
	if _, exists := m.tools[name]; !exists {
		m.order = append(m.order, name)
	}
	m.tools[name] = t
}

// Definitions returns the tool schemas in registration order.
func (m *ToolManager) Definitions() []api.Tool {
	defs := make([]api.Tool, 0, len(m.order))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Execute runs the named tool. Unknown tool names yield model-facing text,
// not an error: the model never requests a tool that was not advertised,
// but a defect there should not abort the query.
func (m *ToolManager) Execute(ctx context.Context, name string, args api.ToolCallFunctionArguments) string {
	tool, ok := m.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}
	return tool.Execute(ctx, args)
}

// GetLastSources returns attributions from the most recent tool execution.
func (m *ToolManager) GetLastSources() []Source {
	for _, name := range m.order {
		if sources := m.tools[name].LastSources(); len(sources) > 0 {
			return sources
		}
	}
	return nil
}

// ResetSources clears attribution state on all registered tools.
func (m *ToolManager) ResetSources() {
	for _, t := range m.tools {
		t.ResetSources()
	}
}
