package prompts

import (
	"bytes"
	"embed"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

// RenderAssistantSystemPrompt renders the assistant's system instructions,
// optionally appending the rendered conversation history of the session.
func RenderAssistantSystemPrompt(history string) (string, error) {
	content, err := templatesFS.ReadFile("templates/assistant_system.md")
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("assistant_system").Parse(string(content))
	if err != nil {
		return "", err
	}

	data := struct {
		History string
	}{
		History: history,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
