package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAssistantSystemPrompt(t *testing.T) {
	t.Run("without history", func(t *testing.T) {
		out, err := RenderAssistantSystemPrompt("")
		require.NoError(t, err)

		assert.Contains(t, out, "course materials")
		assert.NotContains(t, out, "Previous conversation:")
	})

	t.Run("with history", func(t *testing.T) {
		history := "User: What is Python?\nAssistant: A programming language."
		out, err := RenderAssistantSystemPrompt(history)
		require.NoError(t, err)

		assert.Contains(t, out, "Previous conversation:")
		assert.Contains(t, out, history)
	})
}
