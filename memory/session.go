package memory

import (
	"strings"

	"github.com/coursechat-ai/coursechat/llm"
)

// Session is one conversation's bounded message history.
type Session struct {
	ID       string        `json:"id"`
	Messages []llm.Message `json:"messages"`
}

func (s *Session) AddUserMessage(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: "user", Content: content})
}

func (s *Session) AddAssistantMessage(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: "assistant", Content: content})
}

// HistoryText renders the session for inclusion in a system prompt.
func (s *Session) HistoryText() string {
	var b strings.Builder
	for _, msg := range s.Messages {
		if msg.IsToolResult {
			continue
		}
		switch msg.Role {
		case "user":
			b.WriteString("User: ")
		case "assistant":
			b.WriteString("Assistant: ")
		default:
			continue
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
