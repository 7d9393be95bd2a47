package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/coursechat-ai/coursechat/llm"
)

// SessionStore keeps bounded per-conversation histories keyed by an opaque
// session id. Appends trim synchronously: a session never holds more than
// maxHistory exchanges (one user plus one assistant message each), oldest
// evicted first. Unknown ids mean "start fresh", never an error.
type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	maxHistory int
}

func NewSessionStore(maxHistory int) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]*Session),
		maxHistory: maxHistory,
	}
}

// Create registers a new empty session and returns its id.
func (st *SessionStore) Create() string {
	id := uuid.NewString()

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = &Session{ID: id}
	return id
}

// History returns a copy of the session's messages. Unknown session ids
// yield an empty history.
func (st *SessionStore) History(id string) []llm.Message {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[id]
	if !ok {
		return nil
	}
	out := make([]llm.Message, len(session.Messages))
	copy(out, session.Messages)
	return out
}

// HistoryText renders a session's history for prompt context.
func (st *SessionStore) HistoryText(id string) string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[id]
	if !ok {
		return ""
	}
	return session.HistoryText()
}

// AddExchange appends one user query and its assistant answer, creating
// the session when the id is unknown, then trims the window.
func (st *SessionStore) AddExchange(id, userMsg, assistantMsg string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		session = &Session{ID: id}
		st.sessions[id] = session
	}

	session.AddUserMessage(userMsg)
	session.AddAssistantMessage(assistantMsg)
	session.Messages = st.trim(session.Messages)
}

// trim keeps the last maxHistory user messages and the messages that
// follow them. Tool-result messages do not count toward the window.
func (st *SessionStore) trim(msgs []llm.Message) []llm.Message {
	if st.maxHistory <= 0 || len(msgs) == 0 {
		return []llm.Message{}
	}

	usersSeen := 0
	start := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == "user" && !msgs[i].IsToolResult {
			usersSeen++
			if usersSeen == st.maxHistory {
				start = i
				break
			}
		}
	}
	return msgs[start:]
}

// Clear empties a session's history but keeps the id valid.
func (st *SessionStore) Clear(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if session, ok := st.sessions[id]; ok {
		session.Messages = nil
	}
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
