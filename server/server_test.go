package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/coursechat-ai/coursechat/agent"
	"github.com/coursechat-ai/coursechat/appconfig"
	"github.com/coursechat-ai/coursechat/docproc"
	"github.com/coursechat-ai/coursechat/llm"
	"github.com/coursechat-ai/coursechat/memory"
	"github.com/coursechat-ai/coursechat/models"
	"github.com/coursechat-ai/coursechat/vectorstore"
)

type stubLLM struct {
	answer string
	err    error
}

func (s *stubLLM) GenerateInference(_ context.Context, _ []llm.Message, callback func(string) error, _ ...llm.LLMOption) error {
	if s.err != nil {
		return s.err
	}
	return callback(s.answer)
}

func (s *stubLLM) GenerateInferenceWithTools(_ context.Context, _ []llm.Message, contentCallback func(string) error, _ func([]api.ToolCall) error, _ ...llm.LLMOption) error {
	if s.err != nil {
		return s.err
	}
	return contentCallback(s.answer)
}

func (s *stubLLM) GetModel() string { return "stub" }

type stubStore struct {
	titles []string
}

func (s *stubStore) AddCourse(context.Context, *models.Course, []models.CourseChunk) error {
	return nil
}

func (s *stubStore) Search(context.Context, string, string, int, int) vectorstore.SearchResults {
	return vectorstore.SearchResults{}
}

func (s *stubStore) ResolveCourseName(_ context.Context, name string) (string, error) {
	return "", status.Errorf(codes.NotFound, "no course found matching %q", name)
}

func (s *stubStore) HasCourse(string) bool { return false }

func (s *stubStore) CourseCount() int { return len(s.titles) }

func (s *stubStore) ListCourseTitles() []string { return s.titles }

func (s *stubStore) GetCoursesMetadata() []models.Course { return nil }

func (s *stubStore) GetLessonLink(string, int) string { return "" }

func (s *stubStore) DeleteCourse(string) {}

func (s *stubStore) Clear() {}

func newTestServer(client llm.LLMClient, store vectorstore.VectorStore) *Server {
	cfg := appconfig.Defaults()
	rag := agent.NewRAGSystem(cfg, client, store,
		memory.NewSessionStore(cfg.MaxHistory), docproc.NewProcessor(cfg.ChunkSize, cfg.ChunkOverlap))
	return New(rag)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(&stubLLM{answer: "Paris."}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/query",
		`{"query": "What is the capital of France?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Paris.", resp.Answer)
	assert.NotEmpty(t, resp.SessionID, "a session id is minted when none is supplied")
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)
}

func TestQueryEndpoint_ReusesSessionID(t *testing.T) {
	srv := newTestServer(&stubLLM{answer: "ok"}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/query",
		`{"query": "hi", "session_id": "my-session"}`)

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "my-session", resp.SessionID)
}

func TestQueryEndpoint_MissingQuery(t *testing.T) {
	srv := newTestServer(&stubLLM{answer: "ok"}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/query", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpoint_InvalidBody(t *testing.T) {
	srv := newTestServer(&stubLLM{answer: "ok"}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/query", `{"query": 3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpoint_DegradesOnModelFailure(t *testing.T) {
	srv := newTestServer(&stubLLM{err: fmt.Errorf("backend down")}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/query", `{"query": "hi"}`)

	require.Equal(t, http.StatusOK, rec.Code, "model failures degrade, never 500")

	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "system error")
	assert.Empty(t, resp.Sources)
}

func TestCoursesEndpoint(t *testing.T) {
	srv := newTestServer(&stubLLM{}, &stubStore{titles: []string{"Course A", "Course B"}})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/courses", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats CourseStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"Course A", "Course B"}, stats.CourseTitles)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubLLM{}, &stubStore{})

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
