package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/coursechat-ai/coursechat/appconfig"
	"github.com/coursechat-ai/coursechat/docproc"
	"github.com/coursechat-ai/coursechat/llm"
	"github.com/coursechat-ai/coursechat/memory"
	"github.com/coursechat-ai/coursechat/prompts"
	"github.com/coursechat-ai/coursechat/tools"
	"github.com/coursechat-ai/coursechat/vectorstore"
)

// RAGSystem coordinates the retrieval-augmented query pipeline: it builds
// the prompt context, lets the model decide whether to search, executes at
// most one tool round, and records the turn in the session store.
type RAGSystem struct {
	config    *appconfig.AppConfig
	llmClient llm.LLMClient
	store     vectorstore.VectorStore
	sessions  *memory.SessionStore
	processor *docproc.Processor
}

func NewRAGSystem(
	config *appconfig.AppConfig,
	llmClient llm.LLMClient,
	store vectorstore.VectorStore,
	sessions *memory.SessionStore,
	processor *docproc.Processor,
) *RAGSystem {
	return &RAGSystem{
		config:    config,
		llmClient: llmClient,
		store:     store,
		sessions:  sessions,
		processor: processor,
	}
}

// CreateSession starts a fresh conversation and returns its id.
func (r *RAGSystem) CreateSession() string {
	return r.sessions.Create()
}

// Query answers one user query. The model is invoked at most twice: once
// with tool schemas advertised, and once more without tools when it
// requested a tool call. Sources come from the tool round; a query the
// model answers directly yields an empty source list.
func (r *RAGSystem) Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error) {
	// Tool state is per-query: attribution is read exactly once below.
	manager := tools.NewToolManager(
		tools.NewCourseSearchTool(r.store),
		tools.NewCourseOutlineTool(r.store),
	)

	systemPrompt, err := prompts.RenderAssistantSystemPrompt(r.sessions.HistoryText(sessionID))
	if err != nil {
		return "", nil, status.Errorf(codes.Internal, "rendering system prompt: %v", err)
	}

	msgs := []llm.Message{{Role: "user", Content: query}}

	var answer strings.Builder
	var toolCalls []api.ToolCall

	err = r.llmClient.GenerateInferenceWithTools(ctx, msgs,
		func(chunk string) error {
			answer.WriteString(chunk)
			return nil
		},
		func(calls []api.ToolCall) error {
			toolCalls = append(toolCalls, calls...)
			return nil
		},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0),
		llm.WithMaxTokens(800),
		llm.WithTools(manager.Definitions()),
	)
	if err != nil {
		return "", nil, status.Errorf(codes.Unavailable, "model call failed: %v", err)
	}

	// One tool round at most; the second call carries no tool schemas, so
	// the model must produce a final grounded answer.
	if len(toolCalls) > 0 {
		for _, call := range toolCalls {
			result := manager.Execute(ctx, call.Function.Name, call.Function.Arguments)
			msgs = append(msgs, llm.Message{
				Role:         "user",
				Content:      fmt.Sprintf("Tool %s returned:\n%s", call.Function.Name, result),
				IsToolResult: true,
			})
		}

		answer.Reset()
		err = r.llmClient.GenerateInference(ctx, msgs,
			func(chunk string) error {
				answer.WriteString(chunk)
				return nil
			},
			llm.WithSystemPrompt(systemPrompt),
			llm.WithTemperature(0),
			llm.WithMaxTokens(800),
		)
		if err != nil {
			return "", nil, status.Errorf(codes.Unavailable, "model call failed: %v", err)
		}
	}

	sources := manager.GetLastSources()
	manager.ResetSources()

	r.sessions.AddExchange(sessionID, query, answer.String())
	return answer.String(), sources, nil
}

// Analytics summarizes the indexed corpus.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

func (r *RAGSystem) GetAnalytics() Analytics {
	return Analytics{
		TotalCourses: r.store.CourseCount(),
		CourseTitles: r.store.ListCourseTitles(),
	}
}

// AddCourseDocument ingests one document into the vector store.
func (r *RAGSystem) AddCourseDocument(ctx context.Context, path string) (int, error) {
	text, err := docproc.ReadDocument(path)
	if err != nil {
		return 0, err
	}

	course, chunks, err := r.processor.Process(filepath.Base(path), text)
	if err != nil {
		return 0, err
	}

	if err := r.store.AddCourse(ctx, course, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// AddCourseFolder ingests every readable document in a folder. Documents
// are processed concurrently; a document that cannot be read or parsed is
// logged and skipped without aborting the batch. Courses whose title is
// already indexed are skipped unless clearExisting is set.
func (r *RAGSystem) AddCourseFolder(ctx context.Context, folder string, clearExisting bool) (int, int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, 0, fmt.Errorf("reading docs folder %s: %w", folder, err)
	}

	if clearExisting {
		r.store.Clear()
	}

	type ingestResult struct {
		course string
		chunks int
		ok     bool
	}

	var ingestTasks []<-chan async.Result[ingestResult]
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(folder, entry.Name())

		ingestTasks = append(ingestTasks, async.Go(func() (ingestResult, error) {
			text, err := docproc.ReadDocument(path)
			if err != nil {
				logger.Error("skipping unreadable document", zap.String("path", path), zap.Error(err))
				return ingestResult{}, nil
			}

			course, chunks, err := r.processor.Process(filepath.Base(path), text)
			if err != nil {
				logger.Error("skipping unparseable document", zap.String("path", path), zap.Error(err))
				return ingestResult{}, nil
			}

			if !clearExisting && r.store.HasCourse(course.Title) {
				logger.Info("course already indexed, skipping", zap.String("course", course.Title))
				return ingestResult{}, nil
			}

			if err := r.store.AddCourse(ctx, course, chunks); err != nil {
				logger.Error("failed to index course", zap.String("course", course.Title), zap.Error(err))
				return ingestResult{}, nil
			}

			return ingestResult{course: course.Title, chunks: len(chunks), ok: true}, nil
		}))
	}

	results, err := async.AwaitAll(ingestTasks...)
	if err != nil {
		return 0, 0, err
	}

	totalCourses, totalChunks := 0, 0
	for _, res := range results {
		if !res.ok {
			continue
		}
		totalCourses++
		totalChunks += res.chunks
		logger.Info("indexed course", zap.String("course", res.course), zap.Int("chunks", res.chunks))
	}
	return totalCourses, totalChunks, nil
}
