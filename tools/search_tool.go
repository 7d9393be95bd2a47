package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/coursechat-ai/coursechat/models"
	"github.com/coursechat-ai/coursechat/vectorstore"
)

// CourseSearchTool searches course content with optional course and lesson
// filtering, and records the sources behind its latest result.
type CourseSearchTool struct {
	store       vectorstore.VectorStore
	lastSources []Source
}

func NewCourseSearchTool(store vectorstore.VectorStore) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

func (t *CourseSearchTool) Definition() api.Tool {
	return NewToolBuilder("search_course_content",
		"Search course materials with smart course name matching and lesson filtering").
		StringParam("query", "What to search for in the course content", true).
		StringParam("course_name", "Course title (partial matches work, e.g. 'MCP', 'Introduction')", false).
		IntParam("lesson_number", "Specific lesson number to search within (e.g. 1, 2, 3)", false).
		Build()
}

func (t *CourseSearchTool) Execute(ctx context.Context, args api.ToolCallFunctionArguments) string {
	query := stringArg(args, "query")
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number", models.NoLesson)

	results := t.store.Search(ctx, query, courseName, lessonNumber, 0)

	if results.Error != "" {
		t.lastSources = nil
		return results.Error
	}

	if results.IsEmpty() {
		t.lastSources = nil
		return emptyResultMessage(courseName, lessonNumber)
	}

	return t.formatResults(results)
}

// formatResults renders hits as attributed text blocks and records the
// attribution list before returning, so the orchestrator can read it after
// the tool output reaches the model.
func (t *CourseSearchTool) formatResults(results vectorstore.SearchResults) string {
	blocks := make([]string, 0, len(results.Hits))
	sources := make([]Source, 0, len(results.Hits))

	for _, hit := range results.Hits {
		label := hit.CourseTitle
		if hit.LessonNumber != models.NoLesson {
			label = fmt.Sprintf("%s - Lesson %d", hit.CourseTitle, hit.LessonNumber)
		}

		source := Source{Text: label}
		if hit.LessonNumber != models.NoLesson {
			source.URL = t.store.GetLessonLink(hit.CourseTitle, hit.LessonNumber)
		}
		sources = append(sources, source)

		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, hit.Content))
	}

	t.lastSources = sources
	return strings.Join(blocks, "\n\n")
}

func (t *CourseSearchTool) LastSources() []Source {
	return t.lastSources
}

func (t *CourseSearchTool) ResetSources() {
	t.lastSources = nil
}

func emptyResultMessage(courseName string, lessonNumber int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&b, " in course '%s'", courseName)
	}
	if lessonNumber != models.NoLesson {
		fmt.Fprintf(&b, " in lesson %d", lessonNumber)
	}
	b.WriteString(".")
	return b.String()
}
