package tools

import (
	"context"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/coursechat-ai/coursechat/models"
	"github.com/coursechat-ai/coursechat/vectorstore"
)

// fakeStore records search invocations and serves canned results.
type fakeStore struct {
	results vectorstore.SearchResults
	courses []models.Course

	searchCalls  int
	lastQuery    string
	lastCourse   string
	lastLesson   int
	lastLimit    int
	resolveErr   error
	resolvedName string
}

func (f *fakeStore) AddCourse(context.Context, *models.Course, []models.CourseChunk) error {
	return nil
}

func (f *fakeStore) Search(_ context.Context, query, courseName string, lessonNumber, limit int) vectorstore.SearchResults {
	f.searchCalls++
	f.lastQuery, f.lastCourse, f.lastLesson, f.lastLimit = query, courseName, lessonNumber, limit
	return f.results
}

func (f *fakeStore) ResolveCourseName(_ context.Context, name string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	if f.resolvedName != "" {
		return f.resolvedName, nil
	}
	return name, nil
}

func (f *fakeStore) HasCourse(string) bool { return len(f.courses) > 0 }

func (f *fakeStore) CourseCount() int { return len(f.courses) }

func (f *fakeStore) ListCourseTitles() []string { return nil }

func (f *fakeStore) GetCoursesMetadata() []models.Course { return f.courses }

func (f *fakeStore) GetLessonLink(courseTitle string, lessonNumber int) string {
	for _, c := range f.courses {
		if c.Title != courseTitle {
			continue
		}
		if l := c.GetLesson(lessonNumber); l != nil {
			return l.Link
		}
	}
	return ""
}

func (f *fakeStore) DeleteCourse(string) {}
func (f *fakeStore) Clear()              {}

func pythonCourse() models.Course {
	return models.Course{
		Title: "Introduction to Python",
		Link:  "https://example.com/python",
		Lessons: []models.Lesson{
			{Number: 1, Title: "Getting Started", Link: "https://example.com/python/1"},
			{Number: 2, Title: "Data Types", Link: "https://example.com/python/2"},
		},
	}
}

func oneHit() vectorstore.SearchResults {
	return vectorstore.SearchResults{Hits: []vectorstore.SearchHit{{
		Content:      "Python is a high-level programming language.",
		CourseTitle:  "Introduction to Python",
		LessonNumber: 1,
		ChunkIndex:   0,
		Score:        0.92,
	}}}
}

func TestSearchTool_Definition(t *testing.T) {
	def := NewCourseSearchTool(&fakeStore{}).Definition()

	assert.Equal(t, "search_course_content", def.Function.Name)
	assert.Equal(t, "object", def.Function.Parameters.Type)
	assert.Equal(t, []string{"query"}, def.Function.Parameters.Required)
	assert.Contains(t, def.Function.Parameters.Properties, "course_name")
	assert.Contains(t, def.Function.Parameters.Properties, "lesson_number")
}

func TestSearchTool_FormatsAttributedBlocks(t *testing.T) {
	store := &fakeStore{results: oneHit(), courses: []models.Course{pythonCourse()}}
	tool := NewCourseSearchTool(store)

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{"query": "what is python"})

	assert.Equal(t, "[Introduction to Python - Lesson 1]\nPython is a high-level programming language.", out)

	sources := tool.LastSources()
	require.Len(t, sources, 1)
	assert.Equal(t, "Introduction to Python - Lesson 1", sources[0].Text)
	assert.Equal(t, "https://example.com/python/1", sources[0].URL)
}

func TestSearchTool_ForwardsFilters(t *testing.T) {
	store := &fakeStore{results: oneHit(), courses: []models.Course{pythonCourse()}}
	tool := NewCourseSearchTool(store)

	tool.Execute(context.Background(), api.ToolCallFunctionArguments{
		"query":         "data types",
		"course_name":   "Python",
		"lesson_number": float64(2), // JSON numbers decode as float64
	})

	assert.Equal(t, "data types", store.lastQuery)
	assert.Equal(t, "Python", store.lastCourse)
	assert.Equal(t, 2, store.lastLesson)
	assert.Equal(t, 0, store.lastLimit)
}

func TestSearchTool_MissingFiltersDefault(t *testing.T) {
	store := &fakeStore{results: oneHit(), courses: []models.Course{pythonCourse()}}
	tool := NewCourseSearchTool(store)

	tool.Execute(context.Background(), api.ToolCallFunctionArguments{"query": "anything"})

	assert.Equal(t, "", store.lastCourse)
	assert.Equal(t, models.NoLesson, store.lastLesson)
}

func TestSearchTool_EmptyResults(t *testing.T) {
	tests := []struct {
		name string
		args api.ToolCallFunctionArguments
		want string
	}{
		{
			name: "no filters",
			args: api.ToolCallFunctionArguments{"query": "q"},
			want: "No relevant content found.",
		},
		{
			name: "course filter",
			args: api.ToolCallFunctionArguments{"query": "q", "course_name": "Python"},
			want: "No relevant content found in course 'Python'.",
		},
		{
			name: "course and lesson filter",
			args: api.ToolCallFunctionArguments{"query": "q", "course_name": "Python", "lesson_number": float64(3)},
			want: "No relevant content found in course 'Python' in lesson 3.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := NewCourseSearchTool(&fakeStore{})
			out := tool.Execute(context.Background(), tc.args)
			assert.Equal(t, tc.want, out)
			assert.Empty(t, tool.LastSources())
		})
	}
}

func TestSearchTool_PassesStoreErrorThrough(t *testing.T) {
	store := &fakeStore{results: vectorstore.EmptyResults("No course found matching 'X'")}
	tool := NewCourseSearchTool(store)

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{"query": "q", "course_name": "X"})

	assert.Equal(t, "No course found matching 'X'", out)
	assert.Empty(t, tool.LastSources())
}

func TestSearchTool_ResetSources(t *testing.T) {
	store := &fakeStore{results: oneHit(), courses: []models.Course{pythonCourse()}}
	tool := NewCourseSearchTool(store)

	tool.Execute(context.Background(), api.ToolCallFunctionArguments{"query": "q"})
	require.NotEmpty(t, tool.LastSources())

	tool.ResetSources()
	assert.Empty(t, tool.LastSources())
}

func TestOutlineTool_RendersOutline(t *testing.T) {
	course := pythonCourse()
	course.Instructor = "Guido"
	store := &fakeStore{courses: []models.Course{course}}
	tool := NewCourseOutlineTool(store)

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{"course_name": "Introduction to Python"})

	assert.Contains(t, out, "Course: Introduction to Python\n")
	assert.Contains(t, out, "Course Link: https://example.com/python\n")
	assert.Contains(t, out, "Instructor: Guido\n")
	assert.Contains(t, out, "Lessons:\n1. Getting Started\n2. Data Types\n")

	sources := tool.LastSources()
	require.Len(t, sources, 1)
	assert.Equal(t, "Introduction to Python", sources[0].Text)
	assert.Equal(t, "https://example.com/python", sources[0].URL)
}

func TestOutlineTool_ResolvesPartialName(t *testing.T) {
	store := &fakeStore{courses: []models.Course{pythonCourse()}, resolvedName: "Introduction to Python"}
	tool := NewCourseOutlineTool(store)

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{"course_name": "Python"})
	assert.Contains(t, out, "Course: Introduction to Python")
}

func TestOutlineTool_UnknownCourse(t *testing.T) {
	store := &fakeStore{resolveErr: status.Errorf(codes.NotFound, "no course found matching %q", "X")}
	tool := NewCourseOutlineTool(store)

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{"course_name": "X"})
	assert.Equal(t, "No course found matching 'X'", out)
	assert.Empty(t, tool.LastSources())
}

func TestOutlineTool_MissingCourseName(t *testing.T) {
	tool := NewCourseOutlineTool(&fakeStore{})

	out := tool.Execute(context.Background(), api.ToolCallFunctionArguments{})
	assert.Equal(t, "A course name is required to get an outline.", out)
}

func TestToolManager(t *testing.T) {
	store := &fakeStore{results: oneHit(), courses: []models.Course{pythonCourse()}}
	manager := NewToolManager(NewCourseSearchTool(store), NewCourseOutlineTool(store))

	t.Run("definitions keep registration order", func(t *testing.T) {
		defs := manager.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "search_course_content", defs[0].Function.Name)
		assert.Equal(t, "get_course_outline", defs[1].Function.Name)
	})

	t.Run("dispatches by name", func(t *testing.T) {
		out := manager.Execute(context.Background(), "search_course_content",
			api.ToolCallFunctionArguments{"query": "q"})
		assert.Contains(t, out, "[Introduction to Python - Lesson 1]")
	})

	t.Run("unknown tool yields model-facing text", func(t *testing.T) {
		out := manager.Execute(context.Background(), "nope", api.ToolCallFunctionArguments{})
		assert.Equal(t, "Tool 'nope' not found", out)
	})

	t.Run("sources surface from the executing tool", func(t *testing.T) {
		manager.ResetSources()
		manager.Execute(context.Background(), "search_course_content",
			api.ToolCallFunctionArguments{"query": "q"})

		sources := manager.GetLastSources()
		require.Len(t, sources, 1)
		assert.Equal(t, "Introduction to Python - Lesson 1", sources[0].Text)
	})

	t.Run("reset clears attribution on every tool", func(t *testing.T) {
		manager.ResetSources()
		assert.Empty(t, manager.GetLastSources())
	})
}
