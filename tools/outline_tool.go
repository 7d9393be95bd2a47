package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/coursechat-ai/coursechat/vectorstore"
)

// CourseOutlineTool returns a course's title, link and numbered lesson
// list from the catalog metadata.
type CourseOutlineTool struct {
	store       vectorstore.VectorStore
	lastSources []Source
}

func NewCourseOutlineTool(store vectorstore.VectorStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Definition() api.Tool {
	return NewToolBuilder("get_course_outline",
		"Get the complete outline of a course including title, link, and all lessons").
		StringParam("course_name", "Course title (partial matches work, e.g. 'MCP', 'Introduction')", true).
		Build()
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args api.ToolCallFunctionArguments) string {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		t.lastSources = nil
		return "A course name is required to get an outline."
	}

	title, err := t.store.ResolveCourseName(ctx, courseName)
	if err != nil {
		t.lastSources = nil
		return fmt.Sprintf("No course found matching '%s'", courseName)
	}

	for _, course := range t.store.GetCoursesMetadata() {
		if course.Title != title {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Course: %s\n", course.Title)
		if course.Link != "" {
			fmt.Fprintf(&b, "Course Link: %s\n", course.Link)
		}
		if course.Instructor != "" {
			fmt.Fprintf(&b, "Instructor: %s\n", course.Instructor)
		}
		b.WriteString("Lessons:\n")
		for _, lesson := range course.Lessons {
			fmt.Fprintf(&b, "%d. %s\n", lesson.Number, lesson.Title)
		}

		t.lastSources = []Source{{Text: course.Title, URL: course.Link}}
		return b.String()
	}

	t.lastSources = nil
	return fmt.Sprintf("No course found matching '%s'", courseName)
}

func (t *CourseOutlineTool) LastSources() []Source {
	return t.lastSources
}

func (t *CourseOutlineTool) ResetSources() {
	t.lastSources = nil
}
