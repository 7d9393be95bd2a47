package vectorstore

import (
	"context"

	"github.com/coursechat-ai/coursechat/models"
)

// SearchHit is one ranked match, annotated with its origin for
// attribution.
type SearchHit struct {
	Content      string  `json:"content"`
	CourseTitle  string  `json:"courseTitle"`
	LessonNumber int     `json:"lessonNumber"`
	ChunkIndex   int     `json:"chunkIndex"`
	Score        float64 `json:"score"`
}

// SearchResults carries ranked hits plus an optional model-visible error
// condition. Recoverable conditions (unresolved filters, invalid limits,
// embedding failures) are reported through Error so the model can rephrase
// or answer without grounding; they are not Go errors.
type SearchResults struct {
	Hits  []SearchHit
	Error string
}

func (r SearchResults) IsEmpty() bool { return len(r.Hits) == 0 }

// EmptyResults builds an empty result set carrying an error condition.
func EmptyResults(errMsg string) SearchResults {
	return SearchResults{Error: errMsg}
}

// VectorStore indexes course chunks by semantic similarity and serves
// ranked, optionally filtered matches.
type VectorStore interface {
	// AddCourse indexes all chunks of a course. Re-adding a course title
	// replaces its prior chunks atomically; readers never observe a mixed
	// old/new state.
	AddCourse(ctx context.Context, course *models.Course, chunks []models.CourseChunk) error

	// Search returns up to limit chunks ranked by similarity to query.
	// courseName, when non-empty, is fuzzily resolved to the closest known
	// title; lessonNumber restricts to one lesson (models.NoLesson means
	// unfiltered). limit <= 0 uses the configured default.
	Search(ctx context.Context, query, courseName string, lessonNumber, limit int) SearchResults

	// ResolveCourseName maps an approximate course name to the closest
	// indexed title. Returns a NotFound status error when no title clears
	// the similarity floor.
	ResolveCourseName(ctx context.Context, name string) (string, error)

	HasCourse(title string) bool
	CourseCount() int
	ListCourseTitles() []string
	GetCoursesMetadata() []models.Course
	GetLessonLink(courseTitle string, lessonNumber int) string
	DeleteCourse(title string)
	Clear()
}
