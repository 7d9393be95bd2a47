package models

// Lesson is a single lesson within a course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Course represents one ingested course document. Title is the unique
// identifier; re-ingesting a title replaces the whole course.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// GetLesson returns the lesson with the given number, or nil.
func (c *Course) GetLesson(number int) *Lesson {
	for i := range c.Lessons {
		if c.Lessons[i].Number == number {
			return &c.Lessons[i]
		}
	}
	return nil
}

// CourseChunk is a bounded span of course text stored for retrieval.
// ChunkIndex values are unique and increasing within a course so document
// order can be reconstructed and neighbor chunks looked up.
type CourseChunk struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"courseTitle"`
	LessonNumber int    `json:"lessonNumber"` // -1 when the chunk is not tied to a lesson
	ChunkIndex   int    `json:"chunkIndex"`
}

// NoLesson marks a chunk that does not belong to any numbered lesson.
const NoLesson = -1
