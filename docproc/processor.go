package docproc

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/coursechat-ai/coursechat/models"
)

// Course documents follow a fixed-format header:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson body...>
//
// Link and instructor lines are optional. Documents that do not carry the
// header degrade to a single untitled lesson named after the file.
const (
	courseTitlePrefix      = "Course Title:"
	courseLinkPrefix       = "Course Link:"
	courseInstructorPrefix = "Course Instructor:"
	lessonLinkPrefix       = "Lesson Link:"
)

var (
	lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)
	sentenceRe     = regexp.MustCompile(`[^.!?]*[.!?]+(?:\s+|$)|[^.!?]+$`)
)

// Processor turns raw extracted document text into a Course plus its
// ordered, overlapping chunk sequence.
type Processor struct {
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Process parses one document's text into a course and its chunks.
// fileName is used as the fallback title for headerless documents.
func (p *Processor) Process(fileName, text string) (*models.Course, []models.CourseChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("document %s is empty", fileName)
	}

	lines := strings.Split(text, "\n")

	course, bodyStart := p.parseHeader(fileName, lines)
	if bodyStart < 0 {
		// Malformed header: the whole document is one untitled lesson.
		logger.Info("no course header found, treating document as a single lesson",
			zap.String("file", fileName))
		chunks := p.buildChunks(course, models.NoLesson, text, 0)
		return course, chunks, nil
	}

	chunks := p.parseLessons(course, lines[bodyStart:])
	return course, chunks, nil
}

// parseHeader reads the leading course metadata lines. Returns the course
// and the index of the first body line, or -1 when no header is present.
func (p *Processor) parseHeader(fileName string, lines []string) (*models.Course, int) {
	course := &models.Course{}

	for i := 0; i < len(lines) && i < 5; i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, courseTitlePrefix) {
			course.Title = strings.TrimSpace(strings.TrimPrefix(line, courseTitlePrefix))
			continue
		}
		if strings.HasPrefix(line, courseLinkPrefix) {
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, courseLinkPrefix))
			continue
		}
		if strings.HasPrefix(line, courseInstructorPrefix) {
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, courseInstructorPrefix))
			continue
		}
		if line == "" {
			continue
		}
		break // first body line ends the header block
	}

	if course.Title == "" {
		base := filepath.Base(fileName)
		course.Title = strings.TrimSuffix(base, filepath.Ext(base))
		return course, -1
	}

	// Body starts after the header lines actually consumed.
	bodyStart := 0
	for bodyStart < len(lines) {
		line := strings.TrimSpace(lines[bodyStart])
		if strings.HasPrefix(line, courseTitlePrefix) ||
			strings.HasPrefix(line, courseLinkPrefix) ||
			strings.HasPrefix(line, courseInstructorPrefix) ||
			line == "" {
			bodyStart++
			continue
		}
		break
	}
	return course, bodyStart
}

// parseLessons walks the body, splitting it at lesson markers and chunking
// each lesson's accumulated text. Chunk indexes are contiguous across the
// whole course.
func (p *Processor) parseLessons(course *models.Course, lines []string) []models.CourseChunk {
	var chunks []models.CourseChunk

	currentLesson := models.NoLesson
	var currentContent []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(currentContent, "\n"))
		currentContent = nil
		if body == "" {
			return
		}
		chunks = append(chunks, p.buildChunks(course, currentLesson, body, len(chunks))...)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := lessonMarkerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()

			number, _ := strconv.Atoi(m[1])
			lesson := models.Lesson{Number: number, Title: strings.TrimSpace(m[2])}

			// An optional link line directly follows the marker.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, lessonLinkPrefix) {
					lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, lessonLinkPrefix))
					i++
				}
			}

			course.Lessons = append(course.Lessons, lesson)
			currentLesson = number
			continue
		}
		currentContent = append(currentContent, line)
	}
	flush()

	return chunks
}

// buildChunks chunks one lesson's body and annotates each chunk with its
// course/lesson back-references. Chunk content is prefixed with contextual
// metadata so short chunks still embed near their topic.
func (p *Processor) buildChunks(course *models.Course, lessonNumber int, body string, startIndex int) []models.CourseChunk {
	parts := p.ChunkText(body)

	out := make([]models.CourseChunk, 0, len(parts))
	for i, part := range parts {
		content := part
		if lessonNumber != models.NoLesson {
			content = fmt.Sprintf("Course %s Lesson %d content: %s", course.Title, lessonNumber, part)
		} else {
			content = fmt.Sprintf("Course %s content: %s", course.Title, part)
		}

		out = append(out, models.CourseChunk{
			Content:      content,
			CourseTitle:  course.Title,
			LessonNumber: lessonNumber,
			ChunkIndex:   startIndex + i,
		})
	}
	return out
}

// ChunkText splits text into sentence-aware chunks of at most chunkSize
// characters. Every chunk after the first re-starts with the trailing
// sentences of its predecessor, up to chunkOverlap characters. Overlap is
// strictly smaller than the chunk budget, so the split always advances.
func (p *Processor) ChunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		size := 0
		j := i
		for j < len(sentences) {
			add := len(sentences[j])
			if size > 0 {
				add++ // joining space
			}
			if size+add > p.chunkSize && size > 0 {
				break
			}
			size += add
			j++
		}

		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Walk back over trailing sentences that fit the overlap budget.
		back := j
		overlap := 0
		for back > i {
			l := len(sentences[back-1])
			if overlap+l > p.chunkOverlap {
				break
			}
			overlap += l + 1
			back--
		}
		if back == i {
			back = i + 1
		}
		i = back
	}

	return chunks
}

// splitSentences breaks text into trimmed sentences. Text without a
// terminal punctuation mark is kept as one trailing sentence.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	raw := sentenceRe.FindAllString(normalized, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
