package vectorstore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/coursechat-ai/coursechat/llm"
	"github.com/coursechat-ai/coursechat/models"
)

// InMemoryStore is a brute-force cosine similarity store. The corpus is a
// handful of courses, so exact scoring beats an ANN index here.
type InMemoryStore struct {
	mu             sync.RWMutex
	embedder       llm.Embedder
	maxResults     int
	titleThreshold float64
	courses        map[string]*courseEntry
}

type courseEntry struct {
	course      models.Course
	chunks      []models.CourseChunk
	vectors     [][]float32
	titleVector []float32
}

func NewInMemoryStore(embedder llm.Embedder, maxResults int, titleThreshold float64) *InMemoryStore {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &InMemoryStore{
		embedder:       embedder,
		maxResults:     maxResults,
		titleThreshold: titleThreshold,
		courses:        make(map[string]*courseEntry),
	}
}

func (s *InMemoryStore) AddCourse(ctx context.Context, course *models.Course, chunks []models.CourseChunk) error {
	if course == nil || course.Title == "" {
		return fmt.Errorf("course title is required")
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, course.Title)
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	// Embed outside the lock; only the swap below needs exclusion.
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding course %q: %w", course.Title, err)
	}

	entry := &courseEntry{
		course:      *course,
		chunks:      slices.Clone(chunks),
		vectors:     vectors[1:],
		titleVector: vectors[0],
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Whole-course swap: readers see either the old or the new chunk set.
	s.courses[course.Title] = entry
	return nil
}

func (s *InMemoryStore) Search(ctx context.Context, query, courseName string, lessonNumber, limit int) SearchResults {
	if limit == 0 {
		limit = s.maxResults
	}
	if limit < 0 {
		return EmptyResults(fmt.Sprintf("Invalid search limit: %d. Must be >= 1", limit))
	}

	resolvedTitle := ""
	if courseName != "" {
		title, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return EmptyResults(fmt.Sprintf("No course found matching '%s'", courseName))
			}
			return EmptyResults(fmt.Sprintf("Search error: %v", err))
		}
		resolvedTitle = title
	}

	queryVecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		logger.Error("query embedding failed", zap.Error(err))
		return EmptyResults(fmt.Sprintf("Search error: %v", err))
	}
	queryVec := queryVecs[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Keep the top hits with a min-heap; higher cosine score is better.
	h := ds.NewMinHeap(func(a, b SearchHit) bool { return a.Score < b.Score })
	for title, entry := range s.courses {
		if resolvedTitle != "" && title != resolvedTitle {
			continue
		}
		for i, chunk := range entry.chunks {
			if lessonNumber != models.NoLesson && chunk.LessonNumber != lessonNumber {
				continue
			}
			h.Push(SearchHit{
				Content:      chunk.Content,
				CourseTitle:  chunk.CourseTitle,
				LessonNumber: chunk.LessonNumber,
				ChunkIndex:   chunk.ChunkIndex,
				Score:        cosine(queryVec, entry.vectors[i]),
			})
			if h.Len() > limit {
				h.Pop()
			}
		}
	}

	hits := h.ToSortedSlice()
	slices.Reverse(hits) // highest score first
	return SearchResults{Hits: hits}
}

func (s *InMemoryStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if _, ok := s.courses[name]; ok {
		s.mu.RUnlock()
		return name, nil
	}
	s.mu.RUnlock()

	vecs, err := s.embedder.Embed(ctx, []string{name})
	if err != nil {
		return "", status.Errorf(codes.Internal, "embed course name: %v", err)
	}
	nameVec := vecs[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := ""
	bestScore := math.Inf(-1)
	for title, entry := range s.courses {
		score := cosine(nameVec, entry.titleVector)
		if score > bestScore {
			best, bestScore = title, score
		}
	}

	if best == "" || bestScore < s.titleThreshold {
		return "", status.Errorf(codes.NotFound, "no course found matching %q", name)
	}
	return best, nil
}

func (s *InMemoryStore) HasCourse(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[title]
	return ok
}

func (s *InMemoryStore) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

func (s *InMemoryStore) ListCourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

func (s *InMemoryStore) GetCoursesMetadata() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Course, 0, len(s.courses))
	for _, entry := range s.courses {
		out = append(out, entry.course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (s *InMemoryStore) GetLessonLink(courseTitle string, lessonNumber int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.courses[courseTitle]
	if !ok {
		return ""
	}
	if lesson := entry.course.GetLesson(lessonNumber); lesson != nil {
		return lesson.Link
	}
	return ""
}

func (s *InMemoryStore) DeleteCourse(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.courses, title)
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = make(map[string]*courseEntry)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
