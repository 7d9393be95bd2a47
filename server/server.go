package server

import (
	"context"
	"net/http"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/coursechat-ai/coursechat/agent"
	"github.com/coursechat-ai/coursechat/tools"
)

// Server exposes the query pipeline as a small JSON API. The pipeline
// guarantees the user always receives some answer, so the query endpoint
// degrades to an apology message instead of a 500.
type Server struct {
	rag  *agent.RAGSystem
	echo *echo.Echo
}

type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type QueryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

func New(rag *agent.RAGSystem) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	s := &Server{rag: rag, echo: e}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/api/query", s.handleQuery)
	e.GET("/api/courses", s.handleCourses)

	return s
}

func (s *Server) handleQuery(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = s.rag.CreateSession()
	}

	answer, sources, err := s.rag.Query(c.Request().Context(), req.Query, sessionID)
	if err != nil {
		logger.Error("query failed", zap.String("session", sessionID), zap.Error(err))
		return c.JSON(http.StatusOK, QueryResponse{
			Answer:    "I encountered a system error while answering. Please try again.",
			Sources:   []tools.Source{},
			SessionID: sessionID,
		})
	}

	if sources == nil {
		sources = []tools.Source{}
	}
	return c.JSON(http.StatusOK, QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (s *Server) handleCourses(c echo.Context) error {
	analytics := s.rag.GetAnalytics()
	return c.JSON(http.StatusOK, CourseStats{
		TotalCourses: analytics.TotalCourses,
		CourseTitles: analytics.CourseTitles,
	})
}

// Handler exposes the underlying mux for in-process testing.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
