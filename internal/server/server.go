// Package server exposes the archive over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"commentarchive/internal/catalog"
	"commentarchive/internal/convert"
	"commentarchive/internal/logger"
	"commentarchive/internal/search"
	"commentarchive/internal/session"
)

const shutdownTimeout = 5 * time.Second

// Options tune paging and search behavior.
type Options struct {
	ArticlesPerPage   int
	ResultsPerPage    int
	PreviewLength     int
	PrivilegedAuthors []string
	SiteDomain        string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// snapshot is everything derived from one catalog. It is replaced as a
// whole when the archive is rebuilt.
type snapshot struct {
	catalog *catalog.Catalog
	engine  *search.Engine
	nav     *session.Navigator
}

// Server serves one catalog and the reader sessions browsing it.
type Server struct {
	current   atomic.Pointer[snapshot]
	converter convert.Converter
	sessions  session.Registry
	opts      Options
	log       *logger.Logger
	metrics   *Metrics
	router    *gin.Engine
}

// New creates a server for cat. A nil registry keeps sessions in memory.
func New(cat *catalog.Catalog, conv convert.Converter, sessions session.Registry, opts Options, log *logger.Logger) *Server {
	if conv == nil {
		conv = convert.Identity{}
	}

	if log == nil {
		log = logger.Discard()
	}

	if sessions == nil {
		sessions = session.NewMemoryStore()
	}

	s := &Server{
		converter: conv,
		sessions:  sessions,
		opts:      opts,
		log:       log.With("component", "server"),
		metrics:   NewMetrics(),
	}

	s.Replace(cat)
	s.router = s.newRouter()

	return s
}

// Replace swaps in a rebuilt catalog. Requests already running finish on
// the previous one.
func (s *Server) Replace(cat *catalog.Catalog) {
	s.current.Store(&snapshot{
		catalog: cat,
		engine:  search.NewEngine(cat, s.converter, s.opts.PreviewLength),
		nav:     session.NewNavigator(cat, s.opts.ArticlesPerPage),
	})
	s.metrics.articles.Set(float64(cat.Len()))
}

func (s *Server) snapshot() *snapshot {
	return s.current.Load()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()

	router.Use(recoveryMiddleware(s.log))
	router.Use(loggingMiddleware(s.log, s.metrics))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	router.GET("/articles", s.listArticles)
	router.GET("/articles/:index", s.getArticle)
	router.GET("/search", s.search)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", s.createSession)
		sessions.GET("/:id", s.getSession)
		sessions.DELETE("/:id", s.deleteSession)
		sessions.POST("/:id/select", s.selectArticle)
		sessions.POST("/:id/next", s.nextArticle)
		sessions.POST("/:id/prev", s.prevArticle)
		sessions.POST("/:id/page", s.goToPage)
		sessions.GET("/:id/preferences", s.getPreferences)
		sessions.PUT("/:id/preferences", s.putPreferences)
	}

	return router
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
