// Package server exposes the ingestion core over HTTP: trigger endpoints,
// run introspection, and submission moderation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/logger"
	"github.com/cityfeed/cityfeed/internal/pipeline"
	"github.com/cityfeed/cityfeed/internal/store"
	"github.com/cityfeed/cityfeed/internal/worker"
)

// Server wires the HTTP surface over the store and pipeline.
type Server struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	runner   *worker.Runner
	engine   *gin.Engine
	http     *http.Server
}

// New builds the server and its background runner.
func New(addr string, s *store.Store, p *pipeline.Pipeline) *Server {
	srv := &Server{store: s, pipeline: p}
	srv.runner = worker.NewRunner(2, 8, func(ctx context.Context, job worker.Job) {
		if _, err := p.Ingest(ctx, job.Source, job.CitySlug, job.URL); err != nil {
			logger.Error("background ingestion failed",
				zap.String("source", job.Source),
				zap.String("city", job.CitySlug),
				zap.Error(err))
		}
	})

	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), requestLogger())

	e.GET("/healthz", srv.handleHealth)
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))

	e.POST("/ingestions/:source", srv.handleIngest)

	admin := e.Group("/admin")
	admin.GET("/ingestions", srv.handleListRuns)
	admin.GET("/ingestions/last", srv.handleLastRun)
	admin.GET("/ingestions/:id/events", srv.handleRunSubmissions)

	e.GET("/submissions", srv.handleListSubmissions)
	e.GET("/submissions/:id", srv.handleGetSubmission)
	e.POST("/submissions/:id/promote", srv.handlePromote)
	e.POST("/submissions/:id/reject", srv.handleReject)

	srv.engine = e
	srv.http = &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then drains the runner and shuts the
// listener down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("http server listening", zap.String("addr", s.http.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.runner.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
