package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/pipeline"
	"github.com/cityfeed/cityfeed/internal/store"
	"github.com/cityfeed/cityfeed/internal/worker"
)

type ingestRequest struct {
	City  string `json:"city" binding:"required"`
	URL   string `json:"url"`
	Async bool   `json:"async"`
}

// handleIngest triggers a run for the named source. With async the job is
// queued and 202 returned; otherwise the run executes on the request and
// its summary is returned.
func (s *Server) handleIngest(c *gin.Context) {
	source := c.Param("source")

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Async {
		if !s.runner.Enqueue(worker.Job{Source: source, CitySlug: req.City, URL: req.URL}) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion queue full"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "source": source, "city": req.City})
		return
	}

	summary, err := s.pipeline.Ingest(c.Request.Context(), source, req.City, req.URL)
	if err != nil {
		s.ingestError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) ingestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, pipeline.ErrUnknownSource):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		// Validation errors from adapters arrive untyped; run failures have
		// already been recorded on the run itself.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	runs, err := s.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingestions": runs})
}

func (s *Server) handleLastRun(c *gin.Context) {
	run, err := s.store.LastRun()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no ingestions yet"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleRunSubmissions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingestion id"})
		return
	}
	if _, err := s.store.GetRun(id); err != nil {
		s.lookupError(c, err)
		return
	}
	subs, err := s.store.RunSubmissions(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

func (s *Server) handleListSubmissions(c *gin.Context) {
	filter := store.SubmissionFilter{
		Status: model.SubmissionStatus(c.Query("status")),
		Source: c.Query("source"),
	}
	if slug := c.Query("city"); slug != "" {
		city, err := s.store.ResolveCityBySlug(slug)
		if err != nil {
			s.lookupError(c, err)
			return
		}
		filter.CityID = &city.ID
	}
	subs, err := s.store.ListSubmissions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

func (s *Server) handleGetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		s.lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (s *Server) handleReject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		s.lookupError(c, err)
		return
	}
	if sub.Status == model.SubmissionPromoted {
		c.JSON(http.StatusConflict, gin.H{"error": "submission already promoted"})
		return
	}
	if err := s.store.UpdateSubmissionStatus(id, model.SubmissionRejected); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.SubmissionRejected)})
}

func (s *Server) lookupError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
